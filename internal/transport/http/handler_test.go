package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/soldier14/quizdrill/internal/app"
	"github.com/soldier14/quizdrill/internal/domain"
	"github.com/soldier14/quizdrill/internal/infra/memory"
)

type testEnv struct {
	server *httptest.Server
	auth   *Authenticator
	quizID string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewCatalogStore()
	catalogService := app.NewCatalogService(store, nil)
	quiz, err := catalogService.CreateQuiz(context.Background(), app.CreateQuizInput{
		Name: "Math",
		Questions: []app.QuestionInput{
			{
				Type: domain.QuestionMultipleChoice,
				Text: "What is 2 + 2?",
				Options: []app.OptionInput{
					{Text: "4", Correct: true},
					{Text: "5"},
				},
			},
			{
				Type:        domain.QuestionMultipleChoice,
				Text:        "What is 3 * 3?",
				Explanation: "basic multiplication",
				Options: []app.OptionInput{
					{Text: "6"},
					{Text: "9", Correct: true},
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("seed quiz: %v", err)
	}

	catalogRepo := memory.NewCatalogRepository(store, time.Minute)
	attemptService := app.NewAttemptService(catalogRepo, memory.NewAttemptStore())

	auth := NewAuthenticator("test-secret")
	router := NewRouter(auth, NewAttemptHandler(attemptService), NewCatalogHandler(catalogService), NewWSHandler(attemptService))

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &testEnv{server: server, auth: auth, quizID: quiz.ID}
}

func (e *testEnv) request(t *testing.T, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, e.server.URL+path, &buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	var payload map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	return resp, payload
}

func (e *testEnv) token(t *testing.T, userID, role string) string {
	t.Helper()
	token, err := e.auth.Token(userID, role, time.Hour)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestRequestsWithoutTokenRejected(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.request(t, http.MethodPost, "/api/attempts", "", map[string]string{"quizId": env.quizID})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestAuthoringRequiresRole(t *testing.T) {
	env := newTestEnv(t)
	student := env.token(t, "alice", RoleStudent)

	resp, _ := env.request(t, http.MethodGet, "/api/quizzes", student, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for student on authoring, got %d", resp.StatusCode)
	}

	admin := env.token(t, "root", RoleAdmin)
	resp, _ = env.request(t, http.MethodGet, "/api/quizzes", admin, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", resp.StatusCode)
	}
}

func TestAttemptFlowOverREST(t *testing.T) {
	env := newTestEnv(t)
	student := env.token(t, "alice", RoleStudent)

	resp, start := env.request(t, http.MethodPost, "/api/attempts", student, map[string]string{"quizId": env.quizID})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%v)", resp.StatusCode, start)
	}
	attemptID, _ := start["attemptId"].(string)
	question, _ := start["question"].(map[string]any)
	if attemptID == "" || question == nil {
		t.Fatalf("unexpected start payload: %v", start)
	}
	assertStudentSafe(t, question)

	q1 := question["id"].(string)
	options := question["options"].([]any)
	firstOption := options[0].(map[string]any)["id"].(string)

	resp, progress := env.request(t, http.MethodPut,
		fmt.Sprintf("/api/attempts/%s/answers/%s", attemptID, q1), student,
		map[string]string{"optionId": firstOption})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d (%v)", resp.StatusCode, progress)
	}
	if progress["completed"].(bool) {
		t.Fatalf("expected next question, got completion")
	}
	next := progress["next"].(map[string]any)
	assertStudentSafe(t, next)

	q2 := next["id"].(string)
	secondOption := next["options"].([]any)[1].(map[string]any)["id"].(string)
	resp, progress = env.request(t, http.MethodPut,
		fmt.Sprintf("/api/attempts/%s/answers/%s", attemptID, q2), student,
		map[string]string{"optionId": secondOption})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !progress["completed"].(bool) {
		t.Fatalf("expected completion, got %v", progress)
	}
	if _, hasNext := progress["next"]; hasNext {
		t.Fatalf("completion payload must not carry a question: %v", progress)
	}

	resp, result := env.request(t, http.MethodPost,
		fmt.Sprintf("/api/attempts/%s/finish", attemptID), student, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on finish, got %d", resp.StatusCode)
	}
	if result["score"].(float64) != 2 || result["total"].(float64) != 2 {
		t.Fatalf("expected 2/2, got %v", result)
	}

	// Submitted gate.
	resp, _ = env.request(t, http.MethodPut,
		fmt.Sprintf("/api/attempts/%s/answers/%s", attemptID, q1), student,
		map[string]string{"optionId": firstOption})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 after submit, got %d", resp.StatusCode)
	}
}

func TestForeignAttemptLooksMissing(t *testing.T) {
	env := newTestEnv(t)
	alice := env.token(t, "alice", RoleStudent)
	bob := env.token(t, "bob", RoleStudent)

	_, start := env.request(t, http.MethodPost, "/api/attempts", alice, map[string]string{"quizId": env.quizID})
	attemptID := start["attemptId"].(string)
	q1 := start["question"].(map[string]any)["id"].(string)
	opt := start["question"].(map[string]any)["options"].([]any)[0].(map[string]any)["id"].(string)

	resp, _ := env.request(t, http.MethodPut,
		fmt.Sprintf("/api/attempts/%s/answers/%s", attemptID, q1), bob,
		map[string]string{"optionId": opt})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign attempt, got %d", resp.StatusCode)
	}
}

func TestMalformedPayloadRejectedBeforeStorage(t *testing.T) {
	env := newTestEnv(t)
	student := env.token(t, "alice", RoleStudent)

	resp, _ := env.request(t, http.MethodPost, "/api/attempts", student, map[string]string{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing quizId, got %d", resp.StatusCode)
	}

	resp, _ = env.request(t, http.MethodPut, "/api/attempts/a/answers/q", student, map[string]string{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing optionId, got %d", resp.StatusCode)
	}
}

// assertStudentSafe checks a question payload leaks neither correctness
// flags nor the explanation.
func assertStudentSafe(t *testing.T, question map[string]any) {
	t.Helper()
	if _, ok := question["explanation"]; ok {
		t.Fatalf("student view leaked explanation: %v", question)
	}
	for _, raw := range question["options"].([]any) {
		option := raw.(map[string]any)
		for key := range option {
			if key != "id" && key != "text" {
				t.Fatalf("student option leaked field %q: %v", key, option)
			}
		}
	}
}
