package http

import (
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestWebSocketAttemptFlow(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "alice", RoleStudent)

	u := "ws" + env.server.URL[len("http"):] + "/ws/attempts?quizId=" + env.quizID + "&token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// First question arrives on connect.
	_, question := readNext(conn, t, "question")
	attemptID, _ := question["attemptId"].(string)
	if attemptID == "" {
		t.Fatalf("expected attempt id on first question, got %v", question)
	}

	for i := 0; i < 2; i++ {
		options := question["options"].([]any)
		answer := map[string]any{
			"type": "answer",
			"payload": map[string]any{
				"questionId": question["id"],
				"optionId":   options[0].(map[string]any)["id"],
			},
		}
		if err := conn.WriteJSON(answer); err != nil {
			t.Fatalf("write answer: %v", err)
		}
		typ, payload := readNext(conn, t, "")
		if typ == "completed" {
			if payload["attemptId"] != attemptID {
				t.Fatalf("completion for wrong attempt: %v", payload)
			}
			break
		}
		if typ != "question" {
			t.Fatalf("expected question or completed, got %s (%v)", typ, payload)
		}
		question = payload
	}

	if err := conn.WriteJSON(map[string]any{"type": "finish"}); err != nil {
		t.Fatalf("write finish: %v", err)
	}
	_, result := readNext(conn, t, "result")
	if result["attemptId"] != attemptID {
		t.Fatalf("result for wrong attempt: %v", result)
	}
	if _, ok := result["score"]; !ok {
		t.Fatalf("expected score in result, got %v", result)
	}
}

func TestWebSocketUnknownMessage(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "alice", RoleStudent)

	u := "ws" + env.server.URL[len("http"):] + "/ws/attempts?quizId=" + env.quizID + "&token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	readNext(conn, t, "question")

	if err := conn.WriteJSON(map[string]any{"type": "leaderboard"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	readNext(conn, t, "error")
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}
