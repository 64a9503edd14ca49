package http

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/soldier14/quizdrill/internal/app"
	"github.com/soldier14/quizdrill/internal/domain"
)

// WSHandler drives one attempt over a single websocket: the server
// starts an attempt on connect, pushes a question, and the client walks
// the quiz by sending one answer at a time. Unlike a broadcast setup,
// every outbound frame is a direct reply to an inbound one, so a single
// read loop writing in place is safe.
type WSHandler struct {
	attempts *app.AttemptService
	upgrader websocket.Upgrader
}

func NewWSHandler(attempts *app.AttemptService) *WSHandler {
	return &WSHandler{
		attempts: attempts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type wsAnswerPayload struct {
	QuestionID string `json:"questionId"`
	OptionID   string `json:"optionId"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type completedPayload struct {
	AttemptID string `json:"attemptId"`
}

// ServeWS upgrades the connection and runs the attempt conversation.
// Query parameter: quizId. Authentication happens in the middleware.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "missing credentials")
		return
	}
	quizID := r.URL.Query().Get("quizId")
	if quizID == "" {
		writeDetail(w, http.StatusBadRequest, "missing quizId")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	start, err := h.attempts.StartAttempt(r.Context(), identity.UserID, quizID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	attemptID := start.AttemptID

	if start.Question != nil {
		_ = conn.WriteJSON(outboundMessage[*domain.QuestionView]{Type: "question", Payload: start.Question})
	} else {
		_ = conn.WriteJSON(outboundMessage[completedPayload]{Type: "completed", Payload: completedPayload{AttemptID: attemptID}})
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}
		switch inbound.Type {
		case "answer":
			var payload wsAnswerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}})
				continue
			}
			progress, err := h.attempts.SubmitAnswer(r.Context(), identity.UserID, attemptID, payload.QuestionID, payload.OptionID)
			if err != nil {
				_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
				continue
			}
			if progress.Completed {
				_ = conn.WriteJSON(outboundMessage[completedPayload]{Type: "completed", Payload: completedPayload{AttemptID: attemptID}})
			} else {
				_ = conn.WriteJSON(outboundMessage[*domain.QuestionView]{Type: "question", Payload: progress.Next})
			}
		case "finish":
			result, err := h.attempts.FinishAttempt(r.Context(), identity.UserID, attemptID)
			if err != nil {
				_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
				continue
			}
			_ = conn.WriteJSON(outboundMessage[domain.AttemptResult]{Type: "result", Payload: result})
			return
		default:
			_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}})
		}
	}
}
