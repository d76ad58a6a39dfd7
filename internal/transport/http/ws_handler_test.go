package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"trivia-session-service/internal/app"
	"trivia-session-service/internal/domain"
	"trivia-session-service/internal/infra/memory"
)

func TestWebSocketGameplayFlow(t *testing.T) {
	ledger := memory.NewLedger()
	content := memory.NewCategoryRepository(memory.NewStaticCategoryLoader(sampleCategories()), time.Minute)
	rules := app.Rules{
		QuestionTime: 30,
		TickInterval: 0, // no wall-clock countdown in tests
		HintBudget:   2,
		AdvanceDelay: 0,
	}
	service := app.NewTriviaService(memory.NewSessionStore(), content, ledger, memory.NewAnswerJournal(), rules)
	wsHandler := NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws?categoryId=general&userId=u1"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// First delivery is the opening question.
	msgType, _ := readNext(conn, t, "question")
	if msgType != "question" {
		t.Fatalf("expected question, got %s", msgType)
	}

	// Answer both questions correctly.
	for i := 0; i < 2; i++ {
		answer := map[string]any{
			"type":    "answer",
			"payload": map[string]any{"optionIndex": 1},
		}
		if err := conn.WriteJSON(answer); err != nil {
			t.Fatalf("write answer %d: %v", i, err)
		}
	}

	// Collect until settlement; inline results and stream events may interleave.
	seen := map[string]int{}
	var settlement map[string]any
	for settlement == nil {
		typ, payload := readNext(conn, t, "")
		seen[typ]++
		if typ == "settlement" {
			settlement = payload
		}
		if typ == "error" {
			t.Fatalf("unexpected error message: %v", payload)
		}
	}

	if seen["answerResult"] != 2 {
		t.Fatalf("expected 2 answerResult messages, got %d", seen["answerResult"])
	}
	if seen["completed"] != 1 {
		t.Fatalf("expected completed message, got %d", seen["completed"])
	}
	if complete, _ := settlement["complete"].(bool); !complete {
		t.Fatalf("expected complete settlement, got %v", settlement)
	}
	if points, _ := settlement["awardedPoints"].(float64); points != 30 {
		t.Fatalf("expected 30 awarded points, got %v", settlement["awardedPoints"])
	}
	if got := ledger.Balance("u1"); got != 30 {
		t.Fatalf("ledger balance = %d, want 30", got)
	}
}

func TestWebSocketTimeoutStreamsAnswerResult(t *testing.T) {
	content := memory.NewCategoryRepository(memory.NewStaticCategoryLoader(map[string]domain.Category{
		"general": {
			ID: "general",
			Questions: []domain.Question{
				{
					ID:            "q1",
					Prompt:        "What is 2 + 2?",
					Options:       []string{"3", "4"},
					CorrectOption: 1,
					Points:        10,
				},
			},
		},
	}), time.Minute)
	rules := app.Rules{
		QuestionTime: 2,
		TickInterval: 10 * time.Millisecond,
		HintBudget:   2,
		AdvanceDelay: 0,
	}
	service := app.NewTriviaService(memory.NewSessionStore(), content, memory.NewLedger(), memory.NewAnswerJournal(), rules)
	wsHandler := NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws?categoryId=general&userId=u1"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Never answer; the countdown must deliver the expiry as an answerResult.
	var timedOutResult map[string]any
	var settlement map[string]any
	for settlement == nil {
		typ, payload := readNext(conn, t, "")
		switch typ {
		case "answerResult":
			timedOutResult = payload
		case "settlement":
			settlement = payload
		case "error":
			t.Fatalf("unexpected error message: %v", payload)
		}
	}

	if timedOutResult == nil {
		t.Fatalf("expected an answerResult for the expired question")
	}
	if timedOut, _ := timedOutResult["timedOut"].(bool); !timedOut {
		t.Fatalf("expected timedOut result, got %v", timedOutResult)
	}
	if awarded, _ := timedOutResult["awarded"].(float64); awarded != 0 {
		t.Fatalf("timeout must award zero, got %v", timedOutResult["awarded"])
	}
	// A timeout still counts as answered, so the session settles complete at zero.
	if complete, _ := settlement["complete"].(bool); !complete {
		t.Fatalf("expected complete settlement, got %v", settlement)
	}
	if points, _ := settlement["awardedPoints"].(float64); points != 0 {
		t.Fatalf("expected zero awarded points, got %v", settlement["awardedPoints"])
	}
}

func TestWebSocketRejectsMissingParams(t *testing.T) {
	service := app.NewTriviaService(
		memory.NewSessionStore(),
		memory.NewCategoryRepository(memory.NewStaticCategoryLoader(nil), time.Minute),
		memory.NewLedger(),
		nil,
		app.DefaultRules(),
	)
	wsHandler := NewWSHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/ws?categoryId=general", nil)
	rec := httptest.NewRecorder()
	wsHandler.ServeWS(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
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

func sampleCategories() map[string]domain.Category {
	return map[string]domain.Category{
		"general": {
			ID:   "general",
			Name: "General Knowledge",
			Questions: []domain.Question{
				{
					ID:            "q1",
					Prompt:        "What is 2 + 2?",
					Options:       []string{"3", "4", "5", "22"},
					CorrectOption: 1,
					Points:        10,
				},
				{
					ID:            "q2",
					Prompt:        "Which planet is known as the Red Planet?",
					Options:       []string{"Venus", "Mars", "Jupiter", "Saturn"},
					CorrectOption: 1,
					Points:        10,
				},
			},
		},
	}
}
