package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"precisionquiz-backend/internal/middleware"
	"precisionquiz-backend/internal/models"
	"precisionquiz-backend/internal/repository"
)

func TestHub_RejectsMissingOrBadToken(t *testing.T) {
	hub := NewHub(nil, middleware.NewSessionAuth("secret", time.Hour))

	for _, target := range []string{"/ws", "/ws?token=bogus"} {
		rec := httptest.NewRecorder()
		hub.HandleWebSocket(rec, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", target, rec.Code)
		}
	}
}

func TestHub_ForwardsPipelineStatus(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	auth := middleware.NewSessionAuth("secret", time.Hour)
	hub := NewHub(rdb, auth)
	defer hub.Close()

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	defer srv.Close()

	sessionID := uuid.New()
	token, _, _ := auth.GenerateSessionToken(sessionID)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	channel := repository.StatusChannel(sessionID)
	deadline := time.Now().Add(5 * time.Second)
	for mr.PubSubNumSub(channel)[channel] == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("hub never subscribed to %s", channel)
		}
		time.Sleep(10 * time.Millisecond)
	}

	repo := repository.NewSessionRepo(rdb, time.Hour)
	update := models.StatusUpdate{SessionID: sessionID, Status: models.PipelineExtracting, Step: 1, StepName: "Extracting text"}
	if err := repo.PublishStatus(context.Background(), update); err != nil {
		t.Fatalf("publish: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var msg struct {
		Type    string              `json:"type"`
		Payload models.StatusUpdate `json:"payload"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Type != "pipeline_status" || msg.Payload.Status != models.PipelineExtracting || msg.Payload.SessionID != sessionID {
		t.Fatalf("unexpected message %+v", msg)
	}
}
