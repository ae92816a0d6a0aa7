package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mlecomte/papote/internal/auth"
)

func TestSendMessage(t *testing.T) {
	r := newTestRouter(t)
	registerUser(t, r, "a@x.com", "pw1")
	registerUser(t, r, "b@x.com", "pw2")

	rr := doJSON(t, r, "POST", "/chats", map[string]string{
		"userId": "a@x.com", "name": "Bob", "contactEmail": "b@x.com",
	})
	chatID := decodeBody(t, rr)["newChat"].(map[string]interface{})["id"].(string)

	rr = doJSON(t, r, "POST", "/messages", map[string]string{
		"conversationId": chatID,
		"senderEmail":    "a@x.com",
		"content":        "hi",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("handler returned wrong status code: got %v want %v",
			rr.Code, http.StatusCreated)
	}

	newMessage := decodeBody(t, rr)["newMessage"].(map[string]interface{})
	if newMessage["text"] != "hi" || newMessage["sender"] != "a@x.com" {
		t.Errorf("unexpected message: %v", newMessage)
	}
	if newMessage["id"] == "" || newMessage["timestamp"] == "" {
		t.Error("message must carry a fresh id and timestamp")
	}
}

func TestSendMessageLegacyField(t *testing.T) {
	r := newTestRouter(t)
	registerUser(t, r, "a@x.com", "pw1")
	registerUser(t, r, "b@x.com", "pw2")

	rr := doJSON(t, r, "POST", "/chats", map[string]string{
		"userId": "a@x.com", "name": "Bob", "contactEmail": "b@x.com",
	})
	chatID := decodeBody(t, rr)["newChat"].(map[string]interface{})["id"].(string)

	// Legacy clients post a message object instead of a content string.
	rr = doJSON(t, r, "POST", "/messages", map[string]interface{}{
		"conversationId": chatID,
		"senderEmail":    "a@x.com",
		"message":        map[string]string{"text": "salut"},
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("handler returned wrong status code: got %v want %v",
			rr.Code, http.StatusCreated)
	}
	if got := decodeBody(t, rr)["newMessage"].(map[string]interface{})["text"]; got != "salut" {
		t.Errorf("text = %v, want salut", got)
	}
}

func TestSendMessageImplicitSender(t *testing.T) {
	r := newTestRouter(t)
	registerUser(t, r, "a@x.com", "pw1")
	registerUser(t, r, "b@x.com", "pw2")

	rr := doJSON(t, r, "POST", "/chats", map[string]string{
		"userId": "a@x.com", "name": "Bob", "contactEmail": "b@x.com",
	})
	chatID := decodeBody(t, rr)["newChat"].(map[string]interface{})["id"].(string)

	// No senderEmail in the body: the signed session cookie supplies it.
	body, _ := json.Marshal(map[string]string{"conversationId": chatID, "content": "hi"})
	req := httptest.NewRequest("POST", "/messages", bytes.NewReader(body))
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: auth.SignCookie("a@x.com")})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("handler returned wrong status code: got %v want %v",
			rec.Code, http.StatusCreated)
	}
	var out map[string]interface{}
	json.NewDecoder(rec.Body).Decode(&out)
	if got := out["newMessage"].(map[string]interface{})["sender"]; got != "a@x.com" {
		t.Errorf("sender = %v, want a@x.com", got)
	}
}

func TestSendMessageErrors(t *testing.T) {
	r := newTestRouter(t)
	registerUser(t, r, "a@x.com", "pw1")

	tests := []struct {
		name string
		body map[string]string
		want int
	}{
		{"missing content", map[string]string{"conversationId": "chat_1"}, http.StatusBadRequest},
		{"missing conversation id", map[string]string{"content": "hi"}, http.StatusBadRequest},
		{"unknown conversation", map[string]string{"conversationId": "chat_missing", "content": "hi"}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doJSON(t, r, "POST", "/messages", tt.body)
			if rr.Code != tt.want {
				t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, tt.want)
			}
		})
	}
}
