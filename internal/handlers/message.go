package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/mlecomte/papote/internal/auth"
	"github.com/mlecomte/papote/internal/service"
	"github.com/mlecomte/papote/internal/ws"
)

type MessageHandler struct {
	Service *service.ChatService
	Hub     *ws.Hub
}

type SendMessageRequest struct {
	ConversationID string `json:"conversationId"`
	SenderEmail    string `json:"senderEmail"`
	Content        string `json:"content"`
	// Message is the legacy field: either a bare string or the old
	// client-built object carrying a text field.
	Message json.RawMessage `json:"message"`
}

func (h *MessageHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	content := req.Content
	if content == "" && len(req.Message) > 0 {
		var text string
		if err := json.Unmarshal(req.Message, &text); err == nil {
			content = text
		} else {
			var legacy struct {
				Text string `json:"text"`
			}
			if err := json.Unmarshal(req.Message, &legacy); err == nil {
				content = legacy.Text
			}
		}
	}
	if req.ConversationID == "" || content == "" {
		respondError(w, http.StatusBadRequest, "conversationId and content are required")
		return
	}

	sender := req.SenderEmail
	if sender == "" {
		if cookie, err := r.Cookie(auth.CookieName); err == nil {
			if email, err := auth.VerifyCookie(cookie.Value); err == nil {
				sender = email
			}
		}
	}

	msg, participants, err := h.Service.SendMessage(req.ConversationID, sender, content)
	if err != nil {
		serviceError(w, err)
		return
	}

	if h.Hub != nil {
		h.Hub.Notify(participants, map[string]interface{}{
			"type":           "new_message",
			"conversationId": req.ConversationID,
			"message":        msg,
		})
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":    "Message sent to all participants.",
		"newMessage": msg,
	})
}
