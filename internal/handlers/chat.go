package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/mlecomte/papote/internal/service"
	"github.com/mlecomte/papote/internal/ws"
)

type ChatHandler struct {
	Service *service.ChatService
	Hub     *ws.Hub
}

type CreateChatRequest struct {
	UserID       string `json:"userId"`
	Name         string `json:"name"`
	ContactEmail string `json:"contactEmail"`
	// Identifier is the legacy alias some clients send instead of
	// contactEmail.
	Identifier string `json:"identifier"`
}

type CreateGroupRequest struct {
	UserID  string    `json:"userId"`
	Name    string    `json:"name"`
	Members *[]string `json:"members"`
	EndDate string    `json:"endDate"`
}

type AddContactRequest struct {
	AdderEmail   string `json:"adderEmail"`
	ContactEmail string `json:"contactEmail"`
	ContactName  string `json:"contactName"`
}

func (h *ChatHandler) CreateChat(w http.ResponseWriter, r *http.Request) {
	var req CreateChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	counterpart := req.ContactEmail
	if counterpart == "" {
		counterpart = req.Identifier
	}
	if req.UserID == "" || req.Name == "" || counterpart == "" {
		respondError(w, http.StatusBadRequest, "userId, name and contactEmail are required")
		return
	}

	chat, err := h.Service.CreateChat(req.UserID, req.Name, counterpart)
	if err != nil {
		serviceError(w, err)
		return
	}

	if h.Hub != nil {
		h.Hub.Notify([]string{counterpart}, map[string]string{"type": "new_chat", "chatId": chat.ID})
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Chat created successfully!",
		"newChat": chat,
	})
}

func (h *ChatHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// Also covers a non-list members field.
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UserID == "" || req.Name == "" || req.Members == nil || len(*req.Members) == 0 || req.EndDate == "" {
		respondError(w, http.StatusBadRequest, "userId, name, members (list) and endDate are required")
		return
	}

	group, err := h.Service.CreateGroup(req.UserID, req.Name, *req.Members, req.EndDate)
	if err != nil {
		serviceError(w, err)
		return
	}

	if h.Hub != nil {
		h.Hub.Notify(*req.Members, map[string]string{"type": "new_chat", "chatId": group.ID})
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "Group created successfully!",
		"newGroup": group,
	})
}

func (h *ChatHandler) AddContact(w http.ResponseWriter, r *http.Request) {
	var req AddContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.AdderEmail == "" || req.ContactEmail == "" || req.ContactName == "" {
		respondError(w, http.StatusBadRequest, "adderEmail, contactEmail and contactName are required")
		return
	}

	chat, err := h.Service.AddContactByEmail(req.AdderEmail, req.ContactEmail, req.ContactName)
	if err != nil {
		serviceError(w, err)
		return
	}

	if h.Hub != nil {
		h.Hub.Notify([]string{req.ContactEmail}, map[string]string{"type": "new_chat", "chatId": chat.ID})
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Contact added successfully!",
		"newChat": chat,
	})
}
