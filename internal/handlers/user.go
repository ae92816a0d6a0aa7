package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mlecomte/papote/internal/service"
)

type UserHandler struct {
	Service *service.ChatService
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]

	user, err := h.Service.GetUser(email)
	if err != nil {
		serviceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, user.Sanitized())
}

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]

	var patch service.UserPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := h.Service.UpdateUser(email, patch); err != nil {
		serviceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "User data updated successfully!"})
}
