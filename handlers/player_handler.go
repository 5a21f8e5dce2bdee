package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/chess-swiss/services"
)

type PlayerHandler struct {
	playerService services.PlayerService
}

func NewPlayerHandler(playerService services.PlayerService) *PlayerHandler {
	return &PlayerHandler{playerService: playerService}
}

func (h *PlayerHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input services.PlayerInput

	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.playerService.Register(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayerHandler) List(w http.ResponseWriter, r *http.Request) {
	players, err := h.playerService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"players": players}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayerHandler) GetByNationalID(w http.ResponseWriter, r *http.Request) {
	nationalID := chi.URLParam(r, "nationalID")

	player, err := h.playerService.GetByNationalID(r.Context(), nationalID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayerHandler) Update(w http.ResponseWriter, r *http.Request) {
	nationalID := chi.URLParam(r, "nationalID")

	var input services.PlayerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.playerService.Update(r.Context(), nationalID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	nationalID := chi.URLParam(r, "nationalID")

	if err := h.playerService.Remove(r.Context(), nationalID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
