package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/chess-swiss/models"
	"github.com/Dosada05/chess-swiss/services"
)

type RoundHandler struct {
	roundService services.RoundService
}

func NewRoundHandler(roundService services.RoundService) *RoundHandler {
	return &RoundHandler{roundService: roundService}
}

func (h *RoundHandler) Open(w http.ResponseWriter, r *http.Request) {
	id, err := tournamentIDParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	// Тело опционально: seed делает жеребьёвку первого тура
	// воспроизводимой.
	var input struct {
		Seed *int64 `json:"seed"`
	}
	if r.ContentLength > 0 {
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	round, err := h.roundService.OpenNextRound(r.Context(), id, input.Seed)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"round": round}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RoundHandler) List(w http.ResponseWriter, r *http.Request) {
	id, err := tournamentIDParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rounds, err := h.roundService.ListRounds(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"rounds": rounds}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RoundHandler) Current(w http.ResponseWriter, r *http.Request) {
	id, err := tournamentIDParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	round, quality, err := h.roundService.CurrentRound(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"round":   round,
		"quality": quality,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RoundHandler) SubmitResult(w http.ResponseWriter, r *http.Request) {
	id, err := tournamentIDParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	matchUID := chi.URLParam(r, "matchUID")

	var input struct {
		Outcome models.Outcome `json:"outcome"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.roundService.SubmitResult(r.Context(), id, matchUID, input.Outcome)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// OverrideResult исправляет уже записанный результат матча открытого тура.
func (h *RoundHandler) OverrideResult(w http.ResponseWriter, r *http.Request) {
	id, err := tournamentIDParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	matchUID := chi.URLParam(r, "matchUID")

	var input struct {
		Outcome models.Outcome `json:"outcome"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.roundService.OverrideResult(r.Context(), id, matchUID, input.Outcome)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
