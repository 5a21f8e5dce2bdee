package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/chess-swiss/middleware"
	"github.com/Dosada05/chess-swiss/models"
	"github.com/Dosada05/chess-swiss/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
}

func NewTournamentHandler(tournamentService services.TournamentService) *TournamentHandler {
	return &TournamentHandler{tournamentService: tournamentService}
}

func tournamentIDParam(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		return 0, errors.New("invalid tournament id")
	}
	return id, nil
}

func (h *TournamentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CreateTournamentInput

	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if organizerID, err := middleware.GetUserIDFromContext(r.Context()); err == nil {
		slog.Info("tournament created", "tournament_id", tournament.ID, "organizer_id", organizerID)
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	tournaments, err := h.tournamentService.List(r.Context(), limit, offset)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := tournamentIDParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	id, err := tournamentIDParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		PlayerIDs []string `json:"player_ids"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if len(input.PlayerIDs) == 0 {
		badRequestResponse(w, r, errors.New("player_ids must not be empty"))
		return
	}

	participants, err := h.tournamentService.Enroll(r.Context(), id, input.PlayerIDs)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"participants": participants}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) Start(w http.ResponseWriter, r *http.Request) {
	id, err := tournamentIDParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.Start(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) Standings(w http.ResponseWriter, r *http.Request) {
	id, err := tournamentIDParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	ranked, err := h.tournamentService.Standings(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": ranked}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	id, err := tournamentIDParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	snap, err := h.tournamentService.Snapshot(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, snap, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) Restore(w http.ResponseWriter, r *http.Request) {
	var snap models.TournamentSnapshot
	if err := readJSON(w, r, &snap); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.Restore(r.Context(), &snap)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if organizerID, err := middleware.GetUserIDFromContext(r.Context()); err == nil {
		slog.Info("tournament restored from snapshot", "tournament_id", tournament.ID, "organizer_id", organizerID)
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) Archive(w http.ResponseWriter, r *http.Request) {
	id, err := tournamentIDParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	location, err := h.tournamentService.ArchiveSnapshot(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"location": location}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
