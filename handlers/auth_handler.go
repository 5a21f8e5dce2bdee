package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/chess-swiss/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterInput

	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if input.Email == "" || input.Password == "" || input.FirstName == "" {
		badRequestResponse(w, r, errors.New("first name, email, and password are required"))
		return
	}

	user, token, err := h.authService.Register(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"user":  user,
		"token": token,
	}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input services.LoginInput

	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if input.Email == "" || input.Password == "" {
		badRequestResponse(w, r, errors.New("email and password are required"))
		return
	}

	user, token, err := h.authService.Login(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"user":  user,
		"token": token,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
