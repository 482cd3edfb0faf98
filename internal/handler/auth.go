package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MKhiriev/go-wish-keeper/internal/app"
	"github.com/MKhiriev/go-wish-keeper/internal/logger"
	"github.com/MKhiriev/go-wish-keeper/internal/service"
	"github.com/MKhiriev/go-wish-keeper/internal/utils"
	"github.com/MKhiriev/go-wish-keeper/models"
)

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var user models.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		http.Error(w, app.MsgInvalidJSON, http.StatusBadRequest)
		return
	}

	pair, err := h.services.AuthService.RegisterUser(ctx, user)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWrongCredentials):
			log.Err(err).Msg("invalid registration data provided")
			http.Error(w, app.MsgInvalidRegistrationData, http.StatusBadRequest)
		case errors.Is(err, service.ErrUserAlreadyExists):
			log.Err(err).Str("principal", user.Principal).Msg("principal already taken")
			http.Error(w, app.MsgPrincipalAlreadyTaken, http.StatusConflict)
		default:
			log.Err(err).Msg("unexpected error occurred during user registration")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}

	utils.WriteJSON(w, pair, http.StatusOK)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var user models.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		http.Error(w, app.MsgInvalidJSON, http.StatusBadRequest)
		return
	}

	pair, err := h.services.AuthService.Login(ctx, user)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWrongCredentials):
			log.Err(err).Str("principal", user.Principal).Msg("wrong principal/password")
			http.Error(w, app.MsgWrongPrincipalPassword, http.StatusUnauthorized)
		default:
			log.Err(err).Msg("unexpected error occurred during user login")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}

	log.Debug().Str("principal", user.Principal).Msg("user successfully logged in")
	utils.WriteJSON(w, pair, http.StatusOK)
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var pair models.TokenPair
	if err := json.NewDecoder(r.Body).Decode(&pair); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		http.Error(w, app.MsgInvalidJSON, http.StatusBadRequest)
		return
	}

	fresh, err := h.services.AuthService.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidToken):
			log.Err(err).Msg("refresh token rejected")
			http.Error(w, app.MsgRefreshTokenRejected, http.StatusUnauthorized)
		default:
			log.Err(err).Msg("unexpected error occurred during token refresh")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}

	utils.WriteJSON(w, fresh, http.StatusOK)
}
