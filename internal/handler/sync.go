package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-wish-keeper/internal/app"
	"github.com/MKhiriev/go-wish-keeper/internal/logger"
	"github.com/MKhiriev/go-wish-keeper/internal/utils"
	"github.com/MKhiriev/go-wish-keeper/models"
)

// collectionFromRequest resolves the {collection} URL parameter against the
// closed set of synchronized collections.
func collectionFromRequest(r *http.Request) (models.DocType, bool) {
	t := models.DocType(chi.URLParam(r, "collection"))
	if _, ok := models.CollectionByType(t); !ok {
		return "", false
	}
	return t, true
}

func (h *Handler) pull(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	principal, found := utils.GetPrincipalFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.pull").Msg("no principal in request context")
		http.Error(w, app.MsgNoPrincipalInContext, http.StatusUnauthorized)
		return
	}

	t, ok := collectionFromRequest(r)
	if !ok {
		log.Error().Str("collection", chi.URLParam(r, "collection")).Msg("unknown collection requested")
		http.Error(w, app.MsgUnknownCollection, http.StatusNotFound)
		return
	}

	docs, err := h.services.SyncAuthorityService.Pull(ctx, principal, t)
	if err != nil {
		log.Err(err).Str("collection", string(t)).Msg("error pulling documents")
		http.Error(w, app.MsgPullFailed, statusFromError(err))
		return
	}

	response := models.PullResponse{
		Documents: docs,
		Length:    len(docs),
	}

	utils.WriteJSON(w, response, http.StatusOK)
}

func (h *Handler) push(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	principal, found := utils.GetPrincipalFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.push").Msg("no principal in request context")
		http.Error(w, app.MsgNoPrincipalInContext, http.StatusUnauthorized)
		return
	}

	t, ok := collectionFromRequest(r)
	if !ok {
		log.Error().Str("collection", chi.URLParam(r, "collection")).Msg("unknown collection requested")
		http.Error(w, app.MsgUnknownCollection, http.StatusNotFound)
		return
	}

	var pushRequest models.PushRequest
	if err := json.NewDecoder(r.Body).Decode(&pushRequest); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		http.Error(w, app.MsgInvalidJSON, http.StatusBadRequest)
		return
	}

	conflicts, err := h.services.SyncAuthorityService.Push(ctx, principal, t, pushRequest.Documents)
	if err != nil {
		log.Err(err).Str("collection", string(t)).Msg("error applying push batch")
		http.Error(w, app.MsgPushFailed, statusFromError(err))
		return
	}

	utils.WriteJSON(w, models.PushResponse{Conflicts: conflicts}, http.StatusOK)
}
