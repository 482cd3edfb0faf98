package handler

import (
	"net/http"

	"github.com/MKhiriev/go-wish-keeper/internal/utils"
)

type healthResponse struct {
	Status string `json:"status"`
}

// health is the unauthenticated liveness probe used by the client's
// connectivity worker.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, healthResponse{Status: "ok"}, http.StatusOK)
}
