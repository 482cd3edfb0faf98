package handler

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-wish-keeper/internal/service"
	"github.com/MKhiriev/go-wish-keeper/internal/store"
)

var errorStatusMap = map[error]int{
	service.ErrWrongCredentials:  http.StatusUnauthorized,
	service.ErrInvalidToken:      http.StatusUnauthorized,
	service.ErrUserAlreadyExists: http.StatusConflict,

	store.ErrNotFound:    http.StatusNotFound,
	store.ErrDuplicate:   http.StatusConflict,
	store.ErrRevConflict: http.StatusConflict,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}
