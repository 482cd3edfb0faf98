// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/MKhiriev/go-wish-keeper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdapter(t *testing.T, serverURL string) *httpServerAdapter {
	t.Helper()

	a := NewHTTPServerAdapter(HTTPClientConfig{BaseURL: serverURL})
	return a.(*httpServerAdapter)
}

func writeTokenPair(t *testing.T, w http.ResponseWriter, pair models.TokenPair) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(pair))
}

// ── Register / Login ─────────────────────────────────────────────────────────

func TestLogin_Success(t *testing.T) {
	user := models.User{Principal: "alice", Password: "secret"}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/login", r.URL.Path)

		var got models.User
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, user.Principal, got.Principal)

		writeTokenPair(t, w, models.TokenPair{AccessToken: "access-1", RefreshToken: "refresh-1"})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	pair, err := a.Login(context.Background(), user)

	require.NoError(t, err)
	assert.Equal(t, "access-1", pair.AccessToken)
	assert.Equal(t, "access-1", a.Token())
}

func TestRegister_Conflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte("principal already exists"))
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	_, err := a.Register(context.Background(), models.User{Principal: "alice"})

	assert.ErrorIs(t, err, ErrConflict)
	assert.Empty(t, a.Token())
}

func TestLogin_BadCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	_, err := a.Login(context.Background(), models.User{Principal: "alice"})

	assert.ErrorIs(t, err, ErrUnauthorized)
}

// ── Refresh ──────────────────────────────────────────────────────────────────

func TestRefresh_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/refresh", r.URL.Path)

		var got models.TokenPair
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "refresh-1", got.RefreshToken)

		writeTokenPair(t, w, models.TokenPair{AccessToken: "access-2", RefreshToken: "refresh-2"})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	a.setTokens(models.TokenPair{AccessToken: "access-1", RefreshToken: "refresh-1"})

	require.NoError(t, a.Refresh(context.Background()))
	assert.Equal(t, "access-2", a.Token())
	assert.Equal(t, "refresh-2", a.refreshToken())
}

func TestRefresh_RejectedBecomesAuthExpired(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	a.setTokens(models.TokenPair{RefreshToken: "dead"})

	err := a.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrAuthExpired)
}

func TestRefresh_WithoutStoredToken(t *testing.T) {
	a := newTestAdapter(t, "http://localhost:0")

	err := a.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrAuthExpired)
}

// ── Pull / Push ──────────────────────────────────────────────────────────────

func TestPull_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/sync/pull/item", r.URL.Path)
		assert.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))

		resp := models.PullResponse{
			Documents: []models.Document{{ID: "item:one", Type: models.DocTypeItem}},
			Length:    1,
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	a.setTokens(models.TokenPair{AccessToken: "access-1"})

	docs, err := a.Pull(context.Background(), models.DocTypeItem)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "item:one", docs[0].ID)
}

func TestPush_ReturnsConflicts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/sync/push/list", r.URL.Path)

		var got models.PushRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, 1, got.Length)

		resp := models.PushResponse{Conflicts: []models.PushConflict{{
			DocumentID: "list:one",
			Error:      "newer version on server",
		}}}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	a.setTokens(models.TokenPair{AccessToken: "access-1"})

	conflicts, err := a.Push(context.Background(), models.DocTypeList, []models.Document{{ID: "list:one"}})
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "list:one", conflicts[0].DocumentID)
}

// ── Refresh-and-retry on 401 ─────────────────────────────────────────────────

func TestPull_RefreshesOnceAndRetries(t *testing.T) {
	var pulls atomic.Int64

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/refresh":
			writeTokenPair(t, w, models.TokenPair{AccessToken: "access-2", RefreshToken: "refresh-2"})
		case "/api/sync/pull/item":
			if pulls.Add(1) == 1 {
				assert.Equal(t, "Bearer stale", r.Header.Get("Authorization"))
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			assert.Equal(t, "Bearer access-2", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			require.NoError(t, json.NewEncoder(w).Encode(models.PullResponse{}))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	a.setTokens(models.TokenPair{AccessToken: "stale", RefreshToken: "refresh-1"})

	_, err := a.Pull(context.Background(), models.DocTypeItem)
	require.NoError(t, err)
	assert.Equal(t, int64(2), pulls.Load())
}

func TestPull_SecondUnauthorizedIsAuthExpired(t *testing.T) {
	var pulls atomic.Int64

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/refresh":
			writeTokenPair(t, w, models.TokenPair{AccessToken: "access-2", RefreshToken: "refresh-2"})
		case "/api/sync/pull/item":
			pulls.Add(1)
			w.WriteHeader(http.StatusUnauthorized)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	a.setTokens(models.TokenPair{AccessToken: "stale", RefreshToken: "refresh-1"})

	_, err := a.Pull(context.Background(), models.DocTypeItem)
	assert.ErrorIs(t, err, ErrAuthExpired)

	// Exactly one retry; no refresh loop.
	assert.Equal(t, int64(2), pulls.Load())
}

// ── Ping / error mapping ─────────────────────────────────────────────────────

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	assert.NoError(t, a.Ping(context.Background()))
}

func TestMapHTTPError(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusBadRequest, ErrBadRequest},
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusConflict, ErrConflict},
		{http.StatusInternalServerError, ErrInternalServerError},
		{http.StatusBadGateway, ErrBadGateway},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			a := newTestAdapter(t, srv.URL)
			err := a.Ping(context.Background())
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
