package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/MKhiriev/go-wish-keeper/models"
	"github.com/go-resty/resty/v2"
)

// HTTPClientConfig carries the settings needed to construct the HTTP
// implementation of [ServerAdapter].
type HTTPClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

type httpServerAdapter struct {
	client *resty.Client

	mu     sync.RWMutex
	tokens models.TokenPair
}

// NewHTTPServerAdapter constructs the resty-backed [ServerAdapter]. Every
// request attempt is bounded by cfg.Timeout independently of the caller's
// context deadline.
func NewHTTPServerAdapter(cfg HTTPClientConfig) ServerAdapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout)

	return &httpServerAdapter{client: cli}
}

func (h *httpServerAdapter) setTokens(pair models.TokenPair) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.tokens = pair
}

func (h *httpServerAdapter) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.tokens.AccessToken
}

func (h *httpServerAdapter) refreshToken() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.tokens.RefreshToken
}

func (h *httpServerAdapter) Register(ctx context.Context, user models.User) (models.TokenPair, error) {
	return h.authenticate(ctx, "/api/auth/register", user)
}

func (h *httpServerAdapter) Login(ctx context.Context, user models.User) (models.TokenPair, error) {
	return h.authenticate(ctx, "/api/auth/login", user)
}

func (h *httpServerAdapter) authenticate(ctx context.Context, path string, user models.User) (models.TokenPair, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(user).
		Post(path)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("auth request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.TokenPair{}, err
	}

	var pair models.TokenPair
	if err = json.Unmarshal(resp.Body(), &pair); err != nil {
		return models.TokenPair{}, fmt.Errorf("decode auth response: %w", err)
	}

	h.setTokens(pair)
	return pair, nil
}

// Refresh exchanges the stored refresh token for a new pair. A rejected
// refresh token surfaces as ErrAuthExpired rather than ErrUnauthorized so the
// caller does not attempt a second refresh with the same dead token.
func (h *httpServerAdapter) Refresh(ctx context.Context) error {
	refresh := h.refreshToken()
	if refresh == "" {
		return fmt.Errorf("no refresh token stored: %w", ErrAuthExpired)
	}

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(models.TokenPair{RefreshToken: refresh}).
		Post("/api/auth/refresh")
	if err != nil {
		return fmt.Errorf("refresh request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return fmt.Errorf("refresh token rejected: %w", ErrAuthExpired)
		}
		return err
	}

	var pair models.TokenPair
	if err = json.Unmarshal(resp.Body(), &pair); err != nil {
		return fmt.Errorf("decode refresh response: %w", err)
	}

	h.setTokens(pair)
	return nil
}

func (h *httpServerAdapter) Ping(ctx context.Context) error {
	resp, err := h.client.R().SetContext(ctx).Get("/api/health")
	if err != nil {
		return fmt.Errorf("ping request: %w", err)
	}

	return mapHTTPError(resp)
}

func (h *httpServerAdapter) Pull(ctx context.Context, t models.DocType) ([]models.Document, error) {
	resp, err := h.doAuthed(ctx, func(req *resty.Request) (*resty.Response, error) {
		return req.Get("/api/sync/pull/" + string(t))
	})
	if err != nil {
		return nil, err
	}

	var pr models.PullResponse
	if err = json.Unmarshal(resp.Body(), &pr); err != nil {
		return nil, fmt.Errorf("decode pull response: %w", err)
	}

	return pr.Documents, nil
}

func (h *httpServerAdapter) Push(ctx context.Context, t models.DocType, docs []models.Document) ([]models.PushConflict, error) {
	body := models.PushRequest{
		Documents: docs,
		Length:    len(docs),
	}

	resp, err := h.doAuthed(ctx, func(req *resty.Request) (*resty.Response, error) {
		return req.
			SetHeader("Content-Type", "application/json").
			SetBody(body).
			Post("/api/sync/push/" + string(t))
	})
	if err != nil {
		return nil, err
	}

	var pr models.PushResponse
	if err = json.Unmarshal(resp.Body(), &pr); err != nil {
		return nil, fmt.Errorf("decode push response: %w", err)
	}

	return pr.Conflicts, nil
}

// doAuthed runs one authenticated request. On a 401 it refreshes the token
// pair exactly once and replays the request; a second 401 means the session
// is truly dead and surfaces as ErrAuthExpired. Transport failures and other
// statuses pass through unchanged.
func (h *httpServerAdapter) doAuthed(ctx context.Context, send func(*resty.Request) (*resty.Response, error)) (*resty.Response, error) {
	resp, err := send(h.authedRequest(ctx))
	if err != nil {
		return nil, fmt.Errorf("sync request: %w", err)
	}

	mapped := mapHTTPError(resp)
	if mapped == nil {
		return resp, nil
	}
	if !errors.Is(mapped, ErrUnauthorized) {
		return nil, mapped
	}

	if err = h.Refresh(ctx); err != nil {
		return nil, err
	}

	resp, err = send(h.authedRequest(ctx))
	if err != nil {
		return nil, fmt.Errorf("sync request retry: %w", err)
	}

	mapped = mapHTTPError(resp)
	if mapped == nil {
		return resp, nil
	}
	if errors.Is(mapped, ErrUnauthorized) {
		return nil, fmt.Errorf("still unauthorized after refresh: %w", ErrAuthExpired)
	}

	return nil, mapped
}

func (h *httpServerAdapter) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if token := h.Token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req
}
