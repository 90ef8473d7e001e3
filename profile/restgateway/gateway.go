// Package restgateway implements profile.Gateway against the marketplace
// backend's REST API.
package restgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/jrsteele09/go-nav-router/profile"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/tidwall/sjson"
)

const defaultRequestTimeout = 10 * time.Second

// TokenProvider supplies the bearer token for each request. It is called
// per call so a refreshed token is picked up without rebuilding the gateway.
type TokenProvider func(ctx context.Context) (string, error)

type Gateway struct {
	baseURL    string
	httpClient *http.Client
	token      TokenProvider
	timeout    time.Duration
	log        zerolog.Logger
}

var _ profile.Gateway = (*Gateway)(nil)

type Option func(*Gateway)

// WithHTTPClient overrides the default http client (primarily for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) { g.httpClient = c }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) { g.timeout = d }
}

func New(baseURL string, token TokenProvider, log zerolog.Logger, options ...Option) (*Gateway, error) {
	if baseURL == "" {
		return nil, errors.New("[restgateway.New] baseURL is required")
	}
	if token == nil {
		return nil, errors.New("[restgateway.New] token provider is required")
	}
	g := &Gateway{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		token:      token,
		timeout:    defaultRequestTimeout,
		log:        log,
	}
	for _, opt := range options {
		opt(g)
	}
	return g, nil
}

// wireProfile carries the raw response body; the location field is kept
// opaque because the backend has shipped three historical shapes for it.
type wireProfile struct {
	UserID     string                    `json:"user_id"`
	Roles      []profile.Role            `json:"roles"`
	Location   json.RawMessage           `json:"location"`
	Onboarding *profile.OnboardingStatus `json:"onboarding_status"`
}

func (g *Gateway) FetchMyProfile(ctx context.Context) (*profile.Snapshot, error) {
	snapshot, err := g.do(ctx, http.MethodGet, "/v1/profiles/me", nil)
	if err != nil {
		return nil, errors.Wrap(err, "[Gateway.FetchMyProfile] request")
	}
	return snapshot, nil
}

func (g *Gateway) UpsertProfile(ctx context.Context, patch profile.Patch) (*profile.Snapshot, error) {
	body, err := encodePatch(patch)
	if err != nil {
		return nil, errors.Wrap(err, "[Gateway.UpsertProfile] encode patch")
	}
	snapshot, err := g.do(ctx, http.MethodPatch, "/v1/profiles/me", body)
	if err != nil {
		return nil, errors.Wrap(err, "[Gateway.UpsertProfile] request")
	}
	return snapshot, nil
}

// encodePatch builds the sparse PATCH body, setting only the fields the
// caller actually provided.
func encodePatch(patch profile.Patch) ([]byte, error) {
	body := "{}"
	var err error
	if patch.Roles != nil {
		if body, err = sjson.Set(body, "roles", patch.Roles); err != nil {
			return nil, err
		}
	}
	if patch.Location != nil {
		if body, err = sjson.Set(body, "location", patch.Location); err != nil {
			return nil, err
		}
	}
	if patch.Onboarding != nil {
		if body, err = sjson.Set(body, "onboarding_status", patch.Onboarding); err != nil {
			return nil, err
		}
	}
	return []byte(body), nil
}

func (g *Gateway) do(ctx context.Context, method, path string, body []byte) (*profile.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	token, err := g.token(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "token provider")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(profile.ErrUnavailable, err.Error())
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, profile.ErrUnauthorized
	case resp.StatusCode >= 500:
		return nil, errors.Wrapf(profile.ErrUnavailable, "status %d", resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, errors.Errorf("unexpected status %d", resp.StatusCode)
	}

	var wire wireProfile
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, errors.Wrap(err, "decode response")
	}
	return g.adapt(wire), nil
}

func (g *Gateway) adapt(wire wireProfile) *profile.Snapshot {
	snapshot := &profile.Snapshot{
		UserID:     wire.UserID,
		Roles:      wire.Roles,
		Onboarding: wire.Onboarding,
	}
	if len(wire.Location) > 0 {
		var raw interface{}
		if err := json.Unmarshal(wire.Location, &raw); err != nil {
			g.log.Warn().Err(err).Msg("profile location field is not valid JSON, dropping")
			return snapshot
		}
		if fix, ok := profile.NormalizeLocation(raw); ok {
			snapshot.Location = fix
		}
	}
	return snapshot
}
