// Package oidcidentity implements identity.Facade over a standards
// compliant OIDC issuer. The router never talks to it directly; the host
// application feeds freshly minted ID tokens in via SetIDToken and the
// facade turns them into auth state transitions.
package oidcidentity

import (
	"context"
	"net/http"
	"net/url"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-nav-router/identity"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

type Config struct {
	// Issuer is the OIDC issuer URL used for discovery.
	Issuer string

	// ClientID this app is registered under.
	ClientID string

	// TokenSource, when set, supplies access tokens for backend calls via
	// AccessToken.
	TokenSource oauth2.TokenSource

	// SkipVerification disables signature verification and parses ID token
	// claims offline. Development only.
	SkipVerification bool

	// EndSessionEndpoint overrides the end_session_endpoint advertised by
	// discovery. Leave empty to use the discovered value.
	EndSessionEndpoint string

	// HTTPClient is used for the end-session call. Defaults to
	// http.DefaultClient.
	HTTPClient *http.Client
}

type Provider struct {
	cfg        Config
	verifier   *oidc.IDTokenVerifier
	endSession string
	log        zerolog.Logger

	lock        sync.Mutex
	user        *identity.UserHandle
	rawIDToken  string
	subscribers map[string]identity.Callback
}

var _ identity.Facade = (*Provider)(nil)

func New(ctx context.Context, cfg Config, log zerolog.Logger) (*Provider, error) {
	p := &Provider{
		cfg:         cfg,
		endSession:  cfg.EndSessionEndpoint,
		log:         log,
		subscribers: make(map[string]identity.Callback),
	}
	if cfg.SkipVerification {
		log.Warn().Msg("OIDC signature verification disabled")
		return p, nil
	}
	if cfg.Issuer == "" || cfg.ClientID == "" {
		return nil, errors.New("[oidcidentity.New] issuer and client ID are required")
	}
	oidcProvider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, errors.Wrap(err, "[oidcidentity.New] provider discovery")
	}
	p.verifier = oidcProvider.Verifier(&oidc.Config{ClientID: cfg.ClientID})
	if p.endSession == "" {
		var disco struct {
			EndSessionEndpoint string `json:"end_session_endpoint"`
		}
		if err := oidcProvider.Claims(&disco); err == nil {
			p.endSession = disco.EndSessionEndpoint
		}
	}
	return p, nil
}

// SetIDToken ingests a raw ID token, verifies it, and emits a signed-in
// transition for its subject.
func (p *Provider) SetIDToken(ctx context.Context, rawToken string) error {
	user, err := p.userFromToken(ctx, rawToken)
	if err != nil {
		return errors.Wrap(err, "[Provider.SetIDToken] token rejected")
	}
	p.lock.Lock()
	p.rawIDToken = rawToken
	p.lock.Unlock()
	p.setUser(user)
	return nil
}

func (p *Provider) userFromToken(ctx context.Context, rawToken string) (*identity.UserHandle, error) {
	if p.verifier != nil {
		idToken, err := p.verifier.Verify(ctx, rawToken)
		if err != nil {
			return nil, err
		}
		var claims struct {
			Email string `json:"email"`
		}
		if err := idToken.Claims(&claims); err != nil {
			return nil, err
		}
		return &identity.UserHandle{ID: idToken.Subject, Email: claims.Email}, nil
	}

	// Dev mode: claims only, no signature check.
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(rawToken, &claims); err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return &identity.UserHandle{ID: claims.Subject}, nil
}

func (p *Provider) CurrentUser() *identity.UserHandle {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.user
}

func (p *Provider) OnAuthStateChange(cb identity.Callback) func() {
	p.lock.Lock()
	id := uuid.New().String()
	p.subscribers[id] = cb
	current := p.user
	p.lock.Unlock()

	cb(current)

	return func() {
		p.lock.Lock()
		defer p.lock.Unlock()
		delete(p.subscribers, id)
	}
}

// SignOut drops the local identity, emits a signed-out transition, then
// notifies the issuer's end-session endpoint when one is known. The
// provider call is best effort: local cleanup has already happened by the
// time its error is returned, and callers are expected to proceed
// regardless.
func (p *Provider) SignOut(ctx context.Context) error {
	p.lock.Lock()
	rawToken := p.rawIDToken
	p.rawIDToken = ""
	p.lock.Unlock()
	p.setUser(nil)

	if p.endSession == "" {
		return nil
	}
	if err := p.endProviderSession(ctx, rawToken); err != nil {
		return errors.Wrap(err, "[Provider.SignOut] end session")
	}
	return nil
}

func (p *Provider) endProviderSession(ctx context.Context, rawToken string) error {
	endpoint, err := url.Parse(p.endSession)
	if err != nil {
		return err
	}
	query := endpoint.Query()
	if rawToken != "" {
		query.Set("id_token_hint", rawToken)
	}
	if p.cfg.ClientID != "" {
		query.Set("client_id", p.cfg.ClientID)
	}
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return err
	}
	client := p.cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return errors.Errorf("end session endpoint returned %d", resp.StatusCode)
	}
	return nil
}

// AccessToken mints an access token for backend calls from the configured
// token source.
func (p *Provider) AccessToken(ctx context.Context) (string, error) {
	if p.cfg.TokenSource == nil {
		return "", errors.New("[Provider.AccessToken] no token source configured")
	}
	token, err := p.cfg.TokenSource.Token()
	if err != nil {
		return "", errors.Wrap(err, "[Provider.AccessToken] token source")
	}
	return token.AccessToken, nil
}

func (p *Provider) setUser(user *identity.UserHandle) {
	p.lock.Lock()
	if sameUser(p.user, user) {
		p.lock.Unlock()
		return
	}
	p.user = user
	subscribers := make([]identity.Callback, 0, len(p.subscribers))
	for _, cb := range p.subscribers {
		subscribers = append(subscribers, cb)
	}
	p.lock.Unlock()

	for _, cb := range subscribers {
		cb(user)
	}
}

func sameUser(a, b *identity.UserHandle) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID
}
