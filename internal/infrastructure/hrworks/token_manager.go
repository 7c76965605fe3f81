package hrworks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/badgeclock/rfid-terminal/internal/core/domain"
	"github.com/badgeclock/rfid-terminal/pkg/metrics"
)

const (
	// DefaultTokenValidity is one minute short of the 15 minute lifetime the
	// platform documents.
	DefaultTokenValidity = 14 * time.Minute
	// DefaultRequestTimeout bounds every call to the platform.
	DefaultRequestTimeout = 15 * time.Second

	authPath = "/authentication"
)

type authRequest struct {
	AccessKey       string `json:"accessKey"`
	SecretAccessKey string `json:"secretAccessKey"`
}

type authResponse struct {
	Token string `json:"token"`
}

// TokenManager owns the HR platform bearer token. It authenticates lazily,
// never hands out an expired token and keeps at most one login in flight.
type TokenManager struct {
	transport *Transport
	accessKey string
	secretKey string
	validity  time.Duration
	timeout   time.Duration
	now       func() time.Time
	log       zerolog.Logger

	mu    sync.Mutex
	token *domain.AuthToken
	group singleflight.Group
}

// NewTokenManager returns a manager in the NoToken state.
func NewTokenManager(t *Transport, accessKey, secretKey string, validity, timeout time.Duration, log zerolog.Logger) *TokenManager {
	if validity <= 0 {
		validity = DefaultTokenValidity
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &TokenManager{
		transport: t,
		accessKey: accessKey,
		secretKey: secretKey,
		validity:  validity,
		timeout:   timeout,
		now:       time.Now,
		log:       log,
	}
}

// Token returns a valid bearer token, logging in first when none is held or
// the held one expired. Concurrent callers share one login and its outcome.
func (m *TokenManager) Token(ctx context.Context) (string, error) {
	if v, ok := m.cached(); ok {
		return v, nil
	}

	ch := m.group.DoChan("auth", func() (any, error) {
		return m.authenticate(ctx)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(*domain.AuthToken).Value, nil
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %w", domain.ErrAuthenticationFailed, ctx.Err())
	}
}

// State reports the token lifecycle state at the current time.
func (m *TokenManager) State() domain.TokenState {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case m.token == nil:
		return domain.TokenNone
	case m.token.Expired(m.now()):
		return domain.TokenExpired
	default:
		return domain.TokenValid
	}
}

// Invalidate drops the held token, e.g. after the platform answered 401.
func (m *TokenManager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = nil
}

func (m *TokenManager) cached() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token != nil && !m.token.Expired(m.now()) {
		return m.token.Value, true
	}
	return "", false
}

func (m *TokenManager) authenticate(ctx context.Context) (*domain.AuthToken, error) {
	m.mu.Lock()
	// A login that finished just before this flight started already did the work.
	if m.token != nil && !m.token.Expired(m.now()) {
		tok := m.token
		m.mu.Unlock()
		return tok, nil
	}
	m.token = nil
	m.mu.Unlock()

	// The login is shared by every waiter, so one caller giving up must not
	// cancel it for the others.
	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.timeout)
	defer cancel()

	tok, err := m.login(actx)
	if err != nil {
		metrics.TokenRenewalsTotal.WithLabelValues("error").Inc()
		m.log.Error().Err(err).Msg("hr platform authentication failed")
		return nil, err
	}

	m.mu.Lock()
	m.token = tok
	m.mu.Unlock()

	metrics.TokenRenewalsTotal.WithLabelValues("ok").Inc()
	m.log.Info().Time("expires_at", tok.ExpiresAt).Msg("hr platform token renewed")
	return tok, nil
}

func (m *TokenManager) login(ctx context.Context) (*domain.AuthToken, error) {
	resp, err := m.transport.Do(ctx, http.MethodPost, authPath, nil, authRequest{
		AccessKey:       m.accessKey,
		SecretAccessKey: m.secretKey,
	}, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrAuthenticationFailed, err)
	}
	if !resp.Success() {
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrAuthenticationFailed, resp.StatusCode, truncate(resp.Body))
	}

	var body authResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrAuthenticationFailed, err)
	}
	if body.Token == "" {
		return nil, fmt.Errorf("%w: empty token in response", domain.ErrAuthenticationFailed)
	}

	issued := m.now()
	expires := issued.Add(m.validity)
	if exp, ok := jwtExpiry(body.Token); ok && exp.After(issued) && exp.Before(expires) {
		expires = exp
	}
	return &domain.AuthToken{Value: body.Token, IssuedAt: issued, ExpiresAt: expires}, nil
}

// jwtExpiry reads the exp claim without verifying the signature; the
// platform is trusted and only the lifetime is of interest. Opaque tokens
// report false.
func jwtExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func truncate(b []byte) string {
	const limit = 512
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}

// wrapAuth makes sure a token failure matches domain.ErrAuthenticationFailed.
func wrapAuth(err error) error {
	if errors.Is(err, domain.ErrAuthenticationFailed) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrAuthenticationFailed, err)
}
