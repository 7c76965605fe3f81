package hrworks

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/badgeclock/rfid-terminal/internal/core/domain"
	"github.com/badgeclock/rfid-terminal/pkg/metrics"
)

// tokenSource is the part of TokenManager the gateway needs.
type tokenSource interface {
	Token(ctx context.Context) (string, error)
	Invalidate()
}

// Gateway books time-tracking actions on the HR platform, one call per
// invocation and without retries.
type Gateway struct {
	transport *Transport
	tokens    tokenSource
	actions   ActionTable
	timeout   time.Duration
	now       func() time.Time
	log       zerolog.Logger
}

// NewGateway returns a gateway using actions; nil selects DefaultActionTable.
func NewGateway(t *Transport, tokens tokenSource, actions ActionTable, timeout time.Duration, log zerolog.Logger) *Gateway {
	if actions == nil {
		actions = DefaultActionTable()
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &Gateway{
		transport: t,
		tokens:    tokens,
		actions:   actions,
		timeout:   timeout,
		now:       time.Now,
		log:       log,
	}
}

// Actions lists the bookable actions.
func (g *Gateway) Actions() []domain.BookingAction {
	return g.actions.Actions()
}

// Book submits req. On a rejected or failed call the returned error is a
// *domain.BookingError and the result still carries timing and status.
func (g *Gateway) Book(ctx context.Context, req domain.BookingRequest) (*domain.BookingResult, error) {
	if strings.TrimSpace(req.PersonnelNumber) == "" {
		return nil, domain.ErrMissingPersonnel
	}
	spec, ok := g.actions[req.Action]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidAction, req.Action)
	}

	token, err := g.tokens.Token(ctx)
	if err != nil {
		return nil, wrapAuth(err)
	}

	stamp := ""
	if !req.OccursAt.IsZero() {
		stamp = req.OccursAt.UTC().Format(time.RFC3339)
	}
	r := spec.render(req.PersonnelNumber, stamp)

	var body any
	if r.body != nil {
		body = r.body
	}

	result := &domain.BookingResult{Request: req, Attempted: g.now()}

	// The platform is the system of record; once sent, the call runs to its
	// own timeout even if the caller goes away.
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.timeout)
	defer cancel()

	resp, err := g.transport.Do(cctx, r.method, r.path, r.query, body, token)
	result.Completed = g.now()
	metrics.BookingDuration.WithLabelValues(string(req.Action)).Observe(result.Completed.Sub(result.Attempted).Seconds())

	log := g.log.With().
		Str("personnel_number", req.PersonnelNumber).
		Str("action", string(req.Action)).
		Logger()

	if err != nil {
		log.Error().Err(err).Msg("booking call failed")
		return result, &domain.BookingError{Err: err}
	}

	result.StatusCode = resp.StatusCode
	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		log.Info().Int("status", resp.StatusCode).Msg("booking accepted")
		return result, nil
	case http.StatusUnauthorized:
		g.tokens.Invalidate()
	}

	bookingErr := &domain.BookingError{
		StatusCode: resp.StatusCode,
		Body:       truncate(resp.Body),
		Err:        fmt.Errorf("unexpected status %d", resp.StatusCode),
	}
	log.Warn().Int("status", resp.StatusCode).Str("body", bookingErr.Body).Msg("booking rejected")
	return result, bookingErr
}
