package hrworks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/badgeclock/rfid-terminal/internal/core/domain"
	"github.com/badgeclock/rfid-terminal/pkg/metrics"
)

// DefaultChipIDField is the custom person field holding the transponder id.
const DefaultChipIDField = "TransponderID"

type person struct {
	PersonnelNumber string `json:"personnelNumber"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
}

// PersonDirectory resolves chip identifiers through the platform's person
// search, filtering on a custom field.
type PersonDirectory struct {
	transport *Transport
	tokens    tokenSource
	field     string
	timeout   time.Duration
	now       func() time.Time
	log       zerolog.Logger
}

func NewPersonDirectory(t *Transport, tokens tokenSource, field string, timeout time.Duration, log zerolog.Logger) *PersonDirectory {
	if field == "" {
		field = DefaultChipIDField
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &PersonDirectory{
		transport: t,
		tokens:    tokens,
		field:     field,
		timeout:   timeout,
		now:       time.Now,
		log:       log,
	}
}

// Resolve returns the person holding chipID or domain.ErrChipNotFound.
func (d *PersonDirectory) Resolve(ctx context.Context, chipID string) (*domain.ChipMapping, error) {
	m, err := d.lookup(ctx, chipID)
	switch {
	case err == nil:
		metrics.ChipLookupsTotal.WithLabelValues("remote", "found").Inc()
	case errors.Is(err, domain.ErrChipNotFound):
		metrics.ChipLookupsTotal.WithLabelValues("remote", "not_found").Inc()
	default:
		metrics.ChipLookupsTotal.WithLabelValues("remote", "error").Inc()
	}
	return m, err
}

func (d *PersonDirectory) lookup(ctx context.Context, chipID string) (*domain.ChipMapping, error) {
	token, err := d.tokens.Token(ctx)
	if err != nil {
		return nil, wrapAuth(err)
	}

	cctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	resp, err := d.transport.Do(cctx, http.MethodGet, "/persons",
		map[string]string{"filter": d.field + "==" + chipID}, nil, token)
	if err != nil {
		return nil, fmt.Errorf("person lookup: %w", err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		d.tokens.Invalidate()
		return nil, fmt.Errorf("person lookup: token rejected: %w", domain.ErrAuthenticationFailed)
	}
	if !resp.Success() {
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrLookupFailed, resp.StatusCode, truncate(resp.Body))
	}

	var persons []person
	if err := json.Unmarshal(resp.Body, &persons); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrLookupFailed, err)
	}
	if len(persons) == 0 || persons[0].PersonnelNumber == "" {
		d.log.Warn().Str("chip_id", chipID).Msg("no person with this chip")
		return nil, domain.ErrChipNotFound
	}

	p := persons[0]
	now := d.now()
	return &domain.ChipMapping{
		ChipID:          chipID,
		PersonnelNumber: p.PersonnelNumber,
		FirstName:       p.FirstName,
		LastName:        p.LastName,
		Active:          true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}
