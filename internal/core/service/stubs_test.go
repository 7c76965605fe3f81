package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/badgeclock/rfid-terminal/internal/core/domain"
	"github.com/badgeclock/rfid-terminal/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub chip repository
// ---------------------------------------------------------------------------

type stubChipRepo struct {
	byChip    map[string]*domain.ChipMapping
	upsertErr error
	listErr   error
}

func newStubChipRepo() *stubChipRepo {
	return &stubChipRepo{byChip: make(map[string]*domain.ChipMapping)}
}

func (r *stubChipRepo) seed(chipID, personnel, first, last string, active bool) {
	r.byChip[chipID] = &domain.ChipMapping{
		ID:              "id-" + chipID,
		ChipID:          chipID,
		PersonnelNumber: personnel,
		FirstName:       first,
		LastName:        last,
		Active:          active,
	}
}

func (r *stubChipRepo) FindByChipID(_ context.Context, chipID string) (*domain.ChipMapping, error) {
	m, ok := r.byChip[chipID]
	if !ok {
		return nil, domain.ErrChipNotFound
	}
	clone := *m
	return &clone, nil
}

func (r *stubChipRepo) Upsert(_ context.Context, m *domain.ChipMapping) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	clone := *m
	if existing, ok := r.byChip[m.ChipID]; ok {
		clone.ID = existing.ID
		clone.CreatedAt = existing.CreatedAt
	} else {
		clone.ID = "id-" + m.ChipID
	}
	r.byChip[m.ChipID] = &clone
	return nil
}

func (r *stubChipRepo) SetActive(_ context.Context, chipID string, active bool) error {
	m, ok := r.byChip[chipID]
	if !ok {
		return domain.ErrChipNotFound
	}
	m.Active = active
	return nil
}

// List applies the same filters the real Mongo repo would use.
func (r *stubChipRepo) List(_ context.Context, f ports.ListChipsFilter) ([]*domain.ChipMapping, int64, error) {
	if r.listErr != nil {
		return nil, 0, r.listErr
	}
	var matched []*domain.ChipMapping
	for _, m := range r.byChip {
		if f.ActiveOnly && !m.Active {
			continue
		}
		if f.Search != "" {
			q := strings.ToLower(f.Search)
			hay := strings.ToLower(m.ChipID + " " + m.PersonnelNumber + " " + m.FirstName + " " + m.LastName)
			if !strings.Contains(hay, q) {
				continue
			}
		}
		clone := *m
		matched = append(matched, &clone)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ChipID < matched[j].ChipID })

	total := int64(len(matched))
	start := (f.Page - 1) * f.Limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

// ---------------------------------------------------------------------------
// Reader, gateway, guard and audit stubs
// ---------------------------------------------------------------------------

type stubReader struct {
	ids  []string
	err  error
	kind string
	up   bool
}

func (r *stubReader) Next(context.Context, time.Duration) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	if len(r.ids) == 0 {
		return "", domain.ErrScanTimeout
	}
	id := r.ids[0]
	r.ids = r.ids[1:]
	return id, nil
}

func (r *stubReader) Kind() string  { return r.kind }
func (r *stubReader) Running() bool { return r.up }

type stubSubmitReader struct {
	stubReader
	submitted []string
}

func (r *stubSubmitReader) Submit(chipID string) bool {
	for _, s := range r.submitted {
		if s == chipID {
			return false
		}
	}
	r.submitted = append(r.submitted, chipID)
	return true
}

type stubGateway struct {
	requests []domain.BookingRequest
	status   int
	err      error
	actions  []domain.BookingAction
}

func (g *stubGateway) Book(_ context.Context, req domain.BookingRequest) (*domain.BookingResult, error) {
	g.requests = append(g.requests, req)
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	res := &domain.BookingResult{Request: req, StatusCode: g.status, Attempted: now, Completed: now}
	if g.err != nil {
		return res, g.err
	}
	return res, nil
}

func (g *stubGateway) Actions() []domain.BookingAction {
	if g.actions != nil {
		return g.actions
	}
	return domain.Actions
}

type stubGuard struct {
	held     map[string]bool
	err      error
	released []string
}

func newStubGuard() *stubGuard { return &stubGuard{held: map[string]bool{}} }

func (g *stubGuard) Acquire(_ context.Context, pn string, action domain.BookingAction) (bool, error) {
	if g.err != nil {
		return false, g.err
	}
	key := pn + ":" + string(action)
	if g.held[key] {
		return false, nil
	}
	g.held[key] = true
	return true, nil
}

func (g *stubGuard) Release(_ context.Context, pn string, action domain.BookingAction) error {
	key := pn + ":" + string(action)
	delete(g.held, key)
	g.released = append(g.released, key)
	return nil
}

type stubAudit struct {
	mu      sync.Mutex
	entries []*domain.BookingLogEntry
}

func (a *stubAudit) Enqueue(e *domain.BookingLogEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, e)
}

var errStore = errors.New("store unavailable")
