package hrworks

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/badgeclock/rfid-terminal/internal/core/domain"
)

// Placeholders substituted in paths, query values and body values.
const (
	PlaceholderPersonnelNumber = "{personnelNumber}"
	PlaceholderType            = "{type}"
	PlaceholderTimestamp       = "{timestamp}"
)

// ActionSpec is the remote request of one booking action.
type ActionSpec struct {
	// Type is the platform's name for the action, substituted for {type}.
	Type   string            `yaml:"type"`
	Method string            `yaml:"method"`
	Path   string            `yaml:"path"`
	Query  map[string]string `yaml:"query,omitempty"`
	Body   map[string]string `yaml:"body,omitempty"`
}

// ActionTable maps terminal actions to remote requests. Only actions present
// in the table can be booked.
type ActionTable map[domain.BookingAction]ActionSpec

type actionFile struct {
	Actions map[string]ActionSpec `yaml:"actions"`
}

// DefaultActionTable posts {personnelNumber, type} to /time-trackings and
// lets the platform stamp the time.
func DefaultActionTable() ActionTable {
	types := map[domain.BookingAction]string{
		domain.ActionClockIn:           "come",
		domain.ActionClockOut:          "go",
		domain.ActionBusinessTripStart: "business_trip",
		domain.ActionBusinessTripEnd:   "business_trip_end",
		domain.ActionBreakStart:        "break_start",
		domain.ActionBreakEnd:          "break_end",
	}
	table := make(ActionTable, len(types))
	for action, typ := range types {
		table[action] = ActionSpec{
			Type:   typ,
			Method: http.MethodPost,
			Path:   "/time-trackings",
			Body: map[string]string{
				"personnelNumber": PlaceholderPersonnelNumber,
				"type":            PlaceholderType,
			},
		}
	}
	return table
}

// LoadActionTable reads a YAML action table:
//
//	actions:
//	  clock_in:
//	    type: come
//	    method: POST
//	    path: /persons/{personnelNumber}/working-times
//	    query: {action: "{type}"}
func LoadActionTable(path string) (ActionTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read action table: %w", err)
	}
	return ParseActionTable(raw)
}

// ParseActionTable decodes and validates a YAML action table.
func ParseActionTable(raw []byte) (ActionTable, error) {
	var f actionFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse action table: %w", err)
	}
	if len(f.Actions) == 0 {
		return nil, fmt.Errorf("action table: no actions defined")
	}

	table := make(ActionTable, len(f.Actions))
	for name, spec := range f.Actions {
		action := domain.BookingAction(name)
		if !action.Valid() {
			return nil, fmt.Errorf("action table: %w: %q", domain.ErrInvalidAction, name)
		}
		if spec.Method == "" {
			spec.Method = http.MethodPost
		}
		spec.Method = strings.ToUpper(spec.Method)
		if !strings.HasPrefix(spec.Path, "/") {
			return nil, fmt.Errorf("action table: %s: path must start with /", name)
		}
		if spec.Type == "" {
			spec.Type = name
		}
		table[action] = spec
	}
	return table, nil
}

// Actions returns the bookable actions in menu order.
func (t ActionTable) Actions() []domain.BookingAction {
	out := make([]domain.BookingAction, 0, len(t))
	for _, a := range domain.Actions {
		if _, ok := t[a]; ok {
			out = append(out, a)
		}
	}
	return out
}

type renderedRequest struct {
	method string
	path   string
	query  map[string]string
	body   map[string]string
}

func (s ActionSpec) render(personnelNumber, timestamp string) renderedRequest {
	values := strings.NewReplacer(
		PlaceholderPersonnelNumber, personnelNumber,
		PlaceholderType, s.Type,
		PlaceholderTimestamp, timestamp,
	)
	segments := strings.NewReplacer(
		PlaceholderPersonnelNumber, url.PathEscape(personnelNumber),
		PlaceholderType, url.PathEscape(s.Type),
		PlaceholderTimestamp, url.PathEscape(timestamp),
	)

	r := renderedRequest{method: s.Method, path: segments.Replace(s.Path)}
	if len(s.Query) > 0 {
		r.query = make(map[string]string, len(s.Query))
		for k, v := range s.Query {
			r.query[k] = values.Replace(v)
		}
	}
	if len(s.Body) > 0 {
		r.body = make(map[string]string, len(s.Body))
		for k, v := range s.Body {
			r.body[k] = values.Replace(v)
		}
	}
	return r
}
