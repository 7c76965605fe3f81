package hrworks

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/badgeclock/rfid-terminal/internal/core/domain"
)

func newPersonServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/persons" || r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		if got := r.URL.Query().Get("filter"); got != "TransponderID==0012345678" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestDirectory(srv *httptest.Server, tokens *stubTokens) *PersonDirectory {
	return NewPersonDirectory(NewTransport(srv.URL+"/v2", nil), tokens, "", time.Second, zerolog.Nop())
}

func TestPersonDirectory_Found(t *testing.T) {
	srv := newPersonServer(t, http.StatusOK, `[{"personnelNumber":"42","firstName":"Ada","lastName":"Lovelace"}]`)
	d := newTestDirectory(srv, &stubTokens{token: "tok-1"})

	m, err := d.Resolve(context.Background(), "0012345678")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if m.PersonnelNumber != "42" || m.DisplayName() != "Ada Lovelace" || !m.Active {
		t.Fatalf("got %+v", m)
	}
}

func TestPersonDirectory_NotFound(t *testing.T) {
	srv := newPersonServer(t, http.StatusOK, `[]`)
	d := newTestDirectory(srv, &stubTokens{token: "tok-1"})

	if _, err := d.Resolve(context.Background(), "0012345678"); !errors.Is(err, domain.ErrChipNotFound) {
		t.Fatalf("expected ErrChipNotFound, got %v", err)
	}
}

func TestPersonDirectory_ErrorStatus(t *testing.T) {
	srv := newPersonServer(t, http.StatusUnauthorized, `{}`)
	tokens := &stubTokens{token: "tok-1"}
	d := newTestDirectory(srv, tokens)

	_, err := d.Resolve(context.Background(), "0012345678")
	if !errors.Is(err, domain.ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
	if tokens.invalidated.Load() != 1 {
		t.Fatal("401 must invalidate the token")
	}
}

func TestPersonDirectory_UpstreamFailureIsTyped(t *testing.T) {
	cases := map[string]struct {
		status int
		body   string
	}{
		"server error":   {http.StatusInternalServerError, `{"error":"boom"}`},
		"bad request":    {http.StatusBadRequest, `{}`},
		"invalid json":   {http.StatusOK, `not json`},
		"unexpected 3xx": {http.StatusNotModified, ``},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			srv := newPersonServer(t, tc.status, tc.body)
			tokens := &stubTokens{token: "tok-1"}

			_, err := newTestDirectory(srv, tokens).Resolve(context.Background(), "0012345678")
			if !errors.Is(err, domain.ErrLookupFailed) {
				t.Fatalf("expected ErrLookupFailed, got %v", err)
			}
			if tokens.invalidated.Load() != 0 {
				t.Fatal("token must only be invalidated on 401")
			}
		})
	}
}

func TestPersonDirectory_TokenFailure(t *testing.T) {
	srv := newPersonServer(t, http.StatusOK, `[]`)
	d := newTestDirectory(srv, &stubTokens{err: domain.ErrAuthenticationFailed})

	if _, err := d.Resolve(context.Background(), "0012345678"); !errors.Is(err, domain.ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
}
