package hrworks

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Config holds the platform credentials and endpoints.
type Config struct {
	BaseURL        string
	AccessKey      string
	SecretKey      string
	ChipIDField    string
	TokenValidity  time.Duration
	RequestTimeout time.Duration
}

// Client bundles the platform endpoints around one shared token manager.
type Client struct {
	Transport *Transport
	Tokens    *TokenManager
	Bookings  *Gateway
	Persons   *PersonDirectory
}

// NewClient wires the endpoints. actions may be nil for the default table.
func NewClient(cfg Config, actions ActionTable, log zerolog.Logger) *Client {
	t := NewTransport(cfg.BaseURL, &http.Client{})
	tokens := NewTokenManager(t, cfg.AccessKey, cfg.SecretKey, cfg.TokenValidity, cfg.RequestTimeout, log)
	return &Client{
		Transport: t,
		Tokens:    tokens,
		Bookings:  NewGateway(t, tokens, actions, cfg.RequestTimeout, log),
		Persons:   NewPersonDirectory(t, tokens, cfg.ChipIDField, cfg.RequestTimeout, log),
	}
}
