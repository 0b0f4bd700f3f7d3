// Package enrich runs best-effort external lookups (SIM registry, caller ID)
// for the most frequent numbers of an analysis.
package enrich

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// ErrNoAPIKey means the caller-ID service has no key configured.
var ErrNoAPIKey = errors.New("enrich: caller-id api key not configured")

// errNoData marks a well-formed response that carried no usable entry.
var errNoData = errors.New("enrich: no data")

// DefaultTimeout bounds a single upstream request.
const DefaultTimeout = 10 * time.Second

// Record is the enrichment attached to one number. Fields stay empty when the
// lookup was disabled or failed.
type Record struct {
	Name        string
	CNIC        string
	Address     string
	CallerNames string
}

// SIMInfo is the first entry of a SIM registry response.
type SIMInfo struct {
	Name    string `json:"name"`
	CNIC    string `json:"cnic"`
	Address string `json:"address"`
}

// SIMLookup resolves subscriber details for a canonical number.
type SIMLookup interface {
	Lookup(ctx context.Context, number string) (*SIMInfo, error)
}

// CallerNameLookup resolves the display names known for a canonical number,
// already joined for presentation.
type CallerNameLookup interface {
	Lookup(ctx context.Context, number string) (string, error)
}

// Cache stores raw lookup payloads. Get returns (nil, nil) on a miss.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte) error
	Delete(ctx context.Context, key string) error
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}
