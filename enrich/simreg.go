package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SIMRegistry queries the SIM ownership registry.
type SIMRegistry struct {
	baseURL string
	client  *http.Client
}

func NewSIMRegistry(baseURL string, timeout time.Duration) *SIMRegistry {
	return &SIMRegistry{baseURL: baseURL, client: newHTTPClient(timeout)}
}

type simResponse struct {
	Success bool      `json:"success"`
	Data    []SIMInfo `json:"data"`
}

// Lookup issues GET {base}?term=0{number} and returns the first entry.
func (s *SIMRegistry) Lookup(ctx context.Context, number string) (*SIMInfo, error) {
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return nil, fmt.Errorf("sim registry: bad base url: %w", err)
	}
	q := u.Query()
	q.Set("term", "0"+number)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sim registry: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("sim registry: status %d", resp.StatusCode)
	}

	var body simResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("sim registry: decode: %w", err)
	}
	if !body.Success || len(body.Data) == 0 {
		return nil, errNoData
	}
	info := body.Data[0]
	info.Name = strings.TrimSpace(info.Name)
	info.CNIC = strings.TrimSpace(info.CNIC)
	info.Address = strings.TrimSpace(info.Address)
	return &info, nil
}
