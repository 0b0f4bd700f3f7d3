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

// NameSeparator joins multiple caller-ID names.
const NameSeparator = " | "

// CallerID queries the caller-ID name service.
type CallerID struct {
	baseURL     string
	apiKey      string
	countryCode string
	client      *http.Client
}

// NewCallerID builds a client. An empty countryCode means "92".
func NewCallerID(baseURL, apiKey, countryCode string, timeout time.Duration) *CallerID {
	if countryCode == "" {
		countryCode = "92"
	}
	return &CallerID{
		baseURL:     baseURL,
		apiKey:      apiKey,
		countryCode: countryCode,
		client:      newHTTPClient(timeout),
	}
}

// Available reports whether an API key is configured.
func (c *CallerID) Available() bool { return c.apiKey != "" }

type callerPayload struct {
	FullName   string            `json:"fullName"`
	OtherNames []json.RawMessage `json:"otherNames"`
	Data       *callerPayload    `json:"data"`
}

// Lookup issues GET {base}?code={cc}&number={number} and returns every known
// name, deduplicated case-insensitively and joined with NameSeparator.
func (c *CallerID) Lookup(ctx context.Context, number string) (string, error) {
	if !c.Available() {
		return "", ErrNoAPIKey
	}
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("caller id: bad base url: %w", err)
	}
	q := u.Query()
	q.Set("code", c.countryCode)
	q.Set("number", number)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("caller id: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("caller id: status %d", resp.StatusCode)
	}

	var p callerPayload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return "", fmt.Errorf("caller id: decode: %w", err)
	}
	names := p.names()
	if len(names) == 0 && p.Data != nil {
		names = p.Data.names()
	}
	if len(names) == 0 {
		return "", errNoData
	}
	return strings.Join(names, NameSeparator), nil
}

func (p *callerPayload) names() []string {
	var out []string
	seen := map[string]bool{}
	add := func(n string) {
		n = strings.TrimSpace(n)
		k := strings.ToLower(n)
		if n == "" || seen[k] {
			return
		}
		seen[k] = true
		out = append(out, n)
	}

	add(p.FullName)
	for _, raw := range p.OtherNames {
		var s string
		if json.Unmarshal(raw, &s) == nil {
			add(s)
			continue
		}
		var obj struct {
			Name string `json:"name"`
		}
		if json.Unmarshal(raw, &obj) == nil {
			add(obj.Name)
		}
	}
	return out
}
