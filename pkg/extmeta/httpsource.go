package extmeta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// HTTPSource retrieves extension metadata over the engine host's REST
// surface. Server installations answer the registry listing; desktop
// installations only serve the per-extension metadata files.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPSource(baseURL string) *HTTPSource {
	return &HTTPSource{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *HTTPSource) List(ctx context.Context) ([]Meta, error) {
	var out []Meta
	if err := s.getJSON(ctx, "/extensions", &out); err != nil {
		return nil, fmt.Errorf("list extensions: %w", err)
	}
	return out, nil
}

func (s *HTTPSource) Get(ctx context.Context, id string) (*Meta, error) {
	var out Meta
	err := s.getJSON(ctx, "/extensions/"+url.PathEscape(id), &out)
	if err != nil {
		var sc statusError
		if errors.As(err, &sc) && sc.code == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get extension %s: %w", id, err)
	}
	if out.ID == "" {
		out.ID = id
	}
	return &out, nil
}

type statusError struct{ code int }

func (e statusError) Error() string { return fmt.Sprintf("unexpected status %d", e.code) }

func (s *HTTPSource) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return statusError{code: resp.StatusCode}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
