// Package client talks to the patient API and keeps a local copy of the
// record list in step with it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/itakarlapalli/subcentre/internal/contact"
	"github.com/itakarlapalli/subcentre/internal/patient"
)

// API is the Record Store as seen from a client.
type API interface {
	List(ctx context.Context) ([]*patient.Patient, error)
	Create(ctx context.Context, in patient.Input) (*patient.Patient, error)
	Update(ctx context.Context, id int64, in patient.Input) (*patient.Patient, error)
	Delete(ctx context.Context, id int64) error
}

// HTTPClient implements API over the JSON contract served by the API server.
type HTTPClient struct {
	baseURL string
	hc      *http.Client
}

// NewHTTPClient returns a client rooted at baseURL (for example
// http://localhost:3001). A nil hc uses a zero http.Client.
func NewHTTPClient(baseURL string, hc *http.Client) *HTTPClient {
	if hc == nil {
		hc = &http.Client{}
	}
	return &HTTPClient{baseURL: strings.TrimRight(baseURL, "/"), hc: hc}
}

func (c *HTTPClient) List(ctx context.Context) ([]*patient.Patient, error) {
	var list []*patient.Patient
	if err := c.do(ctx, "list", http.MethodGet, "/api/patients", nil, &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []*patient.Patient{}
	}
	return list, nil
}

func (c *HTTPClient) Create(ctx context.Context, in patient.Input) (*patient.Patient, error) {
	var p patient.Patient
	if err := c.do(ctx, "create", http.MethodPost, "/api/patients", in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) Update(ctx context.Context, id int64, in patient.Input) (*patient.Patient, error) {
	var p patient.Patient
	if err := c.do(ctx, "update", http.MethodPut, fmt.Sprintf("/api/patients/%d", id), in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, "delete", http.MethodDelete, fmt.Sprintf("/api/patients/%d", id), nil, nil)
}

// SendMessage posts a contact form message to the operator relay.
func (c *HTTPClient) SendMessage(ctx context.Context, m contact.Message) error {
	return c.do(ctx, "send message", http.MethodPost, "/api/send-message", m, nil)
}

// Health calls /api/health.
func (c *HTTPClient) Health(ctx context.Context) error {
	return c.do(ctx, "health", http.MethodGet, "/api/health", nil, nil)
}

func (c *HTTPClient) do(ctx context.Context, op, method, path string, body, out interface{}) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode body: %w", op, err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(data)}
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

// errorMessage pulls the "error" member out of a JSON error body.
func errorMessage(data []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		return body.Error
	}
	return strings.TrimSpace(string(data))
}
