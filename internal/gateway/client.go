// Package gateway is the typed wrapper around the diagram backend's REST
// surface. It translates synchronization intents into HTTP calls,
// normalizes the backend's heterogeneous response envelopes into the
// diagram model, and classifies every transport failure into the error
// taxonomy in errors.go. It holds no shared state beyond the HTTP client.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lgmendez/diasync/internal/diagram"
)

const diagramsPath = "/diagrams"

// Client talks to one diagram backend on behalf of one credential.
// Construct it explicitly and inject it; it is safe for concurrent use.
type Client struct {
	base   *url.URL
	token  string
	client *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client, e.g. for tests or
// custom transports.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// New creates a gateway client for the backend at baseURL. The bearer
// token is attached to every request.
func New(baseURL, token string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base URL %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", baseURL)
	}

	c := &Client{
		base:   u,
		token:  token,
		client: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ListByUser fetches all diagrams the user owns or is shared into.
func (c *Client) ListByUser(ctx context.Context, userID string) ([]diagram.Diagram, error) {
	body, err := c.do(ctx, http.MethodGet, diagramsPath+"/user/"+url.PathEscape(userID), nil, nil)
	if err != nil {
		return nil, err
	}

	var out []diagram.Diagram
	if err := json.Unmarshal(unwrapEnvelope(body), &out); err != nil {
		return nil, &APIError{Kind: KindServerFault, Message: "malformed diagram list payload", cause: err}
	}
	return out, nil
}

// Create asks the backend to create a diagram owned by ownerID. Business
// validation of the name happens before this call; the gateway passes the
// value through untouched.
func (c *Client) Create(ctx context.Context, name, ownerID string) (diagram.Diagram, error) {
	payload := map[string]string{"name": name, "owner": ownerID}
	body, err := c.do(ctx, http.MethodPost, diagramsPath, nil, payload)
	if err != nil {
		return diagram.Diagram{}, err
	}
	return c.decodeDiagram(body)
}

// Update applies a partial update to the diagram.
func (c *Client) Update(ctx context.Context, id string, patch diagram.UpdatePatch) (diagram.Diagram, error) {
	body, err := c.do(ctx, http.MethodPut, diagramsPath+"/"+url.PathEscape(id), nil, patch)
	if err != nil {
		return diagram.Diagram{}, err
	}
	return c.decodeDiagram(body)
}

// Remove deletes the diagram. Deletion is not idempotent server-side:
// removing an unknown id surfaces KindNotFound.
func (c *Client) Remove(ctx context.Context, id, requesterID string) error {
	q := url.Values{"userId": {requesterID}}
	_, err := c.do(ctx, http.MethodDelete, diagramsPath+"/"+url.PathEscape(id), q, nil)
	return err
}

// AddParticipant shares the diagram with the user behind email.
func (c *Client) AddParticipant(ctx context.Context, diagramID, email string) (diagram.Diagram, error) {
	payload := map[string]string{"email": email}
	body, err := c.do(ctx, http.MethodPost, diagramsPath+"/"+url.PathEscape(diagramID)+"/participants", nil, payload)
	if err != nil {
		return diagram.Diagram{}, err
	}
	return c.decodeDiagram(body)
}

// RemoveParticipant revokes userID's access to the diagram.
func (c *Client) RemoveParticipant(ctx context.Context, diagramID, userID string) (diagram.Diagram, error) {
	path := diagramsPath + "/" + url.PathEscape(diagramID) + "/participants/" + url.PathEscape(userID)
	body, err := c.do(ctx, http.MethodDelete, path, nil, nil)
	if err != nil {
		return diagram.Diagram{}, err
	}
	return c.decodeDiagram(body)
}

// do issues one request and returns the raw response body. Transport
// failures become KindNetworkUnavailable; non-2xx responses are classified
// by status with the server's message attached when present.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, error) {
	u := *c.base
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshalling request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, networkError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, networkError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp.StatusCode, serverMessage(body))
	}
	return body, nil
}

// decodeDiagram parses a single-diagram response, enveloped or bare.
func (c *Client) decodeDiagram(body []byte) (diagram.Diagram, error) {
	var d diagram.Diagram
	if err := json.Unmarshal(unwrapEnvelope(body), &d); err != nil {
		return diagram.Diagram{}, &APIError{Kind: KindServerFault, Message: "malformed diagram payload", cause: err}
	}
	return d, nil
}

// unwrapEnvelope narrows a response that may be wrapped as {"data": ...}
// down to the inner payload. Bare payloads pass through unchanged, so
// neither shape can crash decoding.
func unwrapEnvelope(body []byte) []byte {
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err == nil && len(env.Data) > 0 {
		return env.Data
	}
	return body
}

// serverMessage extracts the backend's error message, if the body carries
// one in the conventional {"message": ...} shape.
func serverMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}
