// Package client talks to the photoshare server's JSON API. It implements
// sharing.API so the sharing subsystem can run against a remote gallery.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vbonduro/photoshare/internal/domain"
	"github.com/vbonduro/photoshare/internal/sharing"
)

const defaultTimeout = 15 * time.Second

type Config struct {
	BaseURL string
	// Token is sent as a bearer token when non-empty.
	Token      string
	HTTPClient *http.Client
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

var _ sharing.API = (*Client)(nil)

func New(cfg Config) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", cfg.BaseURL)
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    hc,
	}, nil
}

func (c *Client) ListContacts(ctx context.Context) ([]domain.Contact, error) {
	var contacts []domain.Contact
	if err := c.do(ctx, "list contacts", http.MethodGet, "/api/contacts", nil, &contacts, notFound{}); err != nil {
		return nil, err
	}
	return contacts, nil
}

func (c *Client) AddContact(ctx context.Context, name, phone string) (*domain.Contact, error) {
	body := map[string]string{"name": name, "phone": phone}
	var contact domain.Contact
	if err := c.do(ctx, "add contact", http.MethodPost, "/api/contacts", body, &contact, notFound{}); err != nil {
		return nil, err
	}
	return &contact, nil
}

func (c *Client) DeleteContact(ctx context.Context, id string) error {
	return c.do(ctx, "delete contact", http.MethodDelete, "/api/contacts/"+url.PathEscape(id), nil, nil,
		notFound{resource: "contact", id: id})
}

func (c *Client) CreateShare(ctx context.Context, photoIDs []string, contactName string) (*sharing.ShareResponse, error) {
	body := map[string]any{"photo_ids": photoIDs, "contact_name": contactName}
	var resp sharing.ShareResponse
	if err := c.do(ctx, "create share", http.MethodPost, "/api/share", body, &resp, notFound{resource: "contact or photo", id: contactName}); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ShareHistory(ctx context.Context) ([]domain.Share, error) {
	var shares []domain.Share
	if err := c.do(ctx, "share history", http.MethodGet, "/api/share/history", nil, &shares, notFound{}); err != nil {
		return nil, err
	}
	return shares, nil
}

func (c *Client) ReceivedShares(ctx context.Context) ([]domain.Share, error) {
	var shares []domain.Share
	if err := c.do(ctx, "received shares", http.MethodGet, "/api/received-shares", nil, &shares, notFound{}); err != nil {
		return nil, err
	}
	return shares, nil
}

func (c *Client) MarkShareRead(ctx context.Context, id string) error {
	return c.do(ctx, "mark share read", http.MethodPost, "/api/shares/"+url.PathEscape(id)+"/read", nil, nil,
		notFound{resource: "share", id: id})
}

// notFound names what a 404 refers to for the operation.
type notFound struct {
	resource string
	id       string
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any, nf notFound) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return &sharing.ServiceError{Op: op, Err: fmt.Errorf("failed to marshal request: %w", err)}
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &sharing.ServiceError{Op: op, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &sharing.ServiceError{Op: op, Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("failed to close response body", "op", op, "error", err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(op, resp, nf)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &sharing.ServiceError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

func statusError(op string, resp *http.Response, nf notFound) error {
	msg := errorMessage(resp)
	switch resp.StatusCode {
	case http.StatusBadRequest, http.StatusConflict, http.StatusRequestEntityTooLarge:
		return &sharing.ValidationError{Message: msg}
	case http.StatusNotFound:
		if nf.resource == "" {
			return &sharing.ServiceError{Op: op, StatusCode: resp.StatusCode, Err: errors.New(msg)}
		}
		return &sharing.NotFoundError{Resource: nf.resource, ID: nf.id}
	default:
		return &sharing.ServiceError{Op: op, StatusCode: resp.StatusCode, Err: errors.New(msg)}
	}
}

// errorMessage extracts {"error": "..."} from the body, falling back to the
// status text.
func errorMessage(resp *http.Response) string {
	var body struct {
		Error string `json:"error"`
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err == nil && json.Unmarshal(data, &body) == nil && body.Error != "" {
		return body.Error
	}
	return http.StatusText(resp.StatusCode)
}
