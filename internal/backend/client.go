// Package backend is the typed client for the task-management REST API. It
// owns transport and error mapping only; no retries, no caching, no state.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"taskpanel/internal/task"
)

// Sentinel errors for the status classes callers branch on. Everything else
// surfaces as a generic *APIError.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

// APIError is a non-2xx backend response. Detail carries the backend's own
// message when it sent one.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend: %d %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("backend: status %d", e.Status)
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	}
	return nil
}

type Client struct {
	baseURL string
	httpc   *http.Client
}

// NewClient builds a client for the API at baseURL. Pass nil to use
// http.DefaultClient; timeouts are whatever the given client carries.
func NewClient(baseURL string, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   httpc,
	}
}

/* ===================== AUTH ===================== */

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registration struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var out tokenResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", "", credentials{Email: email, Password: password}, &out)
	if err != nil {
		return "", err
	}
	return out.AccessToken, nil
}

// Register creates an account and returns its access token (the backend logs
// new accounts straight in).
func (c *Client) Register(ctx context.Context, email, password, role string) (string, error) {
	var out tokenResponse
	err := c.do(ctx, http.MethodPost, "/auth/register", "", registration{Email: email, Password: password, Role: role}, &out)
	if err != nil {
		return "", err
	}
	return out.AccessToken, nil
}

/* ===================== TASKS ===================== */

// ListTasks returns the caller's own tasks.
func (c *Client) ListTasks(ctx context.Context, token string) ([]task.Task, error) {
	var out []task.Task
	if err := c.do(ctx, http.MethodGet, "/tasks/", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListAllTasks returns every owner's tasks. Admin tokens only; anything else
// comes back ErrForbidden.
func (c *Client) ListAllTasks(ctx context.Context, token string) ([]task.Task, error) {
	var out []task.Task
	if err := c.do(ctx, http.MethodGet, "/admin/tasks", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateTask(ctx context.Context, token string, req task.CreateRequest) (task.Task, error) {
	var out task.Task
	if err := c.do(ctx, http.MethodPost, "/tasks/", token, req, &out); err != nil {
		return task.Task{}, err
	}
	return out, nil
}

func (c *Client) UpdateTask(ctx context.Context, token, id string, req task.UpdateRequest) (task.Task, error) {
	var out task.Task
	if err := c.do(ctx, http.MethodPatch, "/tasks/"+url.PathEscape(id), token, req, &out); err != nil {
		return task.Task{}, err
	}
	return out, nil
}

func (c *Client) DeleteTask(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), token, nil, nil)
}

/* ===================== TRANSPORT ===================== */

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return newAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func newAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	// FastAPI-style error bodies: {"detail": "..."}.
	b, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err == nil {
		var payload struct {
			Detail string `json:"detail"`
		}
		if json.Unmarshal(b, &payload) == nil {
			apiErr.Detail = payload.Detail
		}
	}
	return apiErr
}
