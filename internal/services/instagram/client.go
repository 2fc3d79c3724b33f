package instagram

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
	"time"

	"carousel/internal/services"
	"carousel/internal/store"
)

// ContainerStatus is the remote platform's processing state for a container.
type ContainerStatus string

const (
	StatusInProgress ContainerStatus = "IN_PROGRESS"
	StatusFinished   ContainerStatus = "FINISHED"
	StatusReady      ContainerStatus = "READY"
	StatusError      ContainerStatus = "ERROR"
	StatusUnknown    ContainerStatus = "UNKNOWN"
)

// IsTerminalReady reports whether the container finished remote processing.
func (s ContainerStatus) IsTerminalReady() bool {
	return s == StatusFinished || s == StatusReady
}

// APIError describes a non-2xx Graph API response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("graph api returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("graph api returned status %d: %s", e.StatusCode, e.Body)
}

// HTTPDoer describes the HTTP client used by the Graph API client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// CreateContainerRequest carries everything needed to create a media container.
type CreateContainerRequest struct {
	IGUserID  string
	Token     string
	Kind      store.MediaKind
	PublicURL string
	Caption   string
}

// PublishRequest carries everything needed to publish a finished container.
type PublishRequest struct {
	IGUserID    string
	Token       string
	ContainerID string
}

// Publisher defines the remote operations the pipeline depends on.
type Publisher interface {
	CreateContainer(ctx context.Context, req CreateContainerRequest) (string, error)
	ContainerStatus(ctx context.Context, token, containerID string) (ContainerStatus, error)
	AwaitReady(ctx context.Context, token, containerID string, timeout, interval time.Duration) (ContainerStatus, error)
	PublishContainer(ctx context.Context, req PublishRequest) (string, error)
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient injects a custom HTTP client (primarily for tests).
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.client = doer
		}
	}
}

// Client is a stateless Graph API client.
type Client struct {
	baseURL        string
	requestTimeout time.Duration
	client         HTTPDoer
}

// New constructs a Graph API client against baseURL.
func New(baseURL string, requestTimeout time.Duration, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("graph api base url required")
	}
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}
	client := &Client{
		baseURL:        baseURL,
		requestTimeout: requestTimeout,
		client:         http.DefaultClient,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// CreateContainer registers a media container referencing a public URL and
// returns the remote-assigned container id. Videos are published as reels.
func (c *Client) CreateContainer(ctx context.Context, req CreateContainerRequest) (string, error) {
	payload := map[string]string{"caption": req.Caption}
	if req.Kind == store.KindVideo {
		payload["media_type"] = "REELS"
		payload["video_url"] = req.PublicURL
	} else {
		payload["image_url"] = req.PublicURL
	}

	endpoint := fmt.Sprintf("%s/%s/media", c.baseURL, url.PathEscape(req.IGUserID))
	var response struct {
		ID string `json:"id"`
	}
	if err := c.postJSON(ctx, endpoint, req.Token, payload, &response); err != nil {
		return "", services.Wrap(services.ErrRemoteAPI, "instagram", "create container", "", err)
	}
	if response.ID == "" {
		return "", services.Wrap(services.ErrRemoteAPI, "instagram", "create container", "response missing container id", nil)
	}
	return response.ID, nil
}

// ContainerStatus fetches the remote processing status for a container.
func (c *Client) ContainerStatus(ctx context.Context, token, containerID string) (ContainerStatus, error) {
	endpoint := fmt.Sprintf("%s/%s?fields=status_code", c.baseURL, url.PathEscape(containerID))
	var response struct {
		StatusCode string `json:"status_code"`
	}
	if err := c.getJSON(ctx, endpoint, token, &response); err != nil {
		return StatusUnknown, services.Wrap(services.ErrRemoteAPI, "instagram", "container status", "", err)
	}
	switch status := ContainerStatus(response.StatusCode); status {
	case StatusInProgress, StatusFinished, StatusReady, StatusError:
		return status, nil
	default:
		return StatusUnknown, nil
	}
}

// AwaitReady polls the container status on a fixed interval until it leaves
// the in-progress state or the timeout elapses. An ERROR status fails
// immediately; exhausting the budget fails with a timeout error.
func (c *Client) AwaitReady(ctx context.Context, token, containerID string, timeout, interval time.Duration) (ContainerStatus, error) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		status, err := c.ContainerStatus(ctx, token, containerID)
		if err != nil {
			return StatusUnknown, err
		}
		if status.IsTerminalReady() {
			return status, nil
		}
		if status == StatusError {
			return status, services.Wrap(services.ErrRemoteAPI, "instagram", "await ready",
				fmt.Sprintf("container %s failed remote processing", containerID), nil)
		}

		select {
		case <-ctx.Done():
			return StatusUnknown, ctx.Err()
		case <-time.After(interval):
		}
	}
	return StatusInProgress, services.Wrap(services.ErrTimeout, "instagram", "await ready",
		fmt.Sprintf("container %s not ready within %s", containerID, timeout), nil)
}

// PublishContainer finalizes a container and returns the published media id.
func (c *Client) PublishContainer(ctx context.Context, req PublishRequest) (string, error) {
	endpoint := fmt.Sprintf("%s/%s/media_publish", c.baseURL, url.PathEscape(req.IGUserID))
	payload := map[string]string{"creation_id": req.ContainerID}
	var response struct {
		ID string `json:"id"`
	}
	if err := c.postJSON(ctx, endpoint, req.Token, payload, &response); err != nil {
		return "", services.Wrap(services.ErrRemoteAPI, "instagram", "publish container", "", err)
	}
	if response.ID == "" {
		return "", services.Wrap(services.ErrRemoteAPI, "instagram", "publish container", "response missing media id", nil)
	}
	return response.ID, nil
}

func (c *Client) postJSON(ctx context.Context, endpoint, token string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(ctx, req, token, out)
}

func (c *Client) getJSON(ctx context.Context, endpoint, token string, out any) error {
	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return c.do(ctx, req, token, out)
}

func (c *Client) do(ctx context.Context, req *http.Request, token string, out any) error {
	reqCtx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()
	req = req.WithContext(reqCtx)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

var _ Publisher = (*Client)(nil)
