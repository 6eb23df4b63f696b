// Package projectfiles talks to the provisioning backend that owns each
// deployment's files: the viewer project tree and its config artifact.
package projectfiles

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/carg563/Awhina-2-Testing-Portal/pkg/domain"
)

// Interface is the backend surface the orchestration engine uses. Every
// call carries the caller's portal token; the backend re-validates it
// before touching the filesystem.
type Interface interface {
	// NewDeploymentID asks the backend for a fresh deployment id.
	NewDeploymentID(ctx context.Context, token string) (string, error)

	// CreateProject copies the viewer template into a new project tree
	// named by the deployment id.
	CreateProject(ctx context.Context, token string, deploymentID string) error

	// WriteConfig writes the deployment's config artifact.
	WriteConfig(ctx context.Context, token string, deploymentID string, cfg domain.PortalConfig) error

	// UpdateConfig overwrites the config artifact, backing up the
	// previous version first.
	UpdateConfig(ctx context.Context, token string, deploymentID string, cfg domain.PortalConfig) error

	// DeleteProject removes the project tree and everything in it.
	DeleteProject(ctx context.Context, token string, deploymentID string) error
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ Interface = (*Client)(nil)

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type request struct {
	Token        string               `json:"token"`
	DeploymentID string               `json:"deploymentID,omitempty"`
	Config       *domain.PortalConfig `json:"config,omitempty"`
}

func (c *Client) NewDeploymentID(ctx context.Context, token string) (string, error) {
	resp := struct {
		DeploymentID string `json:"deploymentID"`
	}{}
	err := c.do(ctx, http.MethodPost, "/api/deployments/id", request{Token: token}, &resp)
	if err != nil {
		return "", err
	}
	return resp.DeploymentID, nil
}

func (c *Client) CreateProject(ctx context.Context, token string, deploymentID string) error {
	return c.do(ctx, http.MethodPost, "/api/deployments", request{
		Token: token, DeploymentID: deploymentID,
	}, nil)
}

func (c *Client) WriteConfig(ctx context.Context, token string, deploymentID string, cfg domain.PortalConfig) error {
	return c.do(ctx, http.MethodPost, "/api/deployments/config", request{
		Token: token, DeploymentID: deploymentID, Config: &cfg,
	}, nil)
}

func (c *Client) UpdateConfig(ctx context.Context, token string, deploymentID string, cfg domain.PortalConfig) error {
	return c.do(ctx, http.MethodPut, "/api/deployments/config", request{
		Token: token, DeploymentID: deploymentID, Config: &cfg,
	}, nil)
}

func (c *Client) DeleteProject(ctx context.Context, token string, deploymentID string) error {
	return c.do(ctx, http.MethodDelete, "/api/deployments", request{
		Token: token, DeploymentID: deploymentID,
	}, nil)
}

func (c *Client) do(ctx context.Context, method string, path string, body request, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || 300 <= resp.StatusCode {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf(
			"%s %s: backend returned %d: %s",
			method, path, resp.StatusCode, strings.TrimSpace(string(msg)),
		)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decoding response: %w", method, path, err)
	}
	return nil
}
