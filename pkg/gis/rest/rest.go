// Package rest implements gis.Gateway against the platform's sharing and
// admin REST endpoints.
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/carg563/Awhina-2-Testing-Portal/pkg/gis"
)

type client struct {
	portalURL      string
	recordTableURL string
	cred           gis.Credential
	httpClient     *http.Client
}

type gateway struct {
	*client
}

type Option func(*client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) { c.httpClient = hc }
}

// New binds a gateway to one portal and one caller credential.
//
// args:
//   - portalURL: portal web root, e.g. "https://awhina.example.govt.nz/portal"
//   - recordTableURL: layer URL of the deployment record table
//   - cred: the caller's credential; all calls are made as this account
func New(portalURL string, recordTableURL string, cred gis.Credential, opts ...Option) gis.Gateway {
	c := &client{
		portalURL:      strings.TrimSuffix(portalURL, "/"),
		recordTableURL: strings.TrimSuffix(recordTableURL, "/"),
		cred:           cred,
		httpClient:     &http.Client{Timeout: 90 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return &gateway{client: c}
}

func (g *gateway) Content() gis.ContentInterface     { return (*contentAPI)(g.client) }
func (g *gateway) Community() gis.CommunityInterface { return (*communityAPI)(g.client) }
func (g *gateway) Services() gis.ServiceInterface    { return (*serviceAPI)(g.client) }
func (g *gateway) Features() gis.FeatureInterface    { return (*featureAPI)(g.client) }

func (c *client) userContentURL(parts ...string) string {
	segs := append(
		[]string{c.portalURL, "sharing", "rest", "content", "users", url.PathEscape(c.cred.Username)},
		parts...,
	)
	return strings.Join(segs, "/")
}

// adminURL rewrites a service URL onto the admin endpoint tree.
func adminURL(serviceURL string) string {
	return strings.Replace(serviceURL, "rest/services", "rest/admin/services", 1)
}

// serviceRoot strips a layer index off a layer URL.
func serviceRoot(layerURL string) string {
	return strings.TrimSuffix(layerURL, "/0")
}

type platformErrorPayload struct {
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details"`
}

type errorEnvelope struct {
	Error *platformErrorPayload `json:"error"`
}

// call performs one platform request. The platform reports failures both
// as HTTP statuses and as error payloads inside 200 responses; both are
// folded into *gis.PlatformError.
func (c *client) call(ctx context.Context, op string, method string, rawURL string, form url.Values, out any) error {
	if form == nil {
		form = url.Values{}
	}
	form.Set("f", "json")
	form.Set("token", c.cred.Token)

	var req *http.Request
	var err error
	switch method {
	case http.MethodGet:
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, rawURL+"?"+form.Encode(), nil)
	default:
		req, err = http.NewRequestWithContext(ctx, method, rawURL, strings.NewReader(form.Encode()))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: reading response: %w", op, err)
	}
	if resp.StatusCode < 200 || 300 <= resp.StatusCode {
		return &gis.PlatformError{
			Op: op, Code: resp.StatusCode, Message: http.StatusText(resp.StatusCode),
		}
	}

	envelope := errorEnvelope{}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("%s: unexpected response: %w", op, err)
	}
	if envelope.Error != nil {
		return &gis.PlatformError{
			Op:      op,
			Code:    envelope.Error.Code,
			Message: envelope.Error.Message,
			Details: envelope.Error.Details,
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: decoding response: %w", op, err)
	}
	return nil
}

func (c *client) get(ctx context.Context, op string, rawURL string, form url.Values, out any) error {
	return c.call(ctx, op, http.MethodGet, rawURL, form, out)
}

func (c *client) post(ctx context.Context, op string, rawURL string, form url.Values, out any) error {
	return c.call(ctx, op, http.MethodPost, rawURL, form, out)
}
