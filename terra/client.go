// Package terra is the client for the upstream entity store: a REST API that
// lists workspaces, the entity types of a workspace, and the full row set of
// one entity type.
package terra

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/teranos/gripterra/config"
	"github.com/teranos/gripterra/entity"
	"github.com/teranos/gripterra/errors"
	"github.com/teranos/gripterra/internal/httpclient"
	"github.com/teranos/gripterra/logger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// WorkspaceRef names one workspace.
type WorkspaceRef struct {
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
}

// TypeInfo describes one entity type of a workspace.
type TypeInfo struct {
	Count          int      `json:"count"`
	IDName         string   `json:"idName"`
	AttributeNames []string `json:"attributeNames"`
}

// Client talks to the entity store over HTTP.
// Requests are throttled by a shared token bucket.
type Client struct {
	baseURL string
	token   string
	http    *httpclient.SaferClient
	limiter *rate.Limiter
	logger  *zap.SugaredLogger
}

// NewClient creates an entity store client from upstream configuration.
func NewClient(cfg config.UpstreamConfig, logger *zap.SugaredLogger) *Client {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    httpclient.NewSaferClient(cfg.Timeout(), httpclient.Options{AllowPrivate: cfg.AllowPrivate}),
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger,
	}
}

// ListEntities fetches every row of one entity type.
func (c *Client) ListEntities(ctx context.Context, addr entity.VertexAddr) ([]entity.Raw, error) {
	var rows []entity.Raw
	path := "/api/workspaces/" + url.PathEscape(addr.Namespace) + "/" + url.PathEscape(addr.Name) +
		"/entities/" + url.PathEscape(addr.Type)
	if err := c.get(ctx, path, &rows); err != nil {
		return nil, errors.Wrapf(err, "list entities %s", addr.Path())
	}
	return rows, nil
}

// ListEntityTypes fetches the entity type metadata of a workspace.
func (c *Client) ListEntityTypes(ctx context.Context, namespace, name string) (map[string]TypeInfo, error) {
	var types map[string]TypeInfo
	path := "/api/workspaces/" + url.PathEscape(namespace) + "/" + url.PathEscape(name) + "/entities"
	if err := c.get(ctx, path, &types); err != nil {
		return nil, errors.Wrapf(err, "list entity types %s/%s", namespace, name)
	}
	return types, nil
}

// ListWorkspaces fetches every workspace visible to the configured token.
func (c *Client) ListWorkspaces(ctx context.Context) ([]WorkspaceRef, error) {
	var listing []struct {
		Workspace WorkspaceRef `json:"workspace"`
	}
	if err := c.get(ctx, "/api/workspaces", &listing); err != nil {
		return nil, errors.Wrap(err, "list workspaces")
	}

	out := make([]WorkspaceRef, 0, len(listing))
	for _, w := range listing {
		out = append(out, w.Workspace)
	}
	return out, nil
}

// get performs one throttled GET and decodes the JSON body into out.
// Transport failures and non-2xx statuses are ErrUpstreamUnavailable;
// cancellation of ctx is returned as the context error.
func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return errors.Wrap(ctx.Err(), "waiting for upstream rate limit")
		}
		return errors.WrapUpstreamUnavailable(err, "rate limiter")
	}

	target := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return errors.Wrapf(err, "failed to build request for %s", target)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return errors.Wrap(ctx.Err(), "upstream request cancelled")
		}
		return errors.WrapUpstreamUnavailable(err, "GET "+target)
	}
	defer resp.Body.Close()

	logger.FromContext(ctx, c.logger).Debugw("Upstream request",
		logger.FieldURL, target,
		logger.FieldStatus, resp.StatusCode,
		logger.FieldDurationMS, time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.WithDetail(
			errors.NewUpstreamUnavailableError("GET %s: status %d", target, resp.StatusCode),
			strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctx.Err() != nil {
			return errors.Wrap(ctx.Err(), "upstream response cancelled")
		}
		return errors.WrapUpstreamUnavailable(err, "decode response from "+target)
	}
	return nil
}
