package albs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 60 * time.Second

// BuildInfo is the part of a build manifest the collector consumes
type BuildInfo struct {
	ID        int    `json:"id"`
	CreatedAt string `json:"created_at"`
	Owner     struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	} `json:"owner"`
	Tasks []struct {
		Artifacts []Artifact `json:"artifacts"`
	} `json:"tasks"`
}

// Artifact is a single output of a build task
type Artifact struct {
	Type    string `json:"type"`
	CasHash string `json:"cas_hash"`
}

// Client talks to the AlmaLinux Build System REST API
type Client struct {
	baseURL string
	inner   *http.Client
}

// NewClient creates a client for the build system at baseURL
func NewClient(baseURL string) *Client {
	return NewClientFromInner(baseURL, &http.Client{Timeout: defaultTimeout})
}

// NewClientFromInner creates a client using a caller supplied http.Client
func NewClientFromInner(baseURL string, inner *http.Client) *Client {
	return &Client{baseURL: strings.TrimSuffix(baseURL, "/"), inner: inner}
}

// BaseURL returns the build system URL without trailing slash
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetBuild fetches the manifest of a build
func (c *Client) GetBuild(ctx context.Context, buildID string) (*BuildInfo, error) {
	url := fmt.Sprintf("%s/api/v1/builds/%s", c.baseURL, buildID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.inner.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status for `%s`: %s", url, resp.Status)
	}

	info := &BuildInfo{}
	if err := json.NewDecoder(resp.Body).Decode(info); err != nil {
		return nil, fmt.Errorf("failed to decode build %s: %w", buildID, err)
	}
	return info, nil
}
