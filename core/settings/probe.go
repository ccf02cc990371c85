package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/Masterminds/semver/v3"
)

// maxBody bounds the settings response size.
const maxBody = 4 * 1024 * 1024

// Settings is the subset of the server settings document the service needs.
type Settings struct {
	Values  Values `json:"values"`
	BaseURL string `json:"baseUrl"`
}

// Values holds the settings values.
type Values struct {
	ServerVersion string `json:"serverVersion"`
}

// Version parses the server version.
func (s *Settings) Version() (*semver.Version, error) {
	return semver.NewVersion(s.Values.ServerVersion)
}

// Validate checks the version is a semantic version and the base URL an absolute http(s) URL.
func (s *Settings) Validate() error {
	var errs []error
	if s.Values.ServerVersion == "" {
		errs = append(errs, errors.New("serverVersion is empty"))
	} else if _, err := s.Version(); err != nil {
		errs = append(errs, fmt.Errorf("serverVersion %q: %w", s.Values.ServerVersion, err))
	}

	if s.BaseURL == "" {
		errs = append(errs, errors.New("baseUrl is empty"))
	} else if u, err := url.Parse(s.BaseURL); err != nil {
		errs = append(errs, fmt.Errorf("baseUrl: %w", err))
	} else if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("baseUrl %q is not an absolute http(s) url", s.BaseURL))
	}

	return errors.Join(errs...)
}

// Prober fetches the settings of a server listening at base.
type Prober interface {
	Fetch(ctx context.Context, base *url.URL) (*Settings, error)
}

// Client probes the settings endpoint over HTTP.
type Client struct {
	http *http.Client
}

// NewClient creates a prober whose requests are bounded by timeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	// The server listens on loopback; proxies from the environment must not intercept it.
	transport := &http.Transport{
		Proxy: nil,
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          4,
		IdleConnTimeout:       30 * time.Second,
		ResponseHeaderTimeout: timeout,
	}

	return NewClientWithHTTP(&http.Client{
		Transport: transport,
		Timeout:   timeout,
	})
}

// NewClientWithHTTP creates a prober that uses hc.
func NewClientWithHTTP(hc *http.Client) *Client {
	return &Client{http: hc}
}

// Fetch performs a single GET {base}/settings.
func (c *Client) Fetch(ctx context.Context, base *url.URL) (*Settings, error) {
	if base == nil {
		return nil, &SettingsError{Kind: KindTransport, Err: errors.New("no server endpoint")}
	}
	target := base.JoinPath("settings").String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &SettingsError{Kind: KindTransport, URL: target, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &SettingsError{Kind: KindTransport, URL: target, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		return nil, &SettingsError{Kind: KindStatus, URL: target, StatusCode: resp.StatusCode}
	}

	var s Settings
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&s); err != nil {
		return nil, &SettingsError{Kind: KindDecode, URL: target, StatusCode: resp.StatusCode, Err: err}
	}
	if err := s.Validate(); err != nil {
		return nil, &SettingsError{Kind: KindInvalid, URL: target, StatusCode: resp.StatusCode, Err: err}
	}

	return &s, nil
}
