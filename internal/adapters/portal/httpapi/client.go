package httpapi

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

	"github.com/bnema/classence-cli/internal/ports"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultUserAgent = "classence-cli"
	maxResponseBytes = 1 << 20

	idempotencyHeader = "Idempotency-Key"
)

var ErrUnauthorized = errors.New("portal rejected credentials")

type Options struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	UserAgent  string
	HTTPClient *http.Client
	Logger     logrus.FieldLogger

	// NewIdempotencyKey generates the key sent with every mark request.
	// Defaults to a random UUID.
	NewIdempotencyKey func() string
}

// Client talks to the portal REST API on behalf of one bearer token.
type Client struct {
	baseURL   *url.URL
	token     string
	userAgent string
	http      *http.Client
	log       logrus.FieldLogger
	newKey    func() string
}

var _ ports.Portal = (*Client)(nil)

func New(opts Options) (*Client, error) {
	raw := strings.TrimSpace(opts.BaseURL)
	if raw == "" {
		return nil, errors.New("portal base url is required")
	}

	baseURL, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse portal base url: %w", err)
	}
	if baseURL.Scheme != "http" && baseURL.Scheme != "https" {
		return nil, fmt.Errorf("portal base url %q: scheme must be http or https", raw)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	newKey := opts.NewIdempotencyKey
	if newKey == nil {
		newKey = func() string { return uuid.NewString() }
	}

	return &Client{
		baseURL:   baseURL,
		token:     strings.TrimSpace(opts.Token),
		userAgent: userAgent,
		http:      httpClient,
		log:       logger.WithField("component", "portal_client"),
		newKey:    newKey,
	}, nil
}

type response struct {
	status int
	body   []byte
}

func (r response) ok() bool {
	return r.status >= 200 && r.status <= 299
}

func (c *Client) endpoint(segments ...string) string {
	escaped := make([]string, 0, len(segments))
	for _, segment := range segments {
		escaped = append(escaped, url.PathEscape(segment))
	}

	return c.baseURL.String() + "/" + strings.Join(escaped, "/")
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload any, headers map[string]string) (response, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return response{}, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return response{}, fmt.Errorf("create request: %w", err)
	}
	request.Header.Set("Accept", "application/json")
	request.Header.Set("User-Agent", c.userAgent)
	if payload != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		request.Header.Set("Authorization", "Bearer "+c.token)
	}
	for key, value := range headers {
		request.Header.Set(key, value)
	}

	started := time.Now()
	resp, err := c.http.Do(request)
	if err != nil {
		return response{}, fmt.Errorf("perform request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return response{}, fmt.Errorf("read response: %w", err)
	}

	c.log.WithFields(logrus.Fields{
		"method":   method,
		"url":      endpoint,
		"status":   resp.StatusCode,
		"duration": time.Since(started),
	}).Debug("portal request")

	return response{status: resp.StatusCode, body: data}, nil
}

// getJSON issues a GET and decodes a successful body into out. Non-2xx
// responses become errors; 401 and 403 wrap ErrUnauthorized.
func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	resp, err := c.do(ctx, http.MethodGet, endpoint, nil, nil)
	if err != nil {
		return err
	}

	if !resp.ok() {
		return statusError(resp)
	}

	if len(bytes.TrimSpace(resp.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	return nil
}

func statusError(resp response) error {
	message := describeFailure(resp)
	if resp.status == http.StatusUnauthorized || resp.status == http.StatusForbidden {
		return fmt.Errorf("%w: status %d: %s", ErrUnauthorized, resp.status, message)
	}

	return fmt.Errorf("status %d: %s", resp.status, message)
}
