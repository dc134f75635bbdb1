package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/inkridge/studio-client/pkg/errors"
	"github.com/inkridge/studio-client/pkg/metrics"
)

const csrfCookieName = "XSRF-TOKEN"

// TokenSource supplies the bearer token for outbound calls. It is consulted
// on every request so a login or logout between calls takes effect
// immediately.
type TokenSource interface {
	Token() string
}

// Client wraps outbound calls to the backend: it attaches credentials,
// primes and forwards the CSRF cookie, and normalizes failures into typed
// errors carrying the server's message when one is available.
type Client struct {
	baseURL   *url.URL
	csrfPath  string
	userAgent string
	http      *http.Client
	tokens    TokenSource
	logger    *zap.Logger
	requests  *metrics.Requests
}

// Options configures a Client.
type Options struct {
	BaseURL   string
	CSRFPath  string
	UserAgent string
	Timeout   time.Duration
	Tokens    TokenSource
	Logger    *zap.Logger
	Requests  *metrics.Requests
}

// New constructs a Client. A cookie jar is always installed so the CSRF
// cookie survives between the priming call and the state-changing request.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", opts.BaseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	csrfPath := opts.CSRFPath
	if csrfPath == "" {
		csrfPath = "/sanctum/csrf-cookie"
	}

	return &Client{
		baseURL:   base,
		csrfPath:  csrfPath,
		userAgent: opts.UserAgent,
		http:      &http.Client{Timeout: timeout, Jar: jar},
		tokens:    opts.Tokens,
		logger:    logger,
		requests:  opts.Requests,
	}, nil
}

type staticToken string

func (t staticToken) Token() string { return string(t) }

// WithToken returns a copy of the client whose bearer token is frozen at
// token, unaffected by later session changes. Logout needs this: the store
// is cleared before the invalidation call, and the server cannot revoke a
// credential it never receives.
func (c *Client) WithToken(token string) *Client {
	frozen := *c
	frozen.tokens = staticToken(token)
	return &frozen
}

// PrimeCSRF issues the cookie priming call required before login, register
// and logout. The resulting cookie lives in the jar.
func (c *Client) PrimeCSRF(ctx context.Context) error {
	// The priming endpoint sits on the origin, not under the API prefix.
	origin := &url.URL{Scheme: c.baseURL.Scheme, Host: c.baseURL.Host, Path: c.csrfPath}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin.String(), nil)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "build csrf request")
	}
	c.setCommonHeaders(req)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.requests.Observe(http.MethodGet, "csrf_prime", 0, time.Since(start))
		return apperrors.Wrap(err, apperrors.ErrNetwork.Code, 0, apperrors.ErrNetwork.Message)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	c.requests.Observe(http.MethodGet, "csrf_prime", resp.StatusCode, time.Since(start))

	if resp.StatusCode >= 400 {
		return apperrors.FromStatus(resp.StatusCode, "")
	}
	return nil
}

// Get issues a GET and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, operation, path string, out any) error {
	return c.do(ctx, operation, http.MethodGet, path, nil, "", out)
}

// Post issues a JSON POST.
func (c *Client) Post(ctx context.Context, operation, path string, in, out any) error {
	body, err := encodeJSON(in)
	if err != nil {
		return err
	}
	return c.do(ctx, operation, http.MethodPost, path, body, "application/json", out)
}

// Put issues a JSON PUT.
func (c *Client) Put(ctx context.Context, operation, path string, in, out any) error {
	body, err := encodeJSON(in)
	if err != nil {
		return err
	}
	return c.do(ctx, operation, http.MethodPut, path, body, "application/json", out)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, operation, path string, out any) error {
	return c.do(ctx, operation, http.MethodDelete, path, nil, "", out)
}

// PostMultipart uploads a file alongside form fields. The caller is expected
// to have validated size and type already; this method only moves bytes.
func (c *Client) PostMultipart(ctx context.Context, operation, path string, fields map[string]string, fileField, filePath string, out any) error {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			return apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "build upload form")
		}
	}
	if filePath != "" {
		f, err := os.Open(filePath)
		if err != nil {
			return apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "open upload file")
		}
		defer f.Close()
		part, err := writer.CreateFormFile(fileField, filepath.Base(filePath))
		if err != nil {
			return apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "build upload form")
		}
		if _, err := io.Copy(part, f); err != nil {
			return apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "read upload file")
		}
	}
	if err := writer.Close(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "finalize upload form")
	}
	return c.do(ctx, operation, http.MethodPost, path, buf, writer.FormDataContentType(), out)
}

func (c *Client) do(ctx context.Context, operation, method, path string, body io.Reader, contentType string, out any) error {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "build request")
	}

	c.setCommonHeaders(req)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.currentToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if method != http.MethodGet {
		if xsrf := c.csrfToken(); xsrf != "" {
			req.Header.Set("X-XSRF-TOKEN", xsrf)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.requests.Observe(method, operation, 0, time.Since(start))
		c.logger.Warn("request failed", zap.String("operation", operation), zap.Error(err))
		return apperrors.Wrap(err, apperrors.ErrNetwork.Code, 0, apperrors.ErrNetwork.Message)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	c.requests.Observe(method, operation, resp.StatusCode, time.Since(start))
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrNetwork.Code, resp.StatusCode, "read response")
	}

	c.logger.Debug("request settled",
		zap.String("operation", operation),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode >= 400 {
		return apperrors.FromStatus(resp.StatusCode, serverMessage(raw))
	}

	if out == nil || len(raw) == 0 || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperrors.Wrap(err, apperrors.ErrInternal.Code, resp.StatusCode, "decode response")
	}
	return nil
}

func (c *Client) setCommonHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
}

func (c *Client) currentToken() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

func (c *Client) csrfToken() string {
	origin := &url.URL{Scheme: c.baseURL.Scheme, Host: c.baseURL.Host, Path: "/"}
	for _, cookie := range c.http.Jar.Cookies(origin) {
		if cookie.Name == csrfCookieName {
			if decoded, err := url.QueryUnescape(cookie.Value); err == nil {
				return decoded
			}
			return cookie.Value
		}
	}
	return ""
}

// serverMessage digs the human-readable message out of an error body.
func serverMessage(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}

func encodeJSON(in any) (io.Reader, error) {
	if in == nil {
		return nil, nil
	}
	raw, err := json.Marshal(in)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "encode request")
	}
	return bytes.NewReader(raw), nil
}
