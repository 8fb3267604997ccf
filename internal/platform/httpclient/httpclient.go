package httpclient

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
)

const (
	DefaultTimeout = 10 * time.Second

	// Tope de lectura de respuestas (éxito o error).
	maxBodyBytes = 1 << 20
)

type Options struct {
	// BaseURL opcional; con ella Call.Path puede ser relativo.
	BaseURL   string
	Timeout   time.Duration
	Transport http.RoundTripper
	UserAgent string
}

// Client es el helper JSON compartido por los adapters salientes
// (identidad, generadores de texto).
type Client struct {
	http      *http.Client
	baseURL   string
	userAgent string
}

func New(opts Options) (*Client, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	base := strings.TrimSpace(opts.BaseURL)
	if base != "" {
		u, err := url.ParseRequestURI(base)
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("invalid base url %q", base)
		}
		base = strings.TrimRight(base, "/")
	}

	return &Client{
		http:      &http.Client{Timeout: timeout, Transport: opts.Transport},
		baseURL:   base,
		userAgent: strings.TrimSpace(opts.UserAgent),
	}, nil
}

func (c *Client) BaseURL() string {
	if c == nil {
		return ""
	}
	return c.baseURL
}

type Call struct {
	Method string
	Path   string // relativo a BaseURL o URL absoluta
	Header map[string]string
	Body   any // nil = sin body
}

// HTTPError es una respuesta no-2xx.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("http %d", e.StatusCode)
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Body)
}

// Unauthorized: credenciales rechazadas (401/403).
func (e *HTTPError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// Retryable: vale la pena reintentar u otro destino (408, 429, 5xx).
func (e *HTTPError) Retryable() bool {
	return e.StatusCode == http.StatusRequestTimeout ||
		e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode >= 500
}

// StatusCode devuelve el status de un *HTTPError envuelto en err, o 0.
func StatusCode(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.StatusCode
	}
	return 0
}

// JSON envía call y decodifica la respuesta en out (si out != nil y hay body).
func (c *Client) JSON(ctx context.Context, call Call, out any) error {
	if c == nil || c.http == nil {
		return errors.New("httpclient: nil client")
	}

	target, err := c.resolve(call.Path)
	if err != nil {
		return err
	}

	var body io.Reader
	if call.Body != nil {
		b, err := json.Marshal(call.Body)
		if err != nil {
			return fmt.Errorf("httpclient: encode body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	method := call.Method
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("httpclient: build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if call.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	for k, v := range call.Header {
		if strings.TrimSpace(k) != "" {
			req.Header.Set(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s %s: %w", method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("httpclient: decode body: %w", err)
	}
	return nil
}

func (c *Client) resolve(path string) (string, error) {
	path = strings.TrimSpace(path)
	switch {
	case path == "":
		return "", errors.New("httpclient: empty path")
	case strings.HasPrefix(path, "http://"), strings.HasPrefix(path, "https://"):
		return path, nil
	case c.baseURL == "":
		return "", fmt.Errorf("httpclient: relative path %q without base url", path)
	}
	return c.baseURL + "/" + strings.TrimLeft(path, "/"), nil
}
