package generator

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/certforge/certforge/pkg/cache"
	cferrors "github.com/certforge/certforge/pkg/errors"
	"github.com/certforge/certforge/pkg/observability"
)

const (
	// DefaultModel is the Gemini model used when none is configured.
	DefaultModel = "gemini-2.0-flash"

	// DefaultBaseURL is the public Gemini REST endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com"

	// DefaultTimeout bounds one generateContent call.
	DefaultTimeout = 60 * time.Second

	maxErrorBody = 512
)

// Gemini calls the Gemini REST API (POST /v1beta/models/{model}:generateContent).
type Gemini struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	logger  *log.Logger
	retry   bool
}

// GeminiOption configures a Gemini client.
type GeminiOption func(*Gemini)

// WithModel selects the model. Empty keeps DefaultModel.
func WithModel(model string) GeminiOption {
	return func(g *Gemini) {
		if model != "" {
			g.model = model
		}
	}
}

// WithBaseURL points the client at another endpoint. Empty keeps DefaultBaseURL.
func WithBaseURL(u string) GeminiOption {
	return func(g *Gemini) {
		if u != "" {
			g.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) GeminiOption {
	return func(g *Gemini) {
		if d > 0 {
			g.client.Timeout = d
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) GeminiOption {
	return func(g *Gemini) {
		if c != nil {
			g.client = c
		}
	}
}

// WithLogger sets the logger for request diagnostics.
func WithLogger(l *log.Logger) GeminiOption {
	return func(g *Gemini) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithRetry enables or disables retries of transient failures. On by default.
func WithRetry(enabled bool) GeminiOption {
	return func(g *Gemini) { g.retry = enabled }
}

// NewGemini creates a client. The API key is required.
func NewGemini(apiKey string, opts ...GeminiOption) (*Gemini, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, cferrors.New(cferrors.ErrCodeNoAPIKey, "gemini API key is empty")
	}
	g := &Gemini{
		apiKey:  apiKey,
		model:   DefaultModel,
		baseURL: DefaultBaseURL,
		client:  &http.Client{Timeout: DefaultTimeout},
		logger:  log.New(io.Discard),
		retry:   true,
	}
	for _, opt := range opts {
		opt(g)
	}
	if err := cferrors.ValidateURL(g.baseURL); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Gemini) Name() string { return "gemini" }

// Model returns the configured model name.
func (g *Gemini) Model() string { return g.model }

// Generate sends the designer prompt and the background image and returns
// the text of the first candidate.
func (g *Gemini) Generate(ctx context.Context, req Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	prompt, err := Prompt(req.Category)
	if err != nil {
		return "", err
	}
	mime := req.MIME
	if mime == "" {
		mime = "image/jpeg"
	}
	payload, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{
				{Text: prompt},
				{InlineData: &geminiInlineData{
					MimeType: mime,
					Data:     base64.StdEncoding.EncodeToString(req.Image),
				}},
			},
		}},
	})
	if err != nil {
		return "", cferrors.Wrap(cferrors.ErrCodeInternal, err, "marshal gemini request")
	}

	var text string
	call := func() error {
		var err error
		text, err = g.do(ctx, payload)
		return err
	}
	if g.retry {
		err = cache.RetryWithBackoff(ctx, call)
	} else {
		err = call()
	}
	if err != nil {
		return "", err
	}
	return text, nil
}

func (g *Gemini) do(ctx context.Context, payload []byte) (string, error) {
	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.baseURL, url.PathEscape(g.model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", cferrors.Wrap(cferrors.ErrCodeInternal, err, "build gemini request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := g.client.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return "", transportError(err)
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", cache.Retryable(cferrors.Wrap(cferrors.ErrCodeNetwork, err, "read gemini response"))
	}
	g.logger.Debug("gemini response", "status", resp.StatusCode, "bytes", len(body), "duration", time.Since(start))

	if err := statusError(resp, body); err != nil {
		return "", err
	}

	var result geminiResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", cferrors.Wrap(cferrors.ErrCodeRecoveryFailed, err, "decode gemini response")
	}
	if len(result.Candidates) == 0 {
		return "", cferrors.New(cferrors.ErrCodeRecoveryFailed, "gemini returned no candidates")
	}
	var b strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	if b.Len() == 0 {
		return "", cferrors.New(cferrors.ErrCodeRecoveryFailed, "gemini returned no text")
	}
	return b.String(), nil
}

// transportError classifies a failed round trip. Timeouts and connection
// failures are retried.
func transportError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return cache.Retryable(cferrors.Wrap(cferrors.ErrCodeTimeout, err, "gemini request timed out"))
	}
	return cache.Retryable(cferrors.Wrap(cferrors.ErrCodeNetwork, err, "gemini request failed"))
}

// statusError maps a non-200 response to a coded error. 429 and 5xx are
// retried; other statuses are final.
func statusError(resp *http.Response, body []byte) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	snippet := strings.TrimSpace(string(body))
	if len(snippet) > maxErrorBody {
		snippet = snippet[:maxErrorBody]
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return cache.Retryable(cferrors.Wrap(cferrors.ErrCodeRateLimited,
			&cferrors.RateLimitedError{RetryAfter: retryAfter, Message: snippet},
			"gemini rate limit"))
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return cferrors.New(cferrors.ErrCodeNoAPIKey, "gemini rejected the API key (status %d)", resp.StatusCode)
	case resp.StatusCode >= 500:
		return cache.Retryable(cferrors.New(cferrors.ErrCodeNetwork, "gemini server error (status %d): %s", resp.StatusCode, snippet))
	default:
		return cferrors.New(cferrors.ErrCodeNetwork, "gemini API error (status %d): %s", resp.StatusCode, snippet)
	}
}

// =============================================================================
// Wire types
// =============================================================================

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiCandidate struct {
	Content geminiContent `json:"content"`
}

type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

var _ Generator = (*Gemini)(nil)
