package bugapi

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

	"github.com/google/uuid"

	"github.com/yildizm/BugFinder/internal/logger"
)

const (
	// DefaultEndpoint is the service address used when none is configured
	DefaultEndpoint = "http://localhost:8000"

	// DefaultFindBugPath is the analysis route
	DefaultFindBugPath = "/find-bug"

	// DefaultSampleCasesPath is the sample catalog route
	DefaultSampleCasesPath = "/sample-cases"

	// DefaultTimeout bounds a single request
	DefaultTimeout = 30 * time.Second

	// maxBodyBytes caps how much of a response body is read
	maxBodyBytes = 1 << 20
)

// Config holds client settings
type Config struct {
	// Endpoint is the service base URL
	Endpoint string `json:"endpoint"`

	// FindBugPath is joined to Endpoint for analysis requests
	FindBugPath string `json:"find_bug_path"`

	// SampleCasesPath is joined to Endpoint for the sample catalog
	SampleCasesPath string `json:"sample_cases_path"`

	// Timeout for HTTP requests
	Timeout time.Duration `json:"timeout"`

	// Logger receives request traces; nil means silent
	Logger *logger.Logger `json:"-"`

	// HTTPClient overrides the default client when set
	HTTPClient *http.Client `json:"-"`
}

// DefaultConfig returns a configuration pointing at a local service
func DefaultConfig() Config {
	return Config{
		Endpoint:        DefaultEndpoint,
		FindBugPath:     DefaultFindBugPath,
		SampleCasesPath: DefaultSampleCasesPath,
		Timeout:         DefaultTimeout,
	}
}

// Validate validates the configuration
func (c Config) Validate() error {
	if strings.TrimSpace(c.Endpoint) == "" {
		return NewServiceError(ErrTypeConfiguration, "endpoint is required")
	}

	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return NewServiceErrorWithCause(ErrTypeConfiguration, "invalid endpoint", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return NewServiceError(ErrTypeConfiguration, fmt.Sprintf("endpoint scheme must be http or https, got %q", u.Scheme))
	}
	if u.Host == "" {
		return NewServiceError(ErrTypeConfiguration, "endpoint host is required")
	}

	if c.Timeout < 0 {
		return NewServiceError(ErrTypeConfiguration, "timeout must not be negative")
	}

	return nil
}

// Client talks to the Bug Analysis Service
type Client struct {
	config  Config
	client  *http.Client
	baseURL *url.URL
	log     *logger.Logger
}

// New creates a new client
func New(config Config) (*Client, error) {
	if config.FindBugPath == "" {
		config.FindBugPath = DefaultFindBugPath
	}
	if config.SampleCasesPath == "" {
		config.SampleCasesPath = DefaultSampleCasesPath
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	baseURL, err := url.Parse(config.Endpoint)
	if err != nil {
		return nil, NewServiceErrorWithCause(ErrTypeConfiguration, "invalid endpoint", err)
	}

	client := config.HTTPClient
	if client == nil {
		client = &http.Client{
			Timeout: config.Timeout,
		}
	}

	log := config.Logger
	if log == nil {
		log = logger.Nop()
	}

	return &Client{
		config:  config,
		client:  client,
		baseURL: baseURL,
		log:     log,
	}, nil
}

// Endpoint returns the configured base URL
func (c *Client) Endpoint() string {
	return c.baseURL.String()
}

// FindBug submits one snippet for analysis
func (c *Client) FindBug(ctx context.Context, language Language, code string) (*Report, error) {
	if !language.Valid() {
		return nil, NewValidationError("language", string(language), "unsupported language")
	}

	body, err := json.Marshal(&FindBugRequest{Language: language, Code: code})
	if err != nil {
		return nil, NewServiceErrorWithCause(ErrTypeValidation, "failed to marshal request", err)
	}

	resp, requestID, err := c.do(ctx, http.MethodPost, c.config.FindBugPath, body)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, withRequestID(transportError(ctx, "failed to read response", err), requestID)
	}

	if !isSuccess(resp.StatusCode) {
		se := NewServiceError(ErrTypeServer, fmt.Sprintf("request failed with status %d", resp.StatusCode))
		se.StatusCode = resp.StatusCode
		se.RequestID = requestID

		var errorResp ErrorResponse
		if json.Unmarshal(data, &errorResp) == nil && errorResp.Detail != nil {
			se.Detail = strings.TrimSpace(*errorResp.Detail)
		}
		return nil, se
	}

	var wire wireReport
	if err := decodeStrict(data, &wire); err != nil {
		return nil, withRequestID(NewServiceErrorWithCause(ErrTypeDecode, "failed to decode response", err), requestID)
	}

	report, ok := wire.toReport()
	if !ok {
		return nil, withRequestID(NewServiceError(ErrTypeDecode, "response is missing bug_type or description"), requestID)
	}

	return &report, nil
}

// SampleCases fetches the service's sample catalog in the order served
func (c *Client) SampleCases(ctx context.Context) ([]Report, error) {
	resp, requestID, err := c.do(ctx, http.MethodGet, c.config.SampleCasesPath, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if !isSuccess(resp.StatusCode) {
		se := NewServiceError(ErrTypeServer, fmt.Sprintf("request failed with status %d", resp.StatusCode))
		se.StatusCode = resp.StatusCode
		se.RequestID = requestID
		return nil, se
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, withRequestID(transportError(ctx, "failed to read response", err), requestID)
	}

	var wire []wireReport
	if err := decodeStrict(data, &wire); err != nil {
		return nil, withRequestID(NewServiceErrorWithCause(ErrTypeDecode, "failed to decode sample cases", err), requestID)
	}

	cases := make([]Report, 0, len(wire))
	for i, w := range wire {
		report, ok := w.toReport()
		if !ok {
			return nil, withRequestID(NewServiceError(ErrTypeDecode, fmt.Sprintf("sample case %d is missing bug_type or description", i)), requestID)
		}
		cases = append(cases, report)
	}

	return cases, nil
}

// do sends one request and logs its outcome
func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, string, error) {
	endpoint := c.baseURL.JoinPath(path)
	requestID := uuid.NewString()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return nil, requestID, withRequestID(NewServiceErrorWithCause(ErrTypeConfiguration, "failed to create request", err), requestID)
	}

	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		se := withRequestID(transportError(ctx, "request failed", err), requestID)
		c.log.DebugWithFields("request failed", []logger.Field{
			logger.F("method", method),
			logger.F("path", endpoint.Path),
			logger.F("request_id", requestID),
			logger.Duration(time.Since(start)),
			logger.Error(err),
		})
		return nil, requestID, se
	}

	c.log.DebugWithFields("request finished", []logger.Field{
		logger.F("method", method),
		logger.F("path", endpoint.Path),
		logger.F("status", resp.StatusCode),
		logger.F("request_id", requestID),
		logger.Duration(time.Since(start)),
	})

	return resp, requestID, nil
}

// decodeStrict rejects trailing data after the first JSON value
func decodeStrict(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after JSON value")
	}
	return nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func withRequestID(se *ServiceError, requestID string) *ServiceError {
	se.RequestID = requestID
	return se
}
