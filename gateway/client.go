package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/whwar9739/WhiskeyTracker/session"
)

const (
	defaultRequestTimeout = 10 * time.Second
	maxResponseBodyBytes  = 1 << 20

	defaultTokenEndpoint        = "/api/auth/token"
	defaultVerifyEndpoint       = "/api/auth/test-token"
	defaultRegisterEndpoint     = "/api/users/register"
	defaultResetRequestEndpoint = "/api/users/request-password-reset"
	defaultResetEndpoint        = "/api/users/reset-password"
)

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config drives the protocol client. BaseURL is the backend origin; the
// endpoint paths default to the WhiskeyTracker API layout.
type Config struct {
	BaseURL              string        `koanf:"base_url" mapstructure:"base_url"`
	TokenEndpoint        string        `koanf:"token_endpoint" mapstructure:"token_endpoint"`
	VerifyEndpoint       string        `koanf:"verify_endpoint" mapstructure:"verify_endpoint"`
	RegisterEndpoint     string        `koanf:"register_endpoint" mapstructure:"register_endpoint"`
	ResetRequestEndpoint string        `koanf:"reset_request_endpoint" mapstructure:"reset_request_endpoint"`
	ResetEndpoint        string        `koanf:"reset_endpoint" mapstructure:"reset_endpoint"`
	RequestTimeout       time.Duration `koanf:"request_timeout" mapstructure:"request_timeout"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return fmt.Errorf("gateway: base_url is required")
	}
	if _, err := url.Parse(strings.TrimSpace(c.BaseURL)); err != nil {
		return fmt.Errorf("gateway: invalid base_url: %w", err)
	}
	return nil
}

// Client talks to the backend token, verification, registration, and
// password-reset endpoints. It holds no session state of its own.
type Client struct {
	config     Config
	httpClient HTTPDoer
	logger     glog.Logger
}

type Option func(*Client)

func WithHTTPClient(httpClient HTTPDoer) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

func WithLogger(logger glog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func New(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if strings.TrimSpace(cfg.TokenEndpoint) == "" {
		cfg.TokenEndpoint = defaultTokenEndpoint
	}
	if strings.TrimSpace(cfg.VerifyEndpoint) == "" {
		cfg.VerifyEndpoint = defaultVerifyEndpoint
	}
	if strings.TrimSpace(cfg.RegisterEndpoint) == "" {
		cfg.RegisterEndpoint = defaultRegisterEndpoint
	}
	if strings.TrimSpace(cfg.ResetRequestEndpoint) == "" {
		cfg.ResetRequestEndpoint = defaultResetRequestEndpoint
	}
	if strings.TrimSpace(cfg.ResetEndpoint) == "" {
		cfg.ResetEndpoint = defaultResetEndpoint
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}

	client := &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		logger:     glog.Ensure(nil),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(client)
	}
	return client, nil
}

// Login performs the two-step protocol: obtain a bearer token with
// form-encoded credentials, then confirm it against the verification
// endpoint to fetch the canonical user record. The token is only returned
// when both steps succeed, so callers never commit an unverified pair.
func (c *Client) Login(ctx context.Context, email, password string) (session.UserRecord, string, error) {
	if c == nil || c.httpClient == nil {
		return nil, "", &AuthenticationError{Message: fallbackLoginMessage, Cause: fmt.Errorf("gateway: http client is not configured")}
	}
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, "", &AuthenticationError{Message: "email and password are required"}
	}

	// The token endpoint is OAuth2 form-shaped: the email travels in the
	// username field.
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	status, body, err := c.do(ctx, http.MethodPost, c.config.TokenEndpoint, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()), "")
	if err != nil {
		return nil, "", &AuthenticationError{Message: fallbackLoginMessage, Cause: err}
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return nil, "", &AuthenticationError{
			StatusCode: status,
			Message:    detailOr(body, fallbackLoginMessage),
			Cause:      ErrAuthenticationFailed,
		}
	}

	var tokenPayload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &tokenPayload); err != nil {
		return nil, "", &AuthenticationError{StatusCode: status, Message: fallbackLoginMessage, Cause: err}
	}
	token := strings.TrimSpace(tokenPayload.AccessToken)
	if token == "" {
		return nil, "", &AuthenticationError{StatusCode: status, Message: fallbackLoginMessage, Cause: fmt.Errorf("gateway: token response missing access token")}
	}

	user, err := c.Verify(ctx, token)
	if err != nil {
		return nil, "", err
	}

	c.logger.Debug("login verified", "email", email, "user_id", user.ID())
	return user, token, nil
}

// Verify presents the bearer token to the verification endpoint and returns
// the backend's view of the identity it belongs to.
func (c *Client) Verify(ctx context.Context, token string) (session.UserRecord, error) {
	if c == nil || c.httpClient == nil {
		return nil, &AuthenticationError{Message: verifyFailedMessage, Verify: true, Cause: fmt.Errorf("gateway: http client is not configured")}
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, &AuthenticationError{Message: verifyFailedMessage, Verify: true}
	}

	status, body, err := c.do(ctx, http.MethodPost, c.config.VerifyEndpoint, "application/json", nil, token)
	if err != nil {
		return nil, &AuthenticationError{Message: verifyFailedMessage, Verify: true, Cause: err}
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		// No body contract on verify failures; surface the fixed message.
		return nil, &AuthenticationError{StatusCode: status, Message: verifyFailedMessage, Verify: true, Cause: ErrAuthenticationFailed}
	}

	var user session.UserRecord
	if err := json.Unmarshal(body, &user); err != nil || user == nil {
		return nil, &AuthenticationError{StatusCode: status, Message: verifyFailedMessage, Verify: true, Cause: err}
	}
	return user, nil
}

// Register submits a new account. Success returns the created identity but
// never a session; the backend does not issue tokens on registration.
func (c *Client) Register(ctx context.Context, username, email, password string) (session.UserRecord, error) {
	if c == nil || c.httpClient == nil {
		return nil, &RegistrationError{Message: fallbackRegistrationMessage, Cause: fmt.Errorf("gateway: http client is not configured")}
	}

	payload, err := json.Marshal(map[string]string{
		"username": strings.TrimSpace(username),
		"email":    strings.TrimSpace(email),
		"password": password,
	})
	if err != nil {
		return nil, &RegistrationError{Message: fallbackRegistrationMessage, Cause: err}
	}

	status, body, err := c.do(ctx, http.MethodPost, c.config.RegisterEndpoint, "application/json", bytes.NewReader(payload), "")
	if err != nil {
		return nil, &RegistrationError{Message: fallbackRegistrationMessage, Cause: err}
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return nil, &RegistrationError{
			StatusCode: status,
			Message:    detailOr(body, fallbackRegistrationMessage),
			Cause:      ErrRegistrationFailed,
		}
	}

	var user session.UserRecord
	if err := json.Unmarshal(body, &user); err != nil || user == nil {
		return nil, &RegistrationError{StatusCode: status, Message: fallbackRegistrationMessage, Cause: err}
	}

	c.logger.Debug("registration accepted", "username", username)
	return user, nil
}

// RequestPasswordReset asks the backend to start a reset flow for the given
// email. The backend answers with the same message whether or not the
// account exists, so success only means the request was accepted.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	if c == nil || c.httpClient == nil {
		return &PasswordResetError{Message: fallbackResetMessage, Cause: fmt.Errorf("gateway: http client is not configured")}
	}
	payload, err := json.Marshal(map[string]string{"email": strings.TrimSpace(email)})
	if err != nil {
		return &PasswordResetError{Message: fallbackResetMessage, Cause: err}
	}

	status, body, err := c.do(ctx, http.MethodPost, c.config.ResetRequestEndpoint, "application/json", bytes.NewReader(payload), "")
	if err != nil {
		return &PasswordResetError{Message: fallbackResetMessage, Cause: err}
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return &PasswordResetError{
			StatusCode: status,
			Message:    detailOr(body, fallbackResetMessage),
			Cause:      ErrPasswordResetFailed,
		}
	}
	return nil
}

// ResetPassword redeems a reset token for a new password.
func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) error {
	if c == nil || c.httpClient == nil {
		return &PasswordResetError{Message: fallbackResetMessage, Cause: fmt.Errorf("gateway: http client is not configured")}
	}
	payload, err := json.Marshal(map[string]string{
		"token":        strings.TrimSpace(token),
		"new_password": newPassword,
	})
	if err != nil {
		return &PasswordResetError{Message: fallbackResetMessage, Cause: err}
	}

	status, body, err := c.do(ctx, http.MethodPost, c.config.ResetEndpoint, "application/json", bytes.NewReader(payload), "")
	if err != nil {
		return &PasswordResetError{Message: fallbackResetMessage, Cause: err}
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return &PasswordResetError{
			StatusCode: status,
			Message:    detailOr(body, fallbackResetMessage),
			Cause:      ErrPasswordResetFailed,
		}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, endpoint, contentType string, body io.Reader, bearer string) (int, []byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	requestCtx := ctx
	cancel := func() {}
	if c.config.RequestTimeout > 0 {
		requestCtx, cancel = context.WithTimeout(ctx, c.config.RequestTimeout)
	}
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, method, c.config.BaseURL+endpoint, body)
	if err != nil {
		return 0, nil, fmt.Errorf("gateway: build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	response, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("gateway: request failed: %w", err)
	}
	defer response.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBodyBytes+1))
	if err != nil {
		return 0, nil, fmt.Errorf("gateway: read response: %w", err)
	}
	if int64(len(payload)) > maxResponseBodyBytes {
		return 0, nil, fmt.Errorf("gateway: response exceeds %d bytes", maxResponseBodyBytes)
	}
	return response.StatusCode, payload, nil
}

// detailOr extracts the backend's human-readable detail field, falling back
// to the provided message when the body carries none.
func detailOr(body []byte, fallback string) string {
	if len(bytes.TrimSpace(body)) == 0 {
		return fallback
	}
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return fallback
	}
	if detail := strings.TrimSpace(payload.Detail); detail != "" {
		return detail
	}
	return fallback
}
