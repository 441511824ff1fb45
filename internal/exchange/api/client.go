// Package api implements the HTTP gateway to the remote exchange service.
// Every request goes through one client that attaches the session cookie,
// marks the request as programmatic, and applies a single cross-cutting
// authorization policy to every response.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Service endpoints. Workflow code matches on these to attribute a failure
// to the call that produced it.
const (
	EndpointLogin        = "/auth/login"
	EndpointRegister     = "/auth/register"
	EndpointLogout       = "/auth/logout"
	EndpointCheck        = "/auth/check"
	EndpointWallet       = "/account/wallet"
	EndpointDeposit      = "/account/deposit"
	EndpointWithdraw     = "/account/withdraw"
	EndpointTransactions = "/account/transactions"
	EndpointExchange     = "/exchange/process"
)

const defaultTimeout = 15 * time.Second

// IdentityClearer is the one slice of the identity cache the auth policy
// needs: forced sign-out wipes the cached username.
type IdentityClearer interface {
	Clear()
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	log        zerolog.Logger

	identity   IdentityClearer
	locationFn func() string
	signOutFn  func(reason string)
}

type Option func(*Client)

// WithHTTPClient replaces the underlying transport, e.g. with a recorded
// replayer in tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithRateLimit caps outbound requests per second; bursts of one wallet
// refresh plus one feed fetch stay within the default burst.
func WithRateLimit(requestsPerSecond float64) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 5) }
}

// WithIdentityCache lets the auth policy clear the cached username on a
// forced sign-out.
func WithIdentityCache(cache IdentityClearer) Option {
	return func(c *Client) { c.identity = cache }
}

// WithLocationFunc supplies the current client location ("/", "/login", ...).
// The auth policy only forces a sign-out from protected locations.
func WithLocationFunc(fn func() string) Option {
	return func(c *Client) { c.locationFn = fn }
}

// WithSignOutHandler registers the single top-level listener for forced
// sign-out events. The policy emits the event; the listener navigates.
func WithSignOutHandler(fn func(reason string)) Option {
	return func(c *Client) { c.signOutFn = fn }
}

func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if _, err := url.Parse(baseURL); err != nil || baseURL == "" {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	c := &Client{
		httpClient: &http.Client{Jar: jar, Timeout: defaultTimeout},
		baseURL:    baseURL,
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient.Jar == nil {
		c.httpClient.Jar = jar
	}
	return c, nil
}

// --- PUBLIC API ---

func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, EndpointLogin, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	var resp RegisterResponse
	if err := c.do(ctx, http.MethodPost, EndpointRegister, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, EndpointLogout, nil, nil)
}

// CheckAuth is the liveness probe: no side effects, succeeds only while the
// server still accepts the session cookie.
func (c *Client) CheckAuth(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, EndpointCheck, nil, nil)
}

func (c *Client) Wallet(ctx context.Context) ([]WalletAccount, error) {
	var wallet []WalletAccount
	if err := c.do(ctx, http.MethodGet, EndpointWallet, nil, &wallet); err != nil {
		return nil, err
	}
	return wallet, nil
}

func (c *Client) Deposit(ctx context.Context, req MutationRequest) error {
	return c.do(ctx, http.MethodPost, EndpointDeposit, req, nil)
}

func (c *Client) Withdraw(ctx context.Context, req MutationRequest) error {
	return c.do(ctx, http.MethodPost, EndpointWithdraw, req, nil)
}

// Transactions fetches the raw feed, optionally filtered by currency type.
// "ALL" and "" both mean no filter.
func (c *Client) Transactions(ctx context.Context, currencyType string) ([]Transaction, error) {
	endpoint := EndpointTransactions
	if currencyType != "" && currencyType != "ALL" {
		endpoint += "?currencyType=" + url.QueryEscape(currencyType)
	}

	var txns []Transaction
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &txns); err != nil {
		return nil, err
	}
	return txns, nil
}

func (c *Client) ProcessExchange(ctx context.Context, req ExchangeRequest) (*ExchangeOutcome, error) {
	var outcome ExchangeOutcome
	if err := c.do(ctx, http.MethodPost, EndpointExchange, req, &outcome); err != nil {
		return nil, err
	}
	return &outcome, nil
}

// --- TRANSPORT ---

// errorBody is the error envelope the service uses; some handlers fill
// "message", others "error".
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	c.log.Debug().Str("method", method).Str("endpoint", endpoint).Str("request_id", requestID).Msg("Sending request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return NewError(stripQuery(endpoint), 0, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := NewError(stripQuery(endpoint), resp.StatusCode, readErrorMessage(resp.Body))
		if resp.StatusCode == http.StatusUnauthorized {
			c.enforceAuthPolicy()
		}
		c.log.Debug().Int("status", resp.StatusCode).Str("endpoint", endpoint).Str("request_id", requestID).Msg("Request failed")
		return apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
		}
	}
	return nil
}

func readErrorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 1<<16))
	if err != nil {
		return "request failed"
	}

	var body errorBody
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
		return "request failed"
	}
	// Not the JSON envelope; pass plain-text bodies through as-is.
	if text := strings.TrimSpace(string(data)); text != "" {
		return text
	}
	return "request failed"
}

func stripQuery(endpoint string) string {
	if i := strings.IndexByte(endpoint, '?'); i >= 0 {
		return endpoint[:i]
	}
	return endpoint
}
