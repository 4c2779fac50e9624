package safe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
)

// ErrUnsupportedChain is returned when no Transaction Service URL is known for a chain
var ErrUnsupportedChain = errors.New("unsupported chain")

// TransactionServiceURLs contains the Safe Transaction Service URLs for different networks
var TransactionServiceURLs = map[uint64]string{
	1:        "https://safe-transaction-mainnet.safe.global",
	10:       "https://safe-transaction-optimism.safe.global",
	100:      "https://safe-transaction-gnosis-chain.safe.global",
	137:      "https://safe-transaction-polygon.safe.global",
	42161:    "https://safe-transaction-arbitrum.safe.global",
	11155111: "https://safe-transaction-sepolia.safe.global",
	8453:     "https://safe-transaction-base.safe.global",
	56:       "https://safe-transaction-bsc.safe.global",
	43114:    "https://safe-transaction-avalanche.safe.global",
	324:      "https://safe-transaction-zksync.safe.global",
	42220:    "https://safe-transaction-celo.safe.global",
	11142220: "https://safe-transaction-celo-sepolia.safe.global", // Celo Sepolia testnet
}

// SafeClient talks to a Safe Transaction Service instance
type SafeClient struct {
	serviceURL    string
	apiKey        string
	httpClient    *http.Client
	retryAttempts uint
	retryDelay    time.Duration
}

// Option configures a SafeClient
type Option func(*SafeClient)

// WithServiceURL overrides the service URL derived from the chain ID
func WithServiceURL(url string) Option {
	return func(c *SafeClient) {
		if url != "" {
			c.serviceURL = strings.TrimRight(url, "/")
		}
	}
}

// WithAPIKey sends the key as a bearer token
func WithAPIKey(key string) Option {
	return func(c *SafeClient) {
		c.apiKey = key
	}
}

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *SafeClient) {
		c.httpClient = client
	}
}

// WithRetry sets the number of attempts and the initial backoff delay
func WithRetry(attempts uint, delay time.Duration) Option {
	return func(c *SafeClient) {
		c.retryAttempts = attempts
		c.retryDelay = delay
	}
}

// NewSafeClient creates a client for the given chain
func NewSafeClient(chainID uint64, opts ...Option) (*SafeClient, error) {
	c := &SafeClient{
		serviceURL: TransactionServiceURLs[chainID],
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		retryAttempts: 3,
		retryDelay:    500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.serviceURL == "" {
		return nil, fmt.Errorf("%w: no Safe Transaction Service for chain ID %d", ErrUnsupportedChain, chainID)
	}
	if c.retryAttempts == 0 {
		c.retryAttempts = 1
	}

	return c, nil
}

// ServiceURL returns the base URL the client talks to
func (c *SafeClient) ServiceURL() string {
	return c.serviceURL
}

// StatusError is returned for non-200 responses
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d, body: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the request may succeed when repeated
func (e *StatusError) Retryable() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}

// getJSON fetches url and decodes the JSON body into out, retrying transient failures
func (c *SafeClient) getJSON(ctx context.Context, url string, out any) error {
	return retry.Do(
		func() error {
			return c.doGet(ctx, url, out)
		},
		retry.Context(ctx),
		retry.Attempts(c.retryAttempts),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryable),
	)
}

func (c *SafeClient) doGet(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return retry.Unrecoverable(fmt.Errorf("failed to decode response: %w", err))
	}

	return nil
}

func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Retryable()
	}
	return true
}
