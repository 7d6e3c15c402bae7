package mailchimp

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

const apiURLTemplate = "https://%s.api.mailchimp.com/3.0"

// Client is a stateful Mailchimp API client. Calls are chained on one
// instance and share its Current context and last Envelope, so a Client
// must not be used from more than one goroutine. Use Fork for parallel work.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient Doer
	opts       clientOptions
	logger     zerolog.Logger
	account    map[string]any

	current     Current
	last        Envelope
	err         error
	mergeFields map[string]any
}

// NewClient creates a new Mailchimp client and verifies the key against the
// API root. An unauthorized key is fatal and no client is returned.
func NewClient(apiKey string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrEmptyAPIKey
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	baseURL := o.baseURL
	if baseURL == "" {
		dc, err := datacenter(apiKey)
		if err != nil {
			return nil, err
		}
		baseURL = fmt.Sprintf(apiURLTemplate, dc)
	}

	client := newClient(apiKey, strings.TrimRight(baseURL, "/"), o, logger)

	// Test the connection
	if err := client.ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to connect to Mailchimp: %w", err)
	}

	return client, nil
}

func newClient(apiKey, baseURL string, o clientOptions, logger zerolog.Logger) *Client {
	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: o.timeout}
	}

	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		opts:       o,
		logger:     logger,
	}
}

// datacenter extracts the "us6" part of a "<hex>-us6" key
func datacenter(apiKey string) (string, error) {
	idx := strings.LastIndex(apiKey, "-")
	if idx < 0 || idx == len(apiKey)-1 {
		return "", ErrInvalidAPIKey
	}
	return apiKey[idx+1:], nil
}

func (c *Client) ping(ctx context.Context) error {
	status, body, err := c.dispatch(ctx, http.MethodGet, "/", nil)
	if err != nil {
		return err
	}

	if env := Classify(status, body, false); env != nil {
		if status == http.StatusUnauthorized {
			return fmt.Errorf("%w: %s", ErrUnauthorized, env.Message)
		}
		c.logger.Warn().
			Int("status", status).
			Str("detail", env.Message).
			Msg("Mailchimp root endpoint returned an error")
		return nil
	}

	if account, ok := body.(map[string]any); ok {
		c.account = account
	}

	c.logger.Debug().Str("base_url", c.baseURL).Msg("Successfully connected to Mailchimp")
	return nil
}

// Account returns the API root document fetched during construction
func (c *Client) Account() map[string]any {
	return c.account
}

// Fork returns a client sharing this one's key, transport and options but
// with empty context and chain state. No connection test is made.
func (c *Client) Fork() *Client {
	fork := newClient(c.apiKey, c.baseURL, c.opts, c.logger)
	fork.httpClient = c.httpClient
	fork.account = c.account
	return fork
}
