// Package uber is a thin client for the Uber Direct deliveries API.
package uber

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

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	pkgerrors "github.com/forkline/storefront/pkg/errors"
)

const (
	defaultBaseURL              = "https://api.uber.com/v1"
	defaultTokenURL             = "https://auth.uber.com/oauth/v2/token"
	deliveriesScope             = "eats.deliveries"
	responseBodyReadLimit int64 = 1024
)

var (
	errCredentialsRequired = errors.New("uber customer id, client id and client secret are required")
)

// Credentials identify an Uber Direct organization.
type Credentials struct {
	CustomerID   string
	ClientID     string
	ClientSecret string
}

// Client wraps the Direct endpoints used for quoting and dispatching.
type Client struct {
	httpClient *http.Client
	baseURL    string
	customerID string
}

type options struct {
	baseURL   string
	tokenURL  string
	transport *http.Client
}

// Option configures optional client behavior.
type Option func(*options)

// WithHTTPClient sets the client used for both token and API calls.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		if client != nil {
			o.transport = client
		}
	}
}

// WithBaseURL overrides the Direct base URL.
func WithBaseURL(baseURL string) Option {
	return func(o *options) {
		if trimmed := strings.TrimSpace(baseURL); trimmed != "" {
			o.baseURL = trimmed
		}
	}
}

// WithTokenURL overrides the OAuth token endpoint.
func WithTokenURL(tokenURL string) Option {
	return func(o *options) {
		if trimmed := strings.TrimSpace(tokenURL); trimmed != "" {
			o.tokenURL = trimmed
		}
	}
}

// NewClient builds a Direct client whose requests carry client-credentials
// tokens, cached and refreshed by oauth2.
func NewClient(ctx context.Context, creds Credentials, opts ...Option) (*Client, error) {
	creds.CustomerID = strings.TrimSpace(creds.CustomerID)
	creds.ClientID = strings.TrimSpace(creds.ClientID)
	creds.ClientSecret = strings.TrimSpace(creds.ClientSecret)
	if creds.CustomerID == "" || creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, errCredentialsRequired
	}

	o := options{
		baseURL:   defaultBaseURL,
		tokenURL:  defaultTokenURL,
		transport: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	cc := clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     o.tokenURL,
		Scopes:       []string{deliveriesScope},
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	httpClient := cc.Client(context.WithValue(ctx, oauth2.HTTPClient, o.transport))
	httpClient.Timeout = o.transport.Timeout

	return &Client{
		httpClient: httpClient,
		baseURL:    o.baseURL,
		customerID: creds.CustomerID,
	}, nil
}

// QuoteRequest asks for a fee between two addresses.
type QuoteRequest struct {
	PickupAddress   string `json:"pickup_address"`
	DropoffAddress  string `json:"dropoff_address"`
	ExternalStoreID string `json:"external_store_id,omitempty"`
}

// Quote is a priced offer valid until Expires. Fee is in cents.
type Quote struct {
	ID         string     `json:"id"`
	Fee        int64      `json:"fee"`
	Currency   string     `json:"currency_type"`
	DropoffETA *time.Time `json:"dropoff_eta,omitempty"`
	Duration   int        `json:"duration"`
	Expires    *time.Time `json:"expires,omitempty"`
}

// ManifestItem is one line of the delivery manifest.
type ManifestItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Size     string `json:"size,omitempty"`
}

// DeliveryRequest dispatches a courier, optionally against a quote.
type DeliveryRequest struct {
	QuoteID            string         `json:"quote_id,omitempty"`
	ExternalID         string         `json:"external_id,omitempty"`
	PickupName         string         `json:"pickup_name"`
	PickupAddress      string         `json:"pickup_address"`
	PickupPhoneNumber  string         `json:"pickup_phone_number"`
	DropoffName        string         `json:"dropoff_name"`
	DropoffAddress     string         `json:"dropoff_address"`
	DropoffPhoneNumber string         `json:"dropoff_phone_number"`
	ManifestItems      []ManifestItem `json:"manifest_items"`
	ManifestTotalValue int64          `json:"manifest_total_value,omitempty"`
}

// Delivery is the Direct representation of a dispatched delivery.
type Delivery struct {
	ID          string     `json:"id"`
	ExternalID  string     `json:"external_id,omitempty"`
	Status      string     `json:"status"`
	Fee         int64      `json:"fee"`
	Currency    string     `json:"currency"`
	TrackingURL string     `json:"tracking_url,omitempty"`
	DropoffETA  *time.Time `json:"dropoff_eta,omitempty"`
}

// CreateQuote prices a delivery without dispatching it.
func (c *Client) CreateQuote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	if strings.TrimSpace(req.PickupAddress) == "" || strings.TrimSpace(req.DropoffAddress) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pickup and dropoff addresses are required")
	}
	var quote Quote
	if err := c.do(ctx, http.MethodPost, "delivery_quotes", req, &quote, "quote"); err != nil {
		return nil, err
	}
	return &quote, nil
}

// CreateDelivery dispatches a courier.
func (c *Client) CreateDelivery(ctx context.Context, req DeliveryRequest) (*Delivery, error) {
	if strings.TrimSpace(req.PickupAddress) == "" || strings.TrimSpace(req.DropoffAddress) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pickup and dropoff addresses are required")
	}
	if strings.TrimSpace(req.PickupPhoneNumber) == "" || strings.TrimSpace(req.DropoffPhoneNumber) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pickup and dropoff phone numbers are required")
	}
	if len(req.ManifestItems) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one manifest item is required")
	}
	var delivery Delivery
	if err := c.do(ctx, http.MethodPost, "deliveries", req, &delivery, "create delivery"); err != nil {
		return nil, err
	}
	return &delivery, nil
}

// GetDelivery fetches the current state of a delivery.
func (c *Client) GetDelivery(ctx context.Context, deliveryID string) (*Delivery, error) {
	id := strings.TrimSpace(deliveryID)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery id is required")
	}
	var delivery Delivery
	if err := c.do(ctx, http.MethodGet, "deliveries/"+url.PathEscape(id), nil, &delivery, "get delivery"); err != nil {
		return nil, err
	}
	return &delivery, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, action string) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeNotConfigured, "uber client not configured")
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal uber "+action+" request")
		}
		reader = bytes.NewReader(payload)
	}

	endpoint := fmt.Sprintf("%s/customers/%s/%s", strings.TrimRight(c.baseURL, "/"), url.PathEscape(c.customerID), path)
	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build uber "+action+" request")
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute uber "+action+" request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return statusError(resp.StatusCode, strings.TrimSpace(string(msg)), "uber "+action+" failed")
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode uber "+action+" response")
	}
	return nil
}

func statusError(status int, body, message string) error {
	cause := fmt.Errorf("status %d: %s", status, body)
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return pkgerrors.Wrap(pkgerrors.CodeValidation, cause, message).WithDetails(map[string]any{"upstream_status": status})
	case http.StatusNotFound:
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, cause, message)
	case http.StatusConflict:
		return pkgerrors.Wrap(pkgerrors.CodeConflict, cause, message)
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, cause, message).WithDetails(map[string]any{"upstream_status": status})
	}
}
