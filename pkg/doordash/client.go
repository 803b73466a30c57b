// Package doordash is a thin client for the DoorDash Drive v2 API.
package doordash

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	pkgerrors "github.com/forkline/storefront/pkg/errors"
)

const (
	defaultBaseURL              = "https://openapi.doordash.com"
	tokenTTL                    = 5 * time.Minute
	responseBodyReadLimit int64 = 1024
)

var (
	errCredentialsRequired = errors.New("doordash developer id, key id and signing secret are required")
)

// Credentials identify a DoorDash developer access key.
type Credentials struct {
	DeveloperID   string
	KeyID         string
	SigningSecret string
}

// Client wraps the Drive endpoints used for quoting and dispatching.
type Client struct {
	httpClient *http.Client
	baseURL    string
	creds      Credentials
	secret     []byte
	now        func() time.Time
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the Drive base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(baseURL); trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithClock overrides the clock used to stamp tokens.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient builds a Drive client. The signing secret is the base64url value
// shown in the developer portal.
func NewClient(creds Credentials, opts ...Option) (*Client, error) {
	creds.DeveloperID = strings.TrimSpace(creds.DeveloperID)
	creds.KeyID = strings.TrimSpace(creds.KeyID)
	creds.SigningSecret = strings.TrimSpace(creds.SigningSecret)
	if creds.DeveloperID == "" || creds.KeyID == "" || creds.SigningSecret == "" {
		return nil, errCredentialsRequired
	}
	secret, err := decodeSecret(creds.SigningSecret)
	if err != nil {
		return nil, fmt.Errorf("decode doordash signing secret: %w", err)
	}

	client := &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    defaultBaseURL,
		creds:      creds,
		secret:     secret,
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

func decodeSecret(value string) ([]byte, error) {
	trimmed := strings.TrimRight(value, "=")
	if secret, err := base64.RawURLEncoding.DecodeString(trimmed); err == nil {
		return secret, nil
	}
	return base64.RawStdEncoding.DecodeString(trimmed)
}

// DeliveryRequest is the payload shared by quotes and deliveries. Amounts are
// in cents.
type DeliveryRequest struct {
	ExternalDeliveryID      string `json:"external_delivery_id"`
	PickupAddress           string `json:"pickup_address"`
	PickupBusinessName      string `json:"pickup_business_name,omitempty"`
	PickupPhoneNumber       string `json:"pickup_phone_number,omitempty"`
	PickupInstructions      string `json:"pickup_instructions,omitempty"`
	DropoffAddress          string `json:"dropoff_address"`
	DropoffPhoneNumber      string `json:"dropoff_phone_number,omitempty"`
	DropoffContactGivenName string `json:"dropoff_contact_given_name,omitempty"`
	DropoffInstructions     string `json:"dropoff_instructions,omitempty"`
	OrderValue              int64  `json:"order_value,omitempty"`
}

// Delivery is the Drive representation of a quote or delivery.
type Delivery struct {
	ExternalDeliveryID   string     `json:"external_delivery_id"`
	DeliveryStatus       string     `json:"delivery_status"`
	Fee                  int64      `json:"fee"`
	Currency             string     `json:"currency"`
	TrackingURL          string     `json:"tracking_url,omitempty"`
	PickupTimeEstimated  *time.Time `json:"pickup_time_estimated,omitempty"`
	DropoffTimeEstimated *time.Time `json:"dropoff_time_estimated,omitempty"`
}

// Quote asks Drive for a fee and ETA without dispatching a Dasher.
func (c *Client) Quote(ctx context.Context, req DeliveryRequest) (*Delivery, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	return c.do(ctx, http.MethodPost, "/drive/v2/quotes", req, "quote")
}

// AcceptQuote turns a previous quote into a delivery.
func (c *Client) AcceptQuote(ctx context.Context, externalDeliveryID string) (*Delivery, error) {
	id := strings.TrimSpace(externalDeliveryID)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "external delivery id is required")
	}
	return c.do(ctx, http.MethodPost, "/drive/v2/quotes/"+url.PathEscape(id)+"/accept", struct{}{}, "accept quote")
}

// CreateDelivery dispatches a delivery directly.
func (c *Client) CreateDelivery(ctx context.Context, req DeliveryRequest) (*Delivery, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	return c.do(ctx, http.MethodPost, "/drive/v2/deliveries", req, "create delivery")
}

// GetDelivery fetches the current state of a delivery.
func (c *Client) GetDelivery(ctx context.Context, externalDeliveryID string) (*Delivery, error) {
	id := strings.TrimSpace(externalDeliveryID)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "external delivery id is required")
	}
	return c.do(ctx, http.MethodGet, "/drive/v2/deliveries/"+url.PathEscape(id), nil, "get delivery")
}

func validateRequest(req DeliveryRequest) error {
	if strings.TrimSpace(req.ExternalDeliveryID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "external delivery id is required")
	}
	if strings.TrimSpace(req.PickupAddress) == "" || strings.TrimSpace(req.DropoffAddress) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "pickup and dropoff addresses are required")
	}
	return nil
}

// Token mints the short-lived DD-JWT-V1 bearer token.
func (c *Client) Token() (string, error) {
	now := c.now()
	claims := jwt.MapClaims{
		"aud": "doordash",
		"iss": c.creds.DeveloperID,
		"kid": c.creds.KeyID,
		"iat": now.Unix(),
		"exp": now.Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["dd-ver"] = "DD-JWT-V1"
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("signing doordash jwt: %w", err)
	}
	return signed, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, action string) (*Delivery, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotConfigured, "doordash client not configured")
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal doordash "+action+" request")
		}
		reader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(c.baseURL, "/")+path, reader)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build doordash "+action+" request")
	}
	token, err := c.Token()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint doordash token")
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute doordash "+action+" request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, statusError(resp.StatusCode, strings.TrimSpace(string(msg)), "doordash "+action+" failed")
	}

	var delivery Delivery
	if err := json.NewDecoder(resp.Body).Decode(&delivery); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode doordash "+action+" response")
	}
	return &delivery, nil
}

// statusError maps upstream client errors onto caller-facing codes.
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
