package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/oduntan/giftregistry-backend/pkg/config"
	pkgerrors "github.com/oduntan/giftregistry-backend/pkg/errors"
	"github.com/oduntan/giftregistry-backend/pkg/logger"
)

const chargeSuccess = "success"

var (
	errSecretKeyRequired = errors.New("paystack secret key is required")
	errLoggerRequired    = errors.New("paystack logger is required")
)

// Client wraps the Paystack transaction API with centralized auth, logging,
// bounded retries, and error mapping.
type Client struct {
	httpClient *http.Client
	baseURL    string
	secretKey  string
	callback   string
	maxRetries int
	logger     *logger.Logger
}

// InitializeParams describes a charge to open on the gateway. Amount is in
// kobo, as Paystack expects.
type InitializeParams struct {
	Email      string
	AmountKobo int64
	Reference  string
}

// Authorization is the gateway handoff returned by Initialize.
type Authorization struct {
	Reference        string `json:"reference"`
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
}

// Verification is the settled state of a charge as reported by the gateway.
type Verification struct {
	Reference  string `json:"reference"`
	Status     string `json:"status"`
	AmountKobo int64  `json:"amount"`
	Channel    string `json:"channel"`
	PaidAt     string `json:"paid_at"`
}

// Succeeded reports whether the gateway settled the charge.
func (v Verification) Succeeded() bool {
	return strings.EqualFold(v.Status, chargeSuccess)
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// NewClient initializes the Paystack wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.PaystackConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	secret := strings.TrimSpace(cfg.SecretKey)
	if secret == "" {
		return nil, errSecretKeyRequired
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.paystack.co"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		secretKey:  secret,
		callback:   strings.TrimSpace(cfg.CallbackURL),
		maxRetries: maxRetries,
		logger:     logg,
	}

	logg.Info(ctx, "paystack client initialized")
	return c, nil
}

// Initialize opens a charge on the gateway and returns the redirect handoff.
func (c *Client) Initialize(ctx context.Context, params InitializeParams) (*Authorization, error) {
	if strings.TrimSpace(params.Email) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer email is required")
	}
	if params.AmountKobo <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "charge amount must be positive")
	}

	body := map[string]any{
		"email":  params.Email,
		"amount": params.AmountKobo,
	}
	if ref := strings.TrimSpace(params.Reference); ref != "" {
		body["reference"] = ref
	}
	if c.callback != "" {
		body["callback_url"] = c.callback
	}

	c.log(ctx, "request", "initialize", map[string]any{
		"amount":    params.AmountKobo,
		"reference": params.Reference,
	})

	var auth Authorization
	if err := c.do(ctx, http.MethodPost, "/transaction/initialize", body, &auth); err != nil {
		c.log(ctx, "error", "initialize", map[string]any{"error": err.Error()})
		return nil, err
	}

	c.log(ctx, "response", "initialize", map[string]any{"reference": auth.Reference})
	return &auth, nil
}

// Verify asks the gateway for the settled state of a charge reference.
func (c *Client) Verify(ctx context.Context, reference string) (*Verification, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "charge reference is required")
	}

	c.log(ctx, "request", "verify", map[string]any{"reference": reference})

	var verification Verification
	if err := c.do(ctx, http.MethodGet, "/transaction/verify/"+reference, nil, &verification); err != nil {
		c.log(ctx, "error", "verify", map[string]any{"reference": reference, "error": err.Error()})
		return nil, err
	}

	c.log(ctx, "response", "verify", map[string]any{
		"reference": verification.Reference,
		"status":    verification.Status,
	})
	return &verification, nil
}

// do executes one API call with bearer auth. Transport failures are retried
// with backoff; gateway responses, even errors, are never retried.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var payload []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode paystack request")
		}
		payload = encoded
	}

	backoff := retry.WithMaxRetries(uint64(c.maxRetries), retry.NewExponential(200*time.Millisecond))
	var resp *http.Response
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.secretKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err = c.httpClient.Do(req) //nolint:bodyclose // closed below after retry loop
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeGateway, err, "paystack request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeGateway, err, "read paystack response")
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeGateway, err, "decode paystack response")
	}

	if resp.StatusCode >= 400 || !env.Status {
		message := strings.TrimSpace(env.Message)
		if message == "" {
			message = fmt.Sprintf("paystack returned %d", resp.StatusCode)
		}
		return pkgerrors.New(codeForStatus(resp.StatusCode), message)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeGateway, err, "decode paystack payload")
		}
	}
	return nil
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = v
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("paystack %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("paystack %s", phase))
	}
}

func codeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return pkgerrors.CodeUnauthorized
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	default:
		if status >= 400 && status < 500 {
			return pkgerrors.CodeValidation
		}
		return pkgerrors.CodeGateway
	}
}
