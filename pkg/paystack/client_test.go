package paystack

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/oduntan/giftregistry-backend/pkg/config"
	pkgerrors "github.com/oduntan/giftregistry-backend/pkg/errors"
	"github.com/oduntan/giftregistry-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "paystack-test", Output: io.Discard})
}

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(context.Background(), config.PaystackConfig{
		BaseURL:    baseURL,
		SecretKey:  "sk_test_abc",
		Timeout:    2 * time.Second,
		MaxRetries: 1,
	}, testLogger())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestNewClientRequiresSecret(t *testing.T) {
	_, err := NewClient(context.Background(), config.PaystackConfig{SecretKey: "  "}, testLogger())
	if err == nil {
		t.Fatal("expected error for blank secret key")
	}
}

func TestInitializeSendsBearerAndAmount(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/transaction/initialize" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		decodeBody(t, r, &gotBody)
		writeJSON(w, http.StatusOK, `{"status":true,"message":"Authorization URL created","data":{"reference":"ref_123","authorization_url":"https://checkout.paystack.com/ref_123","access_code":"ac_9"}}`)
	}))
	defer srv.Close()

	auth, err := testClient(t, srv.URL).Initialize(context.Background(), InitializeParams{
		Email:      "giver@example.com",
		AmountKobo: 990000,
	})
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if gotAuth != "Bearer sk_test_abc" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if gotBody["amount"].(float64) != 990000 {
		t.Fatalf("unexpected amount %v", gotBody["amount"])
	}
	if auth.Reference != "ref_123" || auth.AuthorizationURL == "" {
		t.Fatalf("unexpected handoff %+v", auth)
	}
}

func TestInitializeRejectsInvalidParams(t *testing.T) {
	c := testClient(t, "http://unused.invalid")
	if _, err := c.Initialize(context.Background(), InitializeParams{AmountKobo: 100}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for missing email, got %v", err)
	}
	if _, err := c.Initialize(context.Background(), InitializeParams{Email: "a@b.c", AmountKobo: 0}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for zero amount, got %v", err)
	}
}

func TestVerifySuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transaction/verify/ref_123" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		writeJSON(w, http.StatusOK, `{"status":true,"message":"Verification successful","data":{"reference":"ref_123","status":"success","amount":990000,"channel":"card"}}`)
	}))
	defer srv.Close()

	v, err := testClient(t, srv.URL).Verify(context.Background(), "ref_123")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !v.Succeeded() {
		t.Fatalf("expected settled charge, got status %q", v.Status)
	}
	if v.AmountKobo != 990000 {
		t.Fatalf("unexpected amount %d", v.AmountKobo)
	}
}

func TestVerifyFailedChargeIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"status":true,"message":"Verification successful","data":{"reference":"ref_123","status":"failed","amount":990000}}`)
	}))
	defer srv.Close()

	v, err := testClient(t, srv.URL).Verify(context.Background(), "ref_123")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if v.Succeeded() {
		t.Fatal("failed charge reported as settled")
	}
}

func TestVerifyMapsGatewayErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode pkgerrors.Code
	}{
		{"unknown reference", http.StatusNotFound, `{"status":false,"message":"Transaction reference not found"}`, pkgerrors.CodeNotFound},
		{"bad credentials", http.StatusUnauthorized, `{"status":false,"message":"Invalid key"}`, pkgerrors.CodeUnauthorized},
		{"server failure", http.StatusInternalServerError, `{"status":false,"message":"boom"}`, pkgerrors.CodeGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			}))
			defer srv.Close()

			_, err := testClient(t, srv.URL).Verify(context.Background(), "ref_x")
			if !pkgerrors.IsCode(err, tt.wantCode) {
				t.Fatalf("expected code %s, got %v", tt.wantCode, err)
			}
		})
	}
}

func TestDoRetriesTransportFailures(t *testing.T) {
	attempts := 0
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			// Drop the connection so the client sees a transport error.
			srv.CloseClientConnections()
			return
		}
		writeJSON(w, http.StatusOK, `{"status":true,"message":"ok","data":{"reference":"ref_retry","status":"success","amount":100}}`)
	}))
	defer srv.Close()

	v, err := testClient(t, srv.URL).Verify(context.Background(), "ref_retry")
	if err != nil {
		t.Fatalf("Verify after retry: %v", err)
	}
	if v.Reference != "ref_retry" {
		t.Fatalf("unexpected reference %q", v.Reference)
	}
	if attempts < 2 {
		t.Fatalf("expected a retried attempt, got %d", attempts)
	}
}

func TestCodeForStatus(t *testing.T) {
	tests := []struct {
		status int
		code   pkgerrors.Code
	}{
		{http.StatusUnauthorized, pkgerrors.CodeUnauthorized},
		{http.StatusForbidden, pkgerrors.CodeUnauthorized},
		{http.StatusNotFound, pkgerrors.CodeNotFound},
		{http.StatusBadRequest, pkgerrors.CodeValidation},
		{http.StatusBadGateway, pkgerrors.CodeGateway},
	}
	for _, tt := range tests {
		if got := codeForStatus(tt.status); got != tt.code {
			t.Fatalf("status %d expected %s got %s", tt.status, tt.code, got)
		}
	}
}

func decodeBody(t *testing.T, r *http.Request, out any) {
	t.Helper()
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		t.Fatalf("decode request body: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
