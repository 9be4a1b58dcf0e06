package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestPaystack(serverURL string) *Paystack {
	p := NewPaystack("sk_test_secret")
	p.baseURL = serverURL
	return p
}

func TestPaystackVerifySuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer sk_test_secret" {
			t.Errorf("Authorization = %q, want bearer secret", got)
		}
		if r.URL.Path != "/transaction/verify/ref_123" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":true,"message":"Verification successful","data":{"status":"success","amount":110000}}`))
	}))
	defer srv.Close()

	ok, err := newTestPaystack(srv.URL).Verify(context.Background(), "ref_123")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatal("Verify = false, want true")
	}
}

func TestPaystackVerifyPending(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":true,"message":"Verification successful","data":{"status":"abandoned","amount":0}}`))
	}))
	defer srv.Close()

	ok, err := newTestPaystack(srv.URL).Verify(context.Background(), "ref_456")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatal("Verify = true for abandoned transaction, want false")
	}
}

func TestPaystackInitialize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/transaction/initialize" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body struct {
			Email  string `json:"email"`
			Amount int64  `json:"amount"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if body.Email != "ada@example.com" || body.Amount != 2200 {
			t.Errorf("request body = %+v", body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":true,"message":"Authorization URL created","data":{"authorization_url":"https://checkout.paystack.com/abc","access_code":"abc","reference":"ref_789"}}`))
	}))
	defer srv.Close()

	ref, authURL, err := newTestPaystack(srv.URL).Initialize(context.Background(), "ada@example.com", 2200, "https://app.example.com/cb")
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if ref != "ref_789" {
		t.Errorf("reference = %q", ref)
	}
	if authURL != "https://checkout.paystack.com/abc" {
		t.Errorf("authorization_url = %q", authURL)
	}
}

func TestPaystackVerifyUnknownReference(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := newTestPaystack(srv.URL).Verify(context.Background(), "nope"); err == nil {
		t.Fatal("expected error for unknown reference")
	}
}
