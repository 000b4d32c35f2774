package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func tokenServer(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"token123","token_type":"bearer","expires_in":3600}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestTokenIsCached(t *testing.T) {
	var calls atomic.Int32
	server := tokenServer(t, &calls)
	client := NewClientCred(Conf{ClientID: "id", ClientSecret: "secret", AuthURL: server.URL})

	for i := 0; i < 2; i++ {
		tok, err := client.Token(context.Background())
		if err != nil {
			t.Fatalf("Token returned error: %v", err)
		}
		if tok.AccessToken != "token123" {
			t.Fatalf("unexpected token %s", tok.AccessToken)
		}
	}
	if calls.Load() != 1 {
		t.Fatalf("expected one token request, got %d", calls.Load())
	}

	client.Invalidate()
	if _, err := client.Token(context.Background()); err != nil {
		t.Fatalf("Token returned error: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected a refresh after Invalidate, got %d calls", calls.Load())
	}
}

func TestSetAuthHeader(t *testing.T) {
	var calls atomic.Int32
	server := tokenServer(t, &calls)
	client := NewClientCred(Conf{ClientID: "id", ClientSecret: "secret", AuthURL: server.URL})

	req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
	if err := client.SetAuthHeader(req); err != nil {
		t.Fatalf("SetAuthHeader returned error: %v", err)
	}
	if auth := req.Header.Get("Authorization"); auth != "Bearer token123" {
		t.Fatalf("unexpected Authorization header %q", auth)
	}
}

func TestConfValidate(t *testing.T) {
	if err := (Conf{ClientID: "id"}).Validate(); err == nil {
		t.Fatal("expected error for missing secret")
	}
	if err := (Conf{ClientID: "id", ClientSecret: "s", AuthURL: "http://x"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
