package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	perr "indexa/internal/platform/errors"
)

func newTestClient(tokens TokenSource) *Client {
	c := NewClient(Options{MaxRetries: 3, RetryBase: time.Millisecond}, tokens)
	c.sleep = func(time.Duration) {}
	return c
}

func TestGetEntityURLAndAuth(t *testing.T) {
	t.Parallel()

	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "p1", "name": "Rex"})
	}))
	defer srv.Close()

	c := newTestClient(StaticToken("sekrit"))
	out, err := c.GetEntity(context.Background(), srv.URL, "indexes", "pets", "p1")
	if err != nil {
		t.Fatalf("GetEntity: %v", err)
	}
	if gotPath != "/indexes/pets/p1" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotAuth != "Bearer sekrit" {
		t.Fatalf("auth = %q", gotAuth)
	}
	if out["name"] != "Rex" {
		t.Fatalf("body = %v", out)
	}
}

func TestGetEntityNoPrefix(t *testing.T) {
	t.Parallel()

	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := newTestClient(nil)
	if _, err := c.GetEntity(context.Background(), srv.URL+"/", "", "pets", "p1"); err != nil {
		t.Fatalf("GetEntity: %v", err)
	}
	if gotPath != "/pets/p1" {
		t.Fatalf("path = %q", gotPath)
	}
}

func TestGetEntitiesBatchQueryParams(t *testing.T) {
	t.Parallel()

	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	after := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	c := newTestClient(nil)
	_, err := c.GetEntitiesBatch(context.Background(), srv.URL, "", "pets", BatchQuery{
		Page:         2,
		PerPage:      100,
		UpdatedAfter: &after,
	})
	if err != nil {
		t.Fatalf("GetEntitiesBatch: %v", err)
	}
	if got := gotQuery["page"][0]; got != "2" {
		t.Fatalf("page = %q", got)
	}
	if got := gotQuery["per_page"][0]; got != "100" {
		t.Fatalf("per_page = %q", got)
	}
	if got := gotQuery["updated_after"][0]; got != "2025-01-02T03:04:05Z" {
		t.Fatalf("updated_after = %q", got)
	}
	if _, ok := gotQuery["updated_before"]; ok {
		t.Fatalf("updated_before should be absent")
	}
}

func TestRetriesTransientThenSucceeds(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := newTestClient(nil)
	out, err := c.GetEntity(context.Background(), srv.URL, "", "pets", "p1")
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if out["ok"] != true {
		t.Fatalf("body = %v", out)
	}
	if calls.Load() != 3 {
		t.Fatalf("calls = %d, want 3", calls.Load())
	}
}

func TestRetriesExhaustedPropagates(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(nil)
	_, err := c.GetEntity(context.Background(), srv.URL, "", "pets", "p1")
	if err == nil {
		t.Fatalf("expected error after exhausted retries")
	}
	if !perr.IsCode(err, perr.ErrorCodeUpstream) {
		t.Fatalf("code = %v, want upstream", perr.CodeOf(err))
	}
	if calls.Load() != 3 {
		t.Fatalf("calls = %d, want 3 attempts", calls.Load())
	}
}

func TestNonRetryableStatusNoRetry(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(nil)
	_, err := c.GetEntity(context.Background(), srv.URL, "", "pets", "missing")
	if err == nil {
		t.Fatalf("expected not found error")
	}
	if !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("code = %v, want not found", perr.CodeOf(err))
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}
}

func TestM2MTokenSourceCaches(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.Form.Get("grant_type") != "client_credentials" {
			t.Errorf("grant_type = %q", r.Form.Get("grant_type"))
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "tok-1", "expires_in": 3600})
	}))
	defer srv.Close()

	ts := NewM2MTokenSource(M2MConfig{
		TokenURL:     srv.URL,
		ClientID:     "id",
		ClientSecret: "secret",
	})

	for i := 0; i < 3; i++ {
		tok, err := ts.Token(context.Background())
		if err != nil {
			t.Fatalf("Token: %v", err)
		}
		if tok != "tok-1" {
			t.Fatalf("token = %q", tok)
		}
	}
	if calls.Load() != 1 {
		t.Fatalf("token endpoint calls = %d, want 1 (cached)", calls.Load())
	}
}

func TestM2MTokenSourceRefreshesAfterExpiry(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": map[int32]string{1: "tok-1", 2: "tok-2"}[n],
			"expires_in":   60,
		})
	}))
	defer srv.Close()

	ts := NewM2MTokenSource(M2MConfig{TokenURL: srv.URL, ClientID: "id", ClientSecret: "s"})
	base := time.Now()
	ts.now = func() time.Time { return base }

	if tok, _ := ts.Token(context.Background()); tok != "tok-1" {
		t.Fatalf("first token = %q", tok)
	}
	// advance past expiry minus leeway
	ts.now = func() time.Time { return base.Add(2 * time.Minute) }
	tok, err := ts.Token(context.Background())
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if tok != "tok-2" {
		t.Fatalf("refreshed token = %q", tok)
	}
}
