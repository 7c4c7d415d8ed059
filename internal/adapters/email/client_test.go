package email_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"stayhook/internal/adapters/email"
	"stayhook/internal/domain"
)

func msg() domain.Message {
	return domain.Message{
		To: "ana@example.com", Subject: "Your guide", HTML: "<p>hi</p>", Text: "hi",
		Tags: []string{"guidebook-delivery", "p.azul 1"},
	}
}

func TestClient_Send_RetriesWithSameIdempotencyKey(t *testing.T) {
	var hits int32
	var mu sync.Mutex
	keys := map[string]bool{}
	var got map[string]any

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/emails" || r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected request %s %s auth=%q", r.Method, r.URL.Path, r.Header.Get("Authorization"))
		}
		mu.Lock()
		keys[r.Header.Get("Idempotency-Key")] = true
		_ = json.NewDecoder(r.Body).Decode(&got)
		mu.Unlock()
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "em_123"})
	}))
	defer ts.Close()

	cl, err := email.New(ts.URL, "test-key", "Guides <guides@stayhook.test>", 100, time.Second)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	id, err := cl.Send(ctx, msg())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if id != "em_123" || atomic.LoadInt32(&hits) != 2 {
		t.Fatalf("id=%q hits=%d", id, hits)
	}
	if len(keys) != 1 {
		t.Fatalf("expected one idempotency key across retries, got %v", keys)
	}
	to, _ := got["to"].([]any)
	tags, _ := got["tags"].([]any)
	if got["from"] != "Guides <guides@stayhook.test>" || len(to) != 1 || to[0] != "ana@example.com" || len(tags) != 2 {
		t.Fatalf("unexpected body: %+v", got)
	}
	if tg := tags[1].(map[string]any); tg["name"] != "property" || tg["value"] != "p_azul_1" {
		t.Fatalf("unexpected tag: %+v", tg)
	}
}

func TestClient_Send_Errors(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, email.ErrUnauthorized},
		{http.StatusUnprocessableEntity, email.ErrRejected},
	}
	for _, c := range cases {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(c.status)
			_, _ = w.Write([]byte(`{"message":"nope"}`))
		}))
		cl, _ := email.New(ts.URL, "k", "a@b.test", 100, time.Second)
		_, err := cl.Send(context.Background(), msg())
		ts.Close()
		if !errors.Is(err, c.want) {
			t.Fatalf("status %d: expected %v, got %v", c.status, c.want, err)
		}
	}
}

func TestClient_Send_ContextDeadline(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "5")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	cl, _ := email.New(ts.URL, "k", "a@b.test", 100, time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if _, err := cl.Send(ctx, msg()); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestNew_RequiresKeyAndSender(t *testing.T) {
	if _, err := email.New("http://x", "", "a@b.test", 1, 0); err == nil {
		t.Fatal("expected error without key")
	}
	if _, err := email.New("http://x", "k", "", 1, 0); err == nil {
		t.Fatal("expected error without sender")
	}
}
