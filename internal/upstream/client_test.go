package upstream

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/relaykit/relaykit/internal/domain"
)

func newTestClient(flavor domain.Flavor, baseURL string, keys []string) *Client {
	return NewClient(flavor, baseURL, domain.NewKeyPool(keys), nil)
}

// Scenario 1: pool [K1,K2,K3] with a hint, upstream succeeds on the
// first attempt — exactly one attempt is made and the hint is cleared.
func TestMakeRequest_SuccessOnFirstAttemptClearsHint(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	pool := domain.NewKeyPool([]string{"K1", "K2", "K3"})
	pool.UpdateLastFailedKey("K2")
	client := NewClient(domain.FlavorOpenAI, srv.URL, pool, nil)

	resp, err := client.MakeRequest(context.Background(), http.MethodPost, "/chat", []byte(`{}`), http.Header{}, nil)
	if err != nil {
		t.Fatalf("MakeRequest() error = %v", err)
	}
	if resp.Status != http.StatusOK {
		t.Errorf("Status = %d, want 200", resp.Status)
	}
	if got := atomic.LoadInt32(&attempts); got != 1 {
		t.Errorf("attempts = %d, want 1", got)
	}
}

// Scenario 2: both keys in a 2-key pool return 429 — the last upstream
// response body is forwarded, not the synthetic one, and lastFailedKey
// ends up set.
func TestMakeRequest_AllRotationCodesForwardsLastResponse(t *testing.T) {
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.URL.Query().Get("key"))
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"upstream":"rate limited","attempt":` + itoaForTest(len(seen)) + `}`))
	}))
	defer srv.Close()

	pool := domain.NewKeyPool([]string{"K1", "K2"})
	client := NewClient(domain.FlavorGemini, srv.URL, pool, nil)

	resp, err := client.MakeRequest(context.Background(), http.MethodPost, "/generate", []byte(`{}`), http.Header{}, nil)
	if err != nil {
		t.Fatalf("MakeRequest() error = %v", err)
	}
	if resp.Status != http.StatusTooManyRequests {
		t.Errorf("Status = %d, want 429", resp.Status)
	}
	if !strings.Contains(string(resp.Body), `"attempt":2`) {
		t.Errorf("Body = %s, want the second (last) upstream body forwarded", resp.Body)
	}
	if len(seen) != 2 {
		t.Fatalf("upstream saw %d attempts, want 2", len(seen))
	}
}

// Scenario 3: directive-driven rotation codes — a 503 then a 200.
func TestMakeRequest_CustomRotationCodesThenSuccess(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"result":"done"}`))
	}))
	defer srv.Close()

	client := newTestClient(domain.FlavorOpenAI, srv.URL, []string{"sk-a", "sk-b"})
	resp, err := client.MakeRequest(context.Background(), http.MethodPost, "/v1/chat/completions", []byte(`{}`), http.Header{}, []int{500, 502, 503, 504})
	if err != nil {
		t.Fatalf("MakeRequest() error = %v", err)
	}
	if resp.Status != http.StatusOK {
		t.Errorf("Status = %d, want 200", resp.Status)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

// Scenario 5: Gemini legacy alias version reconciliation.
func TestMakeRequest_GeminiVersionReconciliation(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := newTestClient(domain.FlavorGemini, srv.URL+"/v1", []string{"AIza-1"})
	_, err := client.MakeRequest(context.Background(), http.MethodPost, "/v1beta/models/x:generateContent", []byte(`{}`), http.Header{}, nil)
	if err != nil {
		t.Fatalf("MakeRequest() error = %v", err)
	}
	if gotPath != "/v1beta/models/x:generateContent" {
		t.Errorf("upstream path = %q, want /v1beta/models/x:generateContent", gotPath)
	}
	if gotQuery != "key=AIza-1" {
		t.Errorf("upstream query = %q, want key=AIza-1", gotQuery)
	}
}

// Scenario 6: large body forwarded byte-identical with correct
// Content-Length.
func TestMakeRequest_LargeBodyByteIdentical(t *testing.T) {
	body := make([]byte, 1024*1024)
	for i := range body {
		body[i] = byte('a' + i%26)
	}

	var gotBody []byte
	var gotContentLength string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentLength = r.Header.Get("Content-Length")
		b, _ := io.ReadAll(r.Body)
		gotBody = b
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := newTestClient(domain.FlavorOpenAI, srv.URL, []string{"sk-a"})
	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	_, err := client.MakeRequest(context.Background(), http.MethodPost, "/v1/chat/completions", body, headers, nil)
	if err != nil {
		t.Fatalf("MakeRequest() error = %v", err)
	}
	if string(gotBody) != string(body) {
		t.Error("upstream body differs from the request body")
	}
	if gotContentLength != itoaForTest(len(body)) {
		t.Errorf("Content-Length = %q, want %q", gotContentLength, itoaForTest(len(body)))
	}
}

func TestMakeRequest_EmptyPoolIsProviderNotConfigured(t *testing.T) {
	client := newTestClient(domain.FlavorOpenAI, "https://example.com", nil)
	_, err := client.MakeRequest(context.Background(), http.MethodPost, "/v1/chat/completions", nil, http.Header{}, nil)
	if err != ErrProviderNotConfigured {
		t.Fatalf("err = %v, want ErrProviderNotConfigured", err)
	}
}

func TestMakeRequest_GeminiBypassSkipsRotation(t *testing.T) {
	var calls int
	var gotHeader, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		gotHeader = r.Header.Get(domain.GeminiCredentialHeader)
		gotQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	pool := domain.NewKeyPool([]string{"pool-key"})
	client := NewClient(domain.FlavorGemini, srv.URL, pool, nil)

	headers := http.Header{}
	headers.Set(domain.GeminiCredentialHeader, "client-supplied-key")
	resp, err := client.MakeRequest(context.Background(), http.MethodPost, "/v1/generate", []byte(`{}`), headers, nil)
	if err != nil {
		t.Fatalf("MakeRequest() error = %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want exactly 1 (no rotation on bypass)", calls)
	}
	if resp.Status != http.StatusTooManyRequests {
		t.Errorf("Status = %d, want the raw 429 (no retry)", resp.Status)
	}
	if gotHeader != "client-supplied-key" {
		t.Errorf("upstream saw header %q, want client-supplied-key", gotHeader)
	}
	if gotQuery != "" {
		t.Errorf("upstream query = %q, want empty (bypass uses the header, not ?key=)", gotQuery)
	}
}

func TestMakeRequest_AllNetworkErrorsSurfaceAsTransportFailure(t *testing.T) {
	client := newTestClient(domain.FlavorOpenAI, "http://127.0.0.1:1", []string{"sk-a", "sk-b"})
	_, err := client.MakeRequest(context.Background(), http.MethodPost, "/v1/chat/completions", []byte(`{}`), http.Header{}, nil)
	if err == nil {
		t.Fatal("MakeRequest() error = nil, want a transport failure")
	}
}

func itoaForTest(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[pos:])
}
