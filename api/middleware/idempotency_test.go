package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/medsupply/cotizaciones-api/api/responses"
	pkgerrors "github.com/medsupply/cotizaciones-api/pkg/errors"
	pkgredis "github.com/medsupply/cotizaciones-api/pkg/redis"
)

type fakeStore struct {
	data     map[string]string
	released int
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]string)}
}

func (f *fakeStore) Reserve(_ context.Context, scope, key string, _ time.Duration) (string, bool, error) {
	k := scope + ":" + key
	if v, ok := f.data[k]; ok {
		return v, false, nil
	}
	f.data[k] = pkgredis.PendingMarker
	return "", true, nil
}

func (f *fakeStore) Complete(ctx context.Context, scope, key, payload string, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.data[scope+":"+key] = payload
	return nil
}

func (f *fakeStore) Release(ctx context.Context, scope, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.released++
	delete(f.data, scope+":"+key)
	return nil
}

func requestWithPattern(method, url, pattern string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, url, body)
	rc := chi.NewRouteContext()
	rc.RoutePatterns = []string{pattern}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rc)
	ctx = WithPrincipal(ctx, Principal{UserID: 1, Username: "admin", Role: "admin"})
	return req.WithContext(ctx)
}

func TestIdempotentRouteSelection(t *testing.T) {
	tests := []struct {
		method  string
		pattern string
		want    bool
	}{
		{http.MethodPost, "/cotizaciones", true},
		{http.MethodPost, "/cotizaciones/", true},
		{http.MethodPost, "/despachos", true},
		{http.MethodPut, "/cotizaciones/{id}", false},
		{http.MethodPost, "/usuarios/login", false},
	}
	for _, tt := range tests {
		if got := idempotentRoute(tt.method, tt.pattern); got != tt.want {
			t.Fatalf("%s %s: expected %v got %v", tt.method, tt.pattern, tt.want, got)
		}
	}
}

func TestIdempotencyWithoutHeaderPassesThrough(t *testing.T) {
	store := newFakeStore()
	var calls int
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	for i := 0; i < 2; i++ {
		req := requestWithPattern(http.MethodPost, "/cotizaciones", "/cotizaciones", strings.NewReader(`{"id_cliente":1}`))
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}
	if calls != 2 {
		t.Fatalf("expected both requests to reach the handler, got %d", calls)
	}
	if len(store.data) != 0 {
		t.Fatalf("nothing should be stored without a key")
	}
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := newFakeStore()
	var calls int
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id_cotizacion":9}`))
	}))

	req := requestWithPattern(http.MethodPost, "/cotizaciones", "/cotizaciones", strings.NewReader(`{"id_cliente":1}`))
	req.Header.Set("Idempotency-Key", "abc")
	first := httptest.NewRecorder()
	handler.ServeHTTP(first, req)
	if first.Code != http.StatusCreated {
		t.Fatalf("expected first response 201 got %d", first.Code)
	}

	replay := requestWithPattern(http.MethodPost, "/cotizaciones", "/cotizaciones", strings.NewReader(`{"id_cliente":1}`))
	replay.Header.Set("Idempotency-Key", "abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, replay)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected replay status 201 got %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("expected content-type header preserved")
	}
	if rec.Header().Get("Idempotent-Replayed") != "true" {
		t.Fatalf("expected replay marker header")
	}
	if strings.TrimSpace(rec.Body.String()) != `{"id_cotizacion":9}` {
		t.Fatalf("expected stored body got %s", rec.Body.String())
	}
	if calls != 1 {
		t.Fatalf("handler executed %d times, expected 1", calls)
	}
}

func TestIdempotencyDetectsBodyChange(t *testing.T) {
	store := newFakeStore()
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := requestWithPattern(http.MethodPost, "/despachos", "/despachos", strings.NewReader(`{"id_cotizacion":1}`))
	req.Header.Set("Idempotency-Key", "xyz")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	replay := requestWithPattern(http.MethodPost, "/despachos", "/despachos", strings.NewReader(`{"id_cotizacion":2}`))
	replay.Header.Set("Idempotency-Key", "xyz")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, replay)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	var payload responses.ErrorBody
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse error response: %v", err)
	}
	if payload.Code != string(pkgerrors.CodeIdempotency) {
		t.Fatalf("expected error code %s got %s", pkgerrors.CodeIdempotency, payload.Code)
	}
}

func TestIdempotencySkipsServerErrors(t *testing.T) {
	store := newFakeStore()
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	req := requestWithPattern(http.MethodPost, "/cotizaciones", "/cotizaciones", strings.NewReader(`{}`))
	req.Header.Set("Idempotency-Key", "retry-me")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if len(store.data) != 0 {
		t.Fatalf("server errors must not be stored")
	}
	if store.released != 1 {
		t.Fatalf("expected the reservation to be released, got %d", store.released)
	}
}

func TestIdempotencyRejectsInFlightDuplicate(t *testing.T) {
	store := newFakeStore()
	var calls int
	var handler http.Handler
	handler = Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			dup := requestWithPattern(http.MethodPost, "/cotizaciones", "/cotizaciones", strings.NewReader(`{"id_cliente":1}`))
			dup.Header.Set("Idempotency-Key", "same")
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, dup)
			if rec.Code != http.StatusConflict {
				t.Errorf("expected in-flight duplicate to get 409, got %d", rec.Code)
			}
		}
		w.WriteHeader(http.StatusCreated)
	}))

	req := requestWithPattern(http.MethodPost, "/cotizaciones", "/cotizaciones", strings.NewReader(`{"id_cliente":1}`))
	req.Header.Set("Idempotency-Key", "same")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if calls != 1 {
		t.Fatalf("handler executed %d times, expected 1", calls)
	}
}

func TestIdempotencyReleasesKeyAfterPanic(t *testing.T) {
	store := newFakeStore()
	var calls int
	handler := Recoverer(nil)(Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			panic("boom")
		}
		w.WriteHeader(http.StatusCreated)
	})))

	send := func() *httptest.ResponseRecorder {
		req := requestWithPattern(http.MethodPost, "/cotizaciones", "/cotizaciones", strings.NewReader(`{"id_cliente":1}`))
		req.Header.Set("Idempotency-Key", "panic-once")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	if rec := send(); rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 from the panicking attempt, got %d", rec.Code)
	}
	if store.released != 1 {
		t.Fatalf("expected the reservation to be released after the panic, got %d", store.released)
	}
	if rec := send(); rec.Code != http.StatusCreated {
		t.Fatalf("expected the retry to reach the handler, got %d: %s", rec.Code, rec.Body.String())
	}
	if calls != 2 {
		t.Fatalf("handler executed %d times, expected 2", calls)
	}
}

func TestIdempotencyRecordsOutcomeAfterClientCancel(t *testing.T) {
	for _, status := range []int{http.StatusCreated, http.StatusInternalServerError} {
		store := newFakeStore()
		handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		req := requestWithPattern(http.MethodPost, "/cotizaciones", "/cotizaciones", strings.NewReader(`{}`))
		req.Header.Set("Idempotency-Key", "gone")
		ctx, cancel := context.WithCancel(req.Context())
		req = req.WithContext(ctx)
		cancel()
		handler.ServeHTTP(httptest.NewRecorder(), req)

		stored := store.data[idempotencyScope(req)+":gone"]
		if status == http.StatusCreated && (stored == "" || stored == pkgredis.PendingMarker) {
			t.Fatalf("expected the response to be stored despite the cancelled request, got %q", stored)
		}
		if status == http.StatusInternalServerError && store.released != 1 {
			t.Fatalf("expected release despite the cancelled request, got %d", store.released)
		}
	}
}
