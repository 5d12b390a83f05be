package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/medsupply/cotizaciones-api/api/responses"
	pkgerrors "github.com/medsupply/cotizaciones-api/pkg/errors"
	"github.com/medsupply/cotizaciones-api/pkg/logger"
	pkgredis "github.com/medsupply/cotizaciones-api/pkg/redis"
)

const (
	idempotencyHeader = "Idempotency-Key"
	replayedHeader    = "Idempotent-Replayed"
)

// IdempotentRoutes are the create endpoints whose responses are replayed for
// a repeated Idempotency-Key.
var IdempotentRoutes = []string{
	http.MethodPost + " /cotizaciones",
	http.MethodPost + " /despachos",
}

// storedResponse is what a completed key holds.
type storedResponse struct {
	RequestHash string `json:"request_hash"`
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body"`
}

// Idempotency makes create requests carrying an Idempotency-Key safe to retry.
// The key is reserved before the handler runs, so a concurrent duplicate gets
// 409 instead of creating a second record. A finished key replays its stored
// response, or answers 409 if the body differs. 5xx responses and handler
// panics release the key.
func Idempotency(store pkgredis.IdempotencyStore, ttl time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			if key == "" || !idempotentRoute(r.Method, routePattern(r)) {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "No se pudo leer el cuerpo de la solicitud"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))
			requestHash := sha256Hex(string(body))
			scope := idempotencyScope(r)

			stored, reserved, err := store.Reserve(ctx, scope, key, ttl)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve idempotency key"))
				return
			}
			if !reserved {
				replay(w, r, logg, key, requestHash, stored)
				return
			}

			// The outcome is recorded even if the client went away mid-request.
			storeCtx := context.WithoutCancel(ctx)
			release := func() {
				if err := store.Release(storeCtx, scope, key); err != nil && logg != nil {
					logg.Error(ctx, "idempotency.release", err)
				}
			}
			defer func() {
				if rec := recover(); rec != nil {
					release()
					panic(rec)
				}
			}()

			capture := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(capture, r)

			status := capture.statusOrOK()
			if status >= http.StatusInternalServerError {
				release()
				return
			}
			payload, err := json.Marshal(storedResponse{
				RequestHash: requestHash,
				Status:      status,
				ContentType: capture.Header().Get("Content-Type"),
				Body:        capture.body.Bytes(),
			})
			if err == nil {
				err = store.Complete(storeCtx, scope, key, string(payload), ttl)
			}
			if err != nil && logg != nil {
				logg.Error(ctx, "idempotency.complete", err)
			}
		})
	}
}

func replay(w http.ResponseWriter, r *http.Request, logg *logger.Logger, key, requestHash, stored string) {
	ctx := r.Context()
	if stored == pkgredis.PendingMarker {
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "La solicitud con esta Idempotency-Key aún está en proceso").
			WithDetails(map[string]any{"idempotency_key": key}))
		return
	}

	var prev storedResponse
	if err := json.Unmarshal([]byte(stored), &prev); err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record"))
		return
	}
	if prev.RequestHash != requestHash {
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "Idempotency-Key reutilizada con otro contenido").
			WithDetails(map[string]any{"idempotency_key": key}))
		return
	}

	if prev.ContentType != "" {
		w.Header().Set("Content-Type", prev.ContentType)
	}
	w.Header().Set(replayedHeader, "true")
	w.WriteHeader(prev.Status)
	_, _ = w.Write(prev.Body)
}

func idempotentRoute(method, pattern string) bool {
	return slices.Contains(IdempotentRoutes, method+" "+strings.TrimSuffix(pattern, "/"))
}

// idempotencyScope keeps keys private to the caller and the endpoint.
func idempotencyScope(r *http.Request) string {
	return strconv.FormatInt(UserIDFromContext(r.Context()), 10) + "|" + r.Method + "|" + r.URL.Path
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if pattern := rc.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

// responseCapture tees the handler's response so it can be stored.
type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (c *responseCapture) WriteHeader(code int) {
	if c.status == 0 {
		c.status = code
	}
	c.ResponseWriter.WriteHeader(code)
}

func (c *responseCapture) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}

func (c *responseCapture) statusOrOK() int {
	if c.status == 0 {
		return http.StatusOK
	}
	return c.status
}
