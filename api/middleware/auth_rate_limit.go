package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/medsupply/cotizaciones-api/api/responses"
	pkgerrors "github.com/medsupply/cotizaciones-api/pkg/errors"
	"github.com/medsupply/cotizaciones-api/pkg/logger"
)

// RateLimitStore counts hits per key inside a fixed window. *redis.Client
// satisfies it.
type RateLimitStore interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
}

// AuthRateLimitPolicy bounds login attempts per client IP and per username
// within one window. A zero limit disables that counter.
type AuthRateLimitPolicy struct {
	Name          string
	Window        time.Duration
	IPLimit       int
	UsernameLimit int
}

func NewAuthRateLimitPolicy(name string, window time.Duration, ipLimit, usernameLimit int) AuthRateLimitPolicy {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "login"
	}
	return AuthRateLimitPolicy{Name: name, Window: window, IPLimit: ipLimit, UsernameLimit: usernameLimit}
}

func (p AuthRateLimitPolicy) active() bool {
	return p.Window > 0 && (p.IPLimit > 0 || p.UsernameLimit > 0)
}

// AuthRateLimit answers 429 with Retry-After once either counter passes its
// limit. Usernames are counted by hash and normalised so case or padding does
// not open a new bucket.
func AuthRateLimit(policy AuthRateLimitPolicy, store RateLimitStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.active() || store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if policy.IPLimit > 0 {
				ip := clientIP(r)
				if !checkLimit(ctx, w, logg, store, policy, "ip", ip, policy.IPLimit) {
					return
				}
			}

			if policy.UsernameLimit > 0 {
				body, err := io.ReadAll(r.Body)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "No se pudo leer el cuerpo de la solicitud"))
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))

				if username := loginUsername(body); username != "" {
					if !checkLimit(ctx, w, logg, store, policy, "usuario", sha256Hex(username), policy.UsernameLimit) {
						return
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// checkLimit records one hit and writes the error response when the caller
// is over the limit or the store fails. It reports whether to continue.
func checkLimit(ctx context.Context, w http.ResponseWriter, logg *logger.Logger, store RateLimitStore, policy AuthRateLimitPolicy, scope, subject string, limit int) bool {
	if subject == "" {
		return true
	}
	count, err := store.Hit(ctx, policy.Name+":"+scope+":"+subject, policy.Window)
	if err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
		return false
	}
	if count <= int64(limit) {
		return true
	}

	if logg != nil {
		logg.Warn(logg.WithFields(ctx, map[string]any{
			"policy":   policy.Name,
			"scope":    scope,
			"subject":  subject,
			"attempts": count,
			"limit":    limit,
		}), "auth.rate_limit.blocked")
	}
	w.Header().Set("Retry-After", strconv.Itoa(int(policy.Window.Seconds())))
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "Demasiados intentos de inicio de sesión, intente más tarde"))
	return false
}

// clientIP trusts the first X-Forwarded-For hop, then X-Real-IP, then the peer.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func loginUsername(body []byte) string {
	var payload struct {
		Username string `json:"usuario"`
	}
	if json.Unmarshal(body, &payload) != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(payload.Username))
}

func sha256Hex(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
