package middleware

import (
	"net/http"
	"strings"

	"github.com/medsupply/cotizaciones-api/api/responses"
	pkgAuth "github.com/medsupply/cotizaciones-api/pkg/auth"
	"github.com/medsupply/cotizaciones-api/pkg/config"
	pkgerrors "github.com/medsupply/cotizaciones-api/pkg/errors"
	"github.com/medsupply/cotizaciones-api/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the
// principal. A missing token is forbidden; a bad or expired one is
// unauthorized.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "Token requerido"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "Token inválido"))
				return
			}

			ctx := WithPrincipal(r.Context(), Principal{
				UserID:   claims.UserID,
				Username: claims.Username,
				Role:     claims.Role.String(),
			})
			if logg != nil {
				ctx = logg.WithPrincipal(ctx, claims.UserID, claims.Role.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(header string) string {
	raw := strings.TrimSpace(header)
	if raw == "" {
		return ""
	}
	if len(raw) >= 7 && strings.EqualFold(raw[:7], "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return raw
}
