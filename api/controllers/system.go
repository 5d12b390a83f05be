package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/medsupply/cotizaciones-api/api/responses"
	"github.com/medsupply/cotizaciones-api/pkg/config"
	pkgerrors "github.com/medsupply/cotizaciones-api/pkg/errors"
	"github.com/medsupply/cotizaciones-api/pkg/logger"
)

const healthTimeout = 2 * time.Second

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// APIInfo describes the service and its resource roots.
func APIInfo(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]any{
			"mensaje": "API Sistema de Gestión de Cotizaciones",
			"version": Version,
			"entorno": cfg.App.Env,
			"endpoints": map[string]string{
				"usuarios":     "/usuarios",
				"clientes":     "/clientes",
				"productos":    "/productos",
				"categorias":   "/categorias",
				"cotizaciones": "/cotizaciones",
				"despachos":    "/despachos",
				"reportes":     "/reportes",
			},
		})
	}
}

// Version is stamped at build time with -ldflags.
var Version = "1.0.0"

// Health pings the database. startedAt feeds the uptime field.
func Health(db Pinger, startedAt time.Time, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		if db != nil {
			if err := db.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database ping"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]any{
			"status":    "OK",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"uptime":    time.Since(startedAt).Seconds(),
		})
	}
}

// NotFound answers unknown routes with a JSON body.
func NotFound() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccessStatus(w, http.StatusNotFound, map[string]any{
			"mensaje": "El endpoint solicitado no existe",
			"error":   "Ruta no encontrada",
			"path":    r.URL.Path,
			"metodo":  r.Method,
		})
	}
}

// MethodNotAllowed answers known paths hit with an unsupported method.
func MethodNotAllowed() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccessStatus(w, http.StatusMethodNotAllowed, map[string]any{
			"mensaje": "Método no permitido para este endpoint",
			"error":   "Método no permitido",
			"path":    r.URL.Path,
			"metodo":  r.Method,
		})
	}
}
