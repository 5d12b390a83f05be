package controllers

import (
	"net/http"

	"github.com/medsupply/cotizaciones-api/api/responses"
)

// writeOutcome answers a mutation with a confirmation message and the
// affected resource under key.
func writeOutcome(w http.ResponseWriter, status int, message, key string, value any) {
	responses.WriteSuccessStatus(w, status, map[string]any{
		"mensaje": message,
		key:       value,
	})
}
