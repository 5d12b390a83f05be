package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	zlog "github.com/rs/zerolog/log"

	pkgerrors "github.com/medsupply/cotizaciones-api/pkg/errors"
	"github.com/medsupply/cotizaciones-api/pkg/logger"
)

// ErrorBody is the JSON shape of every failed request.
type ErrorBody struct {
	Message string `json:"mensaje"`
	Code    string `json:"error"`
	Details any    `json:"detalles,omitempty"`
	Stack   string `json:"stack,omitempty"`
}

// MessageBody is returned by mutations that only confirm the outcome.
type MessageBody struct {
	Message string `json:"mensaje"`
}

type stackKey struct{}

// WithStackTraces marks the context so WriteError includes the cause chain.
func WithStackTraces(ctx context.Context) context.Context {
	return context.WithValue(ctx, stackKey{}, true)
}

func stackTracesEnabled(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	enabled, _ := ctx.Value(stackKey{}).(bool)
	return enabled
}

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, data)
}

func WriteMessage(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, MessageBody{Message: message})
}

// WriteFile streams a binary document as an attachment.
func WriteFile(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		zlog.Error().Err(err).Str("filename", filename).Msg("response.write_file_failed")
	}
}

func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}

	status := pkgerrors.KindOf(typed.Code()).Status
	msg, details := typed.Public()
	payload := ErrorBody{
		Message: msg,
		Code:    string(typed.Code()),
		Details: details,
	}

	dump := pkgerrors.Dump(err)
	if stackTracesEnabled(ctx) {
		payload.Stack = dump.Trace()
	}

	if logg != nil {
		ctx = logg.WithFields(ctx, dump.LogFields())
		if status >= http.StatusInternalServerError {
			logg.Error(ctx, "request.error", err)
		} else {
			logg.Warn(ctx, "request.rejected")
		}
	}

	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zlog.Error().Err(err).Int("status", status).Msg("response.encode_failed")
	}
}
