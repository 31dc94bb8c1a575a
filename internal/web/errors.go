package web

// errors.go provides unified error responses for the web layer.
//
// Every error is logged with its technical details and request ID, then
// mapped through core.MapError to a user message with a stable code. API
// clients get JSON, browsers get an HTML error page.

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/JonMunkholm/worlddash/internal/core"
	"github.com/JonMunkholm/worlddash/internal/logging"
	"github.com/JonMunkholm/worlddash/internal/web/templates"
)

// ErrorResponse is the JSON body of an API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs err and writes a user-facing response.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	msg := core.MapError(err)

	log := logging.FromContext(r.Context())
	args := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", msg.Code,
	}
	if statusCode >= 500 {
		log.Error("request error", args...)
	} else {
		log.Warn("request error", args...)
	}

	if wantsJSON(r) {
		respondErrorJSON(w, msg, statusCode)
		return
	}
	respondErrorHTML(w, r, msg, statusCode)
}

func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

func respondErrorHTML(w http.ResponseWriter, r *http.Request, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := templates.ErrorPage(statusCode, msg.Message, msg.Action, msg.Code).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render error page", "error", err)
	}
}

// wantsJSON reports whether the client prefers JSON. API routes default
// to JSON.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	return strings.HasPrefix(r.URL.Path, "/api/")
}
