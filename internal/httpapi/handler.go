// Package httpapi exposes install, remove and list requests over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/felixgeelhaar/extmgr/internal/domain/plugin"
	"github.com/felixgeelhaar/extmgr/internal/ports"
)

// maxBodyBytes bounds request payloads.
const maxBodyBytes = 1 << 20

// Manager is the part of plugin.Manager the handlers call.
type Manager interface {
	Install(ctx context.Context, d plugin.Descriptor) (*plugin.Result, error)
	Remove(ctx context.Context, req plugin.RemoveRequest) (*plugin.Result, error)
	List(ctx context.Context) ([]plugin.Entry, error)
}

// Handler serves the manager's REST routes.
type Handler struct {
	manager Manager
	modules func() any
	logger  ports.Logger
	prefix  string
}

// Option configures a Handler.
type Option func(*Handler)

// WithModules serves the result of fn on GET {prefix}/modules.
func WithModules(fn func() any) Option {
	return func(h *Handler) {
		h.modules = fn
	}
}

// WithLogger sets the request logger.
func WithLogger(l ports.Logger) Option {
	return func(h *Handler) {
		h.logger = l
	}
}

// NewHandler creates the routes below prefix, for example "/ComfyUIManager".
// An empty prefix mounts them at the root.
func NewHandler(prefix string, m Manager, opts ...Option) *Handler {
	h := &Handler{manager: m, prefix: prefix}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Router returns the chi router with every route registered.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	if h.prefix == "" {
		h.RegisterRoutes(r)
	} else {
		r.Route(h.prefix, h.RegisterRoutes)
	}
	return r
}

// RegisterRoutes adds the plugin routes to r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/plugins", h.list)
	r.Post("/plugins/install", h.install)
	r.Post("/plugins/remove", h.remove)
	if h.modules != nil {
		r.Get("/modules", h.listModules)
	}
}

func (h *Handler) install(w http.ResponseWriter, r *http.Request) {
	var d plugin.Descriptor
	if err := decode(w, r, &d); err != nil {
		h.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if _, err := h.manager.Install(r.Context(), d); err != nil {
		h.writeError(w, r, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	var req plugin.RemoveRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if _, err := h.manager.Remove(r.Context(), req); err != nil {
		h.writeError(w, r, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	entries, err := h.manager.List(r.Context())
	if err != nil {
		h.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	out := make(map[string]plugin.Entry, len(entries))
	for _, e := range entries {
		out[e.Name] = e
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) listModules(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.modules())
}

// statusFor maps request errors: malformed input is the caller's fault,
// everything else is reported as a server error.
func statusFor(err error) int {
	if plugin.IsValidationError(err) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	if h.logger != nil {
		h.logger.Warn(r.Context(), "request failed",
			ports.F("route", r.URL.Path),
			ports.F("status", status),
			ports.F("request_id", middleware.GetReqID(r.Context())),
			ports.Err(err))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
