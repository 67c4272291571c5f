package anotacoes

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/corretora/internal/auth"
	"github.com/JaimeStill/corretora/internal/realtime"
	"github.com/JaimeStill/corretora/pkg/handlers"
	"github.com/JaimeStill/corretora/pkg/routes"
)

// Handler exposes the board to staff sessions.
type Handler struct {
	sys    System
	hub    *realtime.Hub
	logger *slog.Logger
}

func NewHandler(sys System, hub *realtime.Hub, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		hub:    hub,
		logger: logger.With("handler", "anotacoes"),
	}
}

// Routes returns the board routes. They expect Authenticate to have run.
func (h *Handler) Routes() routes.Group {
	staff := []func(http.Handler) http.Handler{auth.RequireRole(h.logger, auth.RoleAdmin)}

	return routes.Group{
		Prefix:      "/anotacoes",
		Description: "Shared staff annotation board",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.Get, Middleware: staff},
			{Method: "PUT", Pattern: "", Handler: h.Save, Middleware: staff},
			{Method: "GET", Pattern: "/events", Handler: h.Events, Middleware: staff},
		},
	}
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	q, err := h.sys.Get(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, q)
}

func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	cmd, err := handlers.DecodeJSON[SaveCommand](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	session, _ := auth.FromContext(r.Context())
	q, err := h.sys.Save(r.Context(), cmd, session.UserID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, q)
}

// Events streams board updates as server-sent events.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		handlers.RespondError(w, h.logger, http.StatusServiceUnavailable, fmt.Errorf("realtime unavailable"))
		return
	}

	sub := h.hub.Subscribe(Collection)
	defer sub.Close()

	if err := realtime.Stream(w, r, sub, nil, h.logger); err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
	}
}
