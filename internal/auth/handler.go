package auth

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/JaimeStill/corretora/pkg/handlers"
	"github.com/JaimeStill/corretora/pkg/routes"
)

// Handler provides HTTP endpoints for authentication.
type Handler struct {
	sys             System
	registrationURL string
	logger          *slog.Logger
}

// NewHandler creates an auth handler. When registrationURL is set, issued
// invites carry a ready-to-share link to it.
func NewHandler(sys System, registrationURL string, logger *slog.Logger) *Handler {
	return &Handler{
		sys:             sys,
		registrationURL: registrationURL,
		logger:          logger.With("handler", "auth"),
	}
}

// Routes returns the auth endpoint route group.
func (h *Handler) Routes() routes.Group {
	authn := Authenticate(h.sys, h.logger)
	staff := RequireRole(h.logger, RoleAdmin)

	return routes.Group{
		Prefix:      "/auth",
		Description: "Login, invite-based agency registration and password management",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/login", Handler: h.Login},
			{Method: "POST", Pattern: "/register", Handler: h.Register},
			{Method: "POST", Pattern: "/convites", Handler: h.CreateInvite, Middleware: []func(http.Handler) http.Handler{authn, staff}},
			{Method: "GET", Pattern: "/me", Handler: h.Me, Middleware: []func(http.Handler) http.Handler{authn}},
			{Method: "POST", Pattern: "/password", Handler: h.ChangePassword, Middleware: []func(http.Handler) http.Handler{authn}},
		},
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := handlers.DecodeJSON[LoginRequest](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	result, err := h.sys.Login(r.Context(), req)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	req, err := handlers.DecodeJSON[RegisterRequest](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	user, err := h.sys.Register(r.Context(), req)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, user)
}

func (h *Handler) CreateInvite(w http.ResponseWriter, r *http.Request) {
	session, ok := FromContext(r.Context())
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, ErrUnauthorized)
		return
	}

	req, err := handlers.DecodeJSON[CreateInviteRequest](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	invite, err := h.sys.CreateInvite(r.Context(), session, req)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	if h.registrationURL != "" {
		invite.Link = h.registrationURL + "?" + url.Values{"convite": {invite.Token}}.Encode()
	}

	handlers.RespondJSON(w, http.StatusCreated, invite)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	session, ok := FromContext(r.Context())
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, ErrUnauthorized)
		return
	}

	user, err := h.sys.Me(r.Context(), session)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, user)
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	session, ok := FromContext(r.Context())
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, ErrUnauthorized)
		return
	}

	req, err := handlers.DecodeJSON[ChangePasswordRequest](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if err := h.sys.ChangePassword(r.Context(), session, req); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
