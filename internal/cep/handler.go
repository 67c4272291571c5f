package cep

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/corretora/pkg/handlers"
	"github.com/JaimeStill/corretora/pkg/routes"
)

// Handler exposes postal code lookups.
type Handler struct {
	sys    System
	logger *slog.Logger
}

func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "cep"),
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/cep",
		Description: "Postal code lookup",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{cep}", Handler: h.Lookup},
		},
	}
}

func (h *Handler) Lookup(w http.ResponseWriter, r *http.Request) {
	addr, err := h.sys.Lookup(r.Context(), r.PathValue("cep"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, addr)
}
