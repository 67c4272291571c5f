package records

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/JaimeStill/corretora/internal/auth"
	"github.com/JaimeStill/corretora/internal/realtime"
	"github.com/JaimeStill/corretora/pkg/handlers"
)

// Events streams the collection's create, update and delete events as
// server-sent events until the client disconnects or the hub closes.
func (h *Handler[T]) Events(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	if h.hub == nil {
		handlers.RespondError(w, h.logger, http.StatusServiceUnavailable, fmt.Errorf("realtime unavailable"))
		return
	}

	sub := h.hub.Subscribe(h.sys.Definition().Name)
	defer sub.Close()

	keep := func(e realtime.Event) bool { return visible(session, e) }
	if err := realtime.Stream(w, r, sub, keep, h.logger); err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
	}
}

// visible hides other agencies' records from agency sessions. Deletes are
// matched on the owner carried by the event since they have no body.
func visible(session auth.Session, e realtime.Event) bool {
	if session.IsAdmin() {
		return true
	}
	if e.Action == realtime.ActionDelete {
		return session.Owns(e.ImobiliariaID)
	}

	var owner struct {
		ImobiliariaID *string `json:"imobiliaria_id"`
	}
	if err := json.Unmarshal(e.Record, &owner); err != nil || owner.ImobiliariaID == nil {
		return false
	}
	return session.ImobiliariaID != nil && *owner.ImobiliariaID == session.ImobiliariaID.String()
}
