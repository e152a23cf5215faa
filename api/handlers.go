/*
handlers.go - HTTP API handlers for the host's sync surface

PURPOSE:
  Exposes sync/host.Service over HTTP, the wire surface spec.md §6 names.
  Handles HTTP request/response and JSON serialization, and delegates to
  domain logic; this file carries no business logic of its own.

ENDPOINTS:
  POST   /nodes         Register a new node, returns its AppId.
  GET    /sync/guide     The host's last-event timestamp, for the node to
                          decide which local events are newer.
  GET    /sync/report     Full host state (snapshot + catalogue) for a
                          node's overwrite-from-host pull.
  PATCH  /sync            Apply a node's batch of changes. Requires
                          X-Node-Id.

AUTHENTICATION:
  Every route but POST /nodes requires a well-formed X-Node-Id header.
  Only PATCH /sync also checks that the id names a node the host has
  registered; GET /sync/guide and GET /sync/report accept any well-formed
  id, registered or not.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 401: missing or malformed X-Node-Id, or (PATCH /sync) an unregistered one
  - 409: catalogue save conflict (apperr.UniqueSaveError via SyncError)
  - 422: event rejected by the ledger's own rules
  - 500: infrastructure errors

SEE ALSO:
  - server.go: Router setup and middleware
  - sync/host/service.go: Service this handler wraps
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ocxide/monee/apperr"
	"github.com/ocxide/monee/internal/id"
	synchost "github.com/ocxide/monee/sync/host"
)

// Handler wires sync/host.Service to chi handler funcs.
type Handler struct {
	Sync *synchost.Service
}

func NewHandler(sync *synchost.Service) *Handler {
	return &Handler{Sync: sync}
}

// ErrorResponse is the JSON body every non-2xx response carries.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func (h *Handler) RegisterNode(w http.ResponseWriter, r *http.Request) {
	nodeID, err := h.Sync.RegisterNode(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to register node", err)
		return
	}
	writeJSON(w, http.StatusOK, nodeID.String())
}

func (h *Handler) Guide(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authenticate(w, r); !ok {
		return
	}
	guide, err := h.Sync.Guide(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to build sync guide", err)
		return
	}
	writeJSON(w, http.StatusOK, guide)
}

func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authenticate(w, r); !ok {
		return
	}
	state, err := h.Sync.State(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to build host state", err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *Handler) ApplyChanges(w http.ResponseWriter, r *http.Request) {
	nodeID, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	var changes synchost.NodeChanges
	if err := json.NewDecoder(r.Body).Decode(&changes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	err := h.Sync.ApplyChanges(r.Context(), nodeID, changes)
	if err == nil {
		writeJSON(w, http.StatusOK, "ok")
		return
	}

	if errors.Is(err, synchost.ErrUnknownNode) {
		writeError(w, http.StatusUnauthorized, "unknown node", err)
		return
	}

	var syncErr *synchost.SyncError
	if apperr.As[*synchost.SyncError](err, &syncErr) {
		switch syncErr.Kind {
		case synchost.ErrorSave:
			writeError(w, http.StatusConflict, "catalogue conflict", syncErr)
		case synchost.ErrorEvent:
			writeError(w, http.StatusUnprocessableEntity, "event rejected", syncErr)
		default:
			writeError(w, http.StatusConflict, "sync rejected", syncErr)
		}
		return
	}

	writeError(w, http.StatusInternalServerError, "failed to apply changes", err)
}

// authenticate reads and validates X-Node-Id, writing a 401 response and
// returning ok=false on failure.
func (h *Handler) authenticate(w http.ResponseWriter, r *http.Request) (id.AppID, bool) {
	header := r.Header.Get("X-Node-Id")
	if header == "" {
		writeError(w, http.StatusUnauthorized, "missing X-Node-Id header", nil)
		return id.AppID{}, false
	}
	nodeID, err := id.ParseAppID(header)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid X-Node-Id header", err)
		return id.AppID{}, false
	}
	return nodeID, true
}
