// Package handler contains the HTTP handlers. Handlers only parse requests
// and write responses; all reconciliation and counting rules live in the
// service layer.
package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/karhu/shaker/internal/apperror"
	"github.com/karhu/shaker/internal/service"
)

// HandshakeHandler serves the handshake recording and counting endpoints.
type HandshakeHandler struct {
	ledger *service.LedgerService
	logger *slog.Logger
}

// NewHandshakeHandler creates a new HandshakeHandler.
func NewHandshakeHandler(ledger *service.LedgerService, logger *slog.Logger) *HandshakeHandler {
	return &HandshakeHandler{
		ledger: ledger,
		logger: logger,
	}
}

// HandleCreate records a new handshake.
//
// HTTP: POST /handshakes
//
// The body is form-encoded — the in-world clients can only send forms:
//
//	id=U-abc123&name=Alice&world=HubWorld
//
// "id" (external ID) and "world" may be empty; the identity resolver unifies
// whatever signals are present with the stored users. The response is the
// persisted handshake as JSON, including the server-assigned id and
// createdAt.
func (h *HandshakeHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, apperror.ValidationFailed("body", "request body must be form-encoded"))
		return
	}

	shake, err := h.ledger.RecordHandshake(r.Context(),
		r.PostFormValue("id"),
		r.PostFormValue("name"),
		r.PostFormValue("world"),
	)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, shake)
}

// HandleCount returns the total number of recorded handshakes.
//
// HTTP: GET /handshakes/count → "42"
func (h *HandshakeHandler) HandleCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.ledger.CountHandshakes(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeText(w, http.StatusOK, fmt.Sprintf("%d", count))
}

// HandleCountForUser returns how many handshakes one user has recorded.
//
// HTTP: GET /handshakes/count/user?id=U-abc123&name=Alice
//
// The identity is resolved with the same ID-over-name priority as recording,
// but this path is lookup-only: an identity matching no stored user is a
// 404, never an implicit signup.
func (h *HandshakeHandler) HandleCountForUser(w http.ResponseWriter, r *http.Request) {
	count, err := h.ledger.CountHandshakesForUser(r.Context(),
		r.URL.Query().Get("id"),
		r.URL.Query().Get("name"),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeText(w, http.StatusOK, fmt.Sprintf("%d", count))
}

// UserHandler serves the user counting and listing endpoints.
type UserHandler struct {
	ledger *service.LedgerService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(ledger *service.LedgerService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		ledger: ledger,
		logger: logger,
	}
}

// HandleCount returns the number of distinct users that have shaken hands.
//
// HTTP: GET /users/count → "17"
func (h *UserHandler) HandleCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.ledger.CountUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeText(w, http.StatusOK, fmt.Sprintf("%d", count))
}

// HandleListNames returns a newline-joined list of every user's last-known
// display name.
//
// HTTP: GET /users/names → "Alice\nBob\nCarol"
func (h *UserHandler) HandleListNames(w http.ResponseWriter, r *http.Request) {
	names, err := h.ledger.ListUserDisplayNames(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeText(w, http.StatusOK, strings.Join(names, "\n"))
}
