package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"budgetledger/internal/core"
	"budgetledger/internal/identity"
)

// sessionResponse is returned by register and login.
type sessionResponse struct {
	Token    string `json:"token"`
	UserID   int64  `json:"userID"`
	Username string `json:"username"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	user, err := s.registry.Register(r.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, identity.ErrUserExists):
		writeError(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, identity.ErrEmptyUsername), errors.Is(err, identity.ErrEmptyPassword):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		slog.ErrorContext(r.Context(), "Registration failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	sess, err := s.openSession(user)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to open ledger after registration",
			"error", err, "username", user.Username)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{
		Token:    sess.token,
		UserID:   user.ID,
		Username: user.Username,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	user, err := s.registry.Authenticate(r.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, identity.ErrUnknownUser), errors.Is(err, identity.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	case err != nil:
		slog.ErrorContext(r.Context(), "Login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	sess, err := s.openSession(user)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to open ledger after login",
			"error", err, "username", user.Username)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		Token:    sess.token,
		UserID:   user.ID,
		Username: user.Username,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, sess *session) {
	if err := s.closeSession(sess); err != nil {
		slog.ErrorContext(r.Context(), "Session cleanup failed",
			"error", err, "username", sess.user.Username)
	}
	w.WriteHeader(http.StatusNoContent)
}

// transactionCreatedResponse returns the id assigned by the store.
type transactionCreatedResponse struct {
	TransactionID int64 `json:"transactionID"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request, sess *session) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	tx, err := req.toTransaction()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	id, err := sess.store.Add(r.Context(), tx)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, transactionCreatedResponse{TransactionID: id})
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request, sess *session) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "transaction id must be an integer")
		return
	}

	if err := sess.store.Remove(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// tableRow is one line of the running-balance table.
type tableRow struct {
	TransactionID int64  `json:"transactionID"`
	Date          string `json:"date"`
	Category      string `json:"category"`
	Subcategory   string `json:"subcategory"`
	AmountCents   int64  `json:"amountCents"`
	BalanceCents  int64  `json:"balanceCents"`
}

type tableResponse struct {
	Title string     `json:"title"`
	Rows  []tableRow `json:"rows"`
}

func (s *Server) handleTableView(w http.ResponseWriter, r *http.Request, sess *session) {
	view, err := sess.projector.TableView(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	rows := make([]tableRow, len(view.Rows))
	for i, entry := range view.Rows {
		rows[i] = tableRow{
			TransactionID: entry.ID,
			Date:          entry.Date.String(),
			Category:      entry.Category,
			Subcategory:   entry.Subcategory,
			AmountCents:   entry.Amount.Cents,
			BalanceCents:  entry.Balance.Cents,
		}
	}

	writeJSON(w, http.StatusOK, tableResponse{Title: view.Title, Rows: rows})
}

type plotPoint struct {
	Date        string `json:"date"`
	AmountCents int64  `json:"amountCents"`
}

type axisRange struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type plotResponse struct {
	Title       string      `json:"title"`
	Empty       bool        `json:"empty"`
	Points      []plotPoint `json:"points,omitempty"`
	DateRange   *axisRange  `json:"dateRange,omitempty"`
	AmountRange *axisRange  `json:"amountRange,omitempty"`
}

func (s *Server) handlePlotView(w http.ResponseWriter, r *http.Request, sess *session) {
	view, err := sess.projector.PlotView(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := plotResponse{Title: view.Title, Empty: view.Empty}
	if !view.Empty {
		resp.Points = make([]plotPoint, len(view.Points))
		for i, pt := range view.Points {
			resp.Points[i] = plotPoint{Date: pt.Date.String(), AmountCents: pt.Amount.Cents}
		}
		resp.DateRange = &axisRange{Start: view.DateRange.Start, End: view.DateRange.End}
		resp.AmountRange = &axisRange{Start: view.AmountRange.Start, End: view.AmountRange.End}
	}

	writeJSON(w, http.StatusOK, resp)
}

// parseFilter rejects filters without a category; a bare subcategory cannot
// select anything on its own.
func parseFilter(r *http.Request) (core.Filter, bool) {
	var req filterRequest
	if err := decodeJSON(r, &req); err != nil {
		return core.Filter{}, false
	}
	return req.toFilter(), true
}

func (s *Server) handleSetTableFilter(w http.ResponseWriter, r *http.Request, sess *session) {
	f, ok := parseFilter(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if !f.IsActive() {
		writeError(w, http.StatusUnprocessableEntity, "filter category must not be empty")
		return
	}
	sess.projector.SetTableFilter(f)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearTableFilter(w http.ResponseWriter, r *http.Request, sess *session) {
	sess.projector.ClearTableFilter()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetPlotFilter(w http.ResponseWriter, r *http.Request, sess *session) {
	f, ok := parseFilter(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if !f.IsActive() {
		writeError(w, http.StatusUnprocessableEntity, "filter category must not be empty")
		return
	}
	sess.projector.SetPlotFilter(f)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearPlotFilter(w http.ResponseWriter, r *http.Request, sess *session) {
	sess.projector.ClearPlotFilter()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).String(),
	})
}

// handleReady verifies the user registry is reachable. A lookup for a user
// that cannot exist exercises the database without touching real rows.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]string)

	_, err := s.registry.Lookup(r.Context(), "\x00readyz")
	if err != nil && !errors.Is(err, identity.ErrUnknownUser) {
		checks["registry"] = "failed: " + err.Error()
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["registry"] = "ok"
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": status,
		"checks": checks,
	})
}
