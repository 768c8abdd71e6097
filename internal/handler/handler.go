// Package handler exposes the booking engine and package catalog as a JSON
// REST API.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alex-user-go/treks/internal/auth"
	"github.com/alex-user-go/treks/internal/booking"
	"github.com/alex-user-go/treks/internal/catalog"
	"github.com/alex-user-go/treks/internal/middleware"
	"github.com/alex-user-go/treks/internal/obs"
	"github.com/alex-user-go/treks/internal/ratelimit"
	"github.com/alex-user-go/treks/internal/storage"
)

// Catalog serves normalized package records.
type Catalog interface {
	Get(ctx context.Context, id string) (*catalog.Package, error)
	List(ctx context.Context, opts catalog.ListOptions) ([]catalog.Package, error)
}

// BookingStore persists confirmed bookings.
type BookingStore interface {
	CreateBooking(ctx context.Context, b storage.Booking) error
	Booking(ctx context.Context, id string) (storage.Booking, error)
}

// Handler handles HTTP requests.
type Handler struct {
	catalog     Catalog
	sessions    *booking.Registry
	store       BookingStore
	tokens      *auth.Manager
	rateLimiter *ratelimit.Limiter
	metrics     *obs.Metrics
	logger      *slog.Logger
}

// New creates a new Handler.
func New(
	cat Catalog,
	sessions *booking.Registry,
	store BookingStore,
	tokens *auth.Manager,
	rateLimiter *ratelimit.Limiter,
	metrics *obs.Metrics,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		catalog:     cat,
		sessions:    sessions,
		store:       store,
		tokens:      tokens,
		rateLimiter: rateLimiter,
		metrics:     metrics,
		logger:      logger,
	}
}

// Register wires all API routes onto mux. Booking session routes go through
// token auth when it is configured.
func (h *Handler) Register(mux *http.ServeMux) {
	protect := middleware.TokenAuth(h.tokens, h.logger)
	protected := func(fn http.HandlerFunc) http.Handler {
		return protect(fn)
	}

	mux.HandleFunc("GET /api/packages", h.ListPackages)
	mux.HandleFunc("GET /api/packages/{id}", h.GetPackage)
	mux.HandleFunc("POST /api/auth/token", h.IssueToken)
	mux.HandleFunc("GET /api/bookings/{id}", h.GetBooking)

	mux.Handle("POST /api/bookings/sessions", protected(h.CreateSession))
	mux.Handle("GET /api/bookings/sessions/{id}", protected(h.GetSession))
	mux.Handle("PATCH /api/bookings/sessions/{id}", protected(h.UpdateSession))
	mux.Handle("PUT /api/bookings/sessions/{id}/travelers", protected(h.SetTravelerCount))
	mux.Handle("PATCH /api/bookings/sessions/{id}/travelers/{index}", protected(h.UpdateTraveler))
	mux.Handle("GET /api/bookings/sessions/{id}/travelers/{index}/roommates", protected(h.GetRoommates))
	mux.Handle("GET /api/bookings/sessions/{id}/quote", protected(h.GetQuote))
	mux.Handle("POST /api/bookings/sessions/{id}/submit", protected(h.SubmitSession))
	mux.Handle("POST /api/bookings/sessions/{id}/confirm", protected(h.ConfirmSession))
	mux.Handle("POST /api/bookings/sessions/{id}/cancel", protected(h.CancelSession))
}

// SessionView is the API representation of a booking session.
type SessionView struct {
	ID             string             `json:"id"`
	State          booking.State      `json:"state"`
	Package        *catalog.Package   `json:"package"`
	Travelers      []booking.Traveler `json:"travelers"`
	AdditionalInfo string             `json:"additional_info,omitempty"`
	Quote          booking.Quote      `json:"quote"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

func sessionView(s *booking.Session) SessionView {
	travelers := make([]booking.Traveler, len(s.Travelers))
	copy(travelers, s.Travelers)

	return SessionView{
		ID:             s.ID,
		State:          s.State,
		Package:        s.Package,
		Travelers:      travelers,
		AdditionalInfo: s.AdditionalInfo,
		Quote:          s.Quote(),
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

// ListPackages handles GET /api/packages.
func (h *Handler) ListPackages(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	opts := catalog.ListOptions{SortBy: strings.TrimSpace(query.Get("sort"))}
	switch opts.SortBy {
	case "", "price", "duration", "title":
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown sort key %q", opts.SortBy))
		return
	}
	if raw := strings.TrimSpace(query.Get("difficulty")); raw != "" {
		difficulty, ok := catalog.ParseDifficulty(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown difficulty %q", raw))
			return
		}
		opts.Difficulty = difficulty
	}

	packages, err := h.catalog.List(r.Context(), opts)
	if err != nil {
		h.catalogError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"packages": packages})
}

// GetPackage handles GET /api/packages/{id}.
func (h *Handler) GetPackage(w http.ResponseWriter, r *http.Request) {
	pkg, err := h.catalog.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, catalog.ErrPackageNotFound) {
			writeError(w, http.StatusNotFound, "package not found")
			return
		}
		h.catalogError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, pkg)
}

// CreateSession handles POST /api/bookings/sessions. The package record is
// fetched exactly once here; a catalog failure blocks the booking attempt
// entirely.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ip := ExtractIP(r)
	if !h.rateLimiter.Allow(ip) {
		h.logger.Warn("rate limit exceeded",
			"request_id", middleware.RequestID(r.Context()),
			"ip", ip,
		)
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	var body struct {
		PackageID string `json:"package_id"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(body.PackageID) == "" {
		writeError(w, http.StatusBadRequest, "package_id is required")
		return
	}

	pkg, err := h.catalog.Get(r.Context(), body.PackageID)
	if err != nil {
		if errors.Is(err, catalog.ErrPackageNotFound) {
			writeError(w, http.StatusNotFound, "package not found")
			return
		}
		h.catalogError(w, r, err)
		return
	}

	session := booking.NewSession(pkg)
	h.sessions.Put(session)
	h.metrics.IncSessionsStarted()

	h.logger.Info("booking session started",
		"request_id", middleware.RequestID(r.Context()),
		"session_id", session.ID,
		"package_id", pkg.ID,
	)
	writeJSON(w, http.StatusCreated, sessionView(session))
}

// GetSession handles GET /api/bookings/sessions/{id}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *booking.Session) (int, any, error) {
		return http.StatusOK, sessionView(s), nil
	})
}

// UpdateSession handles PATCH /api/bookings/sessions/{id}.
func (h *Handler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		AdditionalInfo string `json:"additional_info"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.withSession(w, r, func(s *booking.Session) (int, any, error) {
		if s.State != booking.StateEditing {
			return 0, nil, booking.ErrInvalidState
		}
		s.SetAdditionalInfo(body.AdditionalInfo)
		return http.StatusOK, sessionView(s), nil
	})
}

// SetTravelerCount handles PUT /api/bookings/sessions/{id}/travelers.
// The count is clamped, never rejected, so the only errors here are
// state errors.
func (h *Handler) SetTravelerCount(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Count any `json:"count"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.withSession(w, r, func(s *booking.Session) (int, any, error) {
		if s.State != booking.StateEditing {
			return 0, nil, booking.ErrInvalidState
		}
		s.SetTravelerCount(body.Count)
		return http.StatusOK, sessionView(s), nil
	})
}

// UpdateTraveler handles PATCH /api/bookings/sessions/{id}/travelers/{index}.
func (h *Handler) UpdateTraveler(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "traveler index must be an integer")
		return
	}

	var body struct {
		Field string `json:"field"`
		Value string `json:"value"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.withSession(w, r, func(s *booking.Session) (int, any, error) {
		if s.State != booking.StateEditing {
			return 0, nil, booking.ErrInvalidState
		}
		if err := s.UpdateTravelerField(index, booking.Field(body.Field), body.Value); err != nil {
			return 0, nil, err
		}
		return http.StatusOK, sessionView(s), nil
	})
}

// GetRoommates handles
// GET /api/bookings/sessions/{id}/travelers/{index}/roommates.
func (h *Handler) GetRoommates(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "traveler index must be an integer")
		return
	}

	h.withSession(w, r, func(s *booking.Session) (int, any, error) {
		names, err := s.AvailableRoommates(index)
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, map[string]any{"roommates": names}, nil
	})
}

// GetQuote handles GET /api/bookings/sessions/{id}/quote.
func (h *Handler) GetQuote(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *booking.Session) (int, any, error) {
		return http.StatusOK, s.Quote(), nil
	})
}

// SubmitSession handles POST /api/bookings/sessions/{id}/submit.
func (h *Handler) SubmitSession(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *booking.Session) (int, any, error) {
		if err := s.Submit(); err != nil {
			if errors.Is(err, booking.ErrIncomplete) {
				h.metrics.IncValidationFailures()
			}
			return 0, nil, err
		}
		return http.StatusOK, sessionView(s), nil
	})
}

// ConfirmSession handles POST /api/bookings/sessions/{id}/confirm. A storage
// failure reopens the session to Editing; the session is only discarded once
// the booking is durably stored.
func (h *Handler) ConfirmSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	requestID := middleware.RequestID(r.Context())

	var confirmationID string
	err := h.sessions.With(sessionID, func(s *booking.Session) error {
		request, err := s.Confirm()
		if err != nil {
			return err
		}

		record := storage.Booking{
			ID:             uuid.New().String(),
			PackageID:      request.PackageID,
			Travelers:      request.Travelers,
			AdditionalInfo: request.AdditionalInfo,
			Status:         storage.StatusConfirmed,
			CreatedAt:      time.Now().UTC(),
		}
		if err := h.store.CreateBooking(r.Context(), record); err != nil {
			s.Reopen()
			return fmt.Errorf("store booking: %w", err)
		}
		confirmationID = record.ID
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrSessionNotFound):
			writeError(w, http.StatusNotFound, "booking session not found")
		case errors.Is(err, booking.ErrInvalidState):
			writeError(w, http.StatusConflict, err.Error())
		default:
			h.logger.Error("booking submission failed",
				"request_id", requestID,
				"session_id", sessionID,
				"error", err,
			)
			writeError(w, http.StatusBadGateway, "booking submission failed")
		}
		return
	}

	h.sessions.Remove(sessionID)
	h.metrics.IncBookingsConfirmed()
	h.logger.Info("booking confirmed",
		"request_id", requestID,
		"session_id", sessionID,
		"confirmation_id", confirmationID,
	)
	writeJSON(w, http.StatusCreated, map[string]string{
		"confirmation_id": confirmationID,
		"status":          storage.StatusConfirmed,
	})
}

// CancelSession handles POST /api/bookings/sessions/{id}/cancel.
func (h *Handler) CancelSession(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *booking.Session) (int, any, error) {
		if err := s.Cancel(); err != nil {
			return 0, nil, err
		}
		return http.StatusOK, sessionView(s), nil
	})
}

// GetBooking handles GET /api/bookings/{id}.
func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	record, err := h.store.Booking(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrBookingNotFound) {
			writeError(w, http.StatusNotFound, "booking not found")
			return
		}
		h.logger.Error("failed to load booking",
			"request_id", middleware.RequestID(r.Context()),
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "failed to load booking")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"confirmation_id": record.ID,
		"package_id":      record.PackageID,
		"travelers":       record.Travelers,
		"additional_info": record.AdditionalInfo,
		"status":          record.Status,
		"created_at":      record.CreatedAt,
	})
}

// IssueToken handles POST /api/auth/token.
func (h *Handler) IssueToken(w http.ResponseWriter, r *http.Request) {
	if !h.tokens.Enabled() {
		writeError(w, http.StatusServiceUnavailable, "authentication is not configured")
		return
	}

	var body struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(body.Name) == "" || strings.TrimSpace(body.Email) == "" {
		writeError(w, http.StatusBadRequest, "name and email are required")
		return
	}

	token, err := h.tokens.Issue(body.Name, body.Email)
	if err != nil {
		h.logger.Error("token issuance failed",
			"request_id", middleware.RequestID(r.Context()),
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "token issuance failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// withSession runs fn against the addressed session and maps engine errors to
// HTTP statuses.
func (h *Handler) withSession(w http.ResponseWriter, r *http.Request, fn func(*booking.Session) (int, any, error)) {
	var (
		status int
		body   any
	)
	err := h.sessions.With(r.PathValue("id"), func(s *booking.Session) error {
		var err error
		status, body, err = fn(s)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrSessionNotFound):
			writeError(w, http.StatusNotFound, "booking session not found")
		case errors.Is(err, booking.ErrInvalidState):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, booking.ErrIncomplete):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, booking.ErrTravelerIndex), errors.Is(err, booking.ErrUnknownField):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("session operation failed",
				"request_id", middleware.RequestID(r.Context()),
				"error", err,
			)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeJSON(w, status, body)
}

func (h *Handler) catalogError(w http.ResponseWriter, r *http.Request, err error) {
	h.metrics.IncCatalogErrors()
	h.logger.Error("catalog fetch failed",
		"request_id", middleware.RequestID(r.Context()),
		"error", err,
	)
	writeError(w, http.StatusBadGateway, "package catalog unavailable")
}

func decodeJSON(r *http.Request, out any) error {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		return fmt.Errorf("invalid request body")
	}
	return nil
}

// ExtractIP extracts the client IP from the request.
// Checks X-Forwarded-For, X-Real-IP, then falls back to RemoteAddr.
func ExtractIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
