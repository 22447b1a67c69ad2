// Package api exposes the subscription endpoints: subscribe, unsubscribe,
// stats and per-subscriber history. The dispatch pipeline itself has no
// HTTP surface beyond the health check.
package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/newsletter-dispatch/internal/pkg/logger"
	"github.com/ignite/newsletter-dispatch/internal/service/subscriber"
)

// Handlers carries the dependencies for all HTTP handlers.
type Handlers struct {
	subscribers *subscriber.Service
	db          *sql.DB
	startTime   time.Time
}

// NewHandlers creates the handler set. db may be nil in tests; the
// health check then skips the database probe.
func NewHandlers(svc *subscriber.Service, db *sql.DB) *Handlers {
	return &Handlers{
		subscribers: svc,
		db:          db,
		startTime:   time.Now(),
	}
}

type subscribeRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// HandleSubscribe upserts a subscriber.
//
//	POST /api/subscribe
func (h *Handlers) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	sub, err := h.subscribers.Subscribe(r.Context(), req.Email, req.FirstName, req.LastName)
	if err != nil {
		switch {
		case errors.Is(err, subscriber.ErrInvalidEmail), errors.Is(err, subscriber.ErrMissingName):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			log.Printf("[API] Subscribe failed: %v", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	log.Printf("[API] Subscribed %s", logger.RedactEmail(sub.Email))
	respondJSON(w, http.StatusCreated, sub)
}

// HandleUnsubscribe soft-deactivates a subscriber and renders a small
// HTML confirmation page, since the link lands in a mail client.
//
//	GET /unsubscribe?email=...
func (h *Handlers) HandleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, "Error: Invalid unsubscribe link (missing email).")
		return
	}

	log.Printf("[API] Unsubscribe request for %s", logger.RedactEmail(email))

	ok, err := h.subscribers.Unsubscribe(r.Context(), email)
	if err != nil {
		log.Printf("[API] Unsubscribe failed: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, "Internal Server Error")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	escaped := html.EscapeString(email)
	if !ok {
		fmt.Fprintf(w, "<h1>Message</h1>\n<p>The address <b>%s</b> was not found or is already unsubscribed.</p>", escaped)
		return
	}
	fmt.Fprintf(w, "<h1>Goodbye!</h1>\n<p><b>%s</b> has been successfully unsubscribed from the newsletter.</p>", escaped)
}

// HandleStats returns aggregate counts over the email history.
//
//	GET /api/stats
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.subscribers.Stats(r.Context())
	if err != nil {
		log.Printf("[API] Stats failed: %v", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// HandleHistory returns the most recent outcomes for one subscriber.
//
//	GET /api/history/{subscriberID}
func (h *Handlers) HandleHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "subscriberID")

	history, err := h.subscribers.History(r.Context(), id, 0)
	if err != nil {
		log.Printf("[API] History failed: %v", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"subscriber_id": id,
		"history":       history,
	})
}

// HandleHealth reports liveness plus a database probe.
//
//	GET /health
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	checks := map[string]string{}

	if h.db != nil {
		if err := h.db.PingContext(r.Context()); err != nil {
			status = "unhealthy"
			checks["database"] = "down"
		} else {
			checks["database"] = "up"
		}
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}

	respondJSON(w, code, map[string]interface{}{
		"status": status,
		"uptime": time.Since(h.startTime).Round(time.Second).String(),
		"checks": checks,
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[API] Failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
