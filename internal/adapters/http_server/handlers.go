package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"staysearch/internal/app"
	"staysearch/internal/domain"
)

type Handlers struct {
	Q      *app.QueryService
	T      *app.Translations
	Status *app.Status
}

const (
	codeInvalidDate   = "invalid_date"
	codeInvalidGuests = "invalid_guests"
	codeInternalError = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type listingResponse struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	City      string  `json:"city"`
	Price     float64 `json:"price"`
	Rating    float64 `json:"rating"`
	Image     string  `json:"image"`
	MaxGuests int     `json:"maxGuests"`
}

// MountHandlers registers the API at the root and under /api, the prefix the
// web frontend proxies.
func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/readyz", h.ready)
	for _, prefix := range []string{"", "/api"} {
		s.mux.Get(prefix+"/listings", h.listListings)
		s.mux.Get(prefix+"/translations/{locale}", h.getTranslations)
	}
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(errorResponse{Error: msg, Code: code}); err != nil {
		log.Error().Err(err).Msg("write JSON error response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return "", nil, err
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body, nil
}

// writeJSON sends v with an ETag, or 304 when the client already has it.
func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	etag, body, err := calcETagAndBody(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal response")
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		return
	}
	w.Header().Set("ETag", etag)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

func (h *Handlers) listListings(w http.ResponseWriter, r *http.Request) {
	f, err := parseListingFilter(r)
	if err != nil {
		code := codeInvalidDate
		if errors.Is(err, domain.ErrInvalidGuests) {
			code = codeInvalidGuests
		}
		writeError(w, http.StatusBadRequest, code, err.Error())
		return
	}

	ls, err := h.Q.Search(r.Context(), f)
	if err != nil {
		log.Error().Err(err).Msg("fetch listings failed")
		writeError(w, http.StatusInternalServerError, codeInternalError, "Failed to fetch listings")
		return
	}

	out := make([]listingResponse, 0, len(ls))
	for _, l := range ls {
		out = append(out, listingResponse{
			ID:        l.ID,
			Title:     l.Title,
			City:      l.City,
			Price:     l.Price,
			Rating:    l.Rating,
			Image:     l.Image,
			MaxGuests: l.MaxGuests,
		})
	}
	if h.Status != nil {
		w.Header().Set("X-Data-Source", h.Status.Source())
	}
	writeJSON(w, r, out)
}

func (h *Handlers) getTranslations(w http.ResponseWriter, r *http.Request) {
	locale, table := h.T.Lookup(chi.URLParam(r, "locale"))
	w.Header().Set("Content-Language", locale)
	writeJSON(w, r, table)
}

// ready reports the source searches read from. Without a Status there is no
// durable store to watch, so searches read memory.
func (h *Handlers) ready(w http.ResponseWriter, r *http.Request) {
	src := app.SourceMemory
	if h.Status != nil {
		src = h.Status.Source()
	}
	writeJSON(w, r, map[string]string{"store": src})
}

// parseListingFilter reads location, guests, checkIn and checkOut. Blank values
// are absent; the stay applies only when both dates are given. Malformed dates
// or guest counts are rejected rather than ignored.
func parseListingFilter(r *http.Request) (domain.ListingFilter, error) {
	q := r.URL.Query()
	var f domain.ListingFilter

	if loc := strings.TrimSpace(q.Get("location")); loc != "" {
		f.Location = &loc
	}

	if gs := strings.TrimSpace(q.Get("guests")); gs != "" {
		g, err := strconv.Atoi(gs)
		if err != nil {
			return f, fmt.Errorf("%w: guests must be an integer", domain.ErrInvalidGuests)
		}
		f.MinGuests = &g
	}

	in, hasIn, err := parseDate(q.Get("checkIn"))
	if err != nil {
		return f, fmt.Errorf("%w: checkIn must be an ISO-8601 date", domain.ErrInvalidDate)
	}
	out, hasOut, err := parseDate(q.Get("checkOut"))
	if err != nil {
		return f, fmt.Errorf("%w: checkOut must be an ISO-8601 date", domain.ErrInvalidDate)
	}
	if hasIn && hasOut {
		f.Stay = &domain.DateRange{CheckIn: in, CheckOut: out}
	}
	return f, nil
}

// parseDate accepts 2006-01-02 or a full RFC 3339 timestamp, normalised to UTC.
func parseDate(s string) (time.Time, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false, err
	}
	return t.UTC(), true, nil
}
