package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"reviewsvisor/internal/app"
	"reviewsvisor/internal/dedupe"
	"reviewsvisor/internal/domain"
)

type Handlers struct {
	Q   *app.QueryService
	Imp *app.ImportService
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/places", h.listPlaces)
	s.mux.Get("/v1/places/{id}", h.getPlace)
	s.mux.Get("/v1/places/{id}/reviews", h.listReviews)
	s.mux.Post("/v1/places/{id}/reviews/import", h.importReviews)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func (h *Handlers) listPlaces(w http.ResponseWriter, r *http.Request) {
	q := domain.PlacesQuery{Limit: 50}
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 200 {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 200")
			return
		}
		q.Limit = l
	}

	out, err := h.Q.ListPlaces(r.Context(), q)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Listing Failed", "could not list places")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(out); err != nil {
		log.Error().Err(err).Msg("failed to write listPlaces body")
	}
}

func (h *Handlers) getPlace(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	resp, err := h.Q.GetPlace(r.Context(), id)
	if err != nil {
		writeProblem(w, http.StatusNotFound, "Not Found", "place not found")
		return
	}

	etag, body := calcETagAndBody(resp)
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write getPlace body")
	}
}

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}

	limit := 50
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 200 {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 200")
			return
		}
		limit = l
	}

	// Newest first; aligns with DB index on (place_id, reviewed_at, id)
	page := domain.PageQuery{Limit: limit, Cursor: nil, Sort: "-reviewed_at"}
	out, err := h.Q.ListReviews(r.Context(), id, page)
	if err != nil {
		writeProblem(w, http.StatusNotFound, "Not Found", "reviews not found")
		return
	}

	etag, body := calcETagAndBody(out)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write listReviews body")
	}
}

// incomingReview is the JSON shape of one manually submitted review.
type incomingReview struct {
	Platform   string `json:"platform,omitempty"`
	Author     string `json:"author,omitempty"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment,omitempty"`
	ReviewDate string `json:"review_date,omitempty"`
	Lang       string `json:"lang,omitempty"`
}

func (h *Handlers) importReviews(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}

	var res app.ImportResult
	if ct := r.Header.Get("Content-Type"); strings.HasPrefix(ct, "text/csv") {
		res, err = h.Imp.ImportCSV(r.Context(), id, r.Body)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid CSV", err.Error())
			return
		}
	} else {
		var in []incomingReview
		if derr := json.NewDecoder(r.Body).Decode(&in); derr != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", "body must be a JSON array of reviews")
			return
		}
		revs, rowErrs := reviewsFromJSON(id, in)
		res, err = h.Imp.ImportBatch(r.Context(), id, revs)
		res.Errors = append(res.Errors, rowErrs...)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Import Failed", err.Error())
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(res); err != nil {
		log.Error().Err(err).Msg("failed to write import result")
	}
}

// reviewsFromJSON validates submitted rows the same way the CSV path does:
// rating must be 1..5, everything else is optional.
func reviewsFromJSON(placeID int64, in []incomingReview) ([]domain.Review, []app.RowError) {
	var (
		out     []domain.Review
		rowErrs []app.RowError
	)
	for i, ir := range in {
		if ir.Rating < 1 || ir.Rating > 5 {
			rowErrs = append(rowErrs, app.RowError{Row: i + 1, Field: "rating", Error: "must be between 1 and 5"})
			continue
		}
		rating := ir.Rating
		rv := domain.Review{PlaceID: placeID, Rating: &rating}
		if ir.Platform != "" {
			v := ir.Platform
			rv.Platform = &v
		}
		if ir.Author != "" {
			v := ir.Author
			rv.Author = &v
		}
		if ir.Comment != "" {
			v := ir.Comment
			rv.Comment = &v
		}
		if ir.Lang != "" {
			v := ir.Lang
			rv.Lang = &v
		}
		if ir.ReviewDate != "" {
			if t := dedupe.ParseDate(ir.ReviewDate); !t.IsZero() {
				rv.ReviewedAt = &t
			}
		}
		out = append(out, rv)
	}
	return out, rowErrs
}
