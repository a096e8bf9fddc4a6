package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/amonks/cadence/internal/dates"
	"github.com/amonks/cadence/review"
	"github.com/go-chi/chi/v5"
)

type addReviewRequest struct {
	Title           string            `json:"title"`
	Content         string            `json:"content,omitempty"`
	FirstReviewDate *dates.Date       `json:"first_review_date,omitempty"`
	Difficulty      review.Difficulty `json:"difficulty,omitempty"`
}

type updateReviewRequest struct {
	Title           *string            `json:"title,omitempty"`
	Content         *string            `json:"content,omitempty"`
	FirstReviewDate *dates.Date        `json:"first_review_date,omitempty"`
	NextReviewDate  *dates.Date        `json:"next_review_date,omitempty"`
	Difficulty      *review.Difficulty `json:"difficulty,omitempty"`
}

type markReviewedRequest struct {
	Difficulty review.Difficulty `json:"difficulty"`
}

type reviewListResponse struct {
	Items []review.Item `json:"items"`
}

func (s *Server) reviewRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", s.handleReviewsList)
	r.Post("/", s.handleReviewsAdd)
	r.Get("/due", s.handleReviewsDue)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", s.handleReviewGet)
		r.Patch("/", s.handleReviewUpdate)
		r.Delete("/", s.handleReviewDelete)
		r.Post("/review", s.handleReviewMark)
	})
	return r
}

// reviewID is the exact id from the path. Prefix lookup is left to the CLI.
func reviewID(r *http.Request) string {
	return chi.URLParam(r, "id")
}

func (s *Server) handleReviewsList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, reviewListResponse{Items: s.reviews.List()})
}

func (s *Server) handleReviewsAdd(w http.ResponseWriter, r *http.Request) {
	var req addReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	added, err := s.reviews.AddItem(req.Title, review.AddOptions{
		Content:         req.Content,
		FirstReviewDate: req.FirstReviewDate,
		Difficulty:      req.Difficulty,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

// handleReviewsDue lists items due on ?date= (default today). With
// ?overdue=true it includes items whose review date has already passed.
func (s *Server) handleReviewsDue(w http.ResponseWriter, r *http.Request) {
	date := dates.Today(s.now())
	if value := r.URL.Query().Get("date"); value != "" {
		parsed, err := dates.ParseInput(value, s.now())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		date = parsed
	}

	includeOverdue := false
	if value := r.URL.Query().Get("overdue"); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			s.writeError(w, r, errors.Join(errBadRequest, err))
			return
		}
		includeOverdue = parsed
	}

	var items []review.Item
	if includeOverdue {
		items = s.reviews.ItemsDueBy(date)
	} else {
		items = s.reviews.ItemsDueOn(date)
	}
	writeJSON(w, http.StatusOK, reviewListResponse{Items: items})
}

func (s *Server) handleReviewGet(w http.ResponseWriter, r *http.Request) {
	id := reviewID(r)
	item, err := s.reviews.Get(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleReviewUpdate(w http.ResponseWriter, r *http.Request) {
	id := reviewID(r)
	var req updateReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	updated, err := s.reviews.UpdateItem(id, review.UpdateOptions{
		Title:           req.Title,
		Content:         req.Content,
		FirstReviewDate: req.FirstReviewDate,
		NextReviewDate:  req.NextReviewDate,
		Difficulty:      req.Difficulty,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleReviewDelete(w http.ResponseWriter, r *http.Request) {
	s.reviews.DeleteItem(reviewID(r))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReviewMark(w http.ResponseWriter, r *http.Request) {
	id := reviewID(r)
	var req markReviewedRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	updated, err := s.reviews.MarkReviewed(id, req.Difficulty)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
