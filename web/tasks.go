package web

import (
	"net/http"

	"github.com/amonks/cadence/internal/dates"
	"github.com/amonks/cadence/task"
	"github.com/go-chi/chi/v5"
)

type createTaskRequest struct {
	Description   string      `json:"description"`
	EstimatedTime int         `json:"estimated_time"`
	Category      string      `json:"category,omitempty"`
	ScheduledDate *dates.Date `json:"scheduled_date,omitempty"`
}

type reorderRequest struct {
	IDs []string `json:"ids"`
}

type manualTimeRequest struct {
	Minutes int `json:"minutes"`
}

type taskListResponse struct {
	Tasks []task.Task `json:"tasks"`
}

type runningResponse struct {
	Task *task.Task `json:"task"`
}

func (s *Server) taskRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", s.handleTasksList)
	r.Post("/", s.handleTasksCreate)
	r.Put("/order", s.handleTasksReorder)
	r.Get("/running", s.handleTasksRunning)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", s.handleTaskGet)
		r.Delete("/", s.handleTaskDelete)
		r.Post("/toggle", s.handleTaskToggle)
		r.Post("/time", s.handleTaskTime)
		r.Post("/timer/start", s.timerAction(s.tasks.Start))
		r.Post("/timer/pause", s.timerAction(s.tasks.Pause))
		r.Post("/timer/reset", s.timerAction(s.tasks.Reset))
	})
	return r
}

// taskID is the exact id from the path. Prefix lookup is left to the CLI.
func taskID(r *http.Request) string {
	return chi.URLParam(r, "id")
}

func (s *Server) handleTasksList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, taskListResponse{Tasks: s.tasks.List()})
}

func (s *Server) handleTasksCreate(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	created, err := s.tasks.Create(req.Description, req.EstimatedTime, task.CreateOptions{
		Category:      req.Category,
		ScheduledDate: req.ScheduledDate,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleTasksReorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.tasks.Reorder(req.IDs); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, taskListResponse{Tasks: s.tasks.List()})
}

func (s *Server) handleTasksRunning(w http.ResponseWriter, r *http.Request) {
	running, _ := s.tasks.Running()
	writeJSON(w, http.StatusOK, runningResponse{Task: running})
}

func (s *Server) handleTaskGet(w http.ResponseWriter, r *http.Request) {
	id := taskID(r)
	got, err := s.tasks.Get(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, got)
}

func (s *Server) handleTaskDelete(w http.ResponseWriter, r *http.Request) {
	s.tasks.Delete(taskID(r))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTaskToggle(w http.ResponseWriter, r *http.Request) {
	id := taskID(r)
	toggled, err := s.tasks.ToggleCompletion(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toggled)
}

func (s *Server) handleTaskTime(w http.ResponseWriter, r *http.Request) {
	id := taskID(r)
	var req manualTimeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	updated, err := s.tasks.AddManualTime(id, req.Minutes)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) timerAction(action func(id string) (*task.Task, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := taskID(r)
		updated, err := action(id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

type statsResponse struct {
	Tasks        task.Stats `json:"tasks"`
	TotalReviews int        `json:"total_reviews"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statsResponse{
		Tasks:        s.tasks.Stats(),
		TotalReviews: s.reviews.TotalReviews(),
	})
}
