package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/literatipub/typeset"
	"github.com/literatipub/typeset/internal/jobs"
)

// jobList wraps a project's jobs.
type jobList struct {
	ProjectID string          `json:"projectId"`
	Jobs      []jobs.PrintJob `json:"jobs"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := w.Write([]byte("OK")); err != nil {
		s.logger.Error("unable to write healthcheck", "error", err)
	}
}

func (s *Server) handleFonts(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"default": typeset.DefaultFontKey,
		"fonts":   typeset.Fonts(),
	})
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	req, err := s.readSubmission(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	req.ProjectID = chi.URLParam(r, "projectID")

	job, err := s.runner.Submit(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/print-jobs/"+job.ID)
	s.writeJSON(w, http.StatusAccepted, job)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	list := s.runner.List(projectID)
	if list == nil {
		list = []jobs.PrintJob{}
	}
	s.writeJSON(w, http.StatusOK, jobList{ProjectID: projectID, Jobs: list})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.runner.Get(chi.URLParam(r, "jobID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	if err := s.runner.Delete(r.Context(), chi.URLParam(r, "jobID")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
