package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/paperlex/paperlex/logger"
	"github.com/paperlex/paperlex/metadata"
	"github.com/paperlex/paperlex/model"
	"go.uber.org/zap"
)

func (s *Server) HandleCreateWorkflow(w http.ResponseWriter, r *http.Request) {
	var wf model.Workflow
	if err := json.NewDecoder(r.Body).Decode(&wf); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid workflow definition")
		return
	}
	defer r.Body.Close()

	if wf.Id == "" {
		wf.Id = uuid.NewString()
	}
	for i := range wf.Triggers {
		if wf.Triggers[i].Id == "" {
			wf.Triggers[i].Id = uuid.NewString()
		}
	}
	for i := range wf.Actions {
		if wf.Actions[i].Id == "" {
			wf.Actions[i].Id = uuid.NewString()
		}
	}
	now := time.Now().UTC()
	if wf.CreatedAt.IsZero() {
		wf.CreatedAt = now
	}
	wf.UpdatedAt = now

	if err := s.metadataService.ValidateWorkflow(wf); err != nil {
		var confErr *metadata.ConfigurationError
		if errors.As(err, &confErr) {
			respondWithError(w, http.StatusBadRequest, confErr.Message)
			return
		}
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.storage.Workflows().Save(wf); err != nil {
		logger.Error("error saving workflow", zap.String("name", wf.Name), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "error saving workflow")
		return
	}
	s.metadataService.Invalidate(wf.Id)
	respondOK(w, map[string]any{"id": wf.Id})
}

func (s *Server) HandleGetWorkflow(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]
	wf, err := s.metadataService.GetWorkflow(id)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "workflow not found")
		return
	}
	respondWithJSON(w, http.StatusOK, wf)
}

func (s *Server) HandleListWorkflows(w http.ResponseWriter, r *http.Request) {
	workflows, err := s.storage.Workflows().List()
	if err != nil {
		logger.Error("error listing workflows", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "error listing workflows")
		return
	}
	respondWithJSON(w, http.StatusOK, workflows)
}

func (s *Server) HandleDeleteWorkflow(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]
	if err := s.storage.Workflows().Delete(id); err != nil {
		logger.Error("error deleting workflow", zap.String("id", id), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "error deleting workflow")
		return
	}
	s.metadataService.Invalidate(id)
	respondOK(w, map[string]any{"deleted": id})
}
