package rest

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/paperlex/paperlex/logger"
	"go.uber.org/zap"
)

func (s *Server) HandleListLogs(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	workflowId := vars["workflowId"]
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	logs, err := s.storage.Logs().ListByWorkflow(workflowId, limit)
	if err != nil {
		logger.Error("error listing logs", zap.String("workflow", workflowId), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "error listing logs")
		return
	}
	respondWithJSON(w, http.StatusOK, logs)
}

func (s *Server) HandleListMappings(w http.ResponseWriter, r *http.Request) {
	mappings, err := s.storage.Mappings().List()
	if err != nil {
		logger.Error("error listing mappings", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "error listing mappings")
		return
	}
	respondWithJSON(w, http.StatusOK, mappings)
}
