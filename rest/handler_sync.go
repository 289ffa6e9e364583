package rest

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/paperlex/paperlex/logger"
	"github.com/paperlex/paperlex/model"
	"go.uber.org/zap"
)

// HandleRunReconciliation triggers one contact reconciliation pass.
func (s *Server) HandleRunReconciliation(w http.ResponseWriter, r *http.Request) {
	report, err := s.reconciler.Run(r.Context())
	if err != nil {
		logger.Error("reconciliation run failed", zap.Error(err))
		respondWithError(w, http.StatusBadGateway, "reconciliation failed")
		return
	}
	if report == nil {
		respondOK(w, map[string]any{"status": "skipped", "reason": model.REASON_ALREADY_RUNNING})
		return
	}
	respondOK(w, map[string]any{"status": "completed", "report": report})
}

func (s *Server) HandleTestConnection(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	target := model.Target(vars["target"])
	conn, ok := s.connectors[target]
	if !ok {
		respondWithError(w, http.StatusNotFound, "unknown connector")
		return
	}
	if err := conn.TestConnection(r.Context()); err != nil {
		respondOK(w, map[string]any{"success": false, "message": err.Error()})
		return
	}
	respondOK(w, map[string]any{"success": true, "message": "connected to " + conn.Name()})
}
