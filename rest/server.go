package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/paperlex/paperlex/connector"
	"github.com/paperlex/paperlex/contacts"
	"github.com/paperlex/paperlex/logger"
	"github.com/paperlex/paperlex/metadata"
	"github.com/paperlex/paperlex/model"
	"github.com/paperlex/paperlex/persistence"
	"github.com/paperlex/paperlex/service"
	"go.uber.org/zap"
)

type Server struct {
	http.Server
	Port            int
	metadataService metadata.MetadataService
	dispatchService *service.EventDispatchService
	storage         persistence.Storage
	reconciler      *contacts.Reconciler
	connectors      map[model.Target]connector.Connector
}

func NewServer(
	httpPort int,
	metadataService metadata.MetadataService,
	dispatchService *service.EventDispatchService,
	storage persistence.Storage,
	reconciler *contacts.Reconciler,
	connectors map[model.Target]connector.Connector,
) (*Server, error) {
	s := &Server{
		Server: http.Server{
			Addr:        fmt.Sprintf(":%d", httpPort),
			IdleTimeout: 2 * time.Second,
		},
		Port:            httpPort,
		metadataService: metadataService,
		dispatchService: dispatchService,
		storage:         storage,
		reconciler:      reconciler,
		connectors:      connectors,
	}

	router := mux.NewRouter()
	router.HandleFunc("/metadata/workflow", s.HandleCreateWorkflow).Methods(http.MethodPost)
	router.HandleFunc("/metadata/workflow", s.HandleListWorkflows).Methods(http.MethodGet)
	router.HandleFunc("/metadata/workflow/{id}", s.HandleGetWorkflow).Methods(http.MethodGet)
	router.HandleFunc("/metadata/workflow/{id}", s.HandleDeleteWorkflow).Methods(http.MethodDelete)

	router.HandleFunc("/webhook/paperless", s.HandlePaperlessWebhook).Methods(http.MethodPost)
	router.HandleFunc("/webhook/lexoffice", s.HandleLexofficeWebhook).Methods(http.MethodPost)

	router.HandleFunc("/logs/{workflowId}", s.HandleListLogs).Methods(http.MethodGet)
	router.HandleFunc("/mappings", s.HandleListMappings).Methods(http.MethodGet)
	router.HandleFunc("/sync/contacts", s.HandleRunReconciliation).Methods(http.MethodPost)
	router.HandleFunc("/connections/{target}/test", s.HandleTestConnection).Methods(http.MethodPost)

	router.Use(loggingMiddleware)
	s.Handler = router
	return s, nil
}

func (s *Server) Start() error {
	logger.Info("starting http server on", zap.Int("port", s.Port))
	if err := s.ListenAndServe(); err != nil {
		return err
	}
	return nil
}

func (s *Server) Stop() error {
	logger.Info("stopping http server")
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := s.Shutdown(ctx)
	if err != nil {
		logger.Error("error shutting down http server")
	}
	return nil
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Info(r.RequestURI)
		next.ServeHTTP(w, r)
	})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondOK(w http.ResponseWriter, message map[string]any) {
	respondWithJSON(w, http.StatusOK, message)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
