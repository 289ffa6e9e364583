package rest

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/paperlex/paperlex/model"
)

// HandlePaperlessWebhook normalizes a Paperless-ngx notification into the
// event pipeline. Signature verification happens upstream.
func (s *Server) HandlePaperlessWebhook(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid json payload")
		return
	}
	defer r.Body.Close()

	eventType, _ := payload["event"].(string)
	if eventType == "" {
		eventType, _ = payload["event_type"].(string)
	}
	if eventType == "" {
		eventType = "document_created"
	}
	documentId := payload["document_id"]
	if documentId == nil {
		documentId = payload["id"]
	}

	event := model.Event{
		Source:    model.SOURCE_PAPERLESS,
		EventType: eventType,
		FiredAt:   time.Now().UTC(),
		Payload: map[string]any{
			"source":      string(model.SOURCE_PAPERLESS),
			"event_type":  eventType,
			"document_id": documentId,
			"payload":     payload,
		},
	}
	copyTopLevel(payload, event.Payload)

	logs := s.dispatchService.Dispatch(event)
	respondOK(w, map[string]any{"status": "accepted", "executions": logs})
}

// HandleLexofficeWebhook normalizes a lexoffice event subscription callback
// (eventType / resourceId / organizationId).
func (s *Server) HandleLexofficeWebhook(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid json payload")
		return
	}
	defer r.Body.Close()

	eventType, _ := payload["eventType"].(string)
	if eventType == "" {
		eventType = "unknown"
	}

	event := model.Event{
		Source:    model.SOURCE_LEXOFFICE,
		EventType: eventType,
		FiredAt:   time.Now().UTC(),
		Payload: map[string]any{
			"source":          string(model.SOURCE_LEXOFFICE),
			"event_type":      eventType,
			"resource_id":     payload["resourceId"],
			"organization_id": payload["organizationId"],
			"payload":         payload,
		},
	}
	copyTopLevel(payload, event.Payload)

	logs := s.dispatchService.Dispatch(event)
	respondOK(w, map[string]any{"status": "accepted", "executions": logs})
}

// copyTopLevel lifts custom payload fields to the top so trigger conditions
// can reference them directly.
func copyTopLevel(from, to map[string]any) {
	for k, v := range from {
		if _, taken := to[k]; !taken {
			to[k] = v
		}
	}
}
