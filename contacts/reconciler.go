package contacts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/paperlex/paperlex/connector"
	"github.com/paperlex/paperlex/engine"
	"github.com/paperlex/paperlex/logger"
	"github.com/paperlex/paperlex/model"
	"github.com/paperlex/paperlex/persistence"
	"go.uber.org/zap"
)

// ReconciliationJobId keys the job's execution lock and its log rows.
const ReconciliationJobId = "contact-sync"

// Conflict names the candidates of an ambiguous match. It is logged and
// does not abort the reconciliation pass.
type Conflict struct {
	Name      string   `json:"name"`
	Paperless []string `json:"paperless"`
	Lexoffice []string `json:"lexoffice"`
}

type Report struct {
	MappingsCreated int        `json:"mappingsCreated"`
	ContactsCreated int        `json:"contactsCreated"`
	Conflicts       []Conflict `json:"conflicts,omitempty"`
	PaperlessTotal  int        `json:"paperlessTotal"`
	LexofficeTotal  int        `json:"lexofficeTotal"`
}

// Reconciler aligns correspondents and contacts across the two services via
// the mapping table. Only contacts absent from the table are considered, so
// re-running without external changes is a no-op.
type Reconciler struct {
	paperless connector.Connector
	lexoffice connector.Connector
	mappings  persistence.MappingStorage
	logs      persistence.LogStorage
	locks     *engine.LockArena
}

func NewReconciler(paperless, lexoffice connector.Connector, mappings persistence.MappingStorage, logs persistence.LogStorage, locks *engine.LockArena) *Reconciler {
	return &Reconciler{
		paperless: paperless,
		lexoffice: lexoffice,
		mappings:  mappings,
		logs:      logs,
		locks:     locks,
	}
}

// NormalizeName lowercases and collapses whitespace so "ACME  GmbH " and
// "acme gmbh" compare equal. Matching is exact on the normalized form.
func NormalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// Run executes one reconciliation pass. Overlapping passes are prevented the
// same way workflow executions are: a failed lock acquisition is logged as
// skipped, not queued.
func (r *Reconciler) Run(ctx context.Context) (*Report, error) {
	if r.paperless == nil || r.lexoffice == nil {
		return nil, fmt.Errorf("contact reconciliation requires both connectors to be active")
	}
	if !r.locks.TryAcquire(ReconciliationJobId) {
		logger.Info("skipping contact reconciliation, previous pass still running")
		r.appendLog(model.RUN_STATUS_SKIPPED, map[string]any{"reason": model.REASON_ALREADY_RUNNING}, "")
		return nil, nil
	}
	defer r.locks.Release(ReconciliationJobId)

	report, err := r.reconcile(ctx)
	if err != nil {
		r.appendLog(model.RUN_STATUS_ERROR, nil, err.Error())
		return nil, err
	}
	r.appendLog(model.RUN_STATUS_SUCCESS, map[string]any{"report": report}, "")
	return report, nil
}

func (r *Reconciler) reconcile(ctx context.Context) (*Report, error) {
	plContacts, err := r.paperless.List(ctx, connector.ListQuery{ItemType: connector.ITEM_TYPE_CONTACT})
	if err != nil {
		return nil, fmt.Errorf("listing paperless correspondents: %w", err)
	}
	lxContacts, err := r.lexoffice.List(ctx, connector.ListQuery{ItemType: connector.ITEM_TYPE_CONTACT})
	if err != nil {
		return nil, fmt.Errorf("listing lexoffice contacts: %w", err)
	}

	existing, err := r.mappings.List()
	if err != nil {
		return nil, fmt.Errorf("loading mapping table: %w", err)
	}
	mappedPl := make(map[string]bool, len(existing))
	mappedLx := make(map[string]bool, len(existing))
	for _, m := range existing {
		mappedPl[m.CorrespondentId] = true
		mappedLx[m.ContactId] = true
	}

	report := &Report{PaperlessTotal: len(plContacts), LexofficeTotal: len(lxContacts)}

	plByName := indexUnmapped(plContacts, mappedPl, paperlessContactName)
	lxByName := indexUnmapped(lxContacts, mappedLx, lexofficeContactName)

	handled := make(map[string]bool)

	// paperless side first, then lexoffice; handled names are touched once
	for _, c := range plContacts {
		id := c.Id()
		if mappedPl[id] {
			continue
		}
		name := NormalizeName(paperlessContactName(c))
		if name == "" || handled[name] {
			continue
		}
		handled[name] = true
		r.resolveName(ctx, name, plByName[name], lxByName[name], report)
	}
	for _, c := range lxContacts {
		id := c.Id()
		if mappedLx[id] {
			continue
		}
		name := NormalizeName(lexofficeContactName(c))
		if name == "" || handled[name] {
			continue
		}
		handled[name] = true
		r.resolveName(ctx, name, plByName[name], lxByName[name], report)
	}
	return report, nil
}

// resolveName decides for one normalized name: exactly one candidate on each
// side links them, a missing counterpart is created, anything ambiguous is a
// conflict and is not guessed at.
func (r *Reconciler) resolveName(ctx context.Context, name string, plSide, lxSide []connector.Item, report *Report) {
	if len(plSide) > 1 || len(lxSide) > 1 {
		conflict := Conflict{Name: name}
		for _, c := range plSide {
			conflict.Paperless = append(conflict.Paperless, c.Id())
		}
		for _, c := range lxSide {
			conflict.Lexoffice = append(conflict.Lexoffice, c.Id())
		}
		report.Conflicts = append(report.Conflicts, conflict)
		logger.Warn("reconciliation conflict, ambiguous name match",
			zap.String("name", name),
			zap.Strings("paperless", conflict.Paperless),
			zap.Strings("lexoffice", conflict.Lexoffice))
		return
	}

	switch {
	case len(plSide) == 1 && len(lxSide) == 1:
		r.saveMapping(plSide[0].Id(), lxSide[0].Id(), report)

	case len(plSide) == 1:
		displayName := paperlessContactName(plSide[0])
		created, err := r.lexoffice.Create(ctx, connector.ITEM_TYPE_CONTACT, connector.Item{"name": displayName})
		if err != nil {
			logger.Error("failed to create lexoffice contact", zap.String("name", displayName), zap.Error(err))
			return
		}
		report.ContactsCreated++
		r.saveMapping(plSide[0].Id(), created.Id(), report)

	case len(lxSide) == 1:
		displayName := lexofficeContactName(lxSide[0])
		created, err := r.paperless.Create(ctx, connector.ITEM_TYPE_CONTACT, connector.Item{"name": displayName})
		if err != nil {
			logger.Error("failed to create paperless correspondent", zap.String("name", displayName), zap.Error(err))
			return
		}
		report.ContactsCreated++
		r.saveMapping(created.Id(), lxSide[0].Id(), report)
	}
}

func (r *Reconciler) saveMapping(correspondentId, contactId string, report *Report) {
	m := model.ContactMapping{
		Id:              uuid.NewString(),
		CorrespondentId: correspondentId,
		ContactId:       contactId,
		LastSynced:      time.Now().UTC(),
	}
	if err := r.mappings.Save(m); err != nil {
		logger.Error("failed to save contact mapping",
			zap.String("correspondent", correspondentId),
			zap.String("contact", contactId),
			zap.Error(err))
		return
	}
	report.MappingsCreated++
}

func (r *Reconciler) appendLog(status model.RunStatus, output map[string]any, errMsg string) {
	log := model.WorkflowLog{
		Id:           uuid.NewString(),
		WorkflowId:   ReconciliationJobId,
		Status:       status,
		Output:       output,
		ErrorMessage: errMsg,
		ExecutedAt:   time.Now().UTC(),
	}
	if err := r.logs.Append(log); err != nil {
		logger.Error("failed to persist reconciliation log", zap.Error(err))
	}
}

func indexUnmapped(contacts []connector.Item, mapped map[string]bool, nameOf func(connector.Item) string) map[string][]connector.Item {
	index := make(map[string][]connector.Item)
	for _, c := range contacts {
		if mapped[c.Id()] {
			continue
		}
		name := NormalizeName(nameOf(c))
		if name == "" {
			continue
		}
		index[name] = append(index[name], c)
	}
	return index
}

func paperlessContactName(c connector.Item) string {
	return c.Name()
}

// lexofficeContactName prefers the company name, falling back to the
// flattened person name lexoffice returns for private contacts.
func lexofficeContactName(c connector.Item) string {
	if company, ok := c["company"].(map[string]any); ok {
		if name, ok := company["name"].(string); ok {
			return name
		}
	}
	if person, ok := c["person"].(map[string]any); ok {
		first, _ := person["firstName"].(string)
		last, _ := person["lastName"].(string)
		return strings.TrimSpace(first + " " + last)
	}
	return c.Name()
}
