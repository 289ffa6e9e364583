package persistence

import (
	"fmt"
	"testing"
	"time"

	"github.com/paperlex/paperlex/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemWorkflows_ListEnabledOrdersByCreation(t *testing.T) {
	storage := NewInMemStorage()
	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, storage.Workflows().Save(model.Workflow{Id: "c", Enabled: true, CreatedAt: base.Add(2 * time.Hour)}))
	require.NoError(t, storage.Workflows().Save(model.Workflow{Id: "a", Enabled: true, CreatedAt: base}))
	require.NoError(t, storage.Workflows().Save(model.Workflow{Id: "b", Enabled: false, CreatedAt: base.Add(time.Hour)}))

	enabled, err := storage.Workflows().ListEnabled()
	require.NoError(t, err)
	require.Len(t, enabled, 2)
	assert.Equal(t, "a", enabled[0].Id)
	assert.Equal(t, "c", enabled[1].Id)
}

func TestInMemWorkflows_GetAndDelete(t *testing.T) {
	storage := NewInMemStorage()
	require.NoError(t, storage.Workflows().Save(model.Workflow{Id: "wf-1", Name: "one"}))

	wf, err := storage.Workflows().Get("wf-1")
	require.NoError(t, err)
	assert.Equal(t, "one", wf.Name)

	require.NoError(t, storage.Workflows().Delete("wf-1"))
	_, err = storage.Workflows().Get("wf-1")
	assert.Error(t, err)
}

func TestInMemLogs_NewestFirstWithLimit(t *testing.T) {
	storage := NewInMemStorage()
	for i := 0; i < 5; i++ {
		require.NoError(t, storage.Logs().Append(model.WorkflowLog{
			Id: fmt.Sprintf("log-%d", i), WorkflowId: "wf-1",
		}))
	}
	require.NoError(t, storage.Logs().Append(model.WorkflowLog{Id: "other", WorkflowId: "wf-2"}))

	logs, err := storage.Logs().ListByWorkflow("wf-1", 3)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, "log-4", logs[0].Id)
	assert.Equal(t, "log-2", logs[2].Id)
}

func TestInMemMappings_Lookups(t *testing.T) {
	storage := NewInMemStorage()
	require.NoError(t, storage.Mappings().Save(model.ContactMapping{
		Id: "m-1", CorrespondentId: "7", ContactId: "c-7",
	}))

	byCorrespondent, err := storage.Mappings().GetByCorrespondent("7")
	require.NoError(t, err)
	require.NotNil(t, byCorrespondent)
	assert.Equal(t, "c-7", byCorrespondent.ContactId)

	byContact, err := storage.Mappings().GetByContact("c-7")
	require.NoError(t, err)
	require.NotNil(t, byContact)

	missing, err := storage.Mappings().GetByCorrespondent("nope")
	require.NoError(t, err)
	assert.Nil(t, missing, "absence is not an error")
}
