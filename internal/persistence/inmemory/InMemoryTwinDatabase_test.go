package persistenceinmemory

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carlos-schmidt/fa3st-service/internal/common"
	"github.com/carlos-schmidt/fa3st-service/internal/common/model"
	"github.com/carlos-schmidt/fa3st-service/internal/persistence"
)

func TestShellLifecycle(t *testing.T) {
	db := NewInMemoryTwinDatabase()

	shell := model.AssetAdministrationShell{
		ID:        "https://example.org/aas/Plant1",
		IdShort:   "Plant1",
		ModelType: "AssetAdministrationShell",
	}
	require.NoError(t, db.CreateAssetAdministrationShell(shell))

	err := db.CreateAssetAdministrationShell(shell)
	assert.True(t, common.IsErrConflict(err))

	got, err := db.GetAssetAdministrationShell(shell.ID, persistence.QueryModifier{})
	require.NoError(t, err)
	assert.Equal(t, "Plant1", got.IdShort)

	shell.IdShort = "Plant1-Renamed"
	require.NoError(t, db.UpdateAssetAdministrationShell(shell.ID, shell))
	got, err = db.GetAssetAdministrationShell(shell.ID, persistence.QueryModifier{})
	require.NoError(t, err)
	assert.Equal(t, "Plant1-Renamed", got.IdShort)

	require.NoError(t, db.DeleteAssetAdministrationShell(shell.ID))
	_, err = db.GetAssetAdministrationShell(shell.ID, persistence.QueryModifier{})
	assert.True(t, common.IsErrNotFound(err))
	assert.True(t, common.IsErrNotFound(db.DeleteAssetAdministrationShell(shell.ID)))
}

func TestSubmodelExists(t *testing.T) {
	db := NewInMemoryTwinDatabase()

	exists, err := db.SubmodelExists("urn:example:submodel:1")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, db.CreateSubmodel(model.Submodel{ID: "urn:example:submodel:1", ModelType: "Submodel"}))

	exists, err = db.SubmodelExists("urn:example:submodel:1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestGetSubmodelMinimalStripsElements(t *testing.T) {
	db := NewInMemoryTwinDatabase()

	submodel := model.Submodel{
		ID:               "urn:example:submodel:1",
		ModelType:        "Submodel",
		SubmodelElements: []json.RawMessage{json.RawMessage(`{"modelType":"Property","idShort":"p1"}`)},
	}
	require.NoError(t, db.CreateSubmodel(submodel))

	got, err := db.GetSubmodel(submodel.ID, persistence.QueryModifier{})
	require.NoError(t, err)
	assert.Len(t, got.SubmodelElements, 1)

	got, err = db.GetSubmodel(submodel.ID, persistence.Minimal)
	require.NoError(t, err)
	assert.Nil(t, got.SubmodelElements)

	// minimal projection must not mutate the stored entity
	got, err = db.GetSubmodel(submodel.ID, persistence.QueryModifier{})
	require.NoError(t, err)
	assert.Len(t, got.SubmodelElements, 1)
}

func TestGetAllSubmodelsPagination(t *testing.T) {
	db := NewInMemoryTwinDatabase()

	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("urn:example:submodel:%d", i)
		require.NoError(t, db.CreateSubmodel(model.Submodel{ID: id, ModelType: "Submodel"}))
	}

	var collected []string
	cursor := ""
	for {
		page, next, err := db.GetAllSubmodels(2, cursor)
		require.NoError(t, err)
		for _, sm := range page {
			collected = append(collected, sm.ID)
		}
		if next == "" {
			break
		}
		cursor = next
	}

	assert.Len(t, collected, 5)
	for i, id := range collected {
		assert.Equal(t, fmt.Sprintf("urn:example:submodel:%d", i), id)
	}
}
