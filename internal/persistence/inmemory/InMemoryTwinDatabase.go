// Package persistenceinmemory provides a map-backed Persistence implementation.
// It is the default backend and the backend used by the test suites.
package persistenceinmemory

import (
	"sort"
	"sync"

	"github.com/carlos-schmidt/fa3st-service/internal/common"
	"github.com/carlos-schmidt/fa3st-service/internal/common/model"
	"github.com/carlos-schmidt/fa3st-service/internal/persistence"
)

type InMemoryTwinDatabase struct {
	mu        sync.RWMutex
	shells    map[string]model.AssetAdministrationShell
	submodels map[string]model.Submodel
}

// NewInMemoryTwinDatabase creates a new in-memory twin database
func NewInMemoryTwinDatabase() *InMemoryTwinDatabase {
	return &InMemoryTwinDatabase{
		shells:    make(map[string]model.AssetAdministrationShell),
		submodels: make(map[string]model.Submodel),
	}
}

// GetAllAssetAdministrationShells returns one id-ordered page of shells
func (db *InMemoryTwinDatabase) GetAllAssetAdministrationShells(limit int32, cursor string) ([]model.AssetAdministrationShell, string, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	ids := sortedKeys(db.shells)
	page, next := common.PageByID(ids, limit, cursor)

	shells := make([]model.AssetAdministrationShell, 0, len(page))
	for _, id := range page {
		shells = append(shells, db.shells[id])
	}
	return shells, next, nil
}

// GetAllSubmodels returns one id-ordered page of submodels
func (db *InMemoryTwinDatabase) GetAllSubmodels(limit int32, cursor string) ([]model.Submodel, string, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	ids := sortedKeys(db.submodels)
	page, next := common.PageByID(ids, limit, cursor)

	submodels := make([]model.Submodel, 0, len(page))
	for _, id := range page {
		submodels = append(submodels, db.submodels[id])
	}
	return submodels, next, nil
}

// GetAssetAdministrationShell returns a shell by its ID
func (db *InMemoryTwinDatabase) GetAssetAdministrationShell(id string, _ persistence.QueryModifier) (model.AssetAdministrationShell, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	shell, exists := db.shells[id]
	if !exists {
		return model.AssetAdministrationShell{}, common.NewErrNotFound(id)
	}
	return shell, nil
}

// GetSubmodel returns a submodel by its ID
func (db *InMemoryTwinDatabase) GetSubmodel(id string, modifier persistence.QueryModifier) (model.Submodel, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	submodel, exists := db.submodels[id]
	if !exists {
		return model.Submodel{}, common.NewErrNotFound(id)
	}
	return persistence.ApplyModifier(submodel, modifier), nil
}

// SubmodelExists reports whether a submodel with the given ID is stored
func (db *InMemoryTwinDatabase) SubmodelExists(id string) (bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	_, exists := db.submodels[id]
	return exists, nil
}

// CreateAssetAdministrationShell creates a new shell in the database
func (db *InMemoryTwinDatabase) CreateAssetAdministrationShell(shell model.AssetAdministrationShell) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.shells[shell.ID]; exists {
		return common.NewErrConflict(shell.ID)
	}
	db.shells[shell.ID] = shell
	return nil
}

// UpdateAssetAdministrationShell replaces a stored shell
func (db *InMemoryTwinDatabase) UpdateAssetAdministrationShell(id string, shell model.AssetAdministrationShell) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.shells[id]; !exists {
		return common.NewErrNotFound(id)
	}
	db.shells[id] = shell
	return nil
}

// DeleteAssetAdministrationShell deletes a shell by its ID
func (db *InMemoryTwinDatabase) DeleteAssetAdministrationShell(id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.shells[id]; !exists {
		return common.NewErrNotFound(id)
	}
	delete(db.shells, id)
	return nil
}

// CreateSubmodel creates a new submodel in the database
func (db *InMemoryTwinDatabase) CreateSubmodel(submodel model.Submodel) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.submodels[submodel.ID]; exists {
		return common.NewErrConflict(submodel.ID)
	}
	db.submodels[submodel.ID] = submodel
	return nil
}

// UpdateSubmodel replaces a stored submodel
func (db *InMemoryTwinDatabase) UpdateSubmodel(id string, submodel model.Submodel) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.submodels[id]; !exists {
		return common.NewErrNotFound(id)
	}
	db.submodels[id] = submodel
	return nil
}

// DeleteSubmodel deletes a submodel by its ID
func (db *InMemoryTwinDatabase) DeleteSubmodel(id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.submodels[id]; !exists {
		return common.NewErrNotFound(id)
	}
	delete(db.submodels, id)
	return nil
}

// Close is a no-op for the in-memory backend
func (db *InMemoryTwinDatabase) Close() error {
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
