// Package persistence defines the storage capability consumed by the HTTP
// endpoint and the registry synchronization engine. Implementations live in
// the subpackages inmemory, postgresql and mongodb.
package persistence

import (
	"github.com/carlos-schmidt/fa3st-service/internal/common/model"
)

// Content selects how much of an entity a point lookup returns.
type Content string

//nolint:all
const (
	// ContentNormal returns the entity as stored.
	ContentNormal Content = "normal"
	// ContentMinimal strips the submodel element payload. Descriptor builds
	// use it so nested descriptors never drag element data over the wire.
	ContentMinimal Content = "minimal"
)

// QueryModifier parameterizes point lookups.
type QueryModifier struct {
	Content Content
}

// Minimal is the modifier used for nested descriptor resolution.
var Minimal = QueryModifier{Content: ContentMinimal}

// Persistence is the storage capability of the repository. Lookups by id
// return a NotFound error (common.IsErrNotFound) when the entity is absent;
// SubmodelExists reports absence as a plain boolean instead.
type Persistence interface {
	GetAllAssetAdministrationShells(limit int32, cursor string) ([]model.AssetAdministrationShell, string, error)
	GetAllSubmodels(limit int32, cursor string) ([]model.Submodel, string, error)

	GetAssetAdministrationShell(id string, modifier QueryModifier) (model.AssetAdministrationShell, error)
	GetSubmodel(id string, modifier QueryModifier) (model.Submodel, error)
	SubmodelExists(id string) (bool, error)

	CreateAssetAdministrationShell(shell model.AssetAdministrationShell) error
	UpdateAssetAdministrationShell(id string, shell model.AssetAdministrationShell) error
	DeleteAssetAdministrationShell(id string) error

	CreateSubmodel(submodel model.Submodel) error
	UpdateSubmodel(id string, submodel model.Submodel) error
	DeleteSubmodel(id string) error

	Close() error
}

// ApplyModifier applies the query modifier to a submodel. Shells carry no
// element payload, so only submodels are affected.
func ApplyModifier(submodel model.Submodel, modifier QueryModifier) model.Submodel {
	if modifier.Content == ContentMinimal {
		submodel.SubmodelElements = nil
	}
	return submodel
}
