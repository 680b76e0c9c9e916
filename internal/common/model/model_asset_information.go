//nolint:all
package model

import "fmt"

// AssetKind type of AssetKind
type AssetKind string

// List of AssetKind
//
//nolint:all
const (
	ASSETKIND_INSTANCE       AssetKind = "Instance"
	ASSETKIND_NOT_APPLICABLE AssetKind = "NotApplicable"
	ASSETKIND_TYPE           AssetKind = "Type"
)

// NewAssetKindFromValue returns the AssetKind matching the given string value.
func NewAssetKindFromValue(v string) (AssetKind, error) {
	switch AssetKind(v) {
	case ASSETKIND_INSTANCE, ASSETKIND_NOT_APPLICABLE, ASSETKIND_TYPE:
		return AssetKind(v), nil
	}
	return "", fmt.Errorf("invalid AssetKind value %q", v)
}

// AssetInformation type of AssetAdministrationShell
type AssetInformation struct {
	AssetKind AssetKind `json:"assetKind"`

	GlobalAssetID string `json:"globalAssetId,omitempty"`

	AssetType string `json:"assetType,omitempty"`
}

// AssertAssetInformationRequired checks if the required fields are not zero-ed
func AssertAssetInformationRequired(obj AssetInformation) error {
	elements := map[string]interface{}{
		"assetKind": obj.AssetKind,
	}
	for name, el := range elements {
		if isZero := IsZeroValue(el); isZero {
			return &RequiredError{Field: name}
		}
	}
	return nil
}
