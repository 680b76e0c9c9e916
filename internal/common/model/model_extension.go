//nolint:all
package model

// Extension adds a proprietary name/value pair to an element.
type Extension struct {
	SemanticId *Reference `json:"semanticId,omitempty"`

	SupplementalSemanticIds []Reference `json:"supplementalSemanticIds,omitempty"`

	Name string `json:"name"`

	ValueType string `json:"valueType,omitempty"`

	Value string `json:"value,omitempty"`

	RefersTo []Reference `json:"refersTo,omitempty"`
}

// AssertExtensionRequired checks if the required fields are not zero-ed
func AssertExtensionRequired(obj Extension) error {
	elements := map[string]interface{}{
		"name": obj.Name,
	}
	for name, el := range elements {
		if isZero := IsZeroValue(el); isZero {
			return &RequiredError{Field: name}
		}
	}

	if obj.SemanticId != nil {
		if err := AssertReferenceRequired(*obj.SemanticId); err != nil {
			return err
		}
	}
	for _, el := range obj.SupplementalSemanticIds {
		if err := AssertReferenceRequired(el); err != nil {
			return err
		}
	}
	for _, el := range obj.RefersTo {
		if err := AssertReferenceRequired(el); err != nil {
			return err
		}
	}
	return nil
}
