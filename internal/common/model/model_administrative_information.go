//nolint:all
package model

// AdministrativeInformation struct represents administrative metadata of an identifiable element.
type AdministrativeInformation struct {
	Version string `json:"version,omitempty" validate:"regexp=^([0-9]|[1-9][0-9]*)$"`

	Revision string `json:"revision,omitempty" validate:"regexp=^([0-9]|[1-9][0-9]*)$"`

	Creator *Reference `json:"creator,omitempty"`

	TemplateID string `json:"templateId,omitempty"`
}

// AssertAdministrativeInformationRequired checks if the required fields are not zero-ed
func AssertAdministrativeInformationRequired(obj AdministrativeInformation) error {
	if obj.Creator != nil {
		if err := AssertReferenceRequired(*obj.Creator); err != nil {
			return err
		}
	}
	return nil
}
