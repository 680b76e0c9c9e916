/*******************************************************************************
* Copyright (C) 2025 the Eclipse FA³ST Authors
*
* Permission is hereby granted, free of charge, to any person obtaining
* a copy of this software and associated documentation files (the
* "Software"), to deal in the Software without restriction, including
* without limitation the rights to use, copy, modify, merge, publish,
* distribute, sublicense, and/or sell copies of the Software, and to
* permit persons to whom the Software is furnished to do so, subject to
* the following conditions:
*
* The above copyright notice and this permission notice shall be
* included in all copies or substantial portions of the Software.
*
* THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
* EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
* MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND
* NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE
* LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION
* OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION
* WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
*
* SPDX-License-Identifier: MIT
******************************************************************************/

//nolint:all
package model

// AssetAdministrationShell struct representing an Asset Administration Shell.
type AssetAdministrationShell struct {
	Extensions []Extension `json:"extensions,omitempty"`

	//nolint:all
	IdShort string `json:"idShort,omitempty"`

	DisplayName []LangStringNameType `json:"displayName,omitempty"`

	Description []LangStringTextType `json:"description,omitempty"`

	ModelType string `json:"modelType" validate:"regexp=^AssetAdministrationShell$"`

	Administration *AdministrativeInformation `json:"administration,omitempty"`

	ID string `json:"id"`

	AssetInformation AssetInformation `json:"assetInformation"`

	// Submodels holds references to the submodels of this shell, not the
	// submodels themselves.
	Submodels []Reference `json:"submodels,omitempty"`
}

// AssertAssetAdministrationShellRequired checks if the required fields are not zero-ed
func AssertAssetAdministrationShellRequired(obj AssetAdministrationShell) error {
	elements := map[string]interface{}{
		"id": obj.ID,
	}
	for name, el := range elements {
		if isZero := IsZeroValue(el); isZero {
			return &RequiredError{Field: name}
		}
	}

	if err := AssertAssetInformationRequired(obj.AssetInformation); err != nil {
		return err
	}
	for _, el := range obj.Submodels {
		if err := AssertReferenceRequired(el); err != nil {
			return err
		}
	}
	return nil
}
