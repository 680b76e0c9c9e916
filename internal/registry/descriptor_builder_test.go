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

package registry

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carlos-schmidt/fa3st-service/internal/common/model"
	"github.com/carlos-schmidt/fa3st-service/internal/endpoint"
	inmemory "github.com/carlos-schmidt/fa3st-service/internal/persistence/inmemory"
)

func newTestBuilder(t *testing.T) (*DescriptorBuilder, *inmemory.InMemoryTwinDatabase) {
	t.Helper()
	p := inmemory.NewInMemoryTwinDatabase()
	builder := NewDescriptorBuilder(p,
		[]endpoint.Endpoint{fakeTransport{base: "http://twin.example.com/api/v3.0"}})
	return builder, p
}

func TestBuildShellDescriptorFields(t *testing.T) {
	builder, _ := newTestBuilder(t)
	shell := testShell("urn:shell:1")
	shell.IdShort = "motor"
	shell.Description = []model.LangStringTextType{{Language: "en", Text: "a motor"}}
	shell.Administration = &model.AdministrativeInformation{Version: "1", Revision: "2"}
	shell.AssetInformation.AssetType = "urn:asset-type:motor"

	descriptor := builder.BuildShellDescriptor(shell)

	assert.Equal(t, "urn:shell:1", descriptor.Id)
	assert.Equal(t, "motor", descriptor.IdShort)
	assert.Equal(t, shell.Description, descriptor.Description)
	assert.Equal(t, shell.Administration, descriptor.Administration)
	assert.Equal(t, "urn:asset:urn:shell:1", descriptor.GlobalAssetId)
	assert.Equal(t, "urn:asset-type:motor", descriptor.AssetType)
	require.NotNil(t, descriptor.AssetKind)
	assert.Equal(t, model.ASSETKIND_INSTANCE, *descriptor.AssetKind)
	require.Len(t, descriptor.Endpoints, 1)
	assert.Equal(t, "AAS-3.0", descriptor.Endpoints[0].Interface)
}

func TestBuildShellDescriptorOmitsEmptyAssetKind(t *testing.T) {
	builder, _ := newTestBuilder(t)
	shell := testShell("urn:shell:1")
	shell.AssetInformation.AssetKind = ""

	descriptor := builder.BuildShellDescriptor(shell)

	assert.Nil(t, descriptor.AssetKind)
}

func TestBuildSubmodelDescriptorFields(t *testing.T) {
	builder, _ := newTestBuilder(t)
	semanticID := model.Reference{
		Type: model.REFERENCETYPES_EXTERNAL_REFERENCE,
		Keys: []model.Key{{Type: model.KEYTYPES_GLOBAL_REFERENCE, Value: "urn:semantic:1"}},
	}
	submodel := testSubmodel("urn:submodel:1")
	submodel.SemanticID = &semanticID
	submodel.SupplementalSemanticIds = []model.Reference{semanticID}

	descriptor := builder.BuildSubmodelDescriptor(submodel)

	assert.Equal(t, "urn:submodel:1", descriptor.Id)
	assert.Equal(t, &semanticID, descriptor.SemanticId)
	assert.Equal(t, []model.Reference{semanticID}, descriptor.SupplementalSemanticId)
	require.Len(t, descriptor.Endpoints, 1)
	assert.Equal(t, "SUBMODEL-3.0", descriptor.Endpoints[0].Interface)
}

func TestNestedDescriptorsDropDanglingReferences(t *testing.T) {
	builder, p := newTestBuilder(t)
	require.NoError(t, p.CreateSubmodel(testSubmodel("urn:submodel:1")))
	shell := testShell("urn:shell:1", "urn:submodel:1", "urn:submodel:missing")

	descriptor := builder.BuildShellDescriptor(shell)

	require.Len(t, descriptor.SubmodelDescriptors, 1)
	assert.Equal(t, "urn:submodel:1", descriptor.SubmodelDescriptors[0].Id)
}

func TestNestedDescriptorsSkipForeignReferences(t *testing.T) {
	builder, p := newTestBuilder(t)
	require.NoError(t, p.CreateSubmodel(testSubmodel("urn:submodel:1")))
	shell := testShell("urn:shell:1", "urn:submodel:1")
	// a reference without a Submodel key contributes nothing
	shell.Submodels = append(shell.Submodels, model.Reference{
		Type: model.REFERENCETYPES_EXTERNAL_REFERENCE,
		Keys: []model.Key{{Type: model.KEYTYPES_GLOBAL_REFERENCE, Value: "urn:elsewhere"}},
	})

	descriptor := builder.BuildShellDescriptor(shell)

	require.Len(t, descriptor.SubmodelDescriptors, 1)
}

func TestNestedDescriptorsCarryNoElementPayload(t *testing.T) {
	builder, p := newTestBuilder(t)
	submodel := testSubmodel("urn:submodel:1")
	submodel.SubmodelElements = []json.RawMessage{
		json.RawMessage(`{"modelType":"Property","idShort":"temperature","value":"23"}`),
	}
	require.NoError(t, p.CreateSubmodel(submodel))
	shell := testShell("urn:shell:1", "urn:submodel:1")

	descriptor := builder.BuildShellDescriptor(shell)

	require.Len(t, descriptor.SubmodelDescriptors, 1)
	serialized, err := json.Marshal(descriptor.SubmodelDescriptors[0])
	require.NoError(t, err)
	assert.NotContains(t, string(serialized), "submodelElements")
	assert.NotContains(t, string(serialized), "temperature")
}
