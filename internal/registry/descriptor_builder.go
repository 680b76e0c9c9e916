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
	"log"

	"github.com/carlos-schmidt/fa3st-service/internal/common/model"
	"github.com/carlos-schmidt/fa3st-service/internal/endpoint"
	"github.com/carlos-schmidt/fa3st-service/internal/persistence"
)

// DescriptorBuilder projects entities onto their registry descriptors. It
// resolves a shell's submodel references through persistence and computes
// reachability information fresh from the active transports on every build.
type DescriptorBuilder struct {
	persistence persistence.Persistence
	endpoints   []endpoint.Endpoint
}

// NewDescriptorBuilder creates a builder over the given collaborators.
func NewDescriptorBuilder(p persistence.Persistence, endpoints []endpoint.Endpoint) *DescriptorBuilder {
	return &DescriptorBuilder{
		persistence: p,
		endpoints:   endpoints,
	}
}

// BuildShellDescriptor projects a shell onto its registry descriptor.
// References to submodels that do not exist in persistence are dropped
// silently.
func (b *DescriptorBuilder) BuildShellDescriptor(shell model.AssetAdministrationShell) model.AssetAdministrationShellDescriptor {
	descriptor := model.AssetAdministrationShellDescriptor{
		Administration:      shell.Administration,
		Id:                  shell.ID,
		IdShort:             shell.IdShort,
		Description:         shell.Description,
		DisplayName:         shell.DisplayName,
		Extensions:          shell.Extensions,
		GlobalAssetId:       shell.AssetInformation.GlobalAssetID,
		AssetType:           shell.AssetInformation.AssetType,
		Endpoints:           endpoint.AggregateAasEndpointInformation(b.endpoints, shell.ID),
		SubmodelDescriptors: b.submodelDescriptorsFromShell(shell),
	}
	if shell.AssetInformation.AssetKind != "" {
		assetKind := shell.AssetInformation.AssetKind
		descriptor.AssetKind = &assetKind
	}
	return descriptor
}

// BuildSubmodelDescriptor projects a submodel onto its registry descriptor.
func (b *DescriptorBuilder) BuildSubmodelDescriptor(submodel model.Submodel) model.SubmodelDescriptor {
	return model.SubmodelDescriptor{
		Administration:         submodel.Administration,
		Id:                     submodel.ID,
		IdShort:                submodel.IdShort,
		Description:            submodel.Description,
		DisplayName:            submodel.DisplayName,
		Extensions:             submodel.Extensions,
		SemanticId:             submodel.SemanticID,
		SupplementalSemanticId: submodel.SupplementalSemanticIds,
		Endpoints:              endpoint.AggregateSubmodelEndpointInformation(b.endpoints, submodel.ID),
	}
}

func (b *DescriptorBuilder) submodelDescriptorsFromShell(shell model.AssetAdministrationShell) []model.SubmodelDescriptor {
	var descriptors []model.SubmodelDescriptor
	for _, reference := range shell.Submodels {
		submodelID, ok := model.FindFirstKeyValue(reference, model.KEYTYPES_SUBMODEL)
		if !ok {
			continue
		}

		exists, err := b.persistence.SubmodelExists(submodelID)
		if err != nil {
			log.Printf("⚠️  Existence check for submodel %s failed: %v", submodelID, err)
			continue
		}
		if !exists {
			// dangling reference, the target vanished or was never created
			continue
		}

		submodel, err := b.persistence.GetSubmodel(submodelID, persistence.Minimal)
		if err != nil {
			// the submodel vanished between the existence check and the fetch
			continue
		}
		descriptors = append(descriptors, b.BuildSubmodelDescriptor(submodel))
	}
	return descriptors
}
