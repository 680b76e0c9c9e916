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
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carlos-schmidt/fa3st-service/internal/common"
	"github.com/carlos-schmidt/fa3st-service/internal/common/model"
)

func newTestClient(t *testing.T) (*Client, *fakeRegistry) {
	t.Helper()
	registry := newFakeRegistry(t)
	return NewClient(registry.URL(), 5*time.Second), registry
}

func TestClientRegisterShellDescriptor(t *testing.T) {
	client, registry := newTestClient(t)

	err := client.RegisterShellDescriptor(context.Background(),
		model.AssetAdministrationShellDescriptor{Id: "urn:shell:1"})
	require.NoError(t, err)

	calls := registry.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodPost, calls[0].Method)
	assert.Equal(t, "/shell-descriptors", calls[0].Path)
	assert.Contains(t, string(calls[0].Body), `"id":"urn:shell:1"`)
}

func TestClientUpdateUsesEncodedIdentifier(t *testing.T) {
	client, registry := newTestClient(t)
	id := "https://example.com/ids/submodel/1"

	err := client.UpdateSubmodelDescriptor(context.Background(), id,
		model.SubmodelDescriptor{Id: id})
	require.NoError(t, err)

	calls := registry.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodPut, calls[0].Method)
	assert.Equal(t, "/submodel-descriptors/"+common.EncodeString(id), calls[0].Path)
}

func TestClientDeregisterShellDescriptor(t *testing.T) {
	client, registry := newTestClient(t)

	err := client.DeregisterShellDescriptor(context.Background(), "urn:shell:1")
	require.NoError(t, err)

	calls := registry.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodDelete, calls[0].Method)
	assert.Empty(t, calls[0].Body)
}

func TestClientConflictClassification(t *testing.T) {
	client, registry := newTestClient(t)

	registry.forceStatus(http.MethodPost, http.StatusConflict)
	err := client.RegisterShellDescriptor(context.Background(),
		model.AssetAdministrationShellDescriptor{Id: "urn:shell:1"})
	require.Error(t, err)
	assert.True(t, common.IsErrConflict(err))

	registry.forceStatus(http.MethodDelete, http.StatusNotFound)
	err = client.DeregisterShellDescriptor(context.Background(), "urn:shell:1")
	require.Error(t, err)
	assert.True(t, common.IsErrConflict(err))

	registry.forceStatus(http.MethodPut, http.StatusNotFound)
	err = client.UpdateShellDescriptor(context.Background(), "urn:shell:1",
		model.AssetAdministrationShellDescriptor{Id: "urn:shell:1"})
	require.Error(t, err)
	assert.True(t, common.IsErrConflict(err))
}

func TestClientServerErrorIsNotConflict(t *testing.T) {
	client, registry := newTestClient(t)
	registry.forceStatus(http.MethodPost, http.StatusInternalServerError)

	err := client.RegisterSubmodelDescriptor(context.Background(),
		model.SubmodelDescriptor{Id: "urn:submodel:1"})
	require.Error(t, err)
	assert.False(t, common.IsErrConflict(err))
}

func TestClientUnreachableRegistry(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 500*time.Millisecond)

	err := client.RegisterShellDescriptor(context.Background(),
		model.AssetAdministrationShellDescriptor{Id: "urn:shell:1"})
	assert.Error(t, err)
}
