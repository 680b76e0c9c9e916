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

package endpointhttp

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carlos-schmidt/fa3st-service/internal/common"
	"github.com/carlos-schmidt/fa3st-service/internal/common/model"
	"github.com/carlos-schmidt/fa3st-service/internal/messagebus"
	"github.com/carlos-schmidt/fa3st-service/internal/persistence"
	inmemory "github.com/carlos-schmidt/fa3st-service/internal/persistence/inmemory"
)

type endpointFixture struct {
	endpoint    *HTTPEndpoint
	persistence *inmemory.InMemoryTwinDatabase
	bus         *messagebus.InternalMessageBus

	mu     sync.Mutex
	events []messagebus.EventMessage
}

func newEndpointFixture(t *testing.T) *endpointFixture {
	t.Helper()
	config := &common.Config{
		Server: common.ServerConfig{
			Port:        8080,
			ContextPath: "/api/v3.0",
			ExternalURL: "http://twin.example.com",
		},
	}
	fixture := &endpointFixture{
		persistence: inmemory.NewInMemoryTwinDatabase(),
		bus:         messagebus.NewInternalMessageBus(),
	}
	fixture.endpoint = NewHTTPEndpoint(config, fixture.persistence, fixture.bus)

	_, err := fixture.bus.Subscribe(messagebus.AllEventTypes, func(msg messagebus.EventMessage) {
		fixture.mu.Lock()
		defer fixture.mu.Unlock()
		fixture.events = append(fixture.events, msg)
	})
	require.NoError(t, err)
	return fixture
}

func (f *endpointFixture) do(t *testing.T, method string, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		encoded, err := jsoniter.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(encoded)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, body)
	recorder := httptest.NewRecorder()
	f.endpoint.Router().ServeHTTP(recorder, req)
	return recorder
}

func (f *endpointFixture) recordedEvents() []messagebus.EventMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]messagebus.EventMessage, len(f.events))
	copy(out, f.events)
	return out
}

func testShell(id string) model.AssetAdministrationShell {
	return model.AssetAdministrationShell{
		ID:        id,
		IdShort:   "shell",
		ModelType: "AssetAdministrationShell",
		AssetInformation: model.AssetInformation{
			AssetKind: model.ASSETKIND_INSTANCE,
		},
	}
}

func testSubmodel(id string) model.Submodel {
	return model.Submodel{
		ID:        id,
		IdShort:   "submodel",
		ModelType: "Submodel",
	}
}

func TestHealthEndpoint(t *testing.T) {
	fixture := newEndpointFixture(t)

	recorder := fixture.do(t, http.MethodGet, "/api/v3.0/health", nil)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"status":"UP"}`, recorder.Body.String())
}

func TestPostShellCreatesAndPublishes(t *testing.T) {
	fixture := newEndpointFixture(t)

	recorder := fixture.do(t, http.MethodPost, "/api/v3.0/shells", testShell("urn:shell:1"))

	require.Equal(t, http.StatusCreated, recorder.Code)
	stored, err := fixture.persistence.GetAssetAdministrationShell("urn:shell:1", persistence.QueryModifier{})
	require.NoError(t, err)
	assert.Equal(t, "urn:shell:1", stored.ID)

	events := fixture.recordedEvents()
	require.Len(t, events, 1)
	assert.Equal(t, messagebus.EventTypeCreate, events[0].Type)
	require.NotNil(t, events[0].Shell)
	assert.Equal(t, "urn:shell:1", events[0].Shell.ID)
}

func TestPostShellWithoutIdFails(t *testing.T) {
	fixture := newEndpointFixture(t)
	shell := testShell("urn:shell:1")
	shell.ID = ""

	recorder := fixture.do(t, http.MethodPost, "/api/v3.0/shells", shell)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Empty(t, fixture.recordedEvents())
}

func TestPostDuplicateShellConflicts(t *testing.T) {
	fixture := newEndpointFixture(t)
	require.Equal(t, http.StatusCreated,
		fixture.do(t, http.MethodPost, "/api/v3.0/shells", testShell("urn:shell:1")).Code)

	recorder := fixture.do(t, http.MethodPost, "/api/v3.0/shells", testShell("urn:shell:1"))

	assert.Equal(t, http.StatusConflict, recorder.Code)
	// only the first create published an event
	assert.Len(t, fixture.recordedEvents(), 1)
}

func TestGetShellByEncodedId(t *testing.T) {
	fixture := newEndpointFixture(t)
	require.NoError(t, fixture.persistence.CreateAssetAdministrationShell(testShell("urn:shell:1")))

	recorder := fixture.do(t, http.MethodGet, "/api/v3.0/shells/"+common.EncodeString("urn:shell:1"), nil)

	require.Equal(t, http.StatusOK, recorder.Code)
	var shell model.AssetAdministrationShell
	require.NoError(t, jsoniter.Unmarshal(recorder.Body.Bytes(), &shell))
	assert.Equal(t, "urn:shell:1", shell.ID)
}

func TestGetMissingShellNotFound(t *testing.T) {
	fixture := newEndpointFixture(t)

	recorder := fixture.do(t, http.MethodGet, "/api/v3.0/shells/"+common.EncodeString("urn:shell:absent"), nil)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestGetShellRejectsMalformedId(t *testing.T) {
	fixture := newEndpointFixture(t)

	recorder := fixture.do(t, http.MethodGet, "/api/v3.0/shells/%25%25not-base64url", nil)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestPutShellUpdatesAndPublishes(t *testing.T) {
	fixture := newEndpointFixture(t)
	require.NoError(t, fixture.persistence.CreateAssetAdministrationShell(testShell("urn:shell:1")))

	renamed := testShell("urn:shell:1")
	renamed.IdShort = "renamed"
	recorder := fixture.do(t, http.MethodPut, "/api/v3.0/shells/"+common.EncodeString("urn:shell:1"), renamed)

	require.Equal(t, http.StatusNoContent, recorder.Code)
	events := fixture.recordedEvents()
	require.Len(t, events, 1)
	assert.Equal(t, messagebus.EventTypeUpdate, events[0].Type)
	require.NotNil(t, events[0].Shell)
	assert.Equal(t, "renamed", events[0].Shell.IdShort)
}

func TestDeleteShellPublishesRemovedEntity(t *testing.T) {
	fixture := newEndpointFixture(t)
	require.NoError(t, fixture.persistence.CreateAssetAdministrationShell(testShell("urn:shell:1")))

	recorder := fixture.do(t, http.MethodDelete, "/api/v3.0/shells/"+common.EncodeString("urn:shell:1"), nil)

	require.Equal(t, http.StatusNoContent, recorder.Code)
	events := fixture.recordedEvents()
	require.Len(t, events, 1)
	assert.Equal(t, messagebus.EventTypeDelete, events[0].Type)
	require.NotNil(t, events[0].Shell)
	assert.Equal(t, "urn:shell:1", events[0].Shell.ID)
}

func TestDeleteMissingSubmodelNotFound(t *testing.T) {
	fixture := newEndpointFixture(t)

	recorder := fixture.do(t, http.MethodDelete, "/api/v3.0/submodels/"+common.EncodeString("urn:submodel:absent"), nil)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Empty(t, fixture.recordedEvents())
}

func TestSubmodelLifecycle(t *testing.T) {
	fixture := newEndpointFixture(t)

	require.Equal(t, http.StatusCreated,
		fixture.do(t, http.MethodPost, "/api/v3.0/submodels", testSubmodel("urn:submodel:1")).Code)
	require.Equal(t, http.StatusNoContent,
		fixture.do(t, http.MethodPut, "/api/v3.0/submodels/"+common.EncodeString("urn:submodel:1"), testSubmodel("urn:submodel:1")).Code)
	require.Equal(t, http.StatusNoContent,
		fixture.do(t, http.MethodDelete, "/api/v3.0/submodels/"+common.EncodeString("urn:submodel:1"), nil).Code)

	events := fixture.recordedEvents()
	require.Len(t, events, 3)
	assert.Equal(t, messagebus.EventTypeCreate, events[0].Type)
	assert.Equal(t, messagebus.EventTypeUpdate, events[1].Type)
	assert.Equal(t, messagebus.EventTypeDelete, events[2].Type)
}

func TestGetAllShellsPaginates(t *testing.T) {
	fixture := newEndpointFixture(t)
	for _, id := range []string{"urn:shell:a", "urn:shell:b", "urn:shell:c"} {
		require.NoError(t, fixture.persistence.CreateAssetAdministrationShell(testShell(id)))
	}

	recorder := fixture.do(t, http.MethodGet, "/api/v3.0/shells?limit=2", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var page struct {
		Cursor string                           `json:"cursor"`
		Result []model.AssetAdministrationShell `json:"result"`
	}
	require.NoError(t, jsoniter.Unmarshal(recorder.Body.Bytes(), &page))
	require.Len(t, page.Result, 2)
	require.NotEmpty(t, page.Cursor)

	recorder = fixture.do(t, http.MethodGet, "/api/v3.0/shells?limit=2&cursor="+page.Cursor, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.NoError(t, jsoniter.Unmarshal(recorder.Body.Bytes(), &page))
	assert.Len(t, page.Result, 1)
	assert.Empty(t, page.Cursor)
}

func TestGetAllShellsRejectsInvalidLimit(t *testing.T) {
	fixture := newEndpointFixture(t)

	recorder := fixture.do(t, http.MethodGet, "/api/v3.0/shells?limit=zero", nil)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestAasEndpointInformation(t *testing.T) {
	fixture := newEndpointFixture(t)

	endpoints := fixture.endpoint.AasEndpointInformation("urn:shell:1")

	require.Len(t, endpoints, 2)
	assert.Equal(t, "AAS-REPOSITORY-3.0", endpoints[0].Interface)
	assert.Equal(t, "http://twin.example.com/api/v3.0", endpoints[0].ProtocolInformation.Href)
	assert.Equal(t, "AAS-3.0", endpoints[1].Interface)
	assert.Equal(t,
		"http://twin.example.com/api/v3.0/shells/"+common.EncodeString("urn:shell:1"),
		endpoints[1].ProtocolInformation.Href)
	assert.Equal(t, "HTTP", endpoints[1].ProtocolInformation.EndpointProtocol)
	assert.Equal(t, []string{"1.1"}, endpoints[1].ProtocolInformation.EndpointProtocolVersion)
	require.Len(t, endpoints[1].ProtocolInformation.SecurityAttributes, 1)
	assert.Equal(t, model.SECURITYTYPE_NONE, endpoints[1].ProtocolInformation.SecurityAttributes[0].Type)
}

func TestSubmodelEndpointInformation(t *testing.T) {
	fixture := newEndpointFixture(t)

	endpoints := fixture.endpoint.SubmodelEndpointInformation("urn:submodel:1")

	require.Len(t, endpoints, 2)
	assert.Equal(t, "SUBMODEL-REPOSITORY-3.0", endpoints[0].Interface)
	assert.Equal(t, "SUBMODEL-3.0", endpoints[1].Interface)
	assert.Equal(t,
		"http://twin.example.com/api/v3.0/submodels/"+common.EncodeString("urn:submodel:1"),
		endpoints[1].ProtocolInformation.Href)
}
