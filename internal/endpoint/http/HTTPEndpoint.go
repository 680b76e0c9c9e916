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

// Package endpointhttp provides the HTTP transport of the repository. It
// serves the shell and submodel CRUD API, publishes a lifecycle event on every
// successful write, and reports the endpoint descriptors under which entities
// are reachable over HTTP.
package endpointhttp

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"

	"github.com/carlos-schmidt/fa3st-service/internal/common"
	"github.com/carlos-schmidt/fa3st-service/internal/common/model"
	"github.com/carlos-schmidt/fa3st-service/internal/messagebus"
	"github.com/carlos-schmidt/fa3st-service/internal/persistence"
)

const (
	interfaceAasRepository      = "AAS-REPOSITORY-3.0"
	interfaceAas                = "AAS-3.0"
	interfaceSubmodelRepository = "SUBMODEL-REPOSITORY-3.0"
	interfaceSubmodel           = "SUBMODEL-3.0"

	endpointProtocol        = "HTTP"
	endpointProtocolVersion = "1.1"

	shutdownTimeout = 10 * time.Second
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

type HTTPEndpoint struct {
	config      *common.Config
	persistence persistence.Persistence
	messageBus  messagebus.MessageBus
	router      *chi.Mux
	server      *http.Server
	apiBase     string
}

// NewHTTPEndpoint builds the HTTP transport with all routes registered.
func NewHTTPEndpoint(config *common.Config, p persistence.Persistence, bus messagebus.MessageBus) *HTTPEndpoint {
	e := &HTTPEndpoint{
		config:      config,
		persistence: p,
		messageBus:  bus,
		apiBase:     config.Server.ExternalURL + config.Server.ContextPath,
	}

	r := chi.NewRouter()
	common.AddCors(r, config)
	common.AddHealthEndpoint(r, config)

	base := config.Server.ContextPath
	r.Route(base+"/shells", func(r chi.Router) {
		r.Get("/", e.getAllShells)
		r.Post("/", e.postShell)
		r.Get("/{aasIdentifier}", e.getShell)
		r.Put("/{aasIdentifier}", e.putShell)
		r.Delete("/{aasIdentifier}", e.deleteShell)
	})
	r.Route(base+"/submodels", func(r chi.Router) {
		r.Get("/", e.getAllSubmodels)
		r.Post("/", e.postSubmodel)
		r.Get("/{submodelIdentifier}", e.getSubmodel)
		r.Put("/{submodelIdentifier}", e.putSubmodel)
		r.Delete("/{submodelIdentifier}", e.deleteSubmodel)
	})

	e.router = r
	return e
}

// Router exposes the chi router, primarily for tests.
func (e *HTTPEndpoint) Router() *chi.Mux {
	return e.router
}

// Start runs the HTTP server in the background
func (e *HTTPEndpoint) Start() error {
	addr := fmt.Sprintf("0.0.0.0:%d", e.config.Server.Port)
	e.server = &http.Server{Addr: addr, Handler: e.router}

	log.Printf("▶️  HTTP endpoint listening on %s", addr)
	go func() {
		if err := e.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("HTTP endpoint error: %v", err)
		}
	}()
	return nil
}

// Stop shuts the HTTP server down gracefully
func (e *HTTPEndpoint) Stop() error {
	if e.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.server.Shutdown(ctx)
}

// AasEndpointInformation reports the HTTP endpoint descriptors of a shell
func (e *HTTPEndpoint) AasEndpointInformation(aasID string) []model.Endpoint {
	return []model.Endpoint{
		newEndpoint(interfaceAasRepository, e.apiBase),
		newEndpoint(interfaceAas, e.apiBase+"/shells/"+common.EncodeString(aasID)),
	}
}

// SubmodelEndpointInformation reports the HTTP endpoint descriptors of a submodel
func (e *HTTPEndpoint) SubmodelEndpointInformation(submodelID string) []model.Endpoint {
	return []model.Endpoint{
		newEndpoint(interfaceSubmodelRepository, e.apiBase),
		newEndpoint(interfaceSubmodel, e.apiBase+"/submodels/"+common.EncodeString(submodelID)),
	}
}

func newEndpoint(interfaceName string, href string) model.Endpoint {
	return model.Endpoint{
		Interface: interfaceName,
		ProtocolInformation: model.ProtocolInformation{
			Href:                    href,
			EndpointProtocol:        endpointProtocol,
			EndpointProtocolVersion: []string{endpointProtocolVersion},
			SecurityAttributes: []model.SecurityAttributeObject{
				{Type: model.SECURITYTYPE_NONE, Key: "", Value: ""},
			},
		},
	}
}

// ===== shells =====

func (e *HTTPEndpoint) getAllShells(w http.ResponseWriter, r *http.Request) {
	limit, cursor, err := pagingParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	shells, next, err := e.persistence.GetAllAssetAdministrationShells(limit, cursor)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, common.PagedResult{Cursor: next, Result: shells})
}

func (e *HTTPEndpoint) postShell(w http.ResponseWriter, r *http.Request) {
	var shell model.AssetAdministrationShell
	if err := jsonAPI.NewDecoder(r.Body).Decode(&shell); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode shell: %w", err))
		return
	}
	if err := model.AssertAssetAdministrationShellRequired(shell); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := e.persistence.CreateAssetAdministrationShell(shell); err != nil {
		writeMappedError(w, err)
		return
	}
	e.publish(messagebus.NewShellEvent(messagebus.EventTypeCreate, shell))
	writeJSON(w, http.StatusCreated, shell)
}

func (e *HTTPEndpoint) getShell(w http.ResponseWriter, r *http.Request) {
	id, err := common.DecodeString(chi.URLParam(r, "aasIdentifier"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode id: %w", err))
		return
	}

	shell, err := e.persistence.GetAssetAdministrationShell(id, persistence.QueryModifier{})
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shell)
}

func (e *HTTPEndpoint) putShell(w http.ResponseWriter, r *http.Request) {
	id, err := common.DecodeString(chi.URLParam(r, "aasIdentifier"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode id: %w", err))
		return
	}

	var shell model.AssetAdministrationShell
	if err := jsonAPI.NewDecoder(r.Body).Decode(&shell); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode shell: %w", err))
		return
	}

	if err := e.persistence.UpdateAssetAdministrationShell(id, shell); err != nil {
		writeMappedError(w, err)
		return
	}
	e.publish(messagebus.NewShellEvent(messagebus.EventTypeUpdate, shell))
	w.WriteHeader(http.StatusNoContent)
}

func (e *HTTPEndpoint) deleteShell(w http.ResponseWriter, r *http.Request) {
	id, err := common.DecodeString(chi.URLParam(r, "aasIdentifier"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode id: %w", err))
		return
	}

	// fetch first: the delete event carries the removed entity
	shell, err := e.persistence.GetAssetAdministrationShell(id, persistence.QueryModifier{})
	if err != nil {
		writeMappedError(w, err)
		return
	}
	if err := e.persistence.DeleteAssetAdministrationShell(id); err != nil {
		writeMappedError(w, err)
		return
	}
	e.publish(messagebus.NewShellEvent(messagebus.EventTypeDelete, shell))
	w.WriteHeader(http.StatusNoContent)
}

// ===== submodels =====

func (e *HTTPEndpoint) getAllSubmodels(w http.ResponseWriter, r *http.Request) {
	limit, cursor, err := pagingParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	submodels, next, err := e.persistence.GetAllSubmodels(limit, cursor)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, common.PagedResult{Cursor: next, Result: submodels})
}

func (e *HTTPEndpoint) postSubmodel(w http.ResponseWriter, r *http.Request) {
	var submodel model.Submodel
	if err := jsonAPI.NewDecoder(r.Body).Decode(&submodel); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode submodel: %w", err))
		return
	}
	if err := model.AssertSubmodelRequired(submodel); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := e.persistence.CreateSubmodel(submodel); err != nil {
		writeMappedError(w, err)
		return
	}
	e.publish(messagebus.NewSubmodelEvent(messagebus.EventTypeCreate, submodel))
	writeJSON(w, http.StatusCreated, submodel)
}

func (e *HTTPEndpoint) getSubmodel(w http.ResponseWriter, r *http.Request) {
	id, err := common.DecodeString(chi.URLParam(r, "submodelIdentifier"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode id: %w", err))
		return
	}

	submodel, err := e.persistence.GetSubmodel(id, persistence.QueryModifier{})
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, submodel)
}

func (e *HTTPEndpoint) putSubmodel(w http.ResponseWriter, r *http.Request) {
	id, err := common.DecodeString(chi.URLParam(r, "submodelIdentifier"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode id: %w", err))
		return
	}

	var submodel model.Submodel
	if err := jsonAPI.NewDecoder(r.Body).Decode(&submodel); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode submodel: %w", err))
		return
	}

	if err := e.persistence.UpdateSubmodel(id, submodel); err != nil {
		writeMappedError(w, err)
		return
	}
	e.publish(messagebus.NewSubmodelEvent(messagebus.EventTypeUpdate, submodel))
	w.WriteHeader(http.StatusNoContent)
}

func (e *HTTPEndpoint) deleteSubmodel(w http.ResponseWriter, r *http.Request) {
	id, err := common.DecodeString(chi.URLParam(r, "submodelIdentifier"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode id: %w", err))
		return
	}

	submodel, err := e.persistence.GetSubmodel(id, persistence.QueryModifier{})
	if err != nil {
		writeMappedError(w, err)
		return
	}
	if err := e.persistence.DeleteSubmodel(id); err != nil {
		writeMappedError(w, err)
		return
	}
	e.publish(messagebus.NewSubmodelEvent(messagebus.EventTypeDelete, submodel))
	w.WriteHeader(http.StatusNoContent)
}

// ===== helpers =====

func (e *HTTPEndpoint) publish(msg messagebus.EventMessage) {
	if err := e.messageBus.Publish(msg); err != nil {
		log.Printf("⚠️  Publishing %s event for %s failed: %v", msg.Type, msg.EntityID(), err)
	}
}

func pagingParams(r *http.Request) (int32, string, error) {
	limit := int32(0)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || parsed < 1 {
			return 0, "", fmt.Errorf("invalid limit %q", raw)
		}
		limit = int32(parsed)
	}
	return limit, r.URL.Query().Get("cursor"), nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := jsonAPI.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("⚠️  Encoding response failed: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, common.NewErrorHandler(
		"Exception", err, strconv.Itoa(status), "", time.Now().UTC().Format(time.RFC3339)))
}

func writeMappedError(w http.ResponseWriter, err error) {
	switch {
	case common.IsErrNotFound(err):
		writeError(w, http.StatusNotFound, err)
	case common.IsErrConflict(err):
		writeError(w, http.StatusConflict, err)
	case common.IsErrBadRequest(err):
		writeError(w, http.StatusBadRequest, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}
