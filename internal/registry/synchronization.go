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
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/carlos-schmidt/fa3st-service/internal/common"
	"github.com/carlos-schmidt/fa3st-service/internal/common/model"
	"github.com/carlos-schmidt/fa3st-service/internal/endpoint"
	"github.com/carlos-schmidt/fa3st-service/internal/messagebus"
	"github.com/carlos-schmidt/fa3st-service/internal/persistence"
)

// Lifecycle states of the synchronization engine.
const (
	stateStopped int32 = iota
	stateStarting
	stateRunning
	stateStopping
)

// RegistrySynchronization mirrors the local repository into the configured
// registries: a full push of all entities on Start, incremental updates driven
// by lifecycle events while running, and a full withdrawal on Stop.
//
// Start and Stop are not reentrant; they are expected to be called once each,
// in that order, by a single owner. Event handlers are safe for concurrent
// delivery and serialize per entity id.
type RegistrySynchronization struct {
	config      common.RegistryConfig
	persistence persistence.Persistence
	messageBus  messagebus.MessageBus
	endpoints   []endpoint.Endpoint
	builder     *DescriptorBuilder

	shellRegistries    []*Client
	submodelRegistries []*Client

	state         atomic.Int32
	subscriptions []messagebus.SubscriptionID
	idLocks       keyedMutex
}

// NewRegistrySynchronization wires the engine over its collaborators.
func NewRegistrySynchronization(
	config common.RegistryConfig,
	p persistence.Persistence,
	bus messagebus.MessageBus,
	endpoints []endpoint.Endpoint,
) *RegistrySynchronization {
	timeout := time.Duration(config.RequestTimeoutSeconds) * time.Second

	shellRegistries := make([]*Client, 0, len(config.ShellRegistries))
	for _, baseURL := range config.ShellRegistries {
		shellRegistries = append(shellRegistries, NewClient(baseURL, timeout))
	}
	submodelRegistries := make([]*Client, 0, len(config.SubmodelRegistries))
	for _, baseURL := range config.SubmodelRegistries {
		submodelRegistries = append(submodelRegistries, NewClient(baseURL, timeout))
	}

	return &RegistrySynchronization{
		config:             config,
		persistence:        p,
		messageBus:         bus,
		endpoints:          endpoints,
		builder:            NewDescriptorBuilder(p, endpoints),
		shellRegistries:    shellRegistries,
		submodelRegistries: submodelRegistries,
		idLocks:            newKeyedMutex(),
	}
}

// Start pushes every entity currently in persistence to the registries, then
// subscribes to lifecycle events. Registration is best-effort: individual
// registry failures are collected and returned joined, after every entity has
// been attempted.
func (r *RegistrySynchronization) Start() error {
	if !r.state.CompareAndSwap(stateStopped, stateStarting) {
		return fmt.Errorf("registry synchronization already started")
	}

	log.Printf("🔄 Registry synchronization starting (%d shell, %d submodel registries)",
		len(r.shellRegistries), len(r.submodelRegistries))

	err := r.bulkSync(r.registerShell, r.registerSubmodel)

	subscription, subErr := r.messageBus.Subscribe(messagebus.AllEventTypes, r.handleEvent)
	if subErr != nil {
		r.state.Store(stateStopped)
		return errors.Join(err, fmt.Errorf("subscribe to message bus: %w", subErr))
	}
	r.subscriptions = []messagebus.SubscriptionID{subscription}

	r.state.Store(stateRunning)
	log.Println("✅ Registry synchronization running")
	return err
}

// Stop unsubscribes from lifecycle events first, then withdraws every entity
// currently in persistence from the registries. Like Start it is best-effort
// and returns the joined failures.
func (r *RegistrySynchronization) Stop() error {
	if !r.state.CompareAndSwap(stateRunning, stateStopping) {
		return fmt.Errorf("registry synchronization not running")
	}

	// no new events once the bulk withdrawal begins
	for _, subscription := range r.subscriptions {
		if err := r.messageBus.Unsubscribe(subscription); err != nil {
			log.Printf("⚠️  Unsubscribing from message bus failed: %v", err)
		}
	}
	r.subscriptions = nil

	err := r.bulkSync(r.deregisterShell, r.deregisterSubmodel)

	r.state.Store(stateStopped)
	log.Println("⏹️  Registry synchronization stopped")
	return err
}

// bulkSync applies one operation to every shell and every submodel in
// persistence, with bounded parallelism. All pages are consumed; failures are
// collected, never short-circuited.
func (r *RegistrySynchronization) bulkSync(
	shellOp func(model.AssetAdministrationShell) error,
	submodelOp func(model.Submodel) error,
) error {
	var (
		group    errgroup.Group
		mu       sync.Mutex
		failures []error
	)
	if r.config.BulkWorkers > 0 {
		group.SetLimit(r.config.BulkWorkers)
	}
	collect := func(err error) {
		if err != nil {
			mu.Lock()
			failures = append(failures, err)
			mu.Unlock()
		}
	}

	cursor := ""
	for {
		shells, next, err := r.persistence.GetAllAssetAdministrationShells(r.config.PageSize, cursor)
		if err != nil {
			collect(fmt.Errorf("list shells: %w", err))
			break
		}
		for _, shell := range shells {
			shell := shell
			group.Go(func() error {
				collect(shellOp(shell))
				return nil
			})
		}
		if next == "" {
			break
		}
		cursor = next
	}

	cursor = ""
	for {
		submodels, next, err := r.persistence.GetAllSubmodels(r.config.PageSize, cursor)
		if err != nil {
			collect(fmt.Errorf("list submodels: %w", err))
			break
		}
		for _, submodel := range submodels {
			submodel := submodel
			group.Go(func() error {
				collect(submodelOp(submodel))
				return nil
			})
		}
		if next == "" {
			break
		}
		cursor = next
	}

	_ = group.Wait()
	return errors.Join(failures...)
}

// ===== event handling =====

func (r *RegistrySynchronization) handleEvent(msg messagebus.EventMessage) {
	if r.state.Load() != stateRunning {
		return
	}
	switch msg.Type {
	case messagebus.EventTypeCreate:
		r.HandleCreateEvent(msg)
	case messagebus.EventTypeUpdate:
		r.HandleChangeEvent(msg)
	case messagebus.EventTypeDelete:
		r.HandleDeleteEvent(msg)
	}
}

// HandleCreateEvent registers the descriptor of a newly created entity.
func (r *RegistrySynchronization) HandleCreateEvent(msg messagebus.EventMessage) {
	r.withEntityLock(msg, func() {
		switch {
		case msg.Shell != nil:
			r.logResult("register", msg.Shell.ID, r.registerShell(*msg.Shell))
		case msg.Submodel != nil:
			r.logResult("register", msg.Submodel.ID, r.registerSubmodel(*msg.Submodel))
		}
	})
}

// HandleChangeEvent pushes the post-mutation descriptor of an updated entity.
func (r *RegistrySynchronization) HandleChangeEvent(msg messagebus.EventMessage) {
	r.withEntityLock(msg, func() {
		switch {
		case msg.Shell != nil:
			r.logResult("update", msg.Shell.ID, r.updateShell(*msg.Shell))
		case msg.Submodel != nil:
			r.logResult("update", msg.Submodel.ID, r.updateSubmodel(*msg.Submodel))
		}
	})
}

// HandleDeleteEvent removes the descriptor of a deleted entity.
func (r *RegistrySynchronization) HandleDeleteEvent(msg messagebus.EventMessage) {
	r.withEntityLock(msg, func() {
		switch {
		case msg.Shell != nil:
			r.logResult("deregister", msg.Shell.ID, r.deregisterShell(*msg.Shell))
		case msg.Submodel != nil:
			r.logResult("deregister", msg.Submodel.ID, r.deregisterSubmodel(*msg.Submodel))
		}
	})
}

// withEntityLock serializes handling per entity id. Events for different
// entities proceed in parallel; the lock is scoped to the one network call so
// bulk operations are never stalled behind it.
func (r *RegistrySynchronization) withEntityLock(msg messagebus.EventMessage, fn func()) {
	id := msg.EntityID()
	if id == "" {
		log.Printf("⚠️  Dropping %s event without entity", msg.Type)
		return
	}
	r.idLocks.lock(id)
	defer r.idLocks.unlock(id)
	fn()
}

func (r *RegistrySynchronization) logResult(operation string, id string, err error) {
	switch {
	case err == nil:
	case common.IsErrConflict(err):
		log.Printf("⚠️  Registry %s for %s: %v", operation, id, err)
	default:
		log.Printf("❌ Registry %s for %s failed: %v", operation, id, err)
	}
}

// ===== registry operations =====

func (r *RegistrySynchronization) registerShell(shell model.AssetAdministrationShell) error {
	descriptor := r.builder.BuildShellDescriptor(shell)
	var failures []error
	for _, client := range r.shellRegistries {
		failures = append(failures, client.RegisterShellDescriptor(context.Background(), descriptor))
	}
	return errors.Join(failures...)
}

func (r *RegistrySynchronization) updateShell(shell model.AssetAdministrationShell) error {
	descriptor := r.builder.BuildShellDescriptor(shell)
	var failures []error
	for _, client := range r.shellRegistries {
		failures = append(failures, client.UpdateShellDescriptor(context.Background(), shell.ID, descriptor))
	}
	return errors.Join(failures...)
}

func (r *RegistrySynchronization) deregisterShell(shell model.AssetAdministrationShell) error {
	var failures []error
	for _, client := range r.shellRegistries {
		failures = append(failures, client.DeregisterShellDescriptor(context.Background(), shell.ID))
	}
	return errors.Join(failures...)
}

func (r *RegistrySynchronization) registerSubmodel(submodel model.Submodel) error {
	descriptor := r.builder.BuildSubmodelDescriptor(submodel)
	var failures []error
	for _, client := range r.submodelRegistries {
		failures = append(failures, client.RegisterSubmodelDescriptor(context.Background(), descriptor))
	}
	return errors.Join(failures...)
}

func (r *RegistrySynchronization) updateSubmodel(submodel model.Submodel) error {
	descriptor := r.builder.BuildSubmodelDescriptor(submodel)
	var failures []error
	for _, client := range r.submodelRegistries {
		failures = append(failures, client.UpdateSubmodelDescriptor(context.Background(), submodel.ID, descriptor))
	}
	return errors.Join(failures...)
}

func (r *RegistrySynchronization) deregisterSubmodel(submodel model.Submodel) error {
	var failures []error
	for _, client := range r.submodelRegistries {
		failures = append(failures, client.DeregisterSubmodelDescriptor(context.Background(), submodel.ID))
	}
	return errors.Join(failures...)
}

// ===== per-id locking =====

type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() keyedMutex {
	return keyedMutex{locks: make(map[string]*lockEntry)}
}

func (k *keyedMutex) lock(id string) {
	k.mu.Lock()
	entry, ok := k.locks[id]
	if !ok {
		entry = &lockEntry{}
		k.locks[id] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()
}

func (k *keyedMutex) unlock(id string) {
	k.mu.Lock()
	entry := k.locks[id]
	entry.refs--
	if entry.refs == 0 {
		delete(k.locks, id)
	}
	k.mu.Unlock()

	entry.mu.Unlock()
}
