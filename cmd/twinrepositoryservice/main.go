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

// Package main implements the Digital Twin Repository Service server with
// registry synchronization.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/carlos-schmidt/fa3st-service/internal/common"
	"github.com/carlos-schmidt/fa3st-service/internal/endpoint"
	endpointhttp "github.com/carlos-schmidt/fa3st-service/internal/endpoint/http"
	"github.com/carlos-schmidt/fa3st-service/internal/messagebus"
	messagebusmqtt "github.com/carlos-schmidt/fa3st-service/internal/messagebus/mqtt"
	"github.com/carlos-schmidt/fa3st-service/internal/persistence"
	inmemory "github.com/carlos-schmidt/fa3st-service/internal/persistence/inmemory"
	mongodb "github.com/carlos-schmidt/fa3st-service/internal/persistence/mongodb"
	postgresql "github.com/carlos-schmidt/fa3st-service/internal/persistence/postgresql"
	"github.com/carlos-schmidt/fa3st-service/internal/registry"
)

func newPersistence(config *common.Config) (persistence.Persistence, error) {
	switch config.Persistence.Backend {
	case "", "memory":
		log.Println("💾 Using in-memory persistence")
		return inmemory.NewInMemoryTwinDatabase(), nil
	case "postgres":
		log.Println("💾 Using PostgreSQL persistence")
		return postgresql.NewPostgreSQLTwinDatabase(config.Persistence.Postgres)
	case "mongodb":
		log.Println("💾 Using MongoDB persistence")
		return mongodb.NewMongoTwinDatabase(config.Persistence.MongoDB)
	default:
		return nil, fmt.Errorf("unknown persistence backend %q", config.Persistence.Backend)
	}
}

func newMessageBus(config *common.Config) (messagebus.MessageBus, error) {
	switch config.MessageBus.Backend {
	case "", "internal":
		log.Println("🚌 Using internal message bus")
		return messagebus.NewInternalMessageBus(), nil
	case "mqtt":
		log.Println("🚌 Using MQTT message bus")
		return messagebusmqtt.NewMQTTMessageBus(config.MessageBus.MQTT)
	default:
		return nil, fmt.Errorf("unknown message bus backend %q", config.MessageBus.Backend)
	}
}

func runServer(ctx context.Context, configPath string) error {
	log.Default().Println("Loading Digital Twin Repository Service...")
	log.Default().Println("Config Path:", configPath)

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return err
	}
	common.PrintConfiguration(config)

	p, err := newPersistence(config)
	if err != nil {
		return err
	}
	defer func() {
		if err := p.Close(); err != nil {
			log.Printf("⚠️  Closing persistence failed: %v", err)
		}
	}()

	bus, err := newMessageBus(config)
	if err != nil {
		return err
	}
	defer func() {
		if err := bus.Close(); err != nil {
			log.Printf("⚠️  Closing message bus failed: %v", err)
		}
	}()

	httpEndpoint := endpointhttp.NewHTTPEndpoint(config, p, bus)
	endpoints := []endpoint.Endpoint{httpEndpoint}

	if err := httpEndpoint.Start(); err != nil {
		return err
	}

	sync := registry.NewRegistrySynchronization(config.Registry, p, bus, endpoints)
	if err := sync.Start(); err != nil {
		// partial registration is tolerated, events catch the registries up
		log.Printf("⚠️  Registry synchronization started with errors: %v", err)
	}

	<-ctx.Done()
	log.Println("Shutting down server...")

	if err := sync.Stop(); err != nil {
		log.Printf("⚠️  Registry synchronization stopped with errors: %v", err)
	}
	return httpEndpoint.Stop()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	configPath := ""
	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.Parse()

	if err := runServer(ctx, configPath); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
