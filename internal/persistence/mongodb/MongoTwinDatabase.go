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

// Package persistencemongodb provides a MongoDB-backed Persistence
// implementation. Entities are stored as JSON documents keyed by their id,
// one collection per entity kind.
package persistencemongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/carlos-schmidt/fa3st-service/internal/common"
	"github.com/carlos-schmidt/fa3st-service/internal/common/model"
	"github.com/carlos-schmidt/fa3st-service/internal/persistence"
)

const (
	collShells    = "shells"
	collSubmodels = "submodels"

	fieldID       = "_id"
	fieldDocument = "document"

	opTimeout = 10 * time.Second
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// twinDocument is the stored representation: the entity JSON kept verbatim
// next to its id.
type twinDocument struct {
	ID       string `bson:"_id"`
	Document string `bson:"document"`
}

type MongoTwinDatabase struct {
	client    *mongo.Client
	shells    *mongo.Collection
	submodels *mongo.Collection
}

// NewMongoTwinDatabase connects to MongoDB and prepares the collections.
func NewMongoTwinDatabase(cfg common.MongoDBConfig) (*MongoTwinDatabase, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	db := client.Database(cfg.Database)
	return &MongoTwinDatabase{
		client:    client,
		shells:    db.Collection(collShells),
		submodels: db.Collection(collSubmodels),
	}, nil
}

// GetAllAssetAdministrationShells returns one id-ordered page of shells
func (m *MongoTwinDatabase) GetAllAssetAdministrationShells(limit int32, cursor string) ([]model.AssetAdministrationShell, string, error) {
	docs, next, err := m.listDocuments(m.shells, limit, cursor)
	if err != nil {
		return nil, "", err
	}

	shells := make([]model.AssetAdministrationShell, 0, len(docs))
	for _, doc := range docs {
		var shell model.AssetAdministrationShell
		if err := jsonAPI.UnmarshalFromString(doc.Document, &shell); err != nil {
			return nil, "", fmt.Errorf("unmarshal shell document: %w", err)
		}
		shells = append(shells, shell)
	}
	return shells, next, nil
}

// GetAllSubmodels returns one id-ordered page of submodels
func (m *MongoTwinDatabase) GetAllSubmodels(limit int32, cursor string) ([]model.Submodel, string, error) {
	docs, next, err := m.listDocuments(m.submodels, limit, cursor)
	if err != nil {
		return nil, "", err
	}

	submodels := make([]model.Submodel, 0, len(docs))
	for _, doc := range docs {
		var submodel model.Submodel
		if err := jsonAPI.UnmarshalFromString(doc.Document, &submodel); err != nil {
			return nil, "", fmt.Errorf("unmarshal submodel document: %w", err)
		}
		submodels = append(submodels, submodel)
	}
	return submodels, next, nil
}

func (m *MongoTwinDatabase) listDocuments(coll *mongo.Collection, limit int32, cursor string) ([]twinDocument, string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	filter := bson.M{}
	if cursor != "" {
		filter[fieldID] = bson.M{"$gt": cursor}
	}

	opts := options.Find().SetSort(bson.D{{Key: fieldID, Value: 1}})
	if limit > 0 {
		// one extra row decides whether another page exists
		opts = opts.SetLimit(int64(limit) + 1)
	}

	cur, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, "", err
	}
	defer cur.Close(ctx)

	var docs []twinDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, "", err
	}

	next := ""
	if limit > 0 && len(docs) > int(limit) {
		docs = docs[:limit]
		next = docs[limit-1].ID
	}
	return docs, next, nil
}

// GetAssetAdministrationShell returns a shell by its ID
func (m *MongoTwinDatabase) GetAssetAdministrationShell(id string, _ persistence.QueryModifier) (model.AssetAdministrationShell, error) {
	doc, err := m.getDocument(m.shells, id)
	if err != nil {
		return model.AssetAdministrationShell{}, err
	}
	var shell model.AssetAdministrationShell
	if err := jsonAPI.UnmarshalFromString(doc.Document, &shell); err != nil {
		return model.AssetAdministrationShell{}, fmt.Errorf("unmarshal shell document: %w", err)
	}
	return shell, nil
}

// GetSubmodel returns a submodel by its ID
func (m *MongoTwinDatabase) GetSubmodel(id string, modifier persistence.QueryModifier) (model.Submodel, error) {
	doc, err := m.getDocument(m.submodels, id)
	if err != nil {
		return model.Submodel{}, err
	}
	var submodel model.Submodel
	if err := jsonAPI.UnmarshalFromString(doc.Document, &submodel); err != nil {
		return model.Submodel{}, fmt.Errorf("unmarshal submodel document: %w", err)
	}
	return persistence.ApplyModifier(submodel, modifier), nil
}

func (m *MongoTwinDatabase) getDocument(coll *mongo.Collection, id string) (twinDocument, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var doc twinDocument
	err := coll.FindOne(ctx, bson.M{fieldID: id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return twinDocument{}, common.NewErrNotFound(id)
	}
	if err != nil {
		return twinDocument{}, err
	}
	return doc, nil
}

// SubmodelExists reports whether a submodel with the given ID is stored
func (m *MongoTwinDatabase) SubmodelExists(id string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	count, err := m.submodels.CountDocuments(ctx, bson.M{fieldID: id})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateAssetAdministrationShell creates a new shell in the database
func (m *MongoTwinDatabase) CreateAssetAdministrationShell(shell model.AssetAdministrationShell) error {
	return m.insertDocument(m.shells, shell.ID, shell)
}

// UpdateAssetAdministrationShell replaces a stored shell
func (m *MongoTwinDatabase) UpdateAssetAdministrationShell(id string, shell model.AssetAdministrationShell) error {
	return m.updateDocument(m.shells, id, shell)
}

// DeleteAssetAdministrationShell deletes a shell by its ID
func (m *MongoTwinDatabase) DeleteAssetAdministrationShell(id string) error {
	return m.deleteDocument(m.shells, id)
}

// CreateSubmodel creates a new submodel in the database
func (m *MongoTwinDatabase) CreateSubmodel(submodel model.Submodel) error {
	return m.insertDocument(m.submodels, submodel.ID, submodel)
}

// UpdateSubmodel replaces a stored submodel
func (m *MongoTwinDatabase) UpdateSubmodel(id string, submodel model.Submodel) error {
	return m.updateDocument(m.submodels, id, submodel)
}

// DeleteSubmodel deletes a submodel by its ID
func (m *MongoTwinDatabase) DeleteSubmodel(id string) error {
	return m.deleteDocument(m.submodels, id)
}

func (m *MongoTwinDatabase) insertDocument(coll *mongo.Collection, id string, entity any) error {
	payload, err := jsonAPI.MarshalToString(entity)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err = coll.InsertOne(ctx, twinDocument{ID: id, Document: payload})
	if mongo.IsDuplicateKeyError(err) {
		return common.NewErrConflict(id)
	}
	return err
}

func (m *MongoTwinDatabase) updateDocument(coll *mongo.Collection, id string, entity any) error {
	payload, err := jsonAPI.MarshalToString(entity)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := coll.ReplaceOne(ctx, bson.M{fieldID: id}, twinDocument{ID: id, Document: payload})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return common.NewErrNotFound(id)
	}
	return nil
}

func (m *MongoTwinDatabase) deleteDocument(coll *mongo.Collection, id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := coll.DeleteOne(ctx, bson.M{fieldID: id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return common.NewErrNotFound(id)
	}
	return nil
}

// Close disconnects from MongoDB
func (m *MongoTwinDatabase) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	return m.client.Disconnect(ctx)
}
