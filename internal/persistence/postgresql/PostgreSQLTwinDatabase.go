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

// Package persistencepostgresql provides a PostgreSQL-backed Persistence
// implementation. Entities are stored as jsonb documents keyed by their id,
// one relation per entity kind.
package persistencepostgresql

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // Postgres dialect for goqu
	jsoniter "github.com/json-iterator/go"
	_ "github.com/lib/pq" // Postgres driver

	"github.com/carlos-schmidt/fa3st-service/internal/common"
	"github.com/carlos-schmidt/fa3st-service/internal/common/model"
	"github.com/carlos-schmidt/fa3st-service/internal/persistence"
)

const (
	dialect      = "postgres"
	tblShells    = "aas_shells"
	tblSubmodels = "aas_submodels"
	colID        = "id"
	colDocument  = "document"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

type PostgreSQLTwinDatabase struct {
	db *sql.DB
}

// NewPostgreSQLTwinDatabase opens a pooled connection and ensures the schema.
func NewPostgreSQLTwinDatabase(cfg common.PostgresConfig) (*PostgreSQLTwinDatabase, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName)

	db, err := sql.Open(dialect, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConnections)
	db.SetMaxIdleConns(cfg.MaxIdleConnections)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	p := &PostgreSQLTwinDatabase{db: db}
	if err := p.ensureSchema(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *PostgreSQLTwinDatabase) ensureSchema() error {
	for _, tbl := range []string{tblShells, tblSubmodels} {
		stmt := fmt.Sprintf(
			`CREATE TABLE IF NOT EXISTS %s (%s TEXT PRIMARY KEY, %s JSONB NOT NULL)`,
			tbl, colID, colDocument)
		if _, err := p.db.Exec(stmt); err != nil {
			return fmt.Errorf("create table %s: %w", tbl, err)
		}
	}
	return nil
}

// GetAllAssetAdministrationShells returns one id-ordered page of shells
func (p *PostgreSQLTwinDatabase) GetAllAssetAdministrationShells(limit int32, cursor string) ([]model.AssetAdministrationShell, string, error) {
	docs, next, err := p.listDocuments(tblShells, limit, cursor)
	if err != nil {
		return nil, "", err
	}

	shells := make([]model.AssetAdministrationShell, 0, len(docs))
	for _, doc := range docs {
		var shell model.AssetAdministrationShell
		if err := jsonAPI.Unmarshal(doc, &shell); err != nil {
			return nil, "", fmt.Errorf("unmarshal shell document: %w", err)
		}
		shells = append(shells, shell)
	}
	return shells, next, nil
}

// GetAllSubmodels returns one id-ordered page of submodels
func (p *PostgreSQLTwinDatabase) GetAllSubmodels(limit int32, cursor string) ([]model.Submodel, string, error) {
	docs, next, err := p.listDocuments(tblSubmodels, limit, cursor)
	if err != nil {
		return nil, "", err
	}

	submodels := make([]model.Submodel, 0, len(docs))
	for _, doc := range docs {
		var submodel model.Submodel
		if err := jsonAPI.Unmarshal(doc, &submodel); err != nil {
			return nil, "", fmt.Errorf("unmarshal submodel document: %w", err)
		}
		submodels = append(submodels, submodel)
	}
	return submodels, next, nil
}

func (p *PostgreSQLTwinDatabase) listDocuments(table string, limit int32, cursor string) ([][]byte, string, error) {
	d := goqu.Dialect(dialect)
	t := goqu.T(table)

	ds := d.From(t).Select(t.Col(colID), t.Col(colDocument)).Order(t.Col(colID).Asc())
	if cursor != "" {
		ds = ds.Where(t.Col(colID).Gt(cursor))
	}
	if limit > 0 {
		// one extra row decides whether another page exists
		ds = ds.Limit(uint(limit) + 1)
	}

	sqlStr, args, err := ds.ToSQL()
	if err != nil {
		return nil, "", err
	}

	rows, err := p.db.Query(sqlStr, args...)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	var (
		ids  []string
		docs [][]byte
	)
	for rows.Next() {
		var (
			id  string
			doc []byte
		)
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, "", err
		}
		ids = append(ids, id)
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	next := ""
	if limit > 0 && len(docs) > int(limit) {
		docs = docs[:limit]
		next = ids[limit-1]
	}
	return docs, next, nil
}

// GetAssetAdministrationShell returns a shell by its ID
func (p *PostgreSQLTwinDatabase) GetAssetAdministrationShell(id string, _ persistence.QueryModifier) (model.AssetAdministrationShell, error) {
	doc, err := p.getDocument(tblShells, id)
	if err != nil {
		return model.AssetAdministrationShell{}, err
	}
	var shell model.AssetAdministrationShell
	if err := jsonAPI.Unmarshal(doc, &shell); err != nil {
		return model.AssetAdministrationShell{}, fmt.Errorf("unmarshal shell document: %w", err)
	}
	return shell, nil
}

// GetSubmodel returns a submodel by its ID
func (p *PostgreSQLTwinDatabase) GetSubmodel(id string, modifier persistence.QueryModifier) (model.Submodel, error) {
	doc, err := p.getDocument(tblSubmodels, id)
	if err != nil {
		return model.Submodel{}, err
	}
	var submodel model.Submodel
	if err := jsonAPI.Unmarshal(doc, &submodel); err != nil {
		return model.Submodel{}, fmt.Errorf("unmarshal submodel document: %w", err)
	}
	return persistence.ApplyModifier(submodel, modifier), nil
}

func (p *PostgreSQLTwinDatabase) getDocument(table string, id string) ([]byte, error) {
	d := goqu.Dialect(dialect)
	t := goqu.T(table)

	sqlStr, args, err := d.From(t).Select(t.Col(colDocument)).Where(t.Col(colID).Eq(id)).ToSQL()
	if err != nil {
		return nil, err
	}

	var doc []byte
	err = p.db.QueryRow(sqlStr, args...).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewErrNotFound(id)
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// SubmodelExists reports whether a submodel with the given ID is stored
func (p *PostgreSQLTwinDatabase) SubmodelExists(id string) (bool, error) {
	d := goqu.Dialect(dialect)
	t := goqu.T(tblSubmodels)

	sqlStr, args, err := d.From(t).Select(goqu.COUNT(t.Col(colID))).Where(t.Col(colID).Eq(id)).ToSQL()
	if err != nil {
		return false, err
	}

	var count int
	if err := p.db.QueryRow(sqlStr, args...).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateAssetAdministrationShell creates a new shell in the database
func (p *PostgreSQLTwinDatabase) CreateAssetAdministrationShell(shell model.AssetAdministrationShell) error {
	return p.insertDocument(tblShells, shell.ID, shell)
}

// UpdateAssetAdministrationShell replaces a stored shell
func (p *PostgreSQLTwinDatabase) UpdateAssetAdministrationShell(id string, shell model.AssetAdministrationShell) error {
	return p.updateDocument(tblShells, id, shell)
}

// DeleteAssetAdministrationShell deletes a shell by its ID
func (p *PostgreSQLTwinDatabase) DeleteAssetAdministrationShell(id string) error {
	return p.deleteDocument(tblShells, id)
}

// CreateSubmodel creates a new submodel in the database
func (p *PostgreSQLTwinDatabase) CreateSubmodel(submodel model.Submodel) error {
	return p.insertDocument(tblSubmodels, submodel.ID, submodel)
}

// UpdateSubmodel replaces a stored submodel
func (p *PostgreSQLTwinDatabase) UpdateSubmodel(id string, submodel model.Submodel) error {
	return p.updateDocument(tblSubmodels, id, submodel)
}

// DeleteSubmodel deletes a submodel by its ID
func (p *PostgreSQLTwinDatabase) DeleteSubmodel(id string) error {
	return p.deleteDocument(tblSubmodels, id)
}

func (p *PostgreSQLTwinDatabase) insertDocument(table string, id string, entity any) error {
	doc, err := jsonAPI.Marshal(entity)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	d := goqu.Dialect(dialect)
	sqlStr, args, err := d.Insert(table).
		Rows(goqu.Record{colID: id, colDocument: string(doc)}).
		OnConflict(goqu.DoNothing()).
		ToSQL()
	if err != nil {
		return err
	}

	res, err := p.db.Exec(sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return common.NewErrConflict(id)
	}
	return nil
}

func (p *PostgreSQLTwinDatabase) updateDocument(table string, id string, entity any) error {
	doc, err := jsonAPI.Marshal(entity)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	d := goqu.Dialect(dialect)
	sqlStr, args, err := d.Update(table).
		Set(goqu.Record{colDocument: string(doc)}).
		Where(goqu.C(colID).Eq(id)).
		ToSQL()
	if err != nil {
		return err
	}

	res, err := p.db.Exec(sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return common.NewErrNotFound(id)
	}
	return nil
}

func (p *PostgreSQLTwinDatabase) deleteDocument(table string, id string) error {
	d := goqu.Dialect(dialect)
	sqlStr, args, err := d.Delete(table).Where(goqu.C(colID).Eq(id)).ToSQL()
	if err != nil {
		return err
	}

	res, err := p.db.Exec(sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return common.NewErrNotFound(id)
	}
	return nil
}

// Close releases the underlying connection pool
func (p *PostgreSQLTwinDatabase) Close() error {
	return p.db.Close()
}
