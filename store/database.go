// Package store persists per-document properties in sqlite, S3 or memory
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

type Database struct {
	db *sql.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	// Create directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	database := &Database{db: db}

	// Create table if it doesn't exist
	if err := database.createTable(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return database, nil
}

func (d *Database) createTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS document_properties (
		document_id TEXT NOT NULL,
		key         TEXT NOT NULL,
		value       TEXT NOT NULL,
		PRIMARY KEY (document_id, key)
	);
	`
	_, err := d.db.Exec(query)
	return err
}

// Properties returns the property store of a single document.
func (d *Database) Properties(documentID string) Properties {
	return &DocumentProperties{db: d, documentID: documentID}
}

func (d *Database) GetProperty(ctx context.Context, documentID, key string) (string, bool, error) {
	query := `SELECT value FROM document_properties WHERE document_id = ? AND key = ?`
	var value string
	err := d.db.QueryRowContext(ctx, query, documentID, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get property %s: %w", key, err)
	}
	return value, true, nil
}

func (d *Database) GetProperties(ctx context.Context, documentID string) (map[string]string, error) {
	query := `SELECT key, value FROM document_properties WHERE document_id = ?`
	rows, err := d.db.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query properties: %w", err)
	}
	defer rows.Close()

	props := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan property: %w", err)
		}
		props[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return props, nil
}

func (d *Database) SetProperties(ctx context.Context, documentID string, props map[string]string, deleteAllOthers bool) error {
	// Use transaction so a reset never leaves a half-written document
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if deleteAllOthers {
		if _, err := tx.ExecContext(ctx, `DELETE FROM document_properties WHERE document_id = ?`, documentID); err != nil {
			return fmt.Errorf("failed to clear properties: %w", err)
		}
	}

	const stmt = `
		INSERT INTO document_properties (document_id, key, value)
		VALUES (?, ?, ?)
		ON CONFLICT(document_id, key) DO UPDATE SET
			value = excluded.value
	`
	for key, value := range props {
		if _, err := tx.ExecContext(ctx, stmt, documentID, key, value); err != nil {
			return fmt.Errorf("failed to upsert property %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	slog.Debug("document properties updated", "document_id", documentID, "count", len(props), "replace", deleteAllOthers)
	return nil
}

func (d *Database) DeleteProperty(ctx context.Context, documentID, key string) error {
	query := `DELETE FROM document_properties WHERE document_id = ? AND key = ?`
	if _, err := d.db.ExecContext(ctx, query, documentID, key); err != nil {
		return fmt.Errorf("failed to delete property %s: %w", key, err)
	}
	return nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

// DocumentProperties binds a Database to one document id.
type DocumentProperties struct {
	db         *Database
	documentID string
}

func (p *DocumentProperties) GetProperty(ctx context.Context, key string) (string, bool, error) {
	if p.documentID == "" {
		return "", false, ErrEmptyDocumentID
	}
	return p.db.GetProperty(ctx, p.documentID, key)
}

func (p *DocumentProperties) GetProperties(ctx context.Context) (map[string]string, error) {
	if p.documentID == "" {
		return nil, ErrEmptyDocumentID
	}
	return p.db.GetProperties(ctx, p.documentID)
}

func (p *DocumentProperties) SetProperty(ctx context.Context, key, value string) error {
	return p.SetProperties(ctx, map[string]string{key: value}, false)
}

func (p *DocumentProperties) SetProperties(ctx context.Context, props map[string]string, deleteAllOthers bool) error {
	if p.documentID == "" {
		return ErrEmptyDocumentID
	}
	return p.db.SetProperties(ctx, p.documentID, props, deleteAllOthers)
}

func (p *DocumentProperties) DeleteProperty(ctx context.Context, key string) error {
	if p.documentID == "" {
		return ErrEmptyDocumentID
	}
	return p.db.DeleteProperty(ctx, p.documentID, key)
}
