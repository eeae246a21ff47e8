/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"log/slog"

	"invitestudio/internal/domain"
	applog "invitestudio/internal/log"
	"invitestudio/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// IndexDirName stores all per-workspace ephemeral/index data under the workspace root.
	IndexDirName  = ".ivs"
	IndexFileName = "index.sqlite"

	// schemaVersion tracks the local SQLite schema for the embedded index.
	// Bump this when you perform breaking schema changes and add migrations.
	schemaVersion = 3
)

// IndexPath returns the full path to the workspace's embedded index database file.
func IndexPath(workspaceRoot string) string {
	return filepath.Join(workspaceRoot, IndexDirName, IndexFileName)
}

// InitOrOpenIndex ensures that the per-workspace SQLite index exists at
// .ivs/index.sqlite, opens the database, enables WAL mode, and ensures the
// meta/version tables exist. The returned *sql.DB is ready for use.
func InitOrOpenIndex(workspaceRoot string) (*sql.DB, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "index_init").With(
		slog.String("root", workspaceRoot),
	)
	if strings.TrimSpace(workspaceRoot) == "" {
		return nil, errors.New("workspace root is required")
	}
	if err := os.MkdirAll(filepath.Join(workspaceRoot, IndexDirName), 0o755); err != nil {
		l.Error("create .ivs dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create .ivs dir: %w", err)
	}

	path := IndexPath(workspaceRoot)
	// Use a URI with shared cache and a busy timeout. Convert to forward slashes for SQLite URI.
	uriPath := filepath.ToSlash(path)
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", uriPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON;"); err != nil {
		l.Warn("enable foreign_keys failed", slog.Any("err", err))
	}

	if err := ensureMetaAndVersion(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure meta/version failed", slog.Any("err", err))
		return nil, err
	}
	if err := ensureIndexSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure index schema failed", slog.Any("err", err))
		return nil, err
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}

	l.Info("index ready", slog.String("path", path))
	return db, nil
}

func ensureMetaAndVersion(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var curSchema int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&curSchema)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, schemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		// Update app and timestamp only; keep existing schema for migrations.
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// runMigrations applies incremental schema migrations up to schemaVersion.
func runMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if cur > schemaVersion {
		// Do not downgrade; just continue
		return nil
	}
	for cur < schemaVersion {
		next := cur + 1
		switch next {
		case 2:
			// Add role lookup index and optimize FTS
			tx, err := db.BeginTx(ctx, nil)
			if err != nil {
				return fmt.Errorf("begin migration %d: %w", next, err)
			}
			stmts := []string{
				`CREATE INDEX IF NOT EXISTS idx_documents_role ON documents(role);`,
			}
			for _, q := range stmts {
				if _, err := tx.ExecContext(ctx, q); err != nil {
					_ = tx.Rollback()
					return fmt.Errorf("migration %d stmt failed: %w", next, err)
				}
			}
			if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d update version: %w", next, err)
			}
			if err := tx.Commit(); err != nil {
				return fmt.Errorf("migration %d commit: %w", next, err)
			}
			// Best-effort FTS optimize (outside the tx)
			if _, err := db.ExecContext(ctx, `INSERT INTO fts_documents(fts_documents) VALUES('optimize')`); err != nil {
				// best-effort optimize; ignore errors
			}
		case 3:
			// Recreate the FTS index as external-content; the old
			// contentless table cannot serve snippet().
			drops := []string{
				`DROP TRIGGER IF EXISTS documents_ai;`,
				`DROP TRIGGER IF EXISTS documents_ad;`,
				`DROP TRIGGER IF EXISTS documents_au;`,
				`DROP TABLE IF EXISTS fts_documents;`,
			}
			for _, q := range drops {
				if _, err := db.ExecContext(ctx, q); err != nil {
					return fmt.Errorf("migration %d stmt failed: %w", next, err)
				}
			}
			if err := ensureFTS(ctx, db); err != nil {
				return fmt.Errorf("migration %d: %w", next, err)
			}
			if _, err := db.ExecContext(ctx, `INSERT INTO fts_documents(fts_documents) VALUES('rebuild')`); err != nil {
				return fmt.Errorf("migration %d rebuild fts: %w", next, err)
			}
			if _, err := db.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
				return fmt.Errorf("migration %d update version: %w", next, err)
			}
		default:
			// Unknown future step; break
		}
		cur = next
	}
	return nil
}

// ensureIndexSchema creates core index tables and FTS structures if they do not exist.
func ensureIndexSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		// Core documents table: design metadata, component text, merge fields.
		`CREATE TABLE IF NOT EXISTS documents (
			doc_id       INTEGER PRIMARY KEY,
			type         TEXT    NOT NULL,
			path         TEXT    NOT NULL,
			section_rank INTEGER,
			role         TEXT,
			text         TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_documents_path ON documents(path);`,
		`CREATE INDEX IF NOT EXISTS idx_documents_section ON documents(section_rank);`,

		// Assets catalog (uploaded/referenced images).
		`CREATE TABLE IF NOT EXISTS assets (
			hash TEXT PRIMARY KEY,
			path TEXT NOT NULL,
			type TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_assets_path ON assets(path);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure index schema: %w", err)
		}
	}
	return ensureFTS(ctx, db)
}

// ensureFTS creates the FTS5 index over documents.text plus its sync
// triggers. The table is external-content so snippet() and highlight() can
// read the source text back from documents.
func ensureFTS(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE VIRTUAL TABLE IF NOT EXISTS fts_documents USING fts5(
			text,
			content='documents',
			content_rowid='doc_id',
			tokenize = 'unicode61'
		);`,
		`CREATE TRIGGER IF NOT EXISTS documents_ai AFTER INSERT ON documents BEGIN
			INSERT INTO fts_documents(rowid, text) VALUES (new.doc_id, new.text);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS documents_ad AFTER DELETE ON documents BEGIN
			INSERT INTO fts_documents(fts_documents, rowid, text) VALUES ('delete', old.doc_id, old.text);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS documents_au AFTER UPDATE OF text ON documents BEGIN
			INSERT INTO fts_documents(fts_documents, rowid, text) VALUES ('delete', old.doc_id, old.text);
			INSERT INTO fts_documents(rowid, text) VALUES (new.doc_id, new.text);
		END;`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure fts schema: %w", err)
		}
	}
	return nil
}

// DetectAndRebuildIndex checks for corruption or missing schema and rebuilds
// the index if needed. It returns true when a rebuild was performed.
func DetectAndRebuildIndex(ctx context.Context, workspaceRoot string, d domain.Design) (bool, error) {
	path := IndexPath(workspaceRoot)
	db, err := InitOrOpenIndex(workspaceRoot)
	if err != nil {
		backupIndexFile(path)
		_ = os.Remove(path)
		if rbErr := RebuildIndex(ctx, workspaceRoot, d); rbErr != nil {
			return false, fmt.Errorf("rebuild after open failure: %w (open err: %v)", rbErr, err)
		}
		return true, nil
	}
	defer db.Close()
	needs := false
	// quick_check for corruption
	var chk string
	if err := db.QueryRowContext(ctx, `PRAGMA quick_check;`).Scan(&chk); err != nil || !strings.Contains(strings.ToLower(chk), "ok") {
		needs = true
	}
	// Probe core table
	if !needs {
		if _, err := db.ExecContext(ctx, `SELECT 1 FROM documents LIMIT 1;`); err != nil {
			needs = true
		}
	}
	if !needs {
		return false, nil
	}
	backupIndexFile(path)
	_ = os.Remove(path)
	if err := RebuildIndex(ctx, workspaceRoot, d); err != nil {
		return false, err
	}
	return true, nil
}

// backupIndexFile copies the current index file into a timestamped backup in .ivs/backups.
func backupIndexFile(indexPath string) {
	bdir := filepath.Join(filepath.Dir(indexPath), "backups")
	_ = os.MkdirAll(bdir, 0o755)
	stamp := time.Now().Format("20060102-150405")
	bak := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", filepath.Base(indexPath), stamp))
	if data, err := os.ReadFile(indexPath); err == nil {
		_ = os.WriteFile(bak, data, 0o644)
	}
}

// BuildIndexIfEmpty ensures the DB exists and, if the documents table is
// empty, populates it from the given design manifest.
func BuildIndexIfEmpty(ctx context.Context, workspaceRoot string, d domain.Design) error {
	db, err := InitOrOpenIndex(workspaceRoot)
	if err != nil {
		return err
	}
	defer db.Close()
	var cnt int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents;").Scan(&cnt); err != nil {
		return fmt.Errorf("check documents count: %w", err)
	}
	if cnt > 0 {
		return nil // already built
	}
	return rebuildDocumentsFromDesign(ctx, db, d)
}

// UpdateIndex replaces the documents content from the provided manifest.
func UpdateIndex(ctx context.Context, workspaceRoot string, d domain.Design) error {
	db, err := InitOrOpenIndex(workspaceRoot)
	if err != nil {
		return err
	}
	defer db.Close()
	return rebuildDocumentsFromDesign(ctx, db, d)
}

// RebuildIndex drops and recreates core index tables and rebuilds content
// from the manifest. It preserves meta/version tables. The index is derived
// from design.json, so this is always a safe operation.
func RebuildIndex(ctx context.Context, workspaceRoot string, d domain.Design) error {
	db, err := InitOrOpenIndex(workspaceRoot)
	if err != nil {
		return err
	}
	defer db.Close()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	drops := []string{
		"DROP TABLE IF EXISTS assets;",
		"DROP TRIGGER IF EXISTS documents_ai;",
		"DROP TRIGGER IF EXISTS documents_ad;",
		"DROP TRIGGER IF EXISTS documents_au;",
		"DROP TABLE IF EXISTS documents;",
		"DROP TABLE IF EXISTS fts_documents;",
	}
	for _, q := range drops {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("drop schema: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("drop commit: %w", err)
	}
	if err := ensureIndexSchema(ctx, db); err != nil {
		return err
	}
	return rebuildDocumentsFromDesign(ctx, db, d)
}

// rebuildDocumentsFromDesign replaces the documents table content from the
// given design manifest.
func rebuildDocumentsFromDesign(ctx context.Context, db *sql.DB, d domain.Design) error {
	type row struct {
		typeStr     string
		path        string
		sectionRank sql.NullInt64
		role        sql.NullString
		text        string
	}
	rows := make([]row, 0, 64)
	if s := strings.TrimSpace(d.Title); s != "" {
		rows = append(rows, row{typeStr: "design_title", path: "design:title", text: s})
	}
	if s := strings.TrimSpace(d.Description); s != "" {
		rows = append(rows, row{typeStr: "design_description", path: "design:description", text: s})
	}
	for _, sec := range d.Sections {
		rank := sql.NullInt64{Int64: int64(sec.Rank()), Valid: true}
		for _, c := range sec.Components {
			path := fmt.Sprintf("section:%s/component:%s", sec.Position, c.ID)
			var role sql.NullString
			if r, ok := domain.RoleOfComponentID(c.ID); ok {
				role = sql.NullString{String: string(r), Valid: true}
				rows = append(rows, row{typeStr: "merge_field", path: path, sectionRank: rank, role: role, text: string(r)})
			}
			if s := strings.TrimSpace(c.Text); s != "" {
				rows = append(rows, row{typeStr: "component_text", path: path, sectionRank: rank, role: role, text: s})
			}
			if s := strings.TrimSpace(c.Src); s != "" {
				rows = append(rows, row{typeStr: "image_src", path: path, sectionRank: rank, text: s})
			}
		}
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM documents;"); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear documents: %w", err)
	}
	ins, err := tx.PrepareContext(ctx, "INSERT INTO documents(type, path, section_rank, role, text) VALUES(?,?,?,?,?);")
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer ins.Close()
	for _, r := range rows {
		if _, err := ins.ExecContext(ctx, r.typeStr, r.path, r.sectionRank, r.role, r.text); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert document: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
