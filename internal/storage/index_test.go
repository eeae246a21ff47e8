package storage

import (
	"context"
	"os"
	"testing"
)

func TestInitOrOpenIndexCreatesDatabase(t *testing.T) {
	root := t.TempDir()
	db, err := InitOrOpenIndex(root)
	if err != nil {
		t.Fatalf("InitOrOpenIndex error: %v", err)
	}
	defer db.Close()
	if _, err := os.Stat(IndexPath(root)); err != nil {
		t.Fatalf("index file missing: %v", err)
	}
	var schema int
	if err := db.QueryRow(`SELECT schema FROM version WHERE id=1`).Scan(&schema); err != nil {
		t.Fatalf("read version row: %v", err)
	}
	if schema != schemaVersion {
		t.Fatalf("schema = %d, want %d", schema, schemaVersion)
	}
}

func TestBuildIndexIfEmptyPopulatesDocuments(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()
	if err := BuildIndexIfEmpty(ctx, root, sampleDesign()); err != nil {
		t.Fatalf("BuildIndexIfEmpty error: %v", err)
	}
	db, err := InitOrOpenIndex(root)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	counts := map[string]int{}
	rows, err := db.Query(`SELECT type, COUNT(*) FROM documents GROUP BY type`)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer rows.Close()
	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			t.Fatalf("scan: %v", err)
		}
		counts[typ] = n
	}
	if counts["design_title"] != 1 {
		t.Fatalf("design_title count = %d", counts["design_title"])
	}
	if counts["component_text"] != 2 {
		t.Fatalf("component_text count = %d", counts["component_text"])
	}
	if counts["merge_field"] != 1 {
		t.Fatalf("merge_field count = %d", counts["merge_field"])
	}
	if counts["image_src"] != 1 {
		t.Fatalf("image_src count = %d", counts["image_src"])
	}
}

func TestBuildIndexIfEmptyIsIdempotent(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()
	if err := BuildIndexIfEmpty(ctx, root, sampleDesign()); err != nil {
		t.Fatalf("first build: %v", err)
	}
	// Second call must leave the already-built index alone.
	if err := BuildIndexIfEmpty(ctx, root, sampleDesign()); err != nil {
		t.Fatalf("second build: %v", err)
	}
	db, err := InitOrOpenIndex(root)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM documents WHERE type='design_title'`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("design_title rows = %d, want 1", n)
	}
}

func TestUpdateIndexReplacesContent(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()
	d := sampleDesign()
	if err := BuildIndexIfEmpty(ctx, root, d); err != nil {
		t.Fatalf("build: %v", err)
	}
	d.Sections[0].Components[0].Text = "Completely different words"
	if err := UpdateIndex(ctx, root, d); err != nil {
		t.Fatalf("UpdateIndex: %v", err)
	}
	hits, err := Search(ctx, root, SearchQuery{Text: "different"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("hits = %d, want 1", len(hits))
	}
	hits, err = Search(ctx, root, SearchQuery{Text: "invited"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("stale hits = %d, want 0", len(hits))
	}
}

func TestDetectAndRebuildIndexOnCorruptFile(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()
	if err := BuildIndexIfEmpty(ctx, root, sampleDesign()); err != nil {
		t.Fatalf("build: %v", err)
	}
	// Clobber the database file with garbage.
	if err := os.WriteFile(IndexPath(root), []byte("this is not a sqlite file"), 0o644); err != nil {
		t.Fatalf("corrupt index: %v", err)
	}
	rebuilt, err := DetectAndRebuildIndex(ctx, root, sampleDesign())
	if err != nil {
		t.Fatalf("DetectAndRebuildIndex error: %v", err)
	}
	if !rebuilt {
		t.Fatalf("expected a rebuild")
	}
	hits, err := Search(ctx, root, SearchQuery{Text: "invited"})
	if err != nil {
		t.Fatalf("Search after rebuild: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("hits after rebuild = %d, want 1", len(hits))
	}
}

func TestDetectAndRebuildIndexHealthyIsNoop(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()
	if err := BuildIndexIfEmpty(ctx, root, sampleDesign()); err != nil {
		t.Fatalf("build: %v", err)
	}
	rebuilt, err := DetectAndRebuildIndex(ctx, root, sampleDesign())
	if err != nil {
		t.Fatalf("DetectAndRebuildIndex error: %v", err)
	}
	if rebuilt {
		t.Fatalf("healthy index must not be rebuilt")
	}
}

// An index created before the external-content FTS table must come back
// with working snippets after reopening: the v3 migration swaps the table
// and rebuilds it from documents.
func TestMigrationRebuildsFTSAsExternalContent(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()
	if err := BuildIndexIfEmpty(ctx, root, sampleDesign()); err != nil {
		t.Fatalf("BuildIndexIfEmpty error: %v", err)
	}

	// Regress the schema to the contentless layout of version 2.
	db, err := InitOrOpenIndex(root)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	downgrade := []string{
		`DROP TRIGGER documents_ai;`,
		`DROP TRIGGER documents_ad;`,
		`DROP TRIGGER documents_au;`,
		`DROP TABLE fts_documents;`,
		`CREATE VIRTUAL TABLE fts_documents USING fts5(text, content='', tokenize='unicode61');`,
		`INSERT INTO fts_documents(rowid, text) SELECT doc_id, text FROM documents;`,
		`UPDATE version SET schema=2 WHERE id=1;`,
	}
	for _, q := range downgrade {
		if _, err := db.Exec(q); err != nil {
			t.Fatalf("downgrade %q: %v", q, err)
		}
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	db, err = InitOrOpenIndex(root)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	var schema int
	if err := db.QueryRow(`SELECT schema FROM version WHERE id=1`).Scan(&schema); err != nil {
		t.Fatalf("read version row: %v", err)
	}
	if schema != schemaVersion {
		t.Fatalf("schema = %d, want %d", schema, schemaVersion)
	}
	hits, err := searchDB(ctx, db, SearchQuery{Text: "invited"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 1 || hits[0].Snippet == "" {
		t.Fatalf("hits = %+v, want one hit with a snippet", hits)
	}
}
