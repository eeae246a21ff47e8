/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// SearchQuery describes the in-app search request.
// Text uses SQLite FTS5 syntax (simple terms, phrases in quotes, AND/OR/NOT).
// Filters are optional. Role restricts to merge-field components (e.g.
// ten_khach); Types can restrict to kinds like component_text, merge_field,
// image_src, design_title. SectionFrom/To are inclusive ranks; 0 means unset.
// Limit/Offset implement pagination; reasonable defaults applied if zero.
type SearchQuery struct {
	Text        string
	Role        string
	Types       []string
	SectionFrom int
	SectionTo   int
	Limit       int
	Offset      int
}

// SearchResult represents a single match row.
// Snippet is an optional highlighted excerpt using [ ] markers when FTS text
// is used. SectionRank is 0 when unknown.
type SearchResult struct {
	DocID       int64
	Type        string
	Path        string
	SectionRank int
	Snippet     string
}

// Search performs full-text search with optional filters over the embedded
// index. When q.Text is empty, it falls back to a non-FTS scan over documents
// with filters applied.
func Search(ctx context.Context, workspaceRoot string, q SearchQuery) ([]SearchResult, error) {
	if strings.TrimSpace(workspaceRoot) == "" {
		return nil, errors.New("workspace root is required")
	}
	db, err := InitOrOpenIndex(workspaceRoot)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return searchDB(ctx, db, q)
}

func searchDB(ctx context.Context, db *sql.DB, q SearchQuery) ([]SearchResult, error) {
	var args []any
	var sb strings.Builder
	useFTS := strings.TrimSpace(q.Text) != ""
	if useFTS {
		sb.WriteString("SELECT d.doc_id, d.type, d.path, COALESCE(d.section_rank,0), snippet(fts_documents, 0, '[', ']', '…', 10)\n")
		sb.WriteString("FROM fts_documents JOIN documents d ON fts_documents.rowid = d.doc_id\n")
		sb.WriteString("WHERE fts_documents MATCH ?\n")
		args = append(args, q.Text)
	} else {
		sb.WriteString("SELECT d.doc_id, d.type, d.path, COALESCE(d.section_rank,0), ''\n")
		sb.WriteString("FROM documents d\nWHERE 1=1\n")
	}
	if len(q.Types) > 0 {
		sb.WriteString(" AND d.type IN (" + placeholders(len(q.Types)) + ")\n")
		for _, t := range q.Types {
			args = append(args, t)
		}
	}
	// Section range
	if q.SectionFrom > 0 && q.SectionTo > 0 && q.SectionTo >= q.SectionFrom {
		sb.WriteString(" AND d.section_rank BETWEEN ? AND ?\n")
		args = append(args, q.SectionFrom, q.SectionTo)
	} else if q.SectionFrom > 0 {
		sb.WriteString(" AND d.section_rank >= ?\n")
		args = append(args, q.SectionFrom)
	} else if q.SectionTo > 0 {
		sb.WriteString(" AND d.section_rank <= ?\n")
		args = append(args, q.SectionTo)
	}
	// Role filter: exact role when populated, else fallback to path contains
	if s := strings.TrimSpace(q.Role); s != "" {
		ss := strings.ToLower(s)
		sb.WriteString(" AND ( (d.role IS NOT NULL AND lower(d.role)=?) OR lower(d.path) LIKE ? )\n")
		args = append(args, ss, likeContains("-"+ss))
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	sb.WriteString("ORDER BY d.section_rank NULLS LAST, d.doc_id\n")
	sb.WriteString("LIMIT ? OFFSET ?")
	args = append(args, limit, q.Offset)

	rows, err := db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()
	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		var rank sql.NullInt64
		var sn sql.NullString
		if err := rows.Scan(&r.DocID, &r.Type, &r.Path, &rank, &sn); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if rank.Valid {
			r.SectionRank = int(rank.Int64)
		}
		if sn.Valid {
			r.Snippet = sn.String
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func likeContains(s string) string { return "%" + s + "%" }

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	b := strings.Builder{}
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("?")
	}
	return b.String()
}
