// Package blogtracker provides the core entity and consistency layer for a
// personal blog/bookmark curation service.
//
// Users save links ("blogs") and organize them with per-user categories (at
// most one per blog) and tags (many-to-many). The package owns the invariants
// of that data model: case-insensitive category uniqueness per user,
// tag uniqueness per user, idempotent find-or-create resolution, and
// referential integrity across attach/detach/delete operations.
//
// The main entry point is the Service interface, created with New() and
// functional options:
//
//	svc, err := blogtracker.New(
//	    blogtracker.WithRepository(memory.New()),
//	)
//
// Storage is abstracted behind the Repository interface with in-memory,
// PostgreSQL and SQLite implementations under repo/.
package blogtracker
