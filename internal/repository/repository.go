// Package repository provides read-only data access to the citation-graph
// store backing the recommendation engine and the paper/collection endpoints.
//
// The store's schema (papers, authors, citations, collections) is provisioned
// by the migrations in this repository; write traffic comes from an external
// ingestion pipeline and this service only reads. All repository
// implementations are safe for concurrent use; the underlying pgxpool handles
// connection pooling and synchronization.
//
// All methods return domain-specific errors from the domain package: a
// missing row maps to domain.ErrNotFound via domain.NewNotFoundError, and
// database errors are wrapped with fmt.Errorf and %w.
package repository

import (
	"github.com/scholia/literature-search-service/internal/database"
)

// DBTX is the database interface supporting both pool and transaction
// contexts. Repository constructors accept DBTX so they can run against the
// pool, a transaction, or a mock in tests.
type DBTX = database.DBTX

// Query limit defaults and caps.
const (
	defaultQueryLimit = 20
	maxQueryLimit     = 200
)

// clampLimit normalizes a caller-supplied limit for list queries.
func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultQueryLimit
	}
	if limit > maxQueryLimit {
		return maxQueryLimit
	}
	return limit
}
