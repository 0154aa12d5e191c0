// Package postgres provides PostgreSQL-specific implementations for the data
// storage interfaces defined in the internal/store and internal/job packages.
// It handles query execution, mapping between rows and domain entities, and
// the embedded goose migrations that define the schema.
package postgres
