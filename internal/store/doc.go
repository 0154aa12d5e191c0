// Package store defines the persistence contracts of the DMO board. Every
// query is scoped to the owning user; implementations live in
// internal/platform/postgres and return validated domain records.
package store
