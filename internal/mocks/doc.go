// Package mocks holds in-memory fakes of the store and auth interfaces.
//
// Store fakes keep rows in maps behind a mutex, so a single instance can be
// shared by the goroutines of a concurrency test. Each fake exposes *Error
// fields that make the next call fail, e.g.
//
//	tasks := mocks.NewMockTaskStore()
//	tasks.CreateManyError = errors.New("connection reset")
package mocks
