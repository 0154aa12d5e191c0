// Package events carries domain events from services to background work.
//
// Services emit events such as a task being completed or a journal post
// being saved without knowing who reacts to them. Handlers registered on an
// EventEmitter turn them into side effects; in the server the job event
// handler converts them into persisted background jobs.
package events
