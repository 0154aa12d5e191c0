// Package api contains the HTTP handlers for the board, tasks, templates,
// tags, reports, journal, vision, bucketlist and social endpoints. Handlers
// decode and validate requests, call a service through a narrow interface and
// map service errors to status codes.
package api
