// Package service contains the application use cases of the DMO API. It
// coordinates domain objects, the stores defined in internal/store and the
// infrastructure adapters (event emitter, realtime broker, search) to
// fulfill the features exposed over HTTP.
//
// Services receive their dependencies through constructor injection and
// depend on store interfaces, never on a concrete database. Operations that
// span several stores run inside store.RunInTransaction.
//
// Errors from the domain layer (validation) and the store layer (not found,
// duplicate) are returned as-is so the API can map them to status codes.
// Unexpected failures are wrapped in a ServiceError naming the service and
// operation.
package service
