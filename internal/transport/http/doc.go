// Package http contains the chi HTTP handlers for the dashboard API.
//
// Handlers translate between the wire surface and the services layer:
// they parse and validate query parameters, call the service, and map
// service errors onto RFC 7807 problem responses through the shared
// ErrorHandler. No business logic lives here.
//
// Route groups:
//
//	/api/dashboard   render the view model for one selector combination
//	/api/months      distinct months of the active table, newest first
//	/api/industries  "All" plus distinct industry tags
//	/api/export      filtered CSV download
//	/api/dataset     upload, sample reset, active dataset info
//	/api/health      liveness, readiness, version
package http
