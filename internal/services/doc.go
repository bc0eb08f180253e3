// Package services implements the business logic layer between the HTTP
// handlers and the data pipeline. The dashboard service owns the active
// price table and serializes replacement behind a read-write mutex;
// rendering is read-only and runs concurrently.
//
// Services follow the usual pattern: constructor injection of
// dependencies, context propagation on every operation, and domain
// errors that handlers transform into RFC 7807 responses.
package services
