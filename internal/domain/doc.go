// Package domain defines the core business types for the IGNITE newsletter
// dispatch service.
//
// Types in this package are pure value objects with no behavior beyond pure
// functions on the type itself. They are the shared language between the
// dispatcher, repositories, catalog clients, and HTTP handlers.
//
// Rules for this package:
//   - No imports from other internal/ packages
//   - No *sql.DB, no http.Request, no context.Context in struct fields
//   - JSON/DB tags are allowed (they're metadata, not behavior)
//   - Formatting and validation methods are allowed (pure functions)
//   - Constants and enums belong here
package domain
