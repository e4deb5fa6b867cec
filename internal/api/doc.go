// Package api contains the HTTP handlers, request/response models, and
// error mapping for the public API surface. Handlers receive their caller's
// identity explicitly through the request context, placed there by the
// authentication middleware; no handler trusts identity fields from request
// bodies.
package api
