// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects and repositories
// (defined in internal/store) to fulfill application features.
//
// Services receive their dependencies through constructor injection and apply
// transactional boundaries when an operation spans more than one statement.
// The layer depends on domain entities and store interfaces, never on specific
// infrastructure implementations.
//
// The auth subpackage holds the token and password primitives used by the
// authentication endpoints.
package service
