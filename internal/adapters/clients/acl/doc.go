// Package acl is the anti-corruption layer between remote quote endpoints
// and the domain.
//
// External payloads never leave this package. Every adapter turns transport
// failures, upstream status codes and malformed bodies into domain errors,
// so callers only ever see [domain.FetchError] with an inspectable cause:
//
//   - open circuit, transport failure or 5xx → [domain.ErrUnavailable]
//   - 404 → [domain.ErrNotFound]
//   - other 4xx, malformed or empty body → [domain.ErrValidation]
package acl
