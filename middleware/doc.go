// Package middleware exposes the HTTP authorization guard built on top
// of taskcore.Engine identity resolution.
//
// The guard reads the Authorization header, calls Engine.Authenticate,
// and injects the resolved identity into the request context. It
// translates HTTP semantics into Engine calls and makes no
// authorization decisions itself beyond pass/reject.
package middleware
