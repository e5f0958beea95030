// Package audit defines the audit event model and sink implementations
// used by the engine's asynchronous audit dispatcher.
//
// This package owns event shape and delivery targets only. Deciding WHEN
// to emit an event belongs to the Engine.
package audit
