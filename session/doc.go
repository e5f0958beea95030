// Package session tracks the set of currently valid refresh tokens per
// user. The set is persisted on the user record itself through the
// [TokenSource] interface, so the durable store remains the single system
// of record for session state.
//
// # Architecture boundaries
//
// This package owns membership semantics only (register, test, revoke).
// It does NOT parse or verify tokens — signature and expiry checks belong
// to the token package, and the Engine combines both: a refresh token is
// honored only when it verifies AND is still registered.
package session
