// Package token manages issuance and verification of the two signed
// credential kinds: short-lived access tokens and long-lived refresh
// tokens, each signed with its own secret so that one kind can never be
// replayed as the other.
package token
