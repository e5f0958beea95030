// Package password implements one-way, salted password hashing and
// verification with Argon2id.
//
// Hashes are encoded in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// This package owns hashing and verification only; it never stores
// passwords and never logs plaintext.
package password
