package session

import (
	"context"
	"fmt"
)

// TokenSource reads and writes the refresh-token list persisted on a user
// record. Implemented by the engine over its user store.
type TokenSource interface {
	RefreshTokens(ctx context.Context, userID string) ([]string, error)
	SetRefreshTokens(ctx context.Context, userID string, tokens []string) error
}

// Registry is the per-user set of currently valid refresh tokens.
type Registry struct {
	source TokenSource

	// maxPerUser caps the list at the newest N entries when positive.
	// Zero keeps the list unbounded.
	maxPerUser int
}

// NewRegistry creates a Registry over the given source. maxPerUser <= 0
// disables the cap.
func NewRegistry(source TokenSource, maxPerUser int) *Registry {
	return &Registry{source: source, maxPerUser: maxPerUser}
}

// Register appends token to the user's list. Duplicates are not collapsed.
func (r *Registry) Register(ctx context.Context, userID, token string) error {
	tokens, err := r.source.RefreshTokens(ctx, userID)
	if err != nil {
		return fmt.Errorf("load refresh tokens: %w", err)
	}

	tokens = append(tokens, token)
	if r.maxPerUser > 0 && len(tokens) > r.maxPerUser {
		tokens = tokens[len(tokens)-r.maxPerUser:]
	}

	return r.source.SetRefreshTokens(ctx, userID, tokens)
}

// IsActive reports whether token is currently registered for the user.
func (r *Registry) IsActive(ctx context.Context, userID, token string) (bool, error) {
	tokens, err := r.source.RefreshTokens(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("load refresh tokens: %w", err)
	}

	for _, t := range tokens {
		if t == token {
			return true, nil
		}
	}
	return false, nil
}

// Revoke removes the first exact match of token from the user's list.
// Revoking a token that is not registered is a no-op.
func (r *Registry) Revoke(ctx context.Context, userID, token string) error {
	tokens, err := r.source.RefreshTokens(ctx, userID)
	if err != nil {
		return fmt.Errorf("load refresh tokens: %w", err)
	}

	for i, t := range tokens {
		if t == token {
			next := make([]string, 0, len(tokens)-1)
			next = append(next, tokens[:i]...)
			next = append(next, tokens[i+1:]...)
			return r.source.SetRefreshTokens(ctx, userID, next)
		}
	}
	return nil
}
