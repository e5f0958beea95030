package taskcore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/taskcore/taskcore/token"
)

const avatarFolder = "avatars"

// Register creates a new account with the user role, issues an
// access/refresh token pair, and registers the refresh token in the
// session registry.
func (e *Engine) Register(ctx context.Context, input RegisterInput) (*AuthSession, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)
	if name == "" || email == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: name, email, and password are required", ErrInvalidInput)
	}

	hash, err := e.passwordHash.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user, err := e.users.CreateUser(ctx, &User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         RoleUser,
	})
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			e.metricInc(MetricRegisterDuplicate)
			e.auditEmit(ctx, auditEventRegisterDuplicate, "", "", false, err)
		}
		return nil, err
	}

	sess, err := e.openSession(ctx, user)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricRegisterSuccess)
	e.auditEmit(ctx, auditEventRegisterSuccess, user.ID, "", true, nil)
	return sess, nil
}

// Login authenticates by email and password. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (e *Engine) Login(ctx context.Context, email, pass string) (*AuthSession, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	user, err := e.users.FindUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			e.metricInc(MetricLoginFailure)
			e.auditEmit(ctx, auditEventLoginFailure, "", "", false, ErrInvalidCredentials)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	match, err := e.passwordHash.Verify(pass, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !match {
		e.metricInc(MetricLoginFailure)
		e.auditEmit(ctx, auditEventLoginFailure, user.ID, "", false, ErrInvalidCredentials)
		return nil, ErrInvalidCredentials
	}

	sess, err := e.openSession(ctx, user)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricLoginSuccess)
	e.auditEmit(ctx, auditEventLoginSuccess, user.ID, "", true, nil)
	return sess, nil
}

// openSession issues both token kinds for user and registers the refresh
// token.
func (e *Engine) openSession(ctx context.Context, user *User) (*AuthSession, error) {
	access, err := e.tokens.IssueAccess(user.ID)
	if err != nil {
		return nil, err
	}
	refresh, err := e.tokens.IssueRefresh(user.ID)
	if err != nil {
		return nil, err
	}
	if err := e.sessions.Register(ctx, user.ID, refresh); err != nil {
		return nil, err
	}

	return &AuthSession{
		User:         user,
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

// Refresh mints a new access token for a valid refresh token. The token
// must verify (signature AND embedded expiry) and still be registered in
// the session registry; a verified-but-unregistered token fails with
// [ErrSessionRevoked].
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if e == nil {
		return "", ErrEngineNotReady
	}

	claims, err := e.tokens.Verify(refreshToken, token.KindRefresh)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		e.auditEmit(ctx, auditEventRefreshInvalid, "", "", false, err)
		return "", fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	user, err := e.users.FindUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			e.metricInc(MetricRefreshFailure)
			return "", fmt.Errorf("%w: user not found", ErrUnauthenticated)
		}
		return "", err
	}

	active, err := e.sessions.IsActive(ctx, user.ID, refreshToken)
	if err != nil {
		return "", err
	}
	if !active {
		e.metricInc(MetricRefreshRevoked)
		e.auditEmit(ctx, auditEventRefreshRevoked, user.ID, "", false, ErrSessionRevoked)
		return "", ErrSessionRevoked
	}

	access, err := e.tokens.IssueAccess(user.ID)
	if err != nil {
		return "", err
	}

	e.metricInc(MetricRefreshSuccess)
	e.auditEmit(ctx, auditEventRefreshSuccess, user.ID, "", true, nil)
	return access, nil
}

// Logout revokes the refresh token's registry entry. The token is only
// DECODED, never verified: an expired-but-still-registered token must
// still be removable. Unparseable tokens are a no-op success.
func (e *Engine) Logout(ctx context.Context, refreshToken string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if refreshToken == "" {
		return nil
	}

	claims, err := e.tokens.Decode(refreshToken)
	if err != nil || claims.UserID == "" {
		return nil
	}

	if err := e.sessions.Revoke(ctx, claims.UserID, refreshToken); err != nil {
		// A vanished user is fine: there is nothing left to revoke.
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}

	e.metricInc(MetricLogout)
	e.auditEmit(ctx, auditEventLogout, claims.UserID, "", true, nil)
	return nil
}

// UploadAvatar stores a new avatar image for the identity and records
// the reference on the user. The upload is awaited: the handler only
// proceeds once object storage has confirmed or failed. A previous
// avatar is deleted best-effort.
func (e *Engine) UploadAvatar(ctx context.Context, identity *User, contentType string, r io.Reader) (*Avatar, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	if e.objects == nil {
		return nil, ErrStorageDisabled
	}
	if r == nil {
		return nil, fmt.Errorf("%w: no file uploaded", ErrInvalidInput)
	}

	if identity.Avatar != nil && identity.Avatar.StorageID != "" {
		// best effort; a stale object must not block the new upload
		_ = e.objects.Delete(ctx, identity.Avatar.StorageID)
	}

	obj, err := e.objects.Upload(ctx, avatarFolder, contentType, r)
	if err != nil {
		return nil, err
	}

	avatar := &Avatar{URL: obj.URL, StorageID: obj.StorageID}
	if err := e.users.UpdateAvatar(ctx, identity.ID, avatar); err != nil {
		return nil, err
	}

	identity.Avatar = avatar
	return avatar, nil
}

// DeleteAvatar removes the identity's avatar from object storage and
// clears the reference on the user record.
func (e *Engine) DeleteAvatar(ctx context.Context, identity *User) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if e.objects == nil {
		return ErrStorageDisabled
	}
	if identity.Avatar == nil || identity.Avatar.StorageID == "" {
		return fmt.Errorf("%w: no avatar to delete", ErrInvalidInput)
	}

	if err := e.objects.Delete(ctx, identity.Avatar.StorageID); err != nil {
		return err
	}
	if err := e.users.UpdateAvatar(ctx, identity.ID, nil); err != nil {
		return err
	}

	identity.Avatar = nil
	return nil
}
