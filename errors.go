package taskcore

import "errors"

var (
	// ErrUnauthenticated covers a missing, malformed, expired, or
	// wrongly-signed access credential, and access tokens whose user no
	// longer exists.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInvalidCredentials is returned by Login for an unknown email or
	// a wrong password. Both cases share one error so responses cannot
	// be used to probe which emails are registered.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrSessionRevoked is returned by Refresh when the token verifies
	// but is no longer present in the session registry.
	ErrSessionRevoked = errors.New("refresh token is not valid anymore")
	// ErrForbidden is returned when an authenticated identity fails the
	// ownership/role check on a resource.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound is returned when a well-formed resource id resolves to
	// nothing.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput covers malformed ids and missing or out-of-range
	// request fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrEmailExists is returned by Register when the email is already
	// taken. It is an input-class failure, never an upstream one.
	ErrEmailExists = errors.New("email already exists")
	// ErrUpstream is returned when the durable store transport fails.
	// Cache transport failures are never surfaced as errors.
	ErrUpstream = errors.New("upstream unavailable")
	// ErrStorageDisabled is returned by the avatar operations when no
	// object storage collaborator was configured.
	ErrStorageDisabled = errors.New("object storage not configured")
	// ErrEngineNotReady is returned when a method is called on a nil or
	// unbuilt Engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)
