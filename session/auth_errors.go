package session

import (
	"errors"
	"fmt"
)

// Kind discriminates expected authentication failure modes. The service
// returns errors carrying a Kind instead of panicking or throwing; callers
// decide the user-visible messaging.
type Kind int

const (
	KindUnknown Kind = iota
	// KindInvalidCredentials is a rejected username/password pair. User
	// correctable.
	KindInvalidCredentials
	// KindUnauthorized is a 401 on an authenticated request: the session
	// expired. Not user correctable; triggers logout.
	KindUnauthorized
	// KindForbidden is a 403: an authorization failure, not an
	// authentication one. The session remains valid.
	KindForbidden
	// KindNetworkUnreachable is a transport-level failure (no response).
	KindNetworkUnreachable
	// KindServerError is a 5xx response.
	KindServerError
	// KindProfileFetchFailed is a failed profile load after an accepted
	// login. Distinct from an authentication failure: it never
	// invalidates the token.
	KindProfileFetchFailed
)

func (k Kind) String() string {
	switch k {
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNetworkUnreachable:
		return "network_unreachable"
	case KindServerError:
		return "server_error"
	case KindProfileFetchFailed:
		return "profile_fetch_failed"
	}
	return "unknown"
}

// AuthError is an expected failure from the session service.
type AuthError struct {
	Kind  Kind
	cause error
}

func newAuthError(kind Kind, cause error) *AuthError {
	return &AuthError{Kind: kind, cause: cause}
}

func (e *AuthError) Error() string {
	if e.cause == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.cause)
}

func (e *AuthError) Unwrap() error {
	return e.cause
}

// KindOf extracts the failure kind from an error chain, or KindUnknown.
func KindOf(err error) Kind {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.Kind
	}
	return KindUnknown
}
