package credstore

import "errors"

var (
	// ErrSealedCorrupt reports a sealed state file that cannot be opened,
	// either tampered with or sealed under a different key.
	ErrSealedCorrupt = errors.New("sealed credential state corrupt")

	// ErrNoCredential reports a write attempted with a nil credential.
	ErrNoCredential = errors.New("credential is required")
)
