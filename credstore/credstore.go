// Package credstore holds the client-side custody of an issued bearer
// credential and the last-known user profile. It is pure storage: no network
// calls, no notification behaviour. The session service is the only writer.
package credstore

// DefaultTokenType is the authorization scheme label used when the server
// response omits one.
const DefaultTokenType = "Bearer"

// Credential is the bearer token and its scheme label, sufficient to
// authorize a request.
type Credential struct {
	Token     string `json:"access_token"`
	TokenType string `json:"token_type,omitempty"`
}

// Scheme returns the authorization scheme label, defaulting to "Bearer".
func (c Credential) Scheme() string {
	if c.TokenType == "" {
		return DefaultTokenType
	}
	return c.TokenType
}

// Profile is the authenticated user as reported by the profile endpoint.
// It may be absent even while a Credential exists (fetch pending or failed).
type Profile struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	FullName    string `json:"full_name,omitempty"`
	Role        string `json:"role,omitempty"`
	IsActive    bool   `json:"is_active"`
	IsSuperuser bool   `json:"is_superuser,omitempty"`
}

// Repo persists the Credential and Profile pair across client restarts.
//
// Write replaces both entries as one unit: a concurrent Read observes either
// the previous pair or the new pair, never a token from one write and a
// profile from another.
type Repo interface {
	Write(cred *Credential, profile *Profile) error
	Read() (*Credential, error)
	ReadProfile() (*Profile, error)
	Clear() error
}
