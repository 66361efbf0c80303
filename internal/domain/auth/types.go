package auth

// Package auth contains domain-level types for authentication.
// It is pure and free of framework/adapter concerns.

// Role represents an application's authorization role.
// Keep string form for easy persistence and JWT claims.
// Valid values are defined as constants below.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether the role is supported.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser:
		return true
	default:
		return false
	}
}

// Identity represents the authenticated principal returned by an IdP.
// Adapters map provider-specific claims into this shape.
type Identity struct {
	Subject string // stable provider identifier (OIDC sub)
	Email   string
	Name    string
}

// AccessClaims is the payload carried by a verified access token.
// Role and Username may be empty on tokens minted by the refresh
// endpoint; middleware re-resolves the user from the store regardless.
type AccessClaims struct {
	UserID   string
	Role     Role
	Username string
}

// RefreshClaims is the payload carried by a verified refresh token.
// Deliberately minimal: the subject only.
type RefreshClaims struct {
	UserID string
}

// TokenPair is the access/refresh token pair issued at login.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
