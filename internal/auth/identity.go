package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the profile the external identity provider asserts about a
// request. Subject is the provider's opaque user id; accounts themselves
// live at the provider, never here.
type Identity struct {
	Subject  string
	Name     string
	Email    string
	ImageURL string
}

// Claims represents the identity-provider JWT claims this service consumes.
// The route guard parses tokens into this type; handlers only ever see the
// Identity derived from it.
type Claims struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	ImageURL string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// Identity converts verified claims into the identity they assert.
func (c *Claims) Identity() (*Identity, error) {
	if c.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return &Identity{
		Subject:  c.Subject,
		Name:     c.Name,
		Email:    c.Email,
		ImageURL: c.ImageURL,
	}, nil
}
