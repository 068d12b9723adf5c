package service

import (
	"strings"

	"gamecatalog/models"
)

// Gate authenticates bearer tokens and authorizes role-gated operations.
type Gate struct {
	tokens TokenService
}

func NewGate(tokens TokenService) *Gate {
	return &Gate{tokens: tokens}
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Authenticate verifies the Authorization header. A missing token yields
// ErrUnauthenticated and a rejected one ErrInvalidToken.
func (g *Gate) Authenticate(authorizationHeader string) (*models.Principal, error) {
	token := BearerToken(authorizationHeader)
	if token == "" {
		return nil, ErrUnauthenticated
	}
	return g.tokens.Verify(token)
}

// AuthorizeAdmin fails with ErrForbidden unless p is an admin.
func AuthorizeAdmin(p *models.Principal) error {
	if p == nil || !p.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// AuthenticateAdmin runs Authenticate then AuthorizeAdmin, stopping at the
// first failure.
func (g *Gate) AuthenticateAdmin(authorizationHeader string) (*models.Principal, error) {
	p, err := g.Authenticate(authorizationHeader)
	if err != nil {
		return nil, err
	}
	if err := AuthorizeAdmin(p); err != nil {
		return nil, err
	}
	return p, nil
}
