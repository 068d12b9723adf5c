package models

// Principal is the identity carried by a verified bearer token.
type Principal struct {
	ID   uint   `json:"id"`
	Role string `json:"role"`
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
