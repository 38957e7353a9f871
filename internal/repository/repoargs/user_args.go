package repoargs

import "github.com/azorastack/market/internal/domain"

type CreateUser struct {
	Email    string
	Password string
	Name     string
	Role     domain.RoleType
}
