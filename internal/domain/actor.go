package domain

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

type Actor struct {
	ID   string
	Role Role
}

func (a Actor) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return fmt.Errorf("actor id is required")
	}
	switch a.Role {
	case RoleStudent, RoleAdmin:
		return nil
	default:
		return fmt.Errorf("unsupported role %q", a.Role)
	}
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
