package models

import (
	"fmt"
	"strings"
)

// Role is the closed set of account roles. Adding a role means adding a
// constant here and a case to NewProfile, both compile-time visible.
type Role string

const (
	RoleJobSeeker Role = "JOB_SEEKER"
	RoleEmployer  Role = "EMPLOYER"
	RoleAdmin     Role = "ADMIN"
)

// ParseRole maps a case-insensitive role string onto the closed set.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(s)) {
	case RoleJobSeeker:
		return RoleJobSeeker, nil
	case RoleEmployer:
		return RoleEmployer, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("invalid role: %s", s)
	}
}

func (r Role) String() string { return string(r) }
