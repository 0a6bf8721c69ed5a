package league

import (
	"errors"
	"fmt"
)

var ErrNotMember = errors.New("user is not a league member")

type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// League is a private competition bound to one racing season.
type League struct {
	ID          string
	Name        string
	Season      int
	OwnerUserID string
}

func (l League) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("league id is required")
	}
	if l.Name == "" {
		return fmt.Errorf("league name is required")
	}
	if l.Season <= 0 {
		return fmt.Errorf("league season is required")
	}
	if l.OwnerUserID == "" {
		return fmt.Errorf("league owner is required")
	}

	return nil
}

// Member links a user to a league.
type Member struct {
	LeagueID string
	UserID   string
	Role     Role
}

// CanAdminister reports whether userID may act as a league administrator.
func CanAdminister(l League, m Member, found bool) bool {
	if l.OwnerUserID != "" && l.OwnerUserID == m.UserID {
		return true
	}
	if !found {
		return false
	}
	return m.Role == RoleOwner || m.Role == RoleAdmin
}
