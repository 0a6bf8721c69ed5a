package selection

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidSelection  = errors.New("invalid selection")
	ErrDuplicateDriver   = errors.New("main driver and reserve driver must differ")
	ErrSelectionLocked   = errors.New("selection is locked for this race")
	ErrDriverAlreadyUsed = errors.New("driver already used in the current cycle")
	ErrTeamAlreadyUsed   = errors.New("team already used in the current cycle")
)

type Status string

const (
	StatusUserSubmitted Status = "user_submitted"
	StatusAdminAssigned Status = "admin_assigned"
	StatusAutoAssigned  Status = "auto_assigned"
)

// PointBreakdown is the scored outcome of one selection.
type PointBreakdown struct {
	MainDriver    int
	ReserveDriver int
	Team          int
	CardBonus     int
	Total         int
}

// Selection is one user's picks for one league round.
type Selection struct {
	ID              string
	UserID          string
	LeagueID        string
	RaceID          string
	Season          int
	Round           int
	MainDriver      string
	ReserveDriver   string
	Team            string
	Status          Status
	Points          int
	Breakdown       PointBreakdown
	IsAdminAssigned bool
	IsAutoAssigned  bool
	AssignedBy      string
	AssignedAt      *time.Time
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Picks are the three names a selection consumes.
type Picks struct {
	MainDriver    string
	ReserveDriver string
	Team          string
}

func (s Selection) Picks() Picks {
	return Picks{MainDriver: s.MainDriver, ReserveDriver: s.ReserveDriver, Team: s.Team}
}

// IsEmpty reports whether nothing has been picked yet.
func (s Selection) IsEmpty() bool {
	return s.MainDriver == "" && s.ReserveDriver == "" && s.Team == ""
}

func (p Picks) Drivers() []string {
	out := make([]string, 0, 2)
	if p.MainDriver != "" {
		out = append(out, p.MainDriver)
	}
	if p.ReserveDriver != "" {
		out = append(out, p.ReserveDriver)
	}
	return out
}

// Validate checks a set of already canonical picks.
func (p Picks) Validate() error {
	if strings.TrimSpace(p.MainDriver) == "" {
		return fmt.Errorf("%w: main driver is required", ErrInvalidSelection)
	}
	if strings.TrimSpace(p.ReserveDriver) == "" {
		return fmt.Errorf("%w: reserve driver is required", ErrInvalidSelection)
	}
	if strings.TrimSpace(p.Team) == "" {
		return fmt.Errorf("%w: team is required", ErrInvalidSelection)
	}
	if p.MainDriver == p.ReserveDriver {
		return fmt.Errorf("%w: %s", ErrDuplicateDriver, p.MainDriver)
	}
	return nil
}

func (s Selection) Validate() error {
	if s.UserID == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidSelection)
	}
	if s.LeagueID == "" {
		return fmt.Errorf("%w: league id is required", ErrInvalidSelection)
	}
	if s.Round <= 0 {
		return fmt.Errorf("%w: round must be positive", ErrInvalidSelection)
	}
	return s.Picks().Validate()
}

// ZeroPoints clears the scored outcome.
func (s *Selection) ZeroPoints() {
	s.Points = 0
	s.Breakdown = PointBreakdown{}
}
