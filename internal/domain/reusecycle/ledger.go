package reusecycle

import (
	"errors"
	"time"

	"github.com/riskibarqy/fantasy-racing/internal/domain/roster"
)

var ErrVersionConflict = errors.New("reuse ledger version conflict")

// Ledger tracks used drivers and teams for one user in one league.
type Ledger struct {
	UserID    string
	LeagueID  string
	Drivers   Stack
	Teams     Stack
	Version   int64
	UpdatedAt time.Time
}

func NewLedger(userID, leagueID string) Ledger {
	return Ledger{UserID: userID, LeagueID: leagueID}
}

// Stack returns the stack for kind so callers can mutate it in place.
func (l *Ledger) Stack(kind roster.Kind) *Stack {
	if kind == roster.KindTeam {
		return &l.Teams
	}
	return &l.Drivers
}

func (l Ledger) Used(kind roster.Kind) []string {
	return l.Stack(kind).Used()
}

func (l Ledger) Clone() Ledger {
	out := l
	out.Drivers = l.Drivers.Clone()
	out.Teams = l.Teams.Clone()
	return out
}
