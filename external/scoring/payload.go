package scoring

import (
	"time"

	"github.com/riskibarqy/fantasy-racing/internal/domain/selection"
	"github.com/riskibarqy/fantasy-racing/internal/usecase"
)

type scoreRequestBody struct {
	Selection  selectionBody   `json:"selection"`
	RaceResult raceResultBody  `json:"race_result"`
	Activation *activationBody `json:"card_activation,omitempty"`
}

type selectionBody struct {
	ID            string `json:"id"`
	UserID        string `json:"user_id"`
	LeagueID      string `json:"league_id"`
	RaceID        string `json:"race_id"`
	Season        int    `json:"season"`
	Round         int    `json:"round"`
	MainDriver    string `json:"main_driver"`
	ReserveDriver string `json:"reserve_driver"`
	Team          string `json:"team"`
	Status        string `json:"status"`
}

type raceResultBody struct {
	RaceID     string             `json:"race_id"`
	Season     int                `json:"season"`
	Round      int                `json:"round"`
	Results    []driverResultBody `json:"results"`
	ImportedAt time.Time          `json:"imported_at"`
}

type driverResultBody struct {
	Driver         string  `json:"driver"`
	Team           string  `json:"team"`
	Position       int     `json:"position"`
	GridPosition   int     `json:"grid_position"`
	Finished       bool    `json:"finished"`
	FastestLap     bool    `json:"fastest_lap"`
	PitStopSeconds float64 `json:"pit_stop_seconds,omitempty"`
}

type activationBody struct {
	DriverCardID             string `json:"driver_card_id,omitempty"`
	TeamCardID               string `json:"team_card_id,omitempty"`
	TargetPlayer             string `json:"target_player,omitempty"`
	TargetDriver             string `json:"target_driver,omitempty"`
	TargetTeam               string `json:"target_team,omitempty"`
	MysteryTransformedCardID string `json:"mystery_transformed_card_id,omitempty"`
	RandomTransformedCardID  string `json:"random_transformed_card_id,omitempty"`
}

type scoreResponseBody struct {
	MainDriver    int `json:"main_driver"`
	ReserveDriver int `json:"reserve_driver"`
	Team          int `json:"team"`
	CardBonus     int `json:"card_bonus"`
	Total         int `json:"total"`
}

func newScoreRequestBody(req usecase.ScoreRequest) scoreRequestBody {
	sel := req.Selection
	body := scoreRequestBody{
		Selection: selectionBody{
			ID:            sel.ID,
			UserID:        sel.UserID,
			LeagueID:      sel.LeagueID,
			RaceID:        sel.RaceID,
			Season:        sel.Season,
			Round:         sel.Round,
			MainDriver:    sel.MainDriver,
			ReserveDriver: sel.ReserveDriver,
			Team:          sel.Team,
			Status:        string(sel.Status),
		},
		RaceResult: raceResultBody{
			RaceID:     req.Result.RaceID,
			Season:     req.Result.Season,
			Round:      req.Result.Round,
			Results:    make([]driverResultBody, 0, len(req.Result.Results)),
			ImportedAt: req.Result.ImportedAt.UTC(),
		},
	}
	for _, r := range req.Result.Results {
		body.RaceResult.Results = append(body.RaceResult.Results, driverResultBody(r))
	}
	if a := req.Activation; a != nil {
		body.Activation = &activationBody{
			DriverCardID:             a.DriverCardID,
			TeamCardID:               a.TeamCardID,
			TargetPlayer:             a.TargetPlayer,
			TargetDriver:             a.TargetDriver,
			TargetTeam:               a.TargetTeam,
			MysteryTransformedCardID: a.MysteryTransformedCardID,
			RandomTransformedCardID:  a.RandomTransformedCardID,
		}
	}
	return body
}

// breakdown recomputes Total when the service leaves it out.
func (b scoreResponseBody) breakdown() selection.PointBreakdown {
	out := selection.PointBreakdown(b)
	if out.Total == 0 {
		out.Total = out.MainDriver + out.ReserveDriver + out.Team + out.CardBonus
	}
	return out
}
