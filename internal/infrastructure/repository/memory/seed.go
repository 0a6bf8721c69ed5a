package memory

import (
	"fmt"
	"time"

	"github.com/riskibarqy/fantasy-racing/internal/domain/league"
	"github.com/riskibarqy/fantasy-racing/internal/domain/race"
	"github.com/riskibarqy/fantasy-racing/internal/domain/scoring"
)

const (
	LeagueIDPaddock2026 = "paddock-club-2026"
	LeagueIDClassic2025 = "classic-grid-2025"

	UserIDAlice = "user-alice"
	UserIDBruno = "user-bruno"
	UserIDChen  = "user-chen"
	UserIDDara  = "user-dara"
)

func SeedLeagues() []league.League {
	return []league.League{
		{ID: LeagueIDPaddock2026, Name: "Paddock Club", Season: 2026, OwnerUserID: UserIDAlice},
		{ID: LeagueIDClassic2025, Name: "Classic Grid", Season: 2025, OwnerUserID: UserIDBruno},
	}
}

func SeedMembers() []league.Member {
	return []league.Member{
		{LeagueID: LeagueIDPaddock2026, UserID: UserIDAlice, Role: league.RoleOwner},
		{LeagueID: LeagueIDPaddock2026, UserID: UserIDBruno, Role: league.RoleAdmin},
		{LeagueID: LeagueIDPaddock2026, UserID: UserIDChen, Role: league.RoleMember},
		{LeagueID: LeagueIDPaddock2026, UserID: UserIDDara, Role: league.RoleMember},
		{LeagueID: LeagueIDClassic2025, UserID: UserIDBruno, Role: league.RoleOwner},
		{LeagueID: LeagueIDClassic2025, UserID: UserIDChen, Role: league.RoleMember},
	}
}

// SeedRaces is the 2025 and 2026 calendar. Qualifying runs on Saturday at
// 14:00 UTC, sprint qualifying on Friday at 14:30 UTC and the race on Sunday at 13:00 UTC.
func SeedRaces() []race.Race {
	return []race.Race{
		// 2025
		weekend(2025, 1, "Australian Grand Prix", "2025-03-16", false),
		weekend(2025, 2, "Chinese Grand Prix", "2025-03-23", true),
		weekend(2025, 3, "Japanese Grand Prix", "2025-04-06", false),
		weekend(2025, 4, "Bahrain Grand Prix", "2025-04-13", false),
		weekend(2025, 5, "Saudi Arabian Grand Prix", "2025-04-20", false),
		weekend(2025, 6, "Miami Grand Prix", "2025-05-04", true),
		weekend(2025, 7, "Emilia Romagna Grand Prix", "2025-05-18", false),
		weekend(2025, 8, "Monaco Grand Prix", "2025-05-25", false),
		weekend(2025, 9, "Spanish Grand Prix", "2025-06-01", false),
		weekend(2025, 10, "Canadian Grand Prix", "2025-06-15", false),
		weekend(2025, 11, "Austrian Grand Prix", "2025-06-29", false),
		weekend(2025, 12, "British Grand Prix", "2025-07-06", false),
		weekend(2025, 13, "Belgian Grand Prix", "2025-07-27", true),
		weekend(2025, 14, "Hungarian Grand Prix", "2025-08-03", false),
		weekend(2025, 15, "Dutch Grand Prix", "2025-08-31", false),
		weekend(2025, 16, "Italian Grand Prix", "2025-09-07", false),
		weekend(2025, 17, "Azerbaijan Grand Prix", "2025-09-21", false),
		weekend(2025, 18, "Singapore Grand Prix", "2025-10-05", false),
		weekend(2025, 19, "United States Grand Prix", "2025-10-19", true),
		weekend(2025, 20, "Mexico City Grand Prix", "2025-10-26", false),
		weekend(2025, 21, "São Paulo Grand Prix", "2025-11-09", true),
		weekend(2025, 22, "Las Vegas Grand Prix", "2025-11-22", false),
		weekend(2025, 23, "Qatar Grand Prix", "2025-11-30", true),
		weekend(2025, 24, "Abu Dhabi Grand Prix", "2025-12-07", false),
		// 2026
		weekend(2026, 1, "Australian Grand Prix", "2026-03-08", false),
		weekend(2026, 2, "Chinese Grand Prix", "2026-03-15", true),
		weekend(2026, 3, "Japanese Grand Prix", "2026-03-29", false),
		weekend(2026, 4, "Bahrain Grand Prix", "2026-04-12", false),
		weekend(2026, 5, "Saudi Arabian Grand Prix", "2026-04-19", false),
		weekend(2026, 6, "Miami Grand Prix", "2026-05-03", true),
		weekend(2026, 7, "Canadian Grand Prix", "2026-05-24", true),
		weekend(2026, 8, "Monaco Grand Prix", "2026-06-07", false),
		weekend(2026, 9, "Barcelona-Catalunya Grand Prix", "2026-06-14", false),
		weekend(2026, 10, "Austrian Grand Prix", "2026-06-28", false),
		weekend(2026, 11, "British Grand Prix", "2026-07-05", true),
		weekend(2026, 12, "Belgian Grand Prix", "2026-07-19", false),
		weekend(2026, 13, "Hungarian Grand Prix", "2026-07-26", false),
		weekend(2026, 14, "Dutch Grand Prix", "2026-08-23", true),
		weekend(2026, 15, "Italian Grand Prix", "2026-09-06", false),
		weekend(2026, 16, "Spanish Grand Prix", "2026-09-13", false),
		weekend(2026, 17, "Azerbaijan Grand Prix", "2026-09-26", false),
		weekend(2026, 18, "Singapore Grand Prix", "2026-10-11", true),
		weekend(2026, 19, "United States Grand Prix", "2026-10-25", false),
		weekend(2026, 20, "Mexico City Grand Prix", "2026-11-01", false),
		weekend(2026, 21, "São Paulo Grand Prix", "2026-11-08", false),
		weekend(2026, 22, "Las Vegas Grand Prix", "2026-11-21", false),
		weekend(2026, 23, "Qatar Grand Prix", "2026-11-29", false),
		weekend(2026, 24, "Abu Dhabi Grand Prix", "2026-12-06", false),
	}
}

// RaceID is the seeded id of a calendar entry.
func RaceID(season, round int) string {
	return fmt.Sprintf("%d-r%02d", season, round)
}

func weekend(season, round int, name, raceDay string, sprint bool) race.Race {
	day, err := time.Parse(time.DateOnly, raceDay)
	if err != nil {
		panic(fmt.Sprintf("invalid seed race day %q: %v", raceDay, err))
	}

	item := race.Race{
		ID:              RaceID(season, round),
		Season:          season,
		Round:           round,
		Name:            name,
		QualifyingStart: day.AddDate(0, 0, -1).Add(14 * time.Hour),
		RaceStart:       day.Add(13 * time.Hour),
		IsSprintWeekend: sprint,
	}
	if sprint {
		sq := day.AddDate(0, 0, -2).Add(14*time.Hour + 30*time.Minute)
		item.SprintQualifyingStart = &sq
	}
	return item
}

func SeedRaceResults() []scoring.RaceResult {
	return []scoring.RaceResult{
		{
			RaceID: RaceID(2026, 18),
			Season: 2026,
			Round:  18,
			Results: []scoring.DriverResult{
				{Driver: "George Russell", Team: "Mercedes", Position: 1, GridPosition: 1, Finished: true},
				{Driver: "Max Verstappen", Team: "Red Bull Racing", Position: 2, GridPosition: 2, Finished: true, FastestLap: true},
				{Driver: "Oscar Piastri", Team: "McLaren", Position: 3, GridPosition: 3, Finished: true},
				{Driver: "Andrea Kimi Antonelli", Team: "Mercedes", Position: 4, GridPosition: 4, Finished: true},
				{Driver: "Lando Norris", Team: "McLaren", Position: 5, GridPosition: 5, Finished: true},
				{Driver: "Charles Leclerc", Team: "Ferrari", Position: 6, GridPosition: 7, Finished: true},
				{Driver: "Fernando Alonso", Team: "Aston Martin", Position: 7, GridPosition: 10, Finished: true},
				{Driver: "Isack Hadjar", Team: "Red Bull Racing", Position: 8, GridPosition: 6, Finished: true},
				{Driver: "Oliver Bearman", Team: "Haas", Position: 9, GridPosition: 12, Finished: true},
				{Driver: "Carlos Sainz", Team: "Williams", Position: 10, GridPosition: 9, Finished: true},
			},
			ImportedAt: time.Date(2026, 10, 11, 16, 0, 0, 0, time.UTC),
		},
	}
}
