package httpapi

import (
	"context"
	"time"

	"github.com/riskibarqy/fantasy-racing/internal/domain/card"
	"github.com/riskibarqy/fantasy-racing/internal/domain/race"
	"github.com/riskibarqy/fantasy-racing/internal/domain/selection"
	"github.com/riskibarqy/fantasy-racing/internal/usecase"
)

type saveSelectionRequest struct {
	LeagueID      string `json:"league_id" validate:"required"`
	MainDriver    string `json:"main_driver" validate:"required,max=100"`
	ReserveDriver string `json:"reserve_driver" validate:"required,max=100"`
	Team          string `json:"team" validate:"required,max=100"`
}

type adminOverrideRequest struct {
	LeagueID      string `json:"league_id" validate:"required"`
	UserID        string `json:"user_id" validate:"required"`
	RaceID        string `json:"race_id" validate:"required_without=Round"`
	Round         int    `json:"round" validate:"omitempty,gt=0"`
	MainDriver    string `json:"main_driver" validate:"required,max=100"`
	ReserveDriver string `json:"reserve_driver" validate:"required,max=100"`
	Team          string `json:"team" validate:"required,max=100"`
	AssignPoints  bool   `json:"assign_points"`
	Notes         string `json:"notes" validate:"omitempty,max=500"`
}

type selectDeckRequest struct {
	DriverCardIDs []string `json:"driver_card_ids" validate:"max=20,dive,required"`
	TeamCardIDs   []string `json:"team_card_ids" validate:"max=20,dive,required"`
	EditMode      bool     `json:"edit_mode"`
}

type activateCardsRequest struct {
	DriverCardID string `json:"driver_card_id" validate:"omitempty,max=64"`
	TeamCardID   string `json:"team_card_id" validate:"omitempty,max=64"`
	TargetPlayer string `json:"target_player" validate:"omitempty,max=100"`
	TargetDriver string `json:"target_driver" validate:"omitempty,max=100"`
	TargetTeam   string `json:"target_team" validate:"omitempty,max=100"`
}

type raceDTO struct {
	ID                    string  `json:"id"`
	Season                int     `json:"season"`
	Round                 int     `json:"round"`
	Name                  string  `json:"name"`
	QualifyingStart       string  `json:"qualifyingStart"`
	SprintQualifyingStart *string `json:"sprintQualifyingStart,omitempty"`
	RaceStart             string  `json:"raceStart"`
	IsSprintWeekend       bool    `json:"isSprintWeekend"`
}

type raceScheduleDTO struct {
	raceDTO
	LockAt string `json:"lockAt"`
	Locked bool   `json:"locked"`
	IsNext bool   `json:"isNext"`
}

type pointBreakdownDTO struct {
	MainDriver    int `json:"mainDriver"`
	ReserveDriver int `json:"reserveDriver"`
	Team          int `json:"team"`
	CardBonus     int `json:"cardBonus"`
	Total         int `json:"total"`
}

type selectionDTO struct {
	ID              string            `json:"id,omitempty"`
	UserID          string            `json:"userId"`
	LeagueID        string            `json:"leagueId"`
	RaceID          string            `json:"raceId"`
	Season          int               `json:"season"`
	Round           int               `json:"round"`
	MainDriver      string            `json:"mainDriver"`
	ReserveDriver   string            `json:"reserveDriver"`
	Team            string            `json:"team"`
	Status          string            `json:"status,omitempty"`
	Points          int               `json:"points"`
	Breakdown       pointBreakdownDTO `json:"breakdown"`
	IsAdminAssigned bool              `json:"isAdminAssigned"`
	IsAutoAssigned  bool              `json:"isAutoAssigned"`
	AssignedBy      string            `json:"assignedBy,omitempty"`
	AssignedAt      *string           `json:"assignedAt,omitempty"`
	Notes           string            `json:"notes,omitempty"`
	UpdatedAt       *string           `json:"updatedAt,omitempty"`
}

type currentSelectionDTO struct {
	Selection selectionDTO `json:"selection"`
	Race      raceDTO      `json:"race"`
	Exists    bool         `json:"exists"`
	Locked    bool         `json:"locked"`
	LockAt    string       `json:"lockAt"`
}

type usedSelectionsDTO struct {
	Drivers     []string `json:"drivers"`
	Teams       []string `json:"teams"`
	Source      string   `json:"source"`
	DriverCycle int      `json:"driverCycle"`
	TeamCycle   int      `json:"teamCycle"`
	Backfilled  []string `json:"backfilled,omitempty"`
}

type cardDTO struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	Type           string `json:"type"`
	Tier           string `json:"tier"`
	SlotCost       int    `json:"slotCost"`
	EffectType     string `json:"effectType"`
	RequiresTarget string `json:"requiresTarget"`
}

type ownedCardDTO struct {
	cardDTO
	InCollection bool `json:"inCollection"`
	Selected     bool `json:"selected"`
	Used         bool `json:"used"`
	UsedRound    int  `json:"usedRound,omitempty"`
}

type deckUsageDTO struct {
	DriverSlotsUsed  int `json:"driverSlotsUsed"`
	DriverSlots      int `json:"driverSlots"`
	TeamSlotsUsed    int `json:"teamSlotsUsed"`
	TeamSlots        int `json:"teamSlots"`
	GoldDriverCards  int `json:"goldDriverCards"`
	MaxGoldDriver    int `json:"maxGoldDriver"`
	GoldTeamCards    int `json:"goldTeamCards"`
	MaxGoldTeamCards int `json:"maxGoldTeam"`
}

type deckDTO struct {
	LeagueID    string       `json:"leagueId"`
	Season      int          `json:"season"`
	DriverCards []cardDTO    `json:"driverCards"`
	TeamCards   []cardDTO    `json:"teamCards"`
	Usage       deckUsageDTO `json:"usage"`
	Complete    bool         `json:"complete"`
	Locked      bool         `json:"locked"`
	LockAt      *string      `json:"lockAt,omitempty"`
}

type activationDTO struct {
	ID                 string   `json:"id,omitempty"`
	SelectionID        string   `json:"selectionId"`
	LeagueID           string   `json:"leagueId"`
	RaceID             string   `json:"raceId"`
	Season             int      `json:"season"`
	Round              int      `json:"round"`
	Exists             bool     `json:"exists"`
	DriverCard         *cardDTO `json:"driverCard,omitempty"`
	TeamCard           *cardDTO `json:"teamCard,omitempty"`
	MysteryTransformed *cardDTO `json:"mysteryTransformedCard,omitempty"`
	RandomTransformed  *cardDTO `json:"randomTransformedCard,omitempty"`
	TargetPlayer       string   `json:"targetPlayer,omitempty"`
	TargetDriver       string   `json:"targetDriver,omitempty"`
	TargetTeam         string   `json:"targetTeam,omitempty"`
	SelectedAt         *string  `json:"selectedAt,omitempty"`
	UpdatedAt          *string  `json:"updatedAt,omitempty"`
}

func formatTime(v time.Time) string {
	return v.UTC().Format(time.RFC3339)
}

func formatOptionalTime(v *time.Time) *string {
	if v == nil || v.IsZero() {
		return nil
	}
	out := formatTime(*v)
	return &out
}

func raceToDTO(item race.Race) raceDTO {
	return raceDTO{
		ID:                    item.ID,
		Season:                item.Season,
		Round:                 item.Round,
		Name:                  item.Name,
		QualifyingStart:       formatTime(item.QualifyingStart),
		SprintQualifyingStart: formatOptionalTime(item.SprintQualifyingStart),
		RaceStart:             formatTime(item.RaceStart),
		IsSprintWeekend:       item.IsSprintWeekend,
	}
}

func raceSchedulesToDTO(ctx context.Context, items []usecase.RaceSchedule) []raceScheduleDTO {
	ctx, span := startSpan(ctx, "httpapi.raceSchedulesToDTO")
	defer span.End()

	out := make([]raceScheduleDTO, 0, len(items))
	for _, item := range items {
		out = append(out, raceScheduleDTO{
			raceDTO: raceToDTO(item.Race),
			LockAt:  formatTime(item.LockAt),
			Locked:  item.Locked,
			IsNext:  item.IsNext,
		})
	}
	return out
}

func selectionToDTO(ctx context.Context, item selection.Selection) selectionDTO {
	ctx, span := startSpan(ctx, "httpapi.selectionToDTO")
	defer span.End()

	dto := selectionDTO{
		ID:            item.ID,
		UserID:        item.UserID,
		LeagueID:      item.LeagueID,
		RaceID:        item.RaceID,
		Season:        item.Season,
		Round:         item.Round,
		MainDriver:    item.MainDriver,
		ReserveDriver: item.ReserveDriver,
		Team:          item.Team,
		Status:        string(item.Status),
		Points:        item.Points,
		Breakdown: pointBreakdownDTO{
			MainDriver:    item.Breakdown.MainDriver,
			ReserveDriver: item.Breakdown.ReserveDriver,
			Team:          item.Breakdown.Team,
			CardBonus:     item.Breakdown.CardBonus,
			Total:         item.Breakdown.Total,
		},
		IsAdminAssigned: item.IsAdminAssigned,
		IsAutoAssigned:  item.IsAutoAssigned,
		AssignedBy:      item.AssignedBy,
		AssignedAt:      formatOptionalTime(item.AssignedAt),
		Notes:           item.Notes,
	}
	if !item.UpdatedAt.IsZero() {
		dto.UpdatedAt = formatOptionalTime(&item.UpdatedAt)
	}
	return dto
}

func currentSelectionToDTO(ctx context.Context, item usecase.CurrentSelection) currentSelectionDTO {
	return currentSelectionDTO{
		Selection: selectionToDTO(ctx, item.Selection),
		Race:      raceToDTO(item.Race),
		Exists:    item.Exists,
		Locked:    item.Locked,
		LockAt:    formatTime(item.LockAt),
	}
}

func usedViewToDTO(item usecase.UsedView) usedSelectionsDTO {
	dto := usedSelectionsDTO{
		Drivers:     append([]string{}, item.Drivers...),
		Teams:       append([]string{}, item.Teams...),
		Source:      item.Source,
		DriverCycle: item.DriverCycle,
		TeamCycle:   item.TeamCycle,
	}
	if len(item.Backfilled) > 0 {
		dto.Backfilled = append([]string(nil), item.Backfilled...)
	}
	return dto
}

func cardToDTO(item card.Definition) cardDTO {
	return cardDTO{
		ID:             item.ID,
		Name:           item.Name,
		Description:    item.Description,
		Type:           string(item.Type),
		Tier:           string(item.Tier),
		SlotCost:       item.SlotCost,
		EffectType:     string(item.EffectType),
		RequiresTarget: string(item.RequiresTarget),
	}
}

func cardPtrToDTO(item *card.Definition) *cardDTO {
	if item == nil {
		return nil
	}
	dto := cardToDTO(*item)
	return &dto
}

func cardsToDTO(items []card.Definition) []cardDTO {
	out := make([]cardDTO, 0, len(items))
	for _, item := range items {
		out = append(out, cardToDTO(item))
	}
	return out
}

func ownedCardsToDTO(ctx context.Context, items []usecase.OwnedCard) []ownedCardDTO {
	ctx, span := startSpan(ctx, "httpapi.ownedCardsToDTO")
	defer span.End()

	out := make([]ownedCardDTO, 0, len(items))
	for _, item := range items {
		out = append(out, ownedCardDTO{
			cardDTO:      cardToDTO(item.Definition),
			InCollection: item.InCollection,
			Selected:     item.Selected,
			Used:         item.Used,
			UsedRound:    item.UsedRound,
		})
	}
	return out
}

func deckToDTO(ctx context.Context, item usecase.DeckView) deckDTO {
	ctx, span := startSpan(ctx, "httpapi.deckToDTO")
	defer span.End()

	return deckDTO{
		LeagueID:    item.LeagueID,
		Season:      item.Season,
		DriverCards: cardsToDTO(item.DriverCards),
		TeamCards:   cardsToDTO(item.TeamCards),
		Usage: deckUsageDTO{
			DriverSlotsUsed:  item.Usage.DriverSlotsUsed,
			DriverSlots:      item.Rules.DriverSlots,
			TeamSlotsUsed:    item.Usage.TeamSlotsUsed,
			TeamSlots:        item.Rules.TeamSlots,
			GoldDriverCards:  item.Usage.GoldDriverCards,
			MaxGoldDriver:    item.Rules.MaxGoldDriver,
			GoldTeamCards:    item.Usage.GoldTeamCards,
			MaxGoldTeamCards: item.Rules.MaxGoldTeam,
		},
		Complete: item.Complete,
		Locked:   item.Locked,
		LockAt:   formatOptionalTime(item.LockAt),
	}
}

func activationToDTO(ctx context.Context, item usecase.ActivationView) activationDTO {
	ctx, span := startSpan(ctx, "httpapi.activationToDTO")
	defer span.End()

	dto := activationDTO{
		ID:                 item.Activation.ID,
		SelectionID:        item.Activation.SelectionID,
		LeagueID:           item.Activation.LeagueID,
		RaceID:             item.Activation.RaceID,
		Season:             item.Activation.Season,
		Round:              item.Activation.Round,
		Exists:             item.Exists,
		DriverCard:         cardPtrToDTO(item.DriverCard),
		TeamCard:           cardPtrToDTO(item.TeamCard),
		MysteryTransformed: cardPtrToDTO(item.MysteryTransformed),
		RandomTransformed:  cardPtrToDTO(item.RandomTransformed),
		TargetPlayer:       item.Activation.TargetPlayer,
		TargetDriver:       item.Activation.TargetDriver,
		TargetTeam:         item.Activation.TargetTeam,
	}
	if item.Exists {
		dto.SelectedAt = formatOptionalTime(&item.Activation.SelectedAt)
		dto.UpdatedAt = formatOptionalTime(&item.Activation.UpdatedAt)
	}
	return dto
}
