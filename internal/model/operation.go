package model

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidTransition = errors.New("invalid operation status transition")

type OperationStatus string

const (
	StatusInProgress OperationStatus = "in_progress"
	StatusCompleted  OperationStatus = "completed"
	StatusFailed     OperationStatus = "failed"
	StatusCancelled  OperationStatus = "cancelled"
)

func (s OperationStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Transition validates s -> to. Only in_progress may move, and only to a
// terminal state.
func (s OperationStatus) Transition(to OperationStatus) error {
	if s != StatusInProgress || !to.Terminal() {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, to)
	}
	return nil
}

type OperationRequirements struct {
	MinCrew      int `json:"minCrew,omitempty"`
	MinWeapons   int `json:"minWeapons,omitempty"`
	MinVehicles  int `json:"minVehicles,omitempty"`
	MinRespect   int `json:"minRespect,omitempty"`
	MinInfluence int `json:"minInfluence,omitempty"`
	MaxHeat      int `json:"maxHeat,omitempty"`
}

type OperationResources struct {
	Crew     int   `json:"crew"`
	Weapons  int   `json:"weapons"`
	Vehicles int   `json:"vehicles"`
	Money    int64 `json:"money"`
}

// Cost is the delta of committing these resources.
func (r OperationResources) Cost() ResourceDelta {
	return ResourceDelta{Money: -r.Money, Crew: -r.Crew, Weapons: -r.Weapons, Vehicles: -r.Vehicles}
}

type OperationRewards struct {
	Money         int64 `json:"money,omitempty"`
	Crew          int   `json:"crew,omitempty"`
	Weapons       int   `json:"weapons,omitempty"`
	Vehicles      int   `json:"vehicles,omitempty"`
	Respect       int   `json:"respect,omitempty"`
	Influence     int   `json:"influence,omitempty"`
	HeatReduction int   `json:"heatReduction,omitempty"`
}

type OperationRisks struct {
	CrewLoss     int   `json:"crewLoss,omitempty"`
	WeaponsLoss  int   `json:"weaponsLoss,omitempty"`
	VehiclesLoss int   `json:"vehiclesLoss,omitempty"`
	MoneyLoss    int64 `json:"moneyLoss,omitempty"`
	HeatIncrease int   `json:"heatIncrease,omitempty"`
	RespectLoss  int   `json:"respectLoss,omitempty"`
}

type Operation struct {
	ID             string                `json:"id"`
	Name           string                `json:"name"`
	Description    string                `json:"description"`
	Type           string                `json:"type"`
	IsSpecial      bool                  `json:"isSpecial"`
	RegionID       string                `json:"regionId,omitempty"`
	Requirements   OperationRequirements `json:"requirements"`
	Resources      OperationResources    `json:"resources"`
	Rewards        OperationRewards      `json:"rewards"`
	Risks          OperationRisks        `json:"risks"`
	Duration       int                   `json:"duration"`
	SuccessRate    int                   `json:"successRate"`
	AvailableUntil string                `json:"availableUntil,omitempty"`
}

// DurationTime is the operation duration as a time.Duration.
func (o Operation) DurationTime() time.Duration {
	return time.Duration(o.Duration) * time.Second
}

type OperationResult struct {
	Success         bool   `json:"success"`
	MoneyGained     int64  `json:"moneyGained,omitempty"`
	CrewGained      int    `json:"crewGained,omitempty"`
	WeaponsGained   int    `json:"weaponsGained,omitempty"`
	VehiclesGained  int    `json:"vehiclesGained,omitempty"`
	RespectGained   int    `json:"respectGained,omitempty"`
	InfluenceGained int    `json:"influenceGained,omitempty"`
	HeatReduced     int    `json:"heatReduced,omitempty"`
	CrewLost        int    `json:"crewLost,omitempty"`
	WeaponsLost     int    `json:"weaponsLost,omitempty"`
	VehiclesLost    int    `json:"vehiclesLost,omitempty"`
	MoneyLost       int64  `json:"moneyLost,omitempty"`
	RespectLost     int    `json:"respectLost,omitempty"`
	HeatIncreased   int    `json:"heatIncreased,omitempty"`
	Message         string `json:"message,omitempty"`
}

func (r OperationResult) Delta() ResourceDelta {
	return ResourceDelta{
		Money:     r.MoneyGained - r.MoneyLost,
		Crew:      r.CrewGained - r.CrewLost,
		Weapons:   r.WeaponsGained - r.WeaponsLost,
		Vehicles:  r.VehiclesGained - r.VehiclesLost,
		Respect:   r.RespectGained - r.RespectLost,
		Influence: r.InfluenceGained,
		Heat:      r.HeatIncreased - r.HeatReduced,
	}
}

type OperationAttempt struct {
	ID             string             `json:"id"`
	OperationID    string             `json:"operationId"`
	PlayerID       string             `json:"playerId"`
	Timestamp      string             `json:"timestamp"`
	Resources      OperationResources `json:"resources"`
	Result         *OperationResult   `json:"result,omitempty"`
	CompletionTime string             `json:"completionTime,omitempty"`
	Status         OperationStatus    `json:"status"`
}

type OperationsRefreshInfo struct {
	RefreshInterval int    `json:"refreshInterval"`
	LastRefreshTime string `json:"lastRefreshTime"`
	NextRefreshTime string `json:"nextRefreshTime"`
}

type StartOperationRequest struct {
	Resources OperationResources `json:"resources"`
}
