package model

type PlayerProfile struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Title              string `json:"title"`
	Money              int64  `json:"money"`
	Crew               int    `json:"crew"`
	MaxCrew            int    `json:"maxCrew"`
	Weapons            int    `json:"weapons"`
	MaxWeapons         int    `json:"maxWeapons"`
	Vehicles           int    `json:"vehicles"`
	MaxVehicles        int    `json:"maxVehicles"`
	Respect            int    `json:"respect"`
	Influence          int    `json:"influence"`
	Heat               int    `json:"heat"`
	ControlledHotspots int    `json:"controlledHotspots"`
	TotalHotspotCount  int    `json:"totalHotspotCount"`
	HourlyRevenue      int64  `json:"hourlyRevenue"`
	PendingCollections int64  `json:"pendingCollections"`
	CurrentRegionID    string `json:"currentRegionId,omitempty"`
	CurrentRegionName  string `json:"currentRegionName,omitempty"`
	CreatedAt          string `json:"createdAt,omitempty"`
	LastActive         string `json:"lastActive,omitempty"`
	// Version is a server-side sequence number, zero when the server omits it.
	Version int64 `json:"version,omitempty"`
}

type PlayerStats struct {
	TotalOperationsCompleted int   `json:"totalOperationsCompleted"`
	TotalMoneyEarned         int64 `json:"totalMoneyEarned"`
	TotalHotspotsControlled  int   `json:"totalHotspotsControlled"`
	MaxHeatReached           int   `json:"maxHeatReached"`
	DaysActive               int   `json:"daysActive"`
	SuccessfulTakeovers      int   `json:"successfulTakeovers"`
	FailedTakeovers          int   `json:"failedTakeovers"`
}

type NotificationType string

const (
	NotificationTerritory  NotificationType = "territory"
	NotificationOperation  NotificationType = "operation"
	NotificationCollection NotificationType = "collection"
	NotificationHeat       NotificationType = "heat"
	NotificationSystem     NotificationType = "system"
	NotificationTravel     NotificationType = "travel"
)

type Notification struct {
	ID        string           `json:"id"`
	PlayerID  string           `json:"playerId"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	Timestamp string           `json:"timestamp"`
	Read      bool             `json:"read"`
}

type CollectAllResponse struct {
	CollectedAmount int64  `json:"collectedAmount"`
	HotspotsCount   int    `json:"hotspotsCount"`
	Message         string `json:"message,omitempty"`
}

// ResourceDelta is a signed change to the player's counters.
type ResourceDelta struct {
	Money     int64
	Crew      int
	Weapons   int
	Vehicles  int
	Respect   int
	Influence int
	Heat      int
}

func (d ResourceDelta) IsZero() bool {
	return d == ResourceDelta{}
}

// Add returns the component-wise sum of both deltas.
func (d ResourceDelta) Add(o ResourceDelta) ResourceDelta {
	return ResourceDelta{
		Money:     d.Money + o.Money,
		Crew:      d.Crew + o.Crew,
		Weapons:   d.Weapons + o.Weapons,
		Vehicles:  d.Vehicles + o.Vehicles,
		Respect:   d.Respect + o.Respect,
		Influence: d.Influence + o.Influence,
		Heat:      d.Heat + o.Heat,
	}
}
