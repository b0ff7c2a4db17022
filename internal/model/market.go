package model

type ResourceType string

const (
	ResourceCrew     ResourceType = "crew"
	ResourceWeapons  ResourceType = "weapons"
	ResourceVehicles ResourceType = "vehicles"
)

func (r ResourceType) Valid() bool {
	switch r {
	case ResourceCrew, ResourceWeapons, ResourceVehicles:
		return true
	}
	return false
}

// Delta returns the counter change for qty units of r.
func (r ResourceType) Delta(qty int) ResourceDelta {
	switch r {
	case ResourceCrew:
		return ResourceDelta{Crew: qty}
	case ResourceWeapons:
		return ResourceDelta{Weapons: qty}
	case ResourceVehicles:
		return ResourceDelta{Vehicles: qty}
	}
	return ResourceDelta{}
}

// Held returns how many units of r the profile owns.
func (r ResourceType) Held(p PlayerProfile) int {
	switch r {
	case ResourceCrew:
		return p.Crew
	case ResourceWeapons:
		return p.Weapons
	case ResourceVehicles:
		return p.Vehicles
	}
	return 0
}

type TransactionType string

const (
	TransactionBuy  TransactionType = "buy"
	TransactionSell TransactionType = "sell"
)

type MarketListing struct {
	ID              string       `json:"id"`
	Type            ResourceType `json:"type"`
	Price           int64        `json:"price"`
	Quantity        int          `json:"quantity"`
	Trend           string       `json:"trend"`
	TrendPercentage float64      `json:"trendPercentage"`
}

type MarketTransaction struct {
	ID              string          `json:"id"`
	PlayerID        string          `json:"playerId"`
	ResourceType    ResourceType    `json:"resourceType"`
	Quantity        int             `json:"quantity"`
	Price           int64           `json:"price"`
	TotalCost       int64           `json:"totalCost"`
	Timestamp       string          `json:"timestamp"`
	TransactionType TransactionType `json:"transactionType"`
}

type MarketHistory struct {
	ID           string       `json:"id"`
	ResourceType ResourceType `json:"resourceType"`
	Date         string       `json:"date"`
	Price        int64        `json:"price"`
	Volume       int          `json:"volume"`
}

type TradeRequest struct {
	ResourceType ResourceType `json:"resourceType"`
	Quantity     int          `json:"quantity"`
}
