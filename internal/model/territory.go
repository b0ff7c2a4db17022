package model

type Region struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	TravelCost  int64  `json:"travelCost,omitempty"`
}

type District struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	RegionID    string `json:"regionId"`
	Description string `json:"description,omitempty"`
}

type City struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DistrictID  string `json:"districtId"`
	Description string `json:"description,omitempty"`
}

type Hotspot struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	CityID             string `json:"cityId"`
	Type               string `json:"type"`
	BusinessType       string `json:"businessType"`
	IsLegal            bool   `json:"isLegal"`
	Controller         string `json:"controller,omitempty"`
	ControllerName     string `json:"controllerName,omitempty"`
	Income             int64  `json:"income"`
	PendingCollection  int64  `json:"pendingCollection"`
	LastCollectionTime string `json:"lastCollectionTime,omitempty"`
	LastIncomeTime     string `json:"lastIncomeTime,omitempty"`
	NextIncomeTime     string `json:"nextIncomeTime,omitempty"`
	Crew               int    `json:"crew"`
	Weapons            int    `json:"weapons"`
	Vehicles           int    `json:"vehicles"`
	DefenseStrength    int    `json:"defenseStrength"`
}

// NormalizeTimes rewrites the timestamp fields into canonical form and
// fills a missing NextIncomeTime from LastIncomeTime. Applying it twice
// yields the same record.
func (h *Hotspot) NormalizeTimes() {
	h.LastCollectionTime = CanonicalTime(h.LastCollectionTime)
	h.LastIncomeTime = CanonicalTime(h.LastIncomeTime)
	h.NextIncomeTime = CanonicalTime(h.NextIncomeTime)
	if h.NextIncomeTime == "" {
		h.NextIncomeTime = DeriveNextIncome(h.LastIncomeTime)
	}
}

type ActionType string

const (
	ActionExtortion  ActionType = "extortion"
	ActionTakeover   ActionType = "takeover"
	ActionCollection ActionType = "collection"
	ActionDefend     ActionType = "defend"
)

type ActionResources struct {
	Crew     int `json:"crew"`
	Weapons  int `json:"weapons"`
	Vehicles int `json:"vehicles"`
}

type ActionResult struct {
	Success           bool   `json:"success"`
	MoneyGained       int64  `json:"moneyGained,omitempty"`
	MoneyLost         int64  `json:"moneyLost,omitempty"`
	CrewGained        int    `json:"crewGained,omitempty"`
	CrewLost          int    `json:"crewLost,omitempty"`
	WeaponsGained     int    `json:"weaponsGained,omitempty"`
	WeaponsLost       int    `json:"weaponsLost,omitempty"`
	VehiclesGained    int    `json:"vehiclesGained,omitempty"`
	VehiclesLost      int    `json:"vehiclesLost,omitempty"`
	RespectGained     int    `json:"respectGained,omitempty"`
	InfluenceGained   int    `json:"influenceGained,omitempty"`
	HeatGenerated     int    `json:"heatGenerated,omitempty"`
	HotspotControlled bool   `json:"hotspotControlled,omitempty"`
	Message           string `json:"message,omitempty"`
}

// Delta is the effect of the result on the acting player's counters.
func (r ActionResult) Delta() ResourceDelta {
	return ResourceDelta{
		Money:     r.MoneyGained - r.MoneyLost,
		Crew:      r.CrewGained - r.CrewLost,
		Weapons:   r.WeaponsGained - r.WeaponsLost,
		Vehicles:  r.VehiclesGained - r.VehiclesLost,
		Respect:   r.RespectGained,
		Influence: r.InfluenceGained,
		Heat:      r.HeatGenerated,
	}
}

type TerritoryAction struct {
	ID        string          `json:"id"`
	PlayerID  string          `json:"playerId"`
	Type      ActionType      `json:"type"`
	HotspotID string          `json:"hotspotId"`
	Resources ActionResources `json:"resources"`
	Result    *ActionResult   `json:"result,omitempty"`
	Timestamp string          `json:"timestamp"`
}

type PerformActionRequest struct {
	HotspotID string          `json:"hotspotId"`
	Resources ActionResources `json:"resources"`
}

type CollectResponse struct {
	HotspotID       string `json:"hotspotId"`
	CollectedAmount int64  `json:"collectedAmount"`
	Message         string `json:"message,omitempty"`
}
