package model

type TravelRequest struct {
	RegionID string `json:"regionId"`
}

type TravelResponse struct {
	Success        bool   `json:"success"`
	RegionID       string `json:"regionId,omitempty"`
	RegionName     string `json:"regionName,omitempty"`
	TravelCost     int64  `json:"travelCost"`
	HeatReduction  int    `json:"heatReduction,omitempty"`
	Message        string `json:"message,omitempty"`
	CaughtByPolice bool   `json:"caughtByPolice,omitempty"`
	FineAmount     int64  `json:"fineAmount,omitempty"`
	HeatIncrease   int    `json:"heatIncrease,omitempty"`
}

// Delta is the wallet effect of a travel attempt.
func (r TravelResponse) Delta() ResourceDelta {
	if r.CaughtByPolice {
		return ResourceDelta{Money: -r.FineAmount, Heat: r.HeatIncrease}
	}
	if !r.Success {
		return ResourceDelta{}
	}
	return ResourceDelta{Money: -r.TravelCost, Heat: -r.HeatReduction}
}

type TravelAttempt struct {
	ID             string `json:"id"`
	PlayerID       string `json:"playerId"`
	FromRegionID   string `json:"fromRegionId,omitempty"`
	ToRegionID     string `json:"toRegionId"`
	Success        bool   `json:"success"`
	CaughtByPolice bool   `json:"caughtByPolice"`
	FineAmount     int64  `json:"fineAmount,omitempty"`
	HeatChange     int    `json:"heatChange,omitempty"`
	Timestamp      string `json:"timestamp"`
}
