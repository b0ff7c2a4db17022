package model

import "encoding/json"

// Push event names carried on the event stream.
const (
	EventConnected                = "connected"
	EventHeartbeat                = "heartbeat"
	EventIncomeGenerated          = "income_generated"
	EventHotspotUpdated           = "hotspot_updated"
	EventHotspotsUpdated          = "hotspots_updated"
	EventNotification             = "notification"
	EventPlayerRegionChanged      = "player_region_changed"
	EventCampaignActionTracked    = "campaign_action_tracked"
	EventCampaignChoiceUpdated    = "campaign_choice_updated"
	EventCampaignPOIUpdated       = "campaign_poi_updated"
	EventCampaignOperationUpdated = "campaign_operation_updated"
	EventOperationsRefreshed      = "operations_refreshed"
)

// StreamEvent is one named event with its raw JSON payload.
type StreamEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type ConnectedPayload struct {
	Message  string `json:"message"`
	ClientID string `json:"clientId,omitempty"`
}

type HeartbeatPayload struct {
	Timestamp string `json:"timestamp"`
}

type IncomeUpdate struct {
	HotspotID         string `json:"hotspotId"`
	HotspotName       string `json:"hotspotName"`
	NewIncome         int64  `json:"newIncome"`
	PendingCollection int64  `json:"pendingCollection"`
	LastIncomeTime    string `json:"lastIncomeTime,omitempty"`
	NextIncomeTime    string `json:"nextIncomeTime,omitempty"`
}

type IncomeGeneratedPayload struct {
	Updates      []IncomeUpdate `json:"updates"`
	TotalPending int64          `json:"totalPending"`
	Timestamp    string         `json:"timestamp"`
}

type HotspotUpdatedPayload struct {
	Hotspot Hotspot `json:"hotspot"`
}

type HotspotsUpdatedPayload struct {
	Hotspots []Hotspot `json:"hotspots"`
}

type NotificationPayload struct {
	Notification Notification `json:"notification"`
}

type RegionChangedPayload struct {
	Event      string `json:"event"`
	PlayerID   string `json:"playerId"`
	RegionID   string `json:"regionId"`
	RegionName string `json:"regionName"`
	Timestamp  string `json:"timestamp"`
}

type CampaignActionTrackedPayload struct {
	CampaignID         string `json:"campaignId,omitempty"`
	MissionID          string `json:"missionId"`
	ActionType         string `json:"actionType,omitempty"`
	ConditionCompleted bool   `json:"conditionCompleted"`
	MissionCompleted   bool   `json:"missionCompleted"`
}

type CampaignChoiceUpdatedPayload struct {
	MissionID          string        `json:"missionId"`
	Choice             MissionChoice `json:"choice"`
	ConditionCompleted bool          `json:"conditionCompleted"`
}

type CampaignPOIUpdatedPayload struct {
	POI CampaignPOI `json:"poi"`
}

type CampaignOperationUpdatedPayload struct {
	Operation MissionOperation `json:"operation"`
}

type OperationsRefreshedPayload struct {
	Operations  []Operation           `json:"operations"`
	Timestamp   string                `json:"timestamp"`
	RefreshInfo OperationsRefreshInfo `json:"refreshInfo"`
}

// Announcement is the admin push body of the development backend.
type Announcement struct {
	PlayerID string           `json:"playerId,omitempty"`
	Message  string           `json:"message"`
	Type     NotificationType `json:"type,omitempty"`
}
