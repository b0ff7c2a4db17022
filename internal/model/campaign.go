package model

type InteractionType string

const (
	InteractionNeutral    InteractionType = "neutral"
	InteractionConvince   InteractionType = "convince"
	InteractionIntimidate InteractionType = "intimidate"
)

type Campaign struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	RegionID      string    `json:"regionId,omitempty"`
	RequiredLevel int       `json:"requiredLevel"`
	IsActive      bool      `json:"isActive"`
	ImageURL      string    `json:"imageUrl,omitempty"`
	Chapters      []Chapter `json:"chapters,omitempty"`
}

type Chapter struct {
	ID          string    `json:"id"`
	CampaignID  string    `json:"campaignId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Order       int       `json:"order"`
	Missions    []Mission `json:"missions,omitempty"`
}

type Mission struct {
	ID              string          `json:"id"`
	ChapterID       string          `json:"chapterId"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Narrative       string          `json:"narrative,omitempty"`
	Order           int             `json:"order"`
	MoneyReward     int64           `json:"moneyReward"`
	RespectReward   int             `json:"respectReward"`
	InfluenceReward int             `json:"influenceReward"`
	IsSpecial       bool            `json:"isSpecial"`
	Choices         []MissionChoice `json:"choices,omitempty"`
}

type MissionChoice struct {
	ID            string             `json:"id"`
	MissionID     string             `json:"missionId"`
	Text          string             `json:"text"`
	Description   string             `json:"description,omitempty"`
	NextMissionID string             `json:"nextMissionId,omitempty"`
	Requirements  *ChoiceRequirement `json:"requirements,omitempty"`
	POIs          []CampaignPOI      `json:"pois,omitempty"`
	Operations    []MissionOperation `json:"operations,omitempty"`
}

type ChoiceRequirement struct {
	MinRespect   int `json:"minRespect,omitempty"`
	MinInfluence int `json:"minInfluence,omitempty"`
	MaxHeat      int `json:"maxHeat,omitempty"`
}

type Dialogue struct {
	ID              string          `json:"id"`
	POIID           string          `json:"poiId"`
	Speaker         string          `json:"speaker"`
	Text            string          `json:"text"`
	Order           int             `json:"order"`
	IsPlayer        bool            `json:"isPlayer"`
	InteractionType InteractionType `json:"interactionType,omitempty"`
}

type CampaignPOI struct {
	ID           string     `json:"id"`
	ChoiceID     string     `json:"choiceId"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	LocationType string     `json:"locationType"`
	CityID       string     `json:"cityId,omitempty"`
	IsActive     bool       `json:"isActive"`
	IsCompleted  bool       `json:"isCompleted"`
	Dialogues    []Dialogue `json:"dialogues,omitempty"`
}

type MissionOperation struct {
	ID            string             `json:"id"`
	ChoiceID      string             `json:"choiceId"`
	Name          string             `json:"name"`
	Description   string             `json:"description"`
	OperationType string             `json:"operationType"`
	Duration      int                `json:"duration"`
	SuccessRate   int                `json:"successRate"`
	Resources     OperationResources `json:"resources"`
	Rewards       OperationRewards   `json:"rewards"`
	IsActive      bool               `json:"isActive"`
	IsCompleted   bool               `json:"isCompleted"`
}

type ResourceEffect struct {
	Money     int64 `json:"money,omitempty"`
	Crew      int   `json:"crew,omitempty"`
	Weapons   int   `json:"weapons,omitempty"`
	Vehicles  int   `json:"vehicles,omitempty"`
	Respect   int   `json:"respect,omitempty"`
	Influence int   `json:"influence,omitempty"`
	Heat      int   `json:"heat,omitempty"`
}

func (e ResourceEffect) Delta() ResourceDelta {
	return ResourceDelta{
		Money:     e.Money,
		Crew:      e.Crew,
		Weapons:   e.Weapons,
		Vehicles:  e.Vehicles,
		Respect:   e.Respect,
		Influence: e.Influence,
		Heat:      e.Heat,
	}
}

type PlayerCampaignProgress struct {
	ID                    string   `json:"id"`
	PlayerID              string   `json:"playerId"`
	CampaignID            string   `json:"campaignId"`
	CurrentChapterID      string   `json:"currentChapterId,omitempty"`
	CurrentMissionID      string   `json:"currentMissionId,omitempty"`
	CurrentChoiceID       string   `json:"currentChoiceId,omitempty"`
	CompletedMissionIDs   []string `json:"completedMissionIds"`
	CompletedChoiceIDs    []string `json:"completedChoiceIds"`
	CompletedPOIIDs       []string `json:"completedPoiIds"`
	CompletedOperationIDs []string `json:"completedOperationIds"`
	StartedAt             string   `json:"startedAt,omitempty"`
	LastUpdated           string   `json:"lastUpdated,omitempty"`
}

type PlayerMissionProgress struct {
	MissionID     string   `json:"missionId"`
	Status        string   `json:"status"`
	ConditionsMet []string `json:"conditionsMet,omitempty"`
	CompletedAt   string   `json:"completedAt,omitempty"`
}

// ProgressResponse wraps a campaign progress lookup. Started is false and
// Progress nil when the player never started the campaign.
type ProgressResponse struct {
	Started         bool                    `json:"started"`
	Progress        *PlayerCampaignProgress `json:"progress,omitempty"`
	MissionProgress []PlayerMissionProgress `json:"missionProgress,omitempty"`
}

type InteractRequest struct {
	InteractionType InteractionType `json:"interactionType"`
}

type InteractResponse struct {
	Success        bool            `json:"success"`
	Dialogue       *Dialogue       `json:"dialogue,omitempty"`
	ResourceEffect *ResourceEffect `json:"resourceEffect,omitempty"`
	Message        string          `json:"message,omitempty"`
}

type CompleteOperationRequest struct {
	AttemptID string `json:"attemptId,omitempty"`
}

type ChoiceCompleteResponse struct {
	Progress      *PlayerCampaignProgress `json:"progress"`
	NextMissionID string                  `json:"nextMissionId,omitempty"`
	Rewards       *ResourceEffect         `json:"rewards,omitempty"`
}

type TrackedAction struct {
	ActionType string `json:"actionType"`
	ActionID   string `json:"actionId,omitempty"`
	TargetID   string `json:"targetId,omitempty"`
	Quantity   int    `json:"quantity,omitempty"`
}

type TrackActionResponse struct {
	ConditionsCompleted []string `json:"conditionsCompleted,omitempty"`
	MissionCompleted    bool     `json:"missionCompleted"`
}
