package devserver

import (
	"fmt"
	"time"

	"github.com/CRTOsp3ck/mwce/internal/model"
)

const (
	DemoEmail    = "demo@mwce.dev"
	DemoPassword = "family-business"
	DemoName     = "Don Demo"

	rivalID   = "npc-falcone"
	rivalName = "The Falcone Family"

	operationsRefreshInterval = 4 * time.Hour
)

// Seed fills the world with the fixed map, the market, the operation
// catalog, one campaign and the demo account.
func (w *World) Seed() error {
	w.mu.Lock()
	now := w.clock.Now()

	w.regions = []model.Region{
		{ID: "r-north", Name: "North Side", Description: "Docks and rail yards", TravelCost: 500},
		{ID: "r-south", Name: "South Side", Description: "Casinos and clubs", TravelCost: 750},
	}
	w.districts = []model.District{
		{ID: "d-harbor", Name: "Harbor", RegionID: "r-north"},
		{ID: "d-strip", Name: "The Strip", RegionID: "r-south"},
	}
	w.cities = []model.City{
		{ID: "c-pier", Name: "Pier Town", DistrictID: "d-harbor"},
		{ID: "c-yards", Name: "Rail Yards", DistrictID: "d-harbor"},
		{ID: "c-neon", Name: "Neon Row", DistrictID: "d-strip"},
	}

	last := model.FormatTime(now.Add(-30 * time.Minute))
	w.hotspots = []*model.Hotspot{
		{ID: "h-bait", Name: "Bait & Tackle", CityID: "c-pier", Type: "shop", BusinessType: "retail", IsLegal: true,
			Income: 400, DefenseStrength: 6},
		{ID: "h-warehouse", Name: "Pier 9 Warehouse", CityID: "c-pier", Type: "warehouse", BusinessType: "smuggling",
			Income: 1200, DefenseStrength: 20, Controller: rivalID, ControllerName: rivalName, Crew: 8, Weapons: 4, LastIncomeTime: last},
		{ID: "h-diner", Name: "Yardside Diner", CityID: "c-yards", Type: "restaurant", BusinessType: "food", IsLegal: true,
			Income: 300, DefenseStrength: 4},
		{ID: "h-casino", Name: "Lucky Seven", CityID: "c-neon", Type: "casino", BusinessType: "gambling", IsLegal: true,
			Income: 2500, DefenseStrength: 40, Controller: rivalID, ControllerName: rivalName, Crew: 15, Weapons: 10, Vehicles: 3, LastIncomeTime: last},
		{ID: "h-club", Name: "Velvet Club", CityID: "c-neon", Type: "club", BusinessType: "nightlife", IsLegal: true,
			Income: 900, DefenseStrength: 12},
	}
	for _, h := range w.hotspots {
		h.NormalizeTimes()
	}

	w.listings = map[model.ResourceType]*model.MarketListing{
		model.ResourceCrew:     {ID: "l-crew", Type: model.ResourceCrew, Price: 100, Quantity: 500, Trend: "stable"},
		model.ResourceWeapons:  {ID: "l-weapons", Type: model.ResourceWeapons, Price: 250, Quantity: 300, Trend: "up", TrendPercentage: 4.5},
		model.ResourceVehicles: {ID: "l-vehicles", Type: model.ResourceVehicles, Price: 1200, Quantity: 60, Trend: "down", TrendPercentage: 2},
	}
	w.priceHistory = nil
	for _, l := range []*model.MarketListing{w.listings[model.ResourceCrew], w.listings[model.ResourceWeapons], w.listings[model.ResourceVehicles]} {
		for day := 6; day >= 0; day-- {
			w.priceHistory = append(w.priceHistory, model.MarketHistory{
				ID:           fmt.Sprintf("%s-%d", l.ID, day),
				ResourceType: l.Type,
				Date:         now.AddDate(0, 0, -day).UTC().Format(time.DateOnly),
				Price:        l.Price + int64(day-3)*l.Price/20,
				Volume:       20 + day*5,
			})
		}
	}

	w.operations = []model.Operation{
		{ID: "op-carjack", Name: "Carjacking", Description: "Lift a car off the boulevard.", Type: "carjacking",
			Requirements: model.OperationRequirements{MinCrew: 2},
			Resources:    model.OperationResources{Crew: 2, Weapons: 1},
			Rewards:      model.OperationRewards{Money: 1500, Vehicles: 1, Respect: 2},
			Risks:        model.OperationRisks{CrewLoss: 1, HeatIncrease: 5},
			Duration:     60, SuccessRate: 70},
		{ID: "op-smuggle", Name: "Goods Smuggling", Description: "Move crates off Pier 9.", Type: "goods_smuggling", RegionID: "r-north",
			Requirements: model.OperationRequirements{MinCrew: 4, MinVehicles: 1},
			Resources:    model.OperationResources{Crew: 4, Vehicles: 1, Money: 500},
			Rewards:      model.OperationRewards{Money: 5000, Respect: 5, Influence: 2},
			Risks:        model.OperationRisks{VehiclesLoss: 1, MoneyLoss: 500, HeatIncrease: 8},
			Duration:     300, SuccessRate: 60},
		{ID: "op-bribe", Name: "Official Bribing", Description: "Grease a councilman.", Type: "official_bribing", RegionID: "r-south",
			Requirements: model.OperationRequirements{MinInfluence: 5},
			Resources:    model.OperationResources{Money: 3000},
			Rewards:      model.OperationRewards{Influence: 6, HeatReduction: 15},
			Risks:        model.OperationRisks{MoneyLoss: 1000, HeatIncrease: 10},
			Duration:     180, SuccessRate: 75},
		{ID: "op-recruit", Name: "Crew Recruitment", Description: "Find fresh faces at the docks.", Type: "crew_recruitment", IsSpecial: true,
			Resources: model.OperationResources{Money: 800},
			Rewards:   model.OperationRewards{Crew: 4},
			Risks:     model.OperationRisks{HeatIncrease: 2},
			Duration:  120, SuccessRate: 90},
	}
	w.refresh = model.OperationsRefreshInfo{
		RefreshInterval: int(operationsRefreshInterval / time.Second),
		LastRefreshTime: model.FormatTime(now),
		NextRefreshTime: model.FormatTime(now.Add(operationsRefreshInterval)),
	}

	w.campaigns = []model.Campaign{seedCampaign()}
	w.mu.Unlock()

	p, err := w.Register(model.RegisterRequest{Name: DemoName, Email: DemoEmail, Password: DemoPassword})
	if err != nil {
		return fmt.Errorf("seed demo account: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	demo := w.players[p.ID]
	demo.Money, demo.Crew, demo.Weapons, demo.Vehicles = 25000, 12, 6, 2
	demo.Respect, demo.Influence, demo.Heat = 15, 6, 10
	demo.Title = titleFor(demo.Respect)
	demo.CurrentRegionID, demo.CurrentRegionName = "r-north", "North Side"
	bait, _ := w.hotspotByID("h-bait")
	bait.Controller, bait.ControllerName = demo.ID, demo.Name
	bait.Crew, bait.DefenseStrength = 3, 9
	bait.LastIncomeTime = last
	bait.PendingCollection = 400
	bait.NextIncomeTime = ""
	bait.NormalizeTimes()
	return nil
}

func seedCampaign() model.Campaign {
	docksChoice := model.MissionChoice{
		ID: "ch-docks", MissionID: "m-arrival", Text: "Work the docks",
		Description: "Earn the harbormaster's trust.", NextMissionID: "m-payday",
		POIs: []model.CampaignPOI{{
			ID: "poi-harbormaster", ChoiceID: "ch-docks", Name: "Harbormaster's Office",
			Description: "A cramped office over the water.", LocationType: "office", CityID: "c-pier", IsActive: true,
			Dialogues: []model.Dialogue{
				{ID: "dl-1", POIID: "poi-harbormaster", Speaker: "Harbormaster", Text: "Nobody moves freight here without my say.", Order: 1, InteractionType: model.InteractionNeutral},
				{ID: "dl-2", POIID: "poi-harbormaster", Speaker: "Harbormaster", Text: "Fine. Ten percent and we never met.", Order: 2, InteractionType: model.InteractionConvince},
				{ID: "dl-3", POIID: "poi-harbormaster", Speaker: "Harbormaster", Text: "All right, all right. The manifests are yours.", Order: 3, InteractionType: model.InteractionIntimidate},
			},
		}},
		Operations: []model.MissionOperation{{
			ID: "mo-crates", ChoiceID: "ch-docks", Name: "Unload the Crates", Description: "Move the first shipment.",
			OperationType: "goods_smuggling", Duration: 300, SuccessRate: 80, IsActive: true,
			Resources: model.OperationResources{Crew: 2},
			Rewards:   model.OperationRewards{Money: 1000},
		}},
	}
	muscleChoice := model.MissionChoice{
		ID: "ch-muscle", MissionID: "m-arrival", Text: "Muscle in",
		Description: "Take what the Falcones won't share.", NextMissionID: "m-payday",
		Requirements: &model.ChoiceRequirement{MinRespect: 50},
		Operations: []model.MissionOperation{{
			ID: "mo-raid", ChoiceID: "ch-muscle", Name: "Raid the Warehouse", Description: "Hit Pier 9 at night.",
			OperationType: "carjacking", Duration: 120, SuccessRate: 60, IsActive: true,
			Resources: model.OperationResources{Crew: 4, Weapons: 2},
			Rewards:   model.OperationRewards{Money: 2500, Respect: 5},
		}},
	}
	return model.Campaign{
		ID: "cmp-rise", Title: "Rise of the Family", Description: "From nobody to somebody.", RequiredLevel: 1, IsActive: true,
		Chapters: []model.Chapter{{
			ID: "chp-1", CampaignID: "cmp-rise", Title: "New in Town", Order: 1,
			Missions: []model.Mission{
				{ID: "m-arrival", ChapterID: "chp-1", Title: "Arrival", Description: "Make a name on the waterfront.", Order: 1,
					MoneyReward: 2000, RespectReward: 10, InfluenceReward: 2, Choices: []model.MissionChoice{docksChoice, muscleChoice}},
				{ID: "m-payday", ChapterID: "chp-1", Title: "Payday", Description: "Collect what you are owed.", Order: 2,
					MoneyReward: 5000, RespectReward: 20, InfluenceReward: 5},
			},
		}},
	}
}
