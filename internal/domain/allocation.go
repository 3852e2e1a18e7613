package domain

// AllocationAction is the trade instruction for one allocation leg.
type AllocationAction string

const (
	AllocBuy      AllocationAction = "BUY"
	AllocHoldCash AllocationAction = "HOLD CASH"
)

// AllocationLeg is the target position for one basket asset.
type AllocationLeg struct {
	Symbol       string           `json:"symbol"`
	Name         string           `json:"name"`
	Status       Status           `json:"status"`
	Action       AllocationAction `json:"action"`
	Rank         int              `json:"rank,omitempty"`
	Buffer       float64          `json:"buffer"`
	TargetWeight float64          `json:"target_weight"`
	TargetValue  float64          `json:"target_value"`
	Price        float64          `json:"price"`
	Shares       float64          `json:"shares"`
	CurrentValue float64          `json:"current_value,omitempty"`
	Drift        float64          `json:"drift,omitempty"`
}

// AllocationPlan splits trading capital between the selected assets and
// cash.
type AllocationPlan struct {
	Capital       float64         `json:"capital"`
	Concentration int             `json:"concentration"`
	Invested      float64         `json:"invested"`
	Cash          float64         `json:"cash"`
	Legs          []AllocationLeg `json:"legs"`
}
