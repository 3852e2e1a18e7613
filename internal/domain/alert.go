package domain

// AlertKind names the trigger that produced an Alert.
type AlertKind string

const (
	AlertHardCross AlertKind = "HARD_CROSS"
	AlertBuffer    AlertKind = "BUFFER"
)

// Alert is one trend-break notification for one symbol of one user.
type Alert struct {
	UserID  string    `json:"user_id"`
	Symbol  string    `json:"symbol"`
	Kind    AlertKind `json:"kind"`
	Price   float64   `json:"price"`
	Trend   float64   `json:"trend"`
	Buffer  float64   `json:"buffer"`
	Message string    `json:"message"`
}
