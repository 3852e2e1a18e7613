package preferences

import (
	"encoding/json"
	"fmt"

	"taa-signals/internal/domain"
)

// CurrentVersion is the blob layout written by Encode.
const CurrentVersion = 2

// blobV1 is the original flat layout.
type blobV1 struct {
	Tickers            Tickers                   `json:"tickers"`
	StrategyStartDate  string                    `json:"strategyStartDate,omitempty"`
	RebalanceFrequency domain.RebalanceFrequency `json:"rebalanceFrequency,omitempty"`
	MAType             domain.TrendType          `json:"maType,omitempty"`
	MALength           int                       `json:"maLength,omitempty"`
	Concentration      int                       `json:"concentration,omitempty"`
	Notifications      *Notifications            `json:"notifications,omitempty"`
}

type portfolioV2 struct {
	Tickers            Tickers                   `json:"tickers"`
	StrategyStartDate  string                    `json:"strategyStartDate,omitempty"`
	RebalanceFrequency domain.RebalanceFrequency `json:"rebalanceFrequency,omitempty"`
	MAType             domain.TrendType          `json:"maType,omitempty"`
	MALength           int                       `json:"maLength,omitempty"`
}

type globalV2 struct {
	MAType             domain.TrendType          `json:"maType"`
	MALength           int                       `json:"maLength"`
	Concentration      int                       `json:"concentration"`
	RebalanceFrequency domain.RebalanceFrequency `json:"rebalanceFrequency"`
}

// blobV2 nests the settings into portfolio, global and notifications.
type blobV2 struct {
	Version       int           `json:"version"`
	Portfolio     portfolioV2   `json:"portfolio"`
	Global        globalV2      `json:"global"`
	Notifications Notifications `json:"notifications"`
}

type probe struct {
	Version   *int            `json:"version"`
	Tickers   json.RawMessage `json:"tickers"`
	Portfolio json.RawMessage `json:"portfolio"`
}

func detectVersion(raw []byte) (int, error) {
	var p probe
	if err := json.Unmarshal(raw, &p); err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrInvalidPreferences, err)
	}
	switch {
	case p.Version != nil:
		return *p.Version, nil
	case p.Portfolio != nil:
		return 2, nil
	case p.Tickers != nil:
		return 1, nil
	}
	return 0, fmt.Errorf("%w: unrecognised layout", domain.ErrUnsupportedVersion)
}

func migrateV1(v blobV1) blobV2 {
	d := Default()
	out := blobV2{
		Version: 2,
		Portfolio: portfolioV2{
			Tickers:            v.Tickers,
			StrategyStartDate:  v.StrategyStartDate,
			RebalanceFrequency: v.RebalanceFrequency,
		},
		Global: globalV2{
			MAType:             v.MAType,
			MALength:           v.MALength,
			Concentration:      v.Concentration,
			RebalanceFrequency: v.RebalanceFrequency,
		},
		Notifications: d.Notifications,
	}
	if v.Notifications != nil {
		out.Notifications = *v.Notifications
	}
	return out
}

func decodeV2(raw []byte) (blobV2, error) {
	var v blobV2
	if err := json.Unmarshal(raw, &v); err != nil {
		return blobV2{}, fmt.Errorf("%w: %v", domain.ErrInvalidPreferences, err)
	}
	return v, nil
}

func decodeV1(raw []byte) (blobV2, error) {
	var v blobV1
	if err := json.Unmarshal(raw, &v); err != nil {
		return blobV2{}, fmt.Errorf("%w: %v", domain.ErrInvalidPreferences, err)
	}
	return migrateV1(v), nil
}

// decoders brings every known layout up to the current one.
var decoders = map[int]func([]byte) (blobV2, error){
	1: decodeV1,
	2: decodeV2,
}

// canonical flattens a v2 blob. Portfolio-level settings win over global
// ones and missing values fall back to the defaults.
func canonical(v blobV2) Preferences {
	d := Default()
	p := Preferences{
		Tickers:           v.Portfolio.Tickers.withDefaults(d.Tickers),
		TrendType:         firstOf(v.Portfolio.MAType, v.Global.MAType, d.TrendType),
		Period:            firstOf(v.Portfolio.MALength, v.Global.MALength, d.Period),
		Concentration:     firstOf(v.Global.Concentration, d.Concentration),
		Rebalance:         firstOf(v.Portfolio.RebalanceFrequency, v.Global.RebalanceFrequency, d.Rebalance),
		StrategyStartDate: v.Portfolio.StrategyStartDate,
		Notifications:     v.Notifications,
	}
	if p.Notifications.ThresholdType == "" {
		p.Notifications.ThresholdType = d.Notifications.ThresholdType
	}
	if p.Notifications.BufferPercent == 0 {
		p.Notifications.BufferPercent = d.Notifications.BufferPercent
	}
	return p
}

func firstOf[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// Decode resolves a stored blob into validated preferences. An empty blob
// yields the defaults.
func Decode(raw []byte) (Preferences, error) {
	if len(raw) == 0 {
		return Default(), nil
	}
	version, err := detectVersion(raw)
	if err != nil {
		return Preferences{}, err
	}
	decode, ok := decoders[version]
	if !ok {
		return Preferences{}, fmt.Errorf("%w: %d", domain.ErrUnsupportedVersion, version)
	}
	blob, err := decode(raw)
	if err != nil {
		return Preferences{}, err
	}
	p := canonical(blob)
	if err := p.Validate(); err != nil {
		return Preferences{}, err
	}
	return p, nil
}

// DecodeOrDefault is Decode that never fails the caller: on error the
// defaults come back alongside the error for logging.
func DecodeOrDefault(raw []byte) (Preferences, error) {
	p, err := Decode(raw)
	if err != nil {
		return Default(), err
	}
	return p, nil
}

// Encode writes p in the current layout.
func Encode(p Preferences) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(blobV2{
		Version: CurrentVersion,
		Portfolio: portfolioV2{
			Tickers:            p.Tickers,
			StrategyStartDate:  p.StrategyStartDate,
			RebalanceFrequency: p.Rebalance,
			MAType:             p.TrendType,
			MALength:           p.Period,
		},
		Global: globalV2{
			MAType:             p.TrendType,
			MALength:           p.Period,
			Concentration:      p.Concentration,
			RebalanceFrequency: p.Rebalance,
		},
		Notifications: p.Notifications,
	})
}
