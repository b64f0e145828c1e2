package types

import "time"

// Features mirrors the optional capabilities of an Ecojoko subscription.
// Disabled features suppress the corresponding fetches and snapshot fields.
type Features struct {
	UseHCHP    bool
	UseTempo   bool
	UseTempHum bool
	UseProd    bool
}

// GatewayIdentity is the result of gateway discovery: the first gateway on
// the account and its power-meter / temperature-humidity device ids.
// A zero id means the device was not present in the roster.
type GatewayIdentity struct {
	GatewayID       int
	FirmwareVersion string
	PowerMeterID    int
	TempHumID       int
}

// Complete reports whether the identity can back period/realtime fetches.
func (g GatewayIdentity) Complete() bool {
	return g.GatewayID != 0 && g.PowerMeterID != 0
}

// HasTempHum reports whether a TEMP_HUM device was discovered.
func (g GatewayIdentity) HasTempHum() bool {
	return g.TempHumID != 0
}

// CumulativeCounters holds the remote "since local midnight" aggregates.
// They increase monotonically through the day and reset at midnight.
// OffPeak/OnPeak are only populated when the HC/HP feature is enabled and
// the surplus only when the production feature is enabled.
type CumulativeCounters struct {
	TotalKWH           float64
	OffPeakKWH         *float64
	OnPeakKWH          *float64
	ProductionSurplusKWH *float64
}

// ConsumptionSnapshot is the immutable result of one refresh cycle. Fields
// that could not be refreshed keep the value carried over from the previous
// cycle; nil means never observed.
type ConsumptionSnapshot struct {
	Timestamp       time.Time `json:"timestamp"`
	FirmwareVersion string    `json:"gateway_firmware_version,omitempty"`

	RealtimePowerW *float64 `json:"realtime_consumption,omitempty"`

	TotalKWH   *float64 `json:"grid_consumption,omitempty"`
	OffPeakKWH *float64 `json:"hc_grid_consumption,omitempty"`
	OnPeakKWH  *float64 `json:"hp_grid_consumption,omitempty"`

	TempoHCBlueKWH  *float64 `json:"blue_hc_grid_consumption,omitempty"`
	TempoHPBlueKWH  *float64 `json:"blue_hp_grid_consumption,omitempty"`
	TempoHCWhiteKWH *float64 `json:"white_hc_grid_consumption,omitempty"`
	TempoHPWhiteKWH *float64 `json:"white_hp_grid_consumption,omitempty"`
	TempoHCRedKWH   *float64 `json:"red_hc_grid_consumption,omitempty"`
	TempoHPRedKWH   *float64 `json:"red_hp_grid_consumption,omitempty"`

	ProductionSurplusKWH *float64 `json:"production_surplus,omitempty"`

	IndoorTempC  *float64 `json:"indoor_temp,omitempty"`
	OutdoorTempC *float64 `json:"outdoor_temp,omitempty"`
	IndoorHumPct *float64 `json:"indoor_hum,omitempty"`
	OutdoorHumPct *float64 `json:"outdoor_hum,omitempty"`

	LastIntervalPowerW *float64 `json:"last_interval_power,omitempty"`
	LastIntervalKWH    *float64 `json:"last_interval_kwh,omitempty"`
}

// colorField returns a pointer to the accumulator field for the given label,
// or nil for an unknown label. The snapshot exposes six named fields for
// compatibility; internally the accountant works on a label-keyed map.
func (s *ConsumptionSnapshot) colorField(label ColorLabel) **float64 {
	switch label {
	case ColorHCBlue:
		return &s.TempoHCBlueKWH
	case ColorHPBlue:
		return &s.TempoHPBlueKWH
	case ColorHCWhite:
		return &s.TempoHCWhiteKWH
	case ColorHPWhite:
		return &s.TempoHPWhiteKWH
	case ColorHCRed:
		return &s.TempoHCRedKWH
	case ColorHPRed:
		return &s.TempoHPRedKWH
	}
	return nil
}

// ColorKWH returns the accumulated energy for the given label, or nil when
// the label has no value this day.
func (s *ConsumptionSnapshot) ColorKWH(label ColorLabel) *float64 {
	f := s.colorField(label)
	if f == nil {
		return nil
	}
	return *f
}

// SetColorBuckets replaces the six color fields from a label-keyed map.
// Labels absent from the map are cleared.
func (s *ConsumptionSnapshot) SetColorBuckets(buckets map[ColorLabel]float64) {
	for _, label := range AllColorLabels {
		f := s.colorField(label)
		if v, ok := buckets[label]; ok {
			val := v
			*f = &val
		} else {
			*f = nil
		}
	}
}

// Float64Ptr returns a pointer to v. Convenience for optional fields.
func Float64Ptr(v float64) *float64 {
	return &v
}
