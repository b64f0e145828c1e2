package types

// PeriodType splits the tariff day into the off-peak (HC) and on-peak (HP)
// halves of the HC/HP time-of-day scheme.
type PeriodType int

const (
	PeriodUnknown PeriodType = iota
	PeriodOffPeak
	PeriodOnPeak
)

func (p PeriodType) String() string {
	switch p {
	case PeriodOffPeak:
		return "HC"
	case PeriodOnPeak:
		return "HP"
	}
	return "unknown"
}

// ColorLabel is one of the six Tempo labels exactly as the Ecojoko service
// reports them. Off-peak slots always carry an HC label, on-peak an HP label.
type ColorLabel string

const (
	ColorHCBlue  ColorLabel = "HC Bleu"
	ColorHPBlue  ColorLabel = "HP Bleu"
	ColorHCWhite ColorLabel = "HC Blanc"
	ColorHPWhite ColorLabel = "HP Blanc"
	ColorHCRed   ColorLabel = "HC Rouge"
	ColorHPRed   ColorLabel = "HP Rouge"
)

// AllColorLabels lists the six labels in a stable order.
var AllColorLabels = []ColorLabel{
	ColorHCBlue, ColorHPBlue,
	ColorHCWhite, ColorHPWhite,
	ColorHCRed, ColorHPRed,
}

// Valid reports whether the label is one of the six known Tempo labels.
func (c ColorLabel) Valid() bool {
	switch c {
	case ColorHCBlue, ColorHPBlue, ColorHCWhite, ColorHPWhite, ColorHCRed, ColorHPRed:
		return true
	}
	return false
}

// Period returns which half of the HC/HP split the label belongs to.
func (c ColorLabel) Period() PeriodType {
	if !c.Valid() {
		return PeriodUnknown
	}
	if c[:2] == "HC" {
		return PeriodOffPeak
	}
	return PeriodOnPeak
}
