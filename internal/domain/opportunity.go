package domain

// Side is the taker side of a fill.
type Side int

const (
	SideBuy Side = iota
	SideSell
)

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "buy"
	case SideSell:
		return "sell"
	default:
		return "unknown"
	}
}

// Direction is the premium direction between the domestic and overseas venue.
type Direction int

const (
	// DirectionReverse: domestic trades cheaper than overseas after FX.
	DirectionReverse Direction = iota
	// DirectionKimchi: domestic trades richer than overseas after FX.
	DirectionKimchi
)

func (d Direction) String() string {
	switch d {
	case DirectionReverse:
		return "reverse"
	case DirectionKimchi:
		return "kimchi"
	default:
		return "unknown"
	}
}

// BasisMode selects which spot/perp sides a basis check compares.
type BasisMode int

const (
	// BasisEntry: spot buy vs perp sell-to-short.
	BasisEntry BasisMode = iota
	// BasisUnwind: spot sell vs perp buy-to-cover.
	BasisUnwind
)

func (m BasisMode) String() string {
	switch m {
	case BasisEntry:
		return "entry"
	case BasisUnwind:
		return "unwind"
	default:
		return "unknown"
	}
}

// Opportunity is one premium observation produced by a scan.
// Prices are the fee-adjusted execution sides the scan compared.
type Opportunity struct {
	Asset         string    `json:"asset"`
	Direction     Direction `json:"direction"`
	PremiumPct    float64   `json:"premium_pct"`
	DomesticPrice float64   `json:"domestic_price"`
	OverseasPrice float64   `json:"overseas_price"`
	FxRate        float64   `json:"fx_rate"`
}
