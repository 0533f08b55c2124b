package domain

// Flag is a three-state availability flag. Exchanges often omit the
// deposit/withdraw fields entirely, and "we don't know" must stay distinct
// from "reported false" for the fail-closed transfer gate.
type Flag int8

const (
	FlagUnknown Flag = iota
	FlagFalse
	FlagTrue
)

// FlagOf converts an optional boolean (nil = absent) into a Flag.
func FlagOf(b *bool) Flag {
	if b == nil {
		return FlagUnknown
	}
	if *b {
		return FlagTrue
	}
	return FlagFalse
}

// IsTrue reports whether the flag is exactly true. Unknown is not true.
func (f Flag) IsTrue() bool {
	return f == FlagTrue
}

func (f Flag) String() string {
	switch f {
	case FlagTrue:
		return "true"
	case FlagFalse:
		return "false"
	default:
		return "unknown"
	}
}

// ChainInfo is one venue-reported network's transfer status.
type ChainInfo struct {
	Name          string   `json:"name"`
	Deposit       Flag     `json:"deposit"`
	Withdraw      Flag     `json:"withdraw"`
	Confirmations *int     `json:"confirmations,omitempty"`
	WithdrawFee   *float64 `json:"withdraw_fee,omitempty"`
	WithdrawMin   *float64 `json:"withdraw_min,omitempty"`
}

// TransferStatus aggregates deposit/withdraw availability for one asset on
// one venue. Chains holds only the networks where both deposit and withdraw
// are exactly true; ChainInfo keeps every reported network for diagnostics.
type TransferStatus struct {
	Venue     string      `json:"venue"`
	Asset     string      `json:"asset"`
	Deposit   Flag        `json:"deposit"`
	Withdraw  Flag        `json:"withdraw"`
	Chains    []string    `json:"chains"`
	ChainInfo []ChainInfo `json:"chain_info"`
}

// Transferable reports whether both venue-level flags are exactly true.
func (t TransferStatus) Transferable() bool {
	return t.Deposit.IsTrue() && t.Withdraw.IsTrue()
}
