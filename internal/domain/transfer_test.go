package domain

import "testing"

func TestFlagOf(t *testing.T) {
	yes := true
	no := false

	if FlagOf(nil) != FlagUnknown {
		t.Error("nil must map to FlagUnknown")
	}
	if FlagOf(&yes) != FlagTrue {
		t.Error("true must map to FlagTrue")
	}
	if FlagOf(&no) != FlagFalse {
		t.Error("false must map to FlagFalse")
	}
}

func TestFlag_IsTrue(t *testing.T) {
	t.Run("Unknown is not true", func(t *testing.T) {
		if FlagUnknown.IsTrue() {
			t.Error("unknown must never count as true")
		}
	})

	t.Run("False is not true", func(t *testing.T) {
		if FlagFalse.IsTrue() {
			t.Error("false must not count as true")
		}
	})

	t.Run("True is true", func(t *testing.T) {
		if !FlagTrue.IsTrue() {
			t.Error("true must count as true")
		}
	})
}

func TestTransferStatus_Transferable(t *testing.T) {
	cases := []struct {
		name     string
		deposit  Flag
		withdraw Flag
		want     bool
	}{
		{"both true", FlagTrue, FlagTrue, true},
		{"deposit unknown", FlagUnknown, FlagTrue, false},
		{"withdraw false", FlagTrue, FlagFalse, false},
		{"both unknown", FlagUnknown, FlagUnknown, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := TransferStatus{Venue: "bithumb", Asset: "XRP", Deposit: tc.deposit, Withdraw: tc.withdraw}
			if s.Transferable() != tc.want {
				t.Errorf("Transferable() = %v, want %v", s.Transferable(), tc.want)
			}
		})
	}
}
