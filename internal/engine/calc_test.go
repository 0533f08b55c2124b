package engine

import (
	"errors"
	"math"
	"testing"

	"kimp_radar/internal/domain"
)

func TestApplyFee(t *testing.T) {
	t.Run("Buy raises cost", func(t *testing.T) {
		p, err := ApplyFee(100, 0.001, domain.SideBuy)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if math.Abs(p-100.1) > 1e-9 {
			t.Errorf("expected 100.1, got %v", p)
		}
		if p <= 100 {
			t.Error("buy fee must raise the price")
		}
	})

	t.Run("Sell lowers proceeds", func(t *testing.T) {
		p, err := ApplyFee(100, 0.001, domain.SideSell)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p >= 100 {
			t.Error("sell fee must lower the price")
		}
	})

	t.Run("Zero fee is identity", func(t *testing.T) {
		for _, side := range []domain.Side{domain.SideBuy, domain.SideSell} {
			p, err := ApplyFee(100, 0, side)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p != 100 {
				t.Errorf("side %v: expected 100, got %v", side, p)
			}
		}
	})

	t.Run("Rejects bad input", func(t *testing.T) {
		if _, err := ApplyFee(0, 0.001, domain.SideBuy); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for zero price, got %v", err)
		}
		if _, err := ApplyFee(100, -0.1, domain.SideBuy); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for negative fee, got %v", err)
		}
		if _, err := ApplyFee(100, 0.001, domain.Side(99)); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for unknown side, got %v", err)
		}
	})
}

func TestFeeAdjustedQuote(t *testing.T) {
	q, err := FeeAdjustedQuote(domain.Quote{Bid: 100, Ask: 110}, 0.01, 0.02)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(q.Bid-98.0) > 1e-9 {
		t.Errorf("expected bid 98.0, got %v", q.Bid)
	}
	if math.Abs(q.Ask-111.1) > 1e-9 {
		t.Errorf("expected ask 111.1, got %v", q.Ask)
	}
}

func TestPremiumPct(t *testing.T) {
	t.Run("Zero at parity", func(t *testing.T) {
		pct, err := PremiumPct(1300, 1, 1300)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if math.Abs(pct) > 1e-9 {
			t.Errorf("expected 0, got %v", pct)
		}
	})

	t.Run("Monotonic in inputs", func(t *testing.T) {
		base, _ := PremiumPct(1300, 1, 1300)
		richer, _ := PremiumPct(1400, 1, 1300)
		if richer <= base {
			t.Error("premium must increase with domestic price")
		}
		cheaperOverseas, _ := PremiumPct(1300, 1.1, 1300)
		if cheaperOverseas >= base {
			t.Error("premium must decrease with overseas price")
		}
		strongerFx, _ := PremiumPct(1300, 1, 1400)
		if strongerFx >= base {
			t.Error("premium must decrease with fx rate")
		}
	})

	t.Run("Rejects non-positive inputs", func(t *testing.T) {
		for _, in := range [][3]float64{{0, 1, 1300}, {1300, 0, 1300}, {1300, 1, 0}, {-1, 1, 1300}} {
			if _, err := PremiumPct(in[0], in[1], in[2]); !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("inputs %v: expected ErrInvalidInput, got %v", in, err)
			}
		}
	})
}

func TestBasisPct(t *testing.T) {
	t.Run("Symmetric sign", func(t *testing.T) {
		up, _ := BasisPct(100, 105)
		down, _ := BasisPct(105, 100)
		if up < 0 || down < 0 {
			t.Error("basis must be non-negative")
		}
	})

	t.Run("Zero for identical prices", func(t *testing.T) {
		b, err := BasisPct(100, 100)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if b != 0 {
			t.Errorf("expected 0, got %v", b)
		}
	})

	t.Run("Magnitude", func(t *testing.T) {
		b, _ := BasisPct(100, 105)
		if math.Abs(b-5.0) > 1e-9 {
			t.Errorf("expected 5.0, got %v", b)
		}
	})

	t.Run("Rejects non-positive prices", func(t *testing.T) {
		if _, err := BasisPct(0, 100); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestMidPrice(t *testing.T) {
	cases := []struct {
		name     string
		bid, ask float64
		want     float64
	}{
		{"both sides", 100, 102, 101},
		{"bid only", 100, 0, 100},
		{"ask only", 0, 102, 102},
		{"neither", 0, 0, 0},
		{"negative treated as missing", -1, 102, 102},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MidPrice(tc.bid, tc.ask); got != tc.want {
				t.Errorf("MidPrice(%v, %v) = %v, want %v", tc.bid, tc.ask, got, tc.want)
			}
		})
	}
}
