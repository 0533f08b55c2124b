package chains

import "testing"

func TestNormalizer_Normalize(t *testing.T) {
	n := NewDefaultNormalizer()

	t.Run("Aliases collapse", func(t *testing.T) {
		cases := map[string]string{
			"ERC20":                   "ERC20",
			"Ethereum":                "ERC20",
			"eth":                     "ERC20",
			"BSC":                     "BEP20",
			"Binance Smart Chain":     "BEP20",
			"BNB Smart Chain (BEP20)": "BEP20",
			"Tron":                    "TRC20",
			"TRX":                     "TRC20",
			"Arbitrum One":            "ARBONE",
			"Solana":                  "SOL",
		}
		for in, want := range cases {
			if got := n.Normalize(in); got != want {
				t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
			}
		}
	})

	t.Run("Unknown passes through stripped", func(t *testing.T) {
		if got := n.Normalize("Some-New Chain_2"); got != "SOMENEWCHAIN2" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("Empty input", func(t *testing.T) {
		if got := n.Normalize(""); got != "" {
			t.Errorf("expected empty, got %q", got)
		}
		if got := n.Normalize("  --  "); got != "" {
			t.Errorf("expected empty for punctuation-only, got %q", got)
		}
	})

	t.Run("Injected table", func(t *testing.T) {
		custom := NewNormalizer(map[string]string{"FOO": "BAR"})
		if got := custom.Normalize("f.o-o"); got != "BAR" {
			t.Errorf("expected BAR, got %q", got)
		}
		if got := custom.Normalize("ETH"); got != "ETH" {
			t.Errorf("custom table must not inherit defaults, got %q", got)
		}
	})
}

func TestNormalizer_CommonChainPairs(t *testing.T) {
	n := NewDefaultNormalizer()

	t.Run("Matches across spellings", func(t *testing.T) {
		pairs := n.CommonChainPairs([]string{"ERC20", "BSC"}, []string{"ETHEREUM", "BEP20"})
		if len(pairs) != 2 {
			t.Fatalf("expected 2 pairs, got %d: %+v", len(pairs), pairs)
		}
		// Sorted by canonical key: BEP20 before ERC20.
		if pairs[0].A != "BSC" || pairs[0].B != "BEP20" {
			t.Errorf("unexpected first pair: %+v", pairs[0])
		}
		if pairs[1].A != "ERC20" || pairs[1].B != "ETHEREUM" {
			t.Errorf("unexpected second pair: %+v", pairs[1])
		}
	})

	t.Run("First literal wins on canonical collision", func(t *testing.T) {
		pairs := n.CommonChainPairs([]string{"Ethereum", "ERC20"}, []string{"ETH"})
		if len(pairs) != 1 {
			t.Fatalf("expected 1 pair, got %d", len(pairs))
		}
		if pairs[0].A != "Ethereum" {
			t.Errorf("expected first literal 'Ethereum', got %q", pairs[0].A)
		}
	})

	t.Run("Disjoint sets", func(t *testing.T) {
		if pairs := n.CommonChainPairs([]string{"Tron"}, []string{"Solana"}); len(pairs) != 0 {
			t.Errorf("expected no pairs, got %+v", pairs)
		}
	})

	t.Run("Deterministic order", func(t *testing.T) {
		a := []string{"Solana", "Tron", "Ethereum", "BSC"}
		b := []string{"BEP20", "SOL", "TRC20", "ERC20"}
		first := n.CommonChainPairs(a, b)
		for i := 0; i < 10; i++ {
			again := n.CommonChainPairs(a, b)
			for j := range first {
				if first[j] != again[j] {
					t.Fatalf("pair order not deterministic at run %d", i)
				}
			}
		}
	})
}

func TestNormalizer_CommonChains(t *testing.T) {
	n := NewDefaultNormalizer()
	got := n.CommonChains([]string{"Ethereum", "Tron"}, []string{"TRC20", "ERC20"})
	if len(got) != 2 {
		t.Fatalf("expected 2 chains, got %v", got)
	}
	if got[0] != "Ethereum" || got[1] != "Tron" {
		t.Errorf("expected side-A literals ordered by canonical, got %v", got)
	}
}
