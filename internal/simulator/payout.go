package simulator

// PayoutTier pays Payout to every rank in [MinRank, MaxRank].
type PayoutTier struct {
	MinRank int     `json:"min_rank"`
	MaxRank int     `json:"max_rank"`
	Payout  float64 `json:"payout"`
}

// PayoutTable is an ordered, non-overlapping list of tiers. Ranks outside
// every tier pay nothing.
type PayoutTable []PayoutTier

// DefaultPayoutTable is the prize schedule of the best-ball tournament.
var DefaultPayoutTable = PayoutTable{
	{MinRank: 1, MaxRank: 1, Payout: 20000},
	{MinRank: 2, MaxRank: 2, Payout: 6000},
	{MinRank: 3, MaxRank: 3, Payout: 3000},
	{MinRank: 4, MaxRank: 4, Payout: 1500},
	{MinRank: 5, MaxRank: 5, Payout: 1000},
	{MinRank: 6, MaxRank: 6, Payout: 500},
	{MinRank: 7, MaxRank: 8, Payout: 250},
	{MinRank: 9, MaxRank: 10, Payout: 200},
	{MinRank: 11, MaxRank: 15, Payout: 175},
	{MinRank: 16, MaxRank: 20, Payout: 150},
	{MinRank: 21, MaxRank: 25, Payout: 125},
	{MinRank: 26, MaxRank: 35, Payout: 100},
	{MinRank: 36, MaxRank: 45, Payout: 75},
	{MinRank: 46, MaxRank: 70, Payout: 60},
	{MinRank: 71, MaxRank: 130, Payout: 50},
	{MinRank: 131, MaxRank: 250, Payout: 40},
	{MinRank: 251, MaxRank: 710, Payout: 30},
}

// Payout returns the prize for a 1-based rank.
func (pt PayoutTable) Payout(rank int) float64 {
	if rank < 1 {
		return 0
	}
	for _, tier := range pt {
		if rank >= tier.MinRank && rank <= tier.MaxRank {
			return tier.Payout
		}
	}
	return 0
}

// MaxPaidRank returns the worst rank that still pays.
func (pt PayoutTable) MaxPaidRank() int {
	maxRank := 0
	for _, tier := range pt {
		if tier.Payout > 0 && tier.MaxRank > maxRank {
			maxRank = tier.MaxRank
		}
	}
	return maxRank
}

// Total returns the prize money handed out in one trial with the given
// number of teams.
func (pt PayoutTable) Total(teams int) float64 {
	total := 0.0
	for rank := 1; rank <= teams; rank++ {
		total += pt.Payout(rank)
	}
	return total
}

// byRank expands the table into a slice indexed by rank-1 for the first
// n ranks.
func (pt PayoutTable) byRank(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = pt.Payout(i + 1)
	}
	return out
}
