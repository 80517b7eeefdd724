package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/stitts-dev/draft-payout-sim/internal/projections"
	"github.com/stitts-dev/draft-payout-sim/internal/simulator"
	"github.com/stitts-dev/draft-payout-sim/pkg/utils"
)

// PlayerProjection is one row of the projection table
type PlayerProjection struct {
	Name   string  `json:"name"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
}

type ProjectionHandler struct {
	projections projections.Lookup
	payouts     simulator.PayoutTable
}

func NewProjectionHandler(lookup projections.Lookup, payouts simulator.PayoutTable) *ProjectionHandler {
	return &ProjectionHandler{
		projections: lookup,
		payouts:     payouts,
	}
}

// GetProjections returns the base projection table sorted by player name
func (h *ProjectionHandler) GetProjections(c *gin.Context) {
	names := h.projections.Names()
	players := make([]PlayerProjection, 0, len(names))
	for _, name := range names {
		p, _ := h.projections.Get(name)
		players = append(players, PlayerProjection{Name: name, Mean: p.Mean, StdDev: p.StdDev})
	}

	utils.SendSuccessWithMeta(c, players, &utils.Meta{Total: int64(len(players))})
}

// GetPayouts returns the prize schedule
func (h *ProjectionHandler) GetPayouts(c *gin.Context) {
	utils.SendSuccess(c, gin.H{
		"tiers":         h.payouts,
		"max_paid_rank": h.payouts.MaxPaidRank(),
	})
}
