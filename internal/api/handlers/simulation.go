package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/draft-payout-sim/internal/projections"
	"github.com/stitts-dev/draft-payout-sim/internal/roster"
	"github.com/stitts-dev/draft-payout-sim/internal/services"
	"github.com/stitts-dev/draft-payout-sim/internal/simulator"
	"github.com/stitts-dev/draft-payout-sim/pkg/config"
	"github.com/stitts-dev/draft-payout-sim/pkg/utils"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type SimulationHandler struct {
	service *services.SimulationService
	export  *services.ExportService
	config  *config.Config
	logger  *logrus.Logger
}

func NewSimulationHandler(
	service *services.SimulationService,
	export *services.ExportService,
	cfg *config.Config,
	logger *logrus.Logger,
) *SimulationHandler {
	return &SimulationHandler{
		service: service,
		export:  export,
		config:  cfg,
		logger:  logger,
	}
}

// simulateForm holds the non-file fields of the multipart upload
type simulateForm struct {
	NumSimulations string `form:"num_simulations"`
	ClientID       string `form:"client_id"`
}

// RunSimulation simulates an uploaded draft with optional projection overrides
func (h *SimulationHandler) RunSimulation(c *gin.Context) {
	if h.config.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.config.MaxUploadBytes)
	}

	var form simulateForm
	if err := c.ShouldBind(&form); err != nil {
		utils.SendValidationError(c, "Invalid request form", err.Error())
		return
	}

	draftFile, err := c.FormFile("draft_file")
	if err != nil {
		utils.SendValidationError(c, "draft_file is required", err.Error())
		return
	}

	draft, err := readDraft(draftFile)
	if err != nil {
		utils.SendSimulationError(c, err)
		return
	}

	var overrides []projections.Override
	if projectionsFile, err := c.FormFile("projections_file"); err == nil {
		overrides, err = readOverrides(projectionsFile)
		if err != nil {
			utils.SendSimulationError(c, err)
			return
		}
	} else if !errors.Is(err, http.ErrMissingFile) {
		utils.SendValidationError(c, "Invalid projections_file", err.Error())
		return
	}

	numSimulations := h.config.DefaultSimulations
	if form.NumSimulations != "" {
		if numSimulations, err = simulator.ParseSimulationCount(form.NumSimulations); err != nil {
			utils.SendSimulationError(c, err)
			return
		}
	}

	result, err := h.service.Simulate(c.Request.Context(), services.SimulationRequest{
		Draft:          draft,
		Overrides:      overrides,
		NumSimulations: numSimulations,
		ClientID:       form.ClientID,
	})
	if err != nil {
		h.logger.WithError(err).Warn("Simulation request failed")
		utils.SendSimulationError(c, err)
		return
	}

	utils.SendSuccess(c, result)
}

// ListSimulations returns recent completed runs
func (h *SimulationHandler) ListSimulations(c *gin.Context) {
	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			utils.SendValidationError(c, "Invalid limit", fmt.Sprintf("limit must be a positive integer, got %q", raw))
			return
		}
		limit = min(parsed, maxListLimit)
	}

	runs, err := h.service.ListRuns(c.Request.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list simulation runs")
		utils.SendInternalError(c, "Failed to list simulation runs")
		return
	}

	utils.SendSuccessWithMeta(c, runs, &utils.Meta{Total: int64(len(runs)), Limit: limit})
}

// GetSimulation returns one completed run
func (h *SimulationHandler) GetSimulation(c *gin.Context) {
	result, err := h.service.GetResult(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrRunNotFound) {
			utils.SendNotFound(c, "Simulation run not found")
			return
		}
		h.logger.WithError(err).Error("Failed to load simulation run")
		utils.SendInternalError(c, "Failed to load simulation run")
		return
	}

	utils.SendSuccess(c, result)
}

// ExportSimulation downloads a completed run as Team,Average_Payout CSV
func (h *SimulationHandler) ExportSimulation(c *gin.Context) {
	result, err := h.service.GetResult(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrRunNotFound) {
			utils.SendNotFound(c, "Simulation run not found")
			return
		}
		h.logger.WithError(err).Error("Failed to load simulation run")
		utils.SendInternalError(c, "Failed to load simulation run")
		return
	}

	data, err := h.export.ResultsCSV(result.Teams)
	if err != nil {
		h.logger.WithError(err).Error("Failed to export simulation run")
		utils.SendInternalError(c, "Failed to export simulation run")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", services.ResultsFileName))
	c.Data(http.StatusOK, "text/csv", data)
}

func readDraft(fh *multipart.FileHeader) (roster.Table, error) {
	f, err := fh.Open()
	if err != nil {
		return roster.Table{}, fmt.Errorf("%w: failed to open draft_file: %v", utils.ErrInvalidInput, err)
	}
	defer f.Close()

	return roster.ReadCSV(f)
}

func readOverrides(fh *multipart.FileHeader) ([]projections.Override, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open projections_file: %v", utils.ErrInvalidInput, err)
	}
	defer f.Close()

	return projections.ReadOverridesCSV(f)
}
