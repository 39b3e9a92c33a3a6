// Package api implements AquaMind's External Interfaces (spec.md §6): the
// observation write API that feeds the Assimilation Engine via the Event
// Dispatcher, the live projection/forecast read API, and the scenario API
// that drives the Projection Engine.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/aquamind/growthengine/internal/database"
	"github.com/aquamind/growthengine/internal/dispatch"
	"github.com/aquamind/growthengine/pkg/forecast"
	"github.com/aquamind/growthengine/pkg/liveprojection"
	"github.com/aquamind/growthengine/pkg/model"
	"github.com/aquamind/growthengine/pkg/projection"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Server represents the API server
type Server struct {
	router *gin.Engine
	repo   *database.Repository
	port   string

	projection *projection.Engine
	live       *liveprojection.Engine
	forecast   *forecast.Engine
	dispatcher *dispatch.Dispatcher
}

// NewServer creates a new API server, wiring the observation write API to
// the dispatcher and the scenario API to the projection/live/forecast
// engines.
func NewServer(repo *database.Repository, port string, proj *projection.Engine, live *liveprojection.Engine, fc *forecast.Engine, disp *dispatch.Dispatcher) *Server {
	router := gin.Default()

	// Configure CORS
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"http://localhost:3000", "http://localhost:8080"}
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	router.Use(cors.New(config))

	server := &Server{
		router:     router,
		repo:       repo,
		port:       port,
		projection: proj,
		live:       live,
		forecast:   fc,
		dispatcher: disp,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.Group("/api/v1")

	// Bootstrap endpoints: batch/container/assignment creation has no
	// projection side effect of its own.
	api.POST("/batches", s.createBatch)
	api.POST("/containers", s.createContainer)
	api.POST("/assignments", s.createAssignment)

	// Observation write API (§6): each creates the row, then notifies the
	// dispatcher so the Assimilation Engine's recompute window is enqueued.
	api.POST("/growth_sample", s.createGrowthSample)
	api.POST("/transfer_action", s.createTransferAction)
	api.POST("/treatment", s.createTreatment)
	api.POST("/environmental_reading", s.createEnvironmentalReading)
	api.POST("/mortality_event", s.createMortalityEvent)

	// Scenario API (§6): drives the Projection Engine.
	api.POST("/scenario", s.createScenario)
	api.GET("/scenario/:id", s.getScenario)
	api.POST("/scenario/:id/run_projection", s.runProjection)
	api.POST("/scenario/:id/sensitivity", s.runSensitivity)

	// Live projection / forecast read API (§6).
	api.GET("/live_forward_projections", s.getLiveForwardProjections)
	api.POST("/live_forward_projections/recompute", s.recomputeLiveForwardProjections)
	api.GET("/container_forecast_summary", s.getForecastSummary)
	api.POST("/container_forecast_summary/recompute", s.recomputeForecastSummary)

	api.GET("/health", s.healthCheck)
}

// Start starts the server
func (s *Server) Start() error {
	return s.router.Run(":" + s.port)
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now(),
	})
}

func (s *Server) createBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b, err := s.repo.CreateBatch(c.Request.Context(), model.Batch{
		ExternalNumber: req.ExternalNumber,
		Species:        req.Species,
		StartDate:      req.StartDate,
		ActualEndDate:  req.ActualEndDate,
		Status:         model.BatchActive,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (s *Server) createContainer(c *gin.Context) {
	var req containerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ct, err := s.repo.CreateContainer(c.Request.Context(), model.Container{
		Name:           req.Name,
		GeographyTrail: req.GeographyTrail,
		Class:          model.ContainerClass(req.Class),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, ct)
}

func (s *Server) createAssignment(c *gin.Context) {
	var req assignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	a, err := s.repo.CreateAssignment(c.Request.Context(), model.Assignment{
		BatchID:         req.BatchID,
		ContainerID:     req.ContainerID,
		Stage:           model.LifecycleStage(req.Stage),
		AssignmentDate:  req.AssignmentDate,
		PopulationCount: req.PopulationCount,
		AvgWeightG:      req.AvgWeightG,
		BiomassKg:       float64(req.PopulationCount) * req.AvgWeightG / 1000.0,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, a)
}

// createGrowthSample implements `POST growth_sample` (§6): persists the
// measured-weight anchor, then notifies the dispatcher.
func (s *Server) createGrowthSample(c *gin.Context) {
	var req growthSampleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	gs, err := s.repo.CreateGrowthSample(c.Request.Context(), model.GrowthSample{
		AssignmentID: req.AssignmentID,
		SampleDate:   req.SampleDate,
		AvgWeightG:   req.AvgWeightG,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	s.dispatcher.OnGrowthSampleCreated(c.Request.Context(), gs.AssignmentID, gs.SampleDate)
	c.JSON(http.StatusCreated, gs)
}

// createTransferAction implements `POST transfer_action` (§6). Only a
// completed transfer carries an anchor (§4.4); the dispatcher only needs to
// know about the destination assignment's recompute window, so incomplete
// transfers are persisted without a dispatch notification.
func (s *Server) createTransferAction(c *gin.Context) {
	var req transferActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	selection := model.SelectionMethod(req.SelectionMethod)
	if selection == "" {
		selection = model.SelectionRandom
	}
	t, err := s.repo.CreateTransferAction(c.Request.Context(), model.TransferAction{
		SourceAssignmentID:      req.SourceAssignmentID,
		DestinationAssignmentID: req.DestinationAssignmentID,
		TransferDate:            req.TransferDate,
		Status:                  model.TransferStatus(req.Status),
		PopulationCount:         req.PopulationCount,
		MeasuredAvgWeightG:      req.MeasuredAvgWeightG,
		SelectionMethod:         selection,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if t.Status == model.TransferCompleted {
		s.dispatcher.OnTransferCompleted(c.Request.Context(), t.DestinationAssignmentID, t.TransferDate)
	}
	c.JSON(http.StatusCreated, t)
}

// createTreatment implements `POST treatment` (§6).
func (s *Server) createTreatment(c *gin.Context) {
	var req treatmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, err := s.repo.CreateTreatment(c.Request.Context(), model.Treatment{
		AssignmentID:       req.AssignmentID,
		TreatmentDate:      req.TreatmentDate,
		IncludesWeighing:   req.IncludesWeighing,
		MeasuredAvgWeightG: req.MeasuredAvgWeightG,
		LiceCount:          req.LiceCount,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	s.dispatcher.OnTreatmentCreated(c.Request.Context(), t.AssignmentID, t.TreatmentDate, t.IncludesWeighing)
	c.JSON(http.StatusCreated, t)
}

// createEnvironmentalReading implements `POST environmental_reading` (§6).
// Readings feed the Assimilation Engine's temperature preload and the Live
// Projection Engine's bias window, but don't themselves trigger a recompute.
func (s *Server) createEnvironmentalReading(c *gin.Context) {
	var req environmentalReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	er, err := s.repo.CreateEnvironmentalReading(c.Request.Context(), model.EnvironmentalReading{
		ContainerID: req.ContainerID,
		Parameter:   req.Parameter,
		Value:       req.Value,
		RecordedAt:  req.RecordedAt,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, er)
}

// createMortalityEvent implements `POST mortality_event` (§6).
func (s *Server) createMortalityEvent(c *gin.Context) {
	var req mortalityEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	m, err := s.repo.CreateMortalityEvent(c.Request.Context(), model.MortalityEvent{
		BatchID:     req.BatchID,
		ContainerID: req.ContainerID,
		EventDate:   req.EventDate,
		Count:       req.Count,
		BiomassKg:   req.BiomassKg,
		Cause:       model.MortalityCause(req.Cause),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	s.dispatcher.OnMortalityEventCreated(c.Request.Context(), m.BatchID, m.EventDate)
	c.JSON(http.StatusCreated, m)
}

// createScenario implements `POST scenario` (§6).
func (s *Server) createScenario(c *gin.Context) {
	var req scenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var constraints *model.BiologicalConstraints
	if req.BiologicalConstraints != nil {
		constraints = &model.BiologicalConstraints{
			HarvestThresholdG:  req.BiologicalConstraints.HarvestThresholdG,
			TransferThresholdG: req.BiologicalConstraints.TransferThresholdG,
		}
	}
	changes := make([]model.ScenarioModelChange, len(req.ModelChanges))
	for i, mc := range req.ModelChanges {
		changes[i] = model.ScenarioModelChange{
			ChangeDay:        mc.ChangeDay,
			TGCModelID:       mc.TGCModelID,
			FCRModelID:       mc.FCRModelID,
			MortalityModelID: mc.MortalityModelID,
		}
	}
	initialStage := model.LifecycleStage(req.InitialStage)
	if initialStage == "" {
		initialStage = model.StageEgg
	}

	sc, err := s.repo.CreateScenario(c.Request.Context(), model.Scenario{
		Name:                  req.Name,
		StartDate:             req.StartDate,
		DurationDays:          req.DurationDays,
		InitialCount:          req.InitialCount,
		InitialWeightG:        req.InitialWeightG,
		TGCModelID:            req.TGCModelID,
		FCRModelID:            req.FCRModelID,
		MortalityModelID:      req.MortalityModelID,
		BiologicalConstraints: constraints,
		BatchID:               req.BatchID,
		InitialStage:          initialStage,
		ModelChanges:          changes,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, sc)
}

func (s *Server) getScenario(c *gin.Context) {
	sc, err := s.repo.GetScenario(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "scenario not found"})
		return
	}
	c.JSON(http.StatusOK, sc)
}

// runProjection implements `POST scenario/{id}/run_projection` (§6).
func (s *Server) runProjection(c *gin.Context) {
	rows, summary, result := s.projection.RunProjection(c.Request.Context(), c.Param("id"))
	if !result.Success {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": result.Errors})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"projections": rows,
		"summary":     summary,
		"warnings":    result.Warnings,
	})
}

// runSensitivity implements `POST scenario/{id}/sensitivity` (§6).
func (s *Server) runSensitivity(c *gin.Context) {
	var req sensitivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	summaries, result := s.projection.Sensitivity(c.Request.Context(), c.Param("id"), req.Parameter, req.Variations)
	if !result.Success && len(summaries) == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": result.Errors})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"summaries": summaries,
		"errors":    result.Errors,
		"warnings":  result.Warnings,
	})
}

// getLiveForwardProjections implements `GET live_forward_projections` (§6):
// an explicit computed_date query parameter selects a historical run;
// without it, the most recent computed_date's rows are returned.
func (s *Server) getLiveForwardProjections(c *gin.Context) {
	assignmentID := c.Query("assignment_id")
	if assignmentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "assignment_id is required"})
		return
	}
	var computedDate *time.Time
	if raw := c.Query("computed_date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid computed_date, expected YYYY-MM-DD"})
			return
		}
		computedDate = &parsed
	}
	rows, err := s.repo.GetLiveForwardProjections(c.Request.Context(), assignmentID, computedDate)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rows)
}

// recomputeLiveForwardProjections lets a caller force a Live Projection
// Engine run on demand, outside the scheduler's periodic catch-up.
func (s *Server) recomputeLiveForwardProjections(c *gin.Context) {
	assignmentID := c.Query("assignment_id")
	if assignmentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "assignment_id is required"})
		return
	}
	rows, result := s.live.Run(c.Request.Context(), assignmentID, time.Now())
	if !result.Success {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": result.Errors})
		return
	}
	c.JSON(http.StatusOK, gin.H{"projections": rows, "skipped": result.Skipped, "warnings": result.Warnings})
}

// getForecastSummary implements `GET container_forecast_summary` (§6):
// returns the stored rollup without recomputing it.
func (s *Server) getForecastSummary(c *gin.Context) {
	assignmentID := c.Query("assignment_id")
	if assignmentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "assignment_id is required"})
		return
	}
	summary, err := s.repo.GetForecastSummary(c.Request.Context(), assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no forecast summary for assignment"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// recomputeForecastSummary forces a Forecast Summarizer run on demand.
func (s *Server) recomputeForecastSummary(c *gin.Context) {
	assignmentID := c.Query("assignment_id")
	if assignmentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "assignment_id is required"})
		return
	}
	summary, result := s.forecast.Summarize(c.Request.Context(), assignmentID, time.Now())
	if !result.Success {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": result.Errors})
		return
	}
	c.JSON(http.StatusOK, summary)
}
