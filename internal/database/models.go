package database

import (
	"time"
)

// Batch is the GORM-mapped cohort record (pkg/model.Batch).
type Batch struct {
	ID                    string `gorm:"primaryKey"`
	ExternalNumber        string
	Species               string
	StartDate             time.Time
	ActualEndDate         *time.Time
	Status                string
	PinnedScenarioID      *string `gorm:"index"`
	PinnedProjectionRunID *string
}

// Container is the GORM-mapped holding-unit record (pkg/model.Container).
// GeographyTrail is stored as a JSON-encoded string array.
type Container struct {
	ID             string `gorm:"primaryKey"`
	Name           string
	GeographyTrail string // JSON []string
	Class          string
}

// Assignment is the GORM-mapped (batch, container, stage) record
// (pkg/model.Assignment).
type Assignment struct {
	ID                         string `gorm:"primaryKey"`
	BatchID                    string `gorm:"index"`
	ContainerID                string `gorm:"index"`
	Stage                      string
	AssignmentDate             time.Time
	DepartureDate              *time.Time
	PopulationCount            int64
	AvgWeightG                 float64
	BiomassKg                  float64
	TransferSourceAssignmentID *string
	TransferMeasuredWeightG    *float64
}

// GrowthSample is the GORM-mapped measured-weight anchor record
// (pkg/model.GrowthSample).
type GrowthSample struct {
	ID           string `gorm:"primaryKey"`
	AssignmentID string `gorm:"index"`
	SampleDate   time.Time
	AvgWeightG   *float64
}

// TransferAction is the GORM-mapped transfer record (pkg/model.TransferAction).
type TransferAction struct {
	ID                      string `gorm:"primaryKey"`
	SourceAssignmentID      string `gorm:"index"`
	DestinationAssignmentID string `gorm:"index"`
	TransferDate            time.Time
	Status                  string
	PopulationCount         int64
	MeasuredAvgWeightG      *float64
	SelectionMethod         string
}

// Treatment is the GORM-mapped health-intervention record
// (pkg/model.Treatment).
type Treatment struct {
	ID                 string `gorm:"primaryKey"`
	AssignmentID       string `gorm:"index"`
	TreatmentDate      time.Time
	IncludesWeighing   bool
	MeasuredAvgWeightG *float64
	LiceCount          *float64
}

// EnvironmentalReading is the GORM-mapped sensor record
// (pkg/model.EnvironmentalReading).
type EnvironmentalReading struct {
	ID          string `gorm:"primaryKey"`
	ContainerID string `gorm:"index"`
	Parameter   string `gorm:"index"`
	Value       float64
	RecordedAt  time.Time `gorm:"index"`
}

// MortalityEvent is the GORM-mapped die-off record (pkg/model.MortalityEvent).
type MortalityEvent struct {
	ID          string `gorm:"primaryKey"`
	BatchID     string `gorm:"index"`
	ContainerID *string
	EventDate   time.Time
	Count       int64
	BiomassKg   float64
	Cause       string
}

// FeedingEvent is the GORM-mapped feed-delivery record
// (pkg/model.FeedingEvent).
type FeedingEvent struct {
	ID             string `gorm:"primaryKey"`
	ContainerID    string `gorm:"index"`
	AssignmentID   string `gorm:"index"`
	FeedingDate    time.Time
	AmountKg       float64
	BatchBiomassKg float64
}

// ActualDailyAssignmentState is the GORM-mapped Assimilation Engine output
// row (pkg/model.ActualDailyAssignmentState). Sources/confidence are
// flattened to JSON-encoded maps at this storage boundary, per §9's
// provenance re-architecture.
type ActualDailyAssignmentState struct {
	AssignmentID     string    `gorm:"primaryKey;index:idx_actual_state_assignment_date,unique"`
	Date             time.Time `gorm:"primaryKey;index:idx_actual_state_assignment_date,unique"`
	BatchID          string    `gorm:"index"`
	ContainerID      string
	Stage            string
	DayNumber        int
	AvgWeightG       float64
	Population       int64
	BiomassKg        float64
	TempC            *float64
	MortalityCount   int64
	FeedKg           float64
	ObservedFCR      *float64
	AnchorType       *string
	Sources          string // JSON map[string]string
	ConfidenceScores string // JSON map[string]float64
}

// TGCModel is the GORM-mapped Thermal Growth Coefficient model
// (pkg/model.TGCModel). StageOverrides is JSON-encoded.
type TGCModel struct {
	ID                  string `gorm:"primaryKey"`
	Name                string
	TGCValue            float64
	TemperatureExponent float64
	WeightExponent      float64
	ProfileID           string
	StageOverrides      string // JSON []model.TGCModelOverride
}

// FCRModel is the GORM-mapped Feed Conversion Ratio model
// (pkg/model.FCRModel). Stages and Overrides are JSON-encoded.
type FCRModel struct {
	ID        string `gorm:"primaryKey"`
	Name      string
	Stages    string // JSON []model.FCRStageEntry
	Overrides string // JSON []model.FCRWeightBandOverride
}

// MortalityModel is the GORM-mapped attrition model
// (pkg/model.MortalityModel). StageOverrides is JSON-encoded.
type MortalityModel struct {
	ID              string `gorm:"primaryKey"`
	Name            string
	Frequency       string
	BaseRatePercent float64
	StageOverrides  string // JSON []model.MortalityStageOverride
}

// TemperatureProfile is the GORM-mapped day_number-keyed profile
// (pkg/model.TemperatureProfile). Readings is JSON-encoded.
type TemperatureProfile struct {
	ID       string `gorm:"primaryKey"`
	Name     string
	Readings string // JSON []model.TemperatureReading
}

// StageConstraint is the GORM-mapped per-stage weight band
// (pkg/model.StageConstraint).
type StageConstraint struct {
	Stage               string `gorm:"primaryKey"`
	MinWeightG          float64
	MaxWeightG          float64
	TypicalDurationDays int
}

// Scenario is the GORM-mapped forward-simulation template
// (pkg/model.Scenario). BiologicalConstraints and ModelChanges are
// JSON-encoded.
type Scenario struct {
	ID                    string `gorm:"primaryKey"`
	Name                  string
	StartDate             time.Time
	DurationDays          int
	InitialCount          int64
	InitialWeightG        float64
	TGCModelID            string
	FCRModelID            string
	MortalityModelID      string
	BiologicalConstraints string // JSON model.BiologicalConstraints, "" when unset
	BatchID               *string `gorm:"index"`
	InitialStage          string
	ModelChanges          string // JSON []model.ScenarioModelChange
}

// ScenarioProjection is the GORM-mapped per-day projection row
// (pkg/model.ScenarioProjection).
type ScenarioProjection struct {
	ScenarioID       string    `gorm:"primaryKey;index:idx_projection_scenario_date,unique"`
	ProjectionDate   time.Time `gorm:"primaryKey;index:idx_projection_scenario_date,unique"`
	DayNumber        int
	AvgWeightG       float64
	Population       int64
	BiomassKg        float64
	DailyFeedKg      float64
	CumulativeFeedKg float64
	TempC            float64
	Stage            string
}

// LiveForwardProjection is the GORM-mapped live forward-projection row
// (pkg/model.LiveForwardProjection). Bias is JSON-encoded.
type LiveForwardProjection struct {
	AssignmentID   string    `gorm:"primaryKey;index:idx_live_projection_key,unique"`
	ComputedDate   time.Time `gorm:"primaryKey;index:idx_live_projection_key,unique"`
	ProjectionDate time.Time `gorm:"primaryKey;index:idx_live_projection_key,unique"`
	AvgWeightG     float64
	Population     int64
	BiomassKg      float64
	TempC          float64
	TGCUsed        float64
	Stage          string
	Bias           string // JSON model.TemperatureBiasProvenance
}

// ContainerForecastSummary is the GORM-mapped per-assignment planning rollup
// (pkg/model.ContainerForecastSummary). Bias is JSON-encoded.
type ContainerForecastSummary struct {
	AssignmentID string `gorm:"primaryKey"`

	CurrentDate       time.Time
	CurrentAvgWeightG float64
	CurrentPopulation int64
	CurrentBiomassKg  float64
	CurrentStage      string

	ProjectedHarvestDate    *time.Time
	ProjectedHarvestWeightG *float64
	DaysToHarvest           *int

	ProjectedTransferDate    *time.Time
	ProjectedTransferWeightG *float64
	DaysToTransfer           *int

	OriginalPlannedHarvestDate *time.Time
	HarvestVarianceDays        *int

	HasPlannedHarvest  bool
	HasPlannedTransfer bool

	NeedsPlanningAttention bool
	StateConfidence        float64
	Bias                   string

	LastComputedAt time.Time
}

// RecomputeTask is the GORM-backed durable queue row for internal/dispatch
// and internal/scheduler's enqueued recompute windows. A table-backed queue
// survives process restarts, unlike the dispatcher's in-memory dedup cache.
type RecomputeTask struct {
	ID           uint `gorm:"primaryKey"`
	AssignmentID string
	BatchID      string
	WindowStart  time.Time
	WindowEnd    time.Time
	Status       string // pending, done, failed
	CreatedAt    time.Time
	ProcessedAt  *time.Time
	Error        string
}
