package model

import "time"

// BatchStatus is the lifecycle status of a Batch.
type BatchStatus string

const (
	BatchActive    BatchStatus = "ACTIVE"
	BatchCompleted BatchStatus = "COMPLETED"
)

// Batch is an identifiable cohort of fish.
type Batch struct {
	ID                 string
	ExternalNumber     string
	Species            string
	StartDate          time.Time
	ActualEndDate      *time.Time
	Status             BatchStatus
	PinnedScenarioID   *string
	PinnedProjectionRunID *string
}

// ContainerClass distinguishes freshwater from seawater holding units.
type ContainerClass string

const (
	ContainerFreshwater ContainerClass = "FRESHWATER"
	ContainerSeawater   ContainerClass = "SEAWATER"
)

// Container is a physical holding unit with a geography trail.
type Container struct {
	ID           string
	Name         string
	GeographyTrail []string // e.g. [hall, station, geography] or [area, geography]
	Class        ContainerClass
}

// Assignment is a (batch, container, stage) triple, the unit the
// Assimilation/Projection/Live Projection/Forecast engines all key off.
type Assignment struct {
	ID             string
	BatchID        string
	ContainerID    string
	Stage          LifecycleStage
	AssignmentDate time.Time
	DepartureDate  *time.Time
	PopulationCount int64
	AvgWeightG     float64
	BiomassKg      float64

	// TransferSourceAssignmentID is set when this assignment was created as
	// the destination of a completed transfer; nil otherwise. Used by
	// bootstrap weight-priority resolution (§4.5.2) — never via an in-memory
	// back-pointer, only by ID, per §9's cyclic-reference note.
	TransferSourceAssignmentID *string
	TransferMeasuredWeightG    *float64
}

// IsActive reports whether the assignment has not yet departed.
func (a Assignment) IsActive() bool {
	return a.DepartureDate == nil
}

// Biomass returns population_count * avg_weight_g / 1000.
func (a Assignment) Biomass() float64 {
	return float64(a.PopulationCount) * a.AvgWeightG / 1000.0
}

// AnchorType identifies the source of a weight anchor.
type AnchorType string

const (
	AnchorGrowthSample AnchorType = "GROWTH_SAMPLE"
	AnchorTransfer     AnchorType = "TRANSFER"
	AnchorTreatment    AnchorType = "TREATMENT_WEIGHING"
)

// SelectionMethod is the sampling bias applied to transfer-measured weight.
type SelectionMethod string

const (
	SelectionLargest  SelectionMethod = "LARGEST"
	SelectionSmallest SelectionMethod = "SMALLEST"
	SelectionRandom   SelectionMethod = "RANDOM"
)

// GrowthSample is a measured average weight anchor (priority 1).
type GrowthSample struct {
	ID           string
	AssignmentID string
	SampleDate   time.Time
	AvgWeightG   *float64
}

// TransferStatus mirrors the external transfer workflow's completion state.
type TransferStatus string

const (
	TransferPending   TransferStatus = "PENDING"
	TransferCompleted TransferStatus = "COMPLETED"
)

// TransferAction moves population between assignments, optionally carrying a
// measured weight anchor (priority 2, §4.4).
type TransferAction struct {
	ID                    string
	SourceAssignmentID    string
	DestinationAssignmentID string
	TransferDate          time.Time
	Status                TransferStatus
	PopulationCount       int64
	MeasuredAvgWeightG    *float64
	SelectionMethod       SelectionMethod
}

// Treatment represents a health intervention, optionally including a
// weighing event (priority 3 anchor, §4.4).
type Treatment struct {
	ID               string
	AssignmentID     string
	TreatmentDate    time.Time
	IncludesWeighing bool
	MeasuredAvgWeightG *float64
	LiceCount        *float64 // supplemented from original_source health domain; not itself projected
}

// EnvironmentalReading is a timestamped sensor reading.
type EnvironmentalReading struct {
	ID          string
	ContainerID string
	Parameter   string // e.g. "temperature"
	Value       float64
	RecordedAt  time.Time
}

// MortalityCause classifies a mortality event.
type MortalityCause string

// MortalityEvent records a die-off for a batch, optionally scoped to one
// container (§4.5.5).
type MortalityEvent struct {
	ID          string
	BatchID     string
	ContainerID *string
	EventDate   time.Time
	Count       int64
	BiomassKg   float64
	Cause       MortalityCause
}

// FeedingEvent records feed delivered to a container on behalf of an
// assignment.
type FeedingEvent struct {
	ID                 string
	ContainerID        string
	AssignmentID        string
	FeedingDate        time.Time
	AmountKg           float64
	BatchBiomassKg     float64
}

// ActualDailyAssignmentState is the assimilation engine's output: one row per
// (assignment, date).
type ActualDailyAssignmentState struct {
	AssignmentID   string
	BatchID        string
	ContainerID    string
	Stage          LifecycleStage
	Date           time.Time
	DayNumber      int // 1-based from batch start
	AvgWeightG     float64
	Population     int64
	BiomassKg      float64
	TempC          *float64
	MortalityCount int64
	FeedKg         float64
	ObservedFCR    *float64
	AnchorType     *AnchorType
	Provenance     Provenance
}

// TGCModelOverride is a per-stage override of the TGC value.
type TGCModelOverride struct {
	Stage    LifecycleStage
	TGCValue float64
}

// TGCModel parameterizes the Thermal Growth Coefficient calculator.
type TGCModel struct {
	ID                 string
	Name               string
	TGCValue           float64
	TemperatureExponent float64 // n
	WeightExponent      float64 // m
	ProfileID          string
	StageOverrides     []TGCModelOverride
}

// FCRStageEntry maps a lifecycle stage to its default FCR and typical
// duration, used both for feed calculation and time-based stage transitions
// in the Projection/Live Projection engines (§4.6).
type FCRStageEntry struct {
	Stage        LifecycleStage
	FCRValue     float64
	DurationDays int
}

// FCRWeightBandOverride overrides FCR within a weight band for a stage.
type FCRWeightBandOverride struct {
	Stage      LifecycleStage
	MinWeightG float64
	MaxWeightG float64
	FCRValue   float64
}

// FCRModel parameterizes the Feed Conversion Ratio calculator.
type FCRModel struct {
	ID        string
	Name      string
	Stages    []FCRStageEntry
	Overrides []FCRWeightBandOverride
}

// MortalityFrequency is the rate basis a MortalityModel is expressed in.
type MortalityFrequency string

const (
	MortalityDaily  MortalityFrequency = "daily"
	MortalityWeekly MortalityFrequency = "weekly"
)

// MortalityStageOverride overrides the base rate for one stage, expressed in
// either a daily or weekly percentage (exactly one set).
type MortalityStageOverride struct {
	Stage             LifecycleStage
	DailyRatePercent  *float64
	WeeklyRatePercent *float64
}

// MortalityModel parameterizes the Mortality calculator.
type MortalityModel struct {
	ID               string
	Name             string
	Frequency        MortalityFrequency
	BaseRatePercent  float64
	StageOverrides   []MortalityStageOverride
}

// TemperatureReading is a single day_number-keyed reading in a profile. Keyed
// by day_number, NOT calendar date — the critical reusability invariant of
// §9.
type TemperatureReading struct {
	DayNumber int
	TempC     float64
}

// TemperatureProfile is an identified, reusable day-indexed series.
type TemperatureProfile struct {
	ID       string
	Name     string
	Readings []TemperatureReading // sorted by DayNumber
}

// BiologicalConstraints optionally overrides harvest/transfer thresholds for
// a scenario (§4.8).
type BiologicalConstraints struct {
	HarvestThresholdG  *float64
	TransferThresholdG *float64
}

// ScenarioModelChange swaps a calculator mid-projection (§4.6).
type ScenarioModelChange struct {
	ChangeDay       int // 1-based day within the scenario, >= 1
	TGCModelID      *string
	FCRModelID      *string
	MortalityModelID *string
}

// Scenario is a forward-simulation template.
type Scenario struct {
	ID                    string
	Name                  string
	StartDate             time.Time
	DurationDays          int
	InitialCount          int64
	InitialWeightG        float64
	TGCModelID            string
	FCRModelID            string
	MortalityModelID      string
	BiologicalConstraints *BiologicalConstraints
	BatchID               *string
	InitialStage          LifecycleStage // defaults to StageEgg when empty
	ModelChanges          []ScenarioModelChange
}

// ScenarioProjection is one per-day row of a projection run's output.
type ScenarioProjection struct {
	ScenarioID     string
	ProjectionDate time.Time
	DayNumber      int
	AvgWeightG     float64
	Population     int64
	BiomassKg      float64
	DailyFeedKg    float64
	CumulativeFeedKg float64
	TempC          float64
	Stage          LifecycleStage
}

// TemperatureBiasProvenance records how a live projection's temperature bias
// correction was derived (§4.7.2).
type TemperatureBiasProvenance struct {
	RawBiasC     float64
	ClampedBiasC float64
	ClampMinC    float64
	ClampMaxC    float64
	WindowDays   int
	DaysUsed     int
	ProfileID    string
	ProfileName  string
}

// LiveForwardProjection is a per-(assignment, computed_date, projection_date)
// forward row (§4.7).
type LiveForwardProjection struct {
	AssignmentID   string
	ComputedDate   time.Time
	ProjectionDate time.Time
	AvgWeightG     float64
	Population     int64
	BiomassKg      float64
	TempC          float64
	TGCUsed        float64
	Stage          LifecycleStage
	Bias           TemperatureBiasProvenance
}

// ContainerForecastSummary is the per-assignment planning rollup (§4.8).
type ContainerForecastSummary struct {
	AssignmentID string

	CurrentDate       time.Time
	CurrentAvgWeightG float64
	CurrentPopulation int64
	CurrentBiomassKg  float64
	CurrentStage      LifecycleStage

	ProjectedHarvestDate  *time.Time
	ProjectedHarvestWeightG *float64
	DaysToHarvest         *int

	ProjectedTransferDate  *time.Time
	ProjectedTransferWeightG *float64
	DaysToTransfer         *int

	OriginalPlannedHarvestDate *time.Time
	HarvestVarianceDays        *int

	HasPlannedHarvest  bool
	HasPlannedTransfer bool

	NeedsPlanningAttention bool
	StateConfidence        float64
	Bias                   TemperatureBiasProvenance

	LastComputedAt time.Time
}

// Default thresholds for harvest/transfer crossings, used when biological
// constraints don't override them (§4.8).
const (
	DefaultHarvestThresholdG  = 5000.0
	DefaultTransferThresholdG = 100.0
)
