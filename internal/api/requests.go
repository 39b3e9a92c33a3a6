package api

import "time"

// The request/response types below carry explicit json tags for the
// observation write API (§6); pkg/model stays a storage-agnostic domain
// layer with no wire-format concerns of its own.

type batchRequest struct {
	ExternalNumber string     `json:"external_number" binding:"required"`
	Species        string     `json:"species" binding:"required"`
	StartDate      time.Time  `json:"start_date" binding:"required"`
	ActualEndDate  *time.Time `json:"actual_end_date"`
}

type containerRequest struct {
	Name           string   `json:"name" binding:"required"`
	GeographyTrail []string `json:"geography_trail"`
	Class          string   `json:"class" binding:"required"`
}

type assignmentRequest struct {
	BatchID         string    `json:"batch_id" binding:"required"`
	ContainerID     string    `json:"container_id" binding:"required"`
	Stage           string    `json:"stage" binding:"required"`
	AssignmentDate  time.Time `json:"assignment_date" binding:"required"`
	PopulationCount int64     `json:"population_count" binding:"required"`
	AvgWeightG      float64   `json:"avg_weight_g" binding:"required"`
}

type growthSampleRequest struct {
	AssignmentID string    `json:"assignment_id" binding:"required"`
	SampleDate   time.Time `json:"sample_date" binding:"required"`
	AvgWeightG   *float64  `json:"avg_weight_g" binding:"required"`
}

type transferActionRequest struct {
	SourceAssignmentID      string    `json:"source_assignment_id" binding:"required"`
	DestinationAssignmentID string    `json:"destination_assignment_id" binding:"required"`
	TransferDate            time.Time `json:"transfer_date" binding:"required"`
	Status                  string    `json:"status" binding:"required"`
	PopulationCount         int64     `json:"population_count" binding:"required"`
	MeasuredAvgWeightG      *float64  `json:"measured_avg_weight_g"`
	SelectionMethod         string    `json:"selection_method"`
}

type treatmentRequest struct {
	AssignmentID       string    `json:"assignment_id" binding:"required"`
	TreatmentDate      time.Time `json:"treatment_date" binding:"required"`
	IncludesWeighing   bool      `json:"includes_weighing"`
	MeasuredAvgWeightG *float64  `json:"measured_avg_weight_g"`
	LiceCount          *float64  `json:"lice_count"`
}

type environmentalReadingRequest struct {
	ContainerID string    `json:"container_id" binding:"required"`
	Parameter   string    `json:"parameter" binding:"required"`
	Value       float64   `json:"value" binding:"required"`
	RecordedAt  time.Time `json:"recorded_at" binding:"required"`
}

type mortalityEventRequest struct {
	BatchID     string    `json:"batch_id" binding:"required"`
	ContainerID *string   `json:"container_id"`
	EventDate   time.Time `json:"event_date" binding:"required"`
	Count       int64     `json:"count" binding:"required"`
	BiomassKg   float64   `json:"biomass_kg"`
	Cause       string    `json:"cause"`
}

type tgcOverrideRequest struct {
	Stage    string  `json:"stage"`
	TGCValue float64 `json:"tgc_value"`
}

type modelChangeRequest struct {
	ChangeDay        int     `json:"change_day" binding:"required"`
	TGCModelID       *string `json:"tgc_model_id"`
	FCRModelID       *string `json:"fcr_model_id"`
	MortalityModelID *string `json:"mortality_model_id"`
}

type biologicalConstraintsRequest struct {
	HarvestThresholdG  *float64 `json:"harvest_threshold_g"`
	TransferThresholdG *float64 `json:"transfer_threshold_g"`
}

type scenarioRequest struct {
	Name                  string                        `json:"name" binding:"required"`
	StartDate             time.Time                     `json:"start_date" binding:"required"`
	DurationDays          int                           `json:"duration_days" binding:"required"`
	InitialCount          int64                         `json:"initial_count" binding:"required"`
	InitialWeightG        float64                       `json:"initial_weight_g" binding:"required"`
	TGCModelID            string                        `json:"tgc_model_id" binding:"required"`
	FCRModelID            string                        `json:"fcr_model_id" binding:"required"`
	MortalityModelID      string                        `json:"mortality_model_id" binding:"required"`
	BiologicalConstraints *biologicalConstraintsRequest `json:"biological_constraints"`
	BatchID               *string                       `json:"batch_id"`
	InitialStage          string                        `json:"initial_stage"`
	ModelChanges          []modelChangeRequest          `json:"model_changes"`
}

type sensitivityRequest struct {
	Parameter  string    `json:"parameter" binding:"required"`
	Variations []float64 `json:"variations" binding:"required"`
}
