package database

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/aquamind/growthengine/pkg/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// newID mints a synthetic identifier for entities the observation API
// creates without a caller-supplied key (§1.1: google/uuid for synthetic
// identifiers where the domain doesn't supply a natural one).
func newID() string {
	return uuid.NewString()
}

// CreateBatch implements the observation write API's batch bootstrap.
func (r *Repository) CreateBatch(ctx context.Context, b model.Batch) (model.Batch, error) {
	if b.ID == "" {
		b.ID = newID()
	}
	row := batchFromModel(b)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return model.Batch{}, err
	}
	return batchToModel(row), nil
}

// CreateContainer implements the observation write API's container bootstrap.
func (r *Repository) CreateContainer(ctx context.Context, c model.Container) (model.Container, error) {
	if c.ID == "" {
		c.ID = newID()
	}
	row := Container{ID: c.ID, Name: c.Name, GeographyTrail: marshalJSON(c.GeographyTrail), Class: string(c.Class)}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return model.Container{}, err
	}
	return containerToModel(row), nil
}

// CreateAssignment implements the observation write API's assignment
// bootstrap.
func (r *Repository) CreateAssignment(ctx context.Context, a model.Assignment) (model.Assignment, error) {
	if a.ID == "" {
		a.ID = newID()
	}
	row := Assignment{
		ID:                         a.ID,
		BatchID:                    a.BatchID,
		ContainerID:                a.ContainerID,
		Stage:                      string(a.Stage),
		AssignmentDate:             a.AssignmentDate,
		DepartureDate:              a.DepartureDate,
		PopulationCount:            a.PopulationCount,
		AvgWeightG:                 a.AvgWeightG,
		BiomassKg:                  a.BiomassKg,
		TransferSourceAssignmentID: a.TransferSourceAssignmentID,
		TransferMeasuredWeightG:    a.TransferMeasuredWeightG,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return model.Assignment{}, err
	}
	return assignmentToModel(row), nil
}

// CreateGrowthSample implements `POST growth_sample` (§6).
func (r *Repository) CreateGrowthSample(ctx context.Context, gs model.GrowthSample) (model.GrowthSample, error) {
	if gs.ID == "" {
		gs.ID = newID()
	}
	row := GrowthSample{ID: gs.ID, AssignmentID: gs.AssignmentID, SampleDate: gs.SampleDate, AvgWeightG: gs.AvgWeightG}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return model.GrowthSample{}, err
	}
	return model.GrowthSample{ID: row.ID, AssignmentID: row.AssignmentID, SampleDate: row.SampleDate, AvgWeightG: row.AvgWeightG}, nil
}

// CreateTransferAction implements `POST transfer_action` (§6).
func (r *Repository) CreateTransferAction(ctx context.Context, t model.TransferAction) (model.TransferAction, error) {
	if t.ID == "" {
		t.ID = newID()
	}
	row := TransferAction{
		ID:                      t.ID,
		SourceAssignmentID:      t.SourceAssignmentID,
		DestinationAssignmentID: t.DestinationAssignmentID,
		TransferDate:            t.TransferDate,
		Status:                  string(t.Status),
		PopulationCount:         t.PopulationCount,
		MeasuredAvgWeightG:      t.MeasuredAvgWeightG,
		SelectionMethod:         string(t.SelectionMethod),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return model.TransferAction{}, err
	}
	return model.TransferAction{
		ID: row.ID, SourceAssignmentID: row.SourceAssignmentID, DestinationAssignmentID: row.DestinationAssignmentID,
		TransferDate: row.TransferDate, Status: model.TransferStatus(row.Status), PopulationCount: row.PopulationCount,
		MeasuredAvgWeightG: row.MeasuredAvgWeightG, SelectionMethod: model.SelectionMethod(row.SelectionMethod),
	}, nil
}

// CreateTreatment implements `POST treatment` (§6).
func (r *Repository) CreateTreatment(ctx context.Context, t model.Treatment) (model.Treatment, error) {
	if t.ID == "" {
		t.ID = newID()
	}
	row := Treatment{
		ID: t.ID, AssignmentID: t.AssignmentID, TreatmentDate: t.TreatmentDate,
		IncludesWeighing: t.IncludesWeighing, MeasuredAvgWeightG: t.MeasuredAvgWeightG, LiceCount: t.LiceCount,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return model.Treatment{}, err
	}
	return model.Treatment{
		ID: row.ID, AssignmentID: row.AssignmentID, TreatmentDate: row.TreatmentDate,
		IncludesWeighing: row.IncludesWeighing, MeasuredAvgWeightG: row.MeasuredAvgWeightG, LiceCount: row.LiceCount,
	}, nil
}

// CreateEnvironmentalReading implements `POST environmental_reading` (§6).
// Aggregated lazily by the Assimilation Engine's temperature preload; this
// never triggers a recompute on its own.
func (r *Repository) CreateEnvironmentalReading(ctx context.Context, er model.EnvironmentalReading) (model.EnvironmentalReading, error) {
	if er.ID == "" {
		er.ID = newID()
	}
	row := EnvironmentalReading{
		ID: er.ID, ContainerID: er.ContainerID, Parameter: er.Parameter, Value: er.Value, RecordedAt: er.RecordedAt,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return model.EnvironmentalReading{}, err
	}
	return model.EnvironmentalReading{
		ID: row.ID, ContainerID: row.ContainerID, Parameter: row.Parameter, Value: row.Value, RecordedAt: row.RecordedAt,
	}, nil
}

// mortalityAllocation is one active assignment's share of a MortalityEvent's
// count, per §4.5.5's proportional-distribution contract.
type mortalityAllocation struct {
	assignment Assignment
	deaths     int64
}

// distributeMortality implements §4.5.5: a single matching assignment
// absorbs min(count, population); multiple assignments split proportionally
// to population_count, each portion floor-rounded with a floor of 1 when the
// assignment has population, with any resulting deficit (from flooring, or
// from count exceeding total population) handed to assignments with
// remaining headroom, largest population first. When the floor of 1 pushes
// the total above min(count, total population), the surplus is taken back one
// death at a time, smallest population first.
func distributeMortality(count int64, assignments []Assignment) []mortalityAllocation {
	if len(assignments) == 0 {
		return nil
	}
	if len(assignments) == 1 {
		deaths := count
		if deaths > assignments[0].PopulationCount {
			deaths = assignments[0].PopulationCount
		}
		return []mortalityAllocation{{assignment: assignments[0], deaths: deaths}}
	}

	var totalPopulation int64
	for _, a := range assignments {
		totalPopulation += a.PopulationCount
	}

	allocations := make([]mortalityAllocation, len(assignments))
	var allocated int64
	for i, a := range assignments {
		allocations[i].assignment = a
		if totalPopulation == 0 || a.PopulationCount == 0 {
			continue
		}
		share := float64(count) * float64(a.PopulationCount) / float64(totalPopulation)
		deaths := int64(math.Floor(share))
		if deaths == 0 {
			deaths = 1
		}
		if deaths > a.PopulationCount {
			deaths = a.PopulationCount
		}
		allocations[i].deaths = deaths
		allocated += deaths
	}

	target := count
	if target > totalPopulation {
		target = totalPopulation
	}
	deficit := target - allocated

	order := make([]int, len(allocations))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		return allocations[order[i]].assignment.PopulationCount > allocations[order[j]].assignment.PopulationCount
	})

	for deficit > 0 {
		progressed := false
		for _, i := range order {
			if deficit <= 0 {
				break
			}
			headroom := allocations[i].assignment.PopulationCount - allocations[i].deaths
			if headroom <= 0 {
				continue
			}
			allocations[i].deaths++
			deficit--
			progressed = true
		}
		if !progressed {
			break
		}
	}

	for deficit < 0 {
		progressed := false
		for k := len(order) - 1; k >= 0 && deficit < 0; k-- {
			i := order[k]
			if allocations[i].deaths == 0 {
				continue
			}
			allocations[i].deaths--
			deficit++
			progressed = true
		}
		if !progressed {
			break
		}
	}

	return allocations
}

// CreateMortalityEvent implements `POST mortality_event` (§6) and the
// assimilation collaborator contract of §4.5.5: it locks the batch's active
// assignments (optionally scoped to one container), distributes the count
// across them, clamps each at 0, and marks an assignment inactive with
// departure_date = event_date when it reaches 0.
func (r *Repository) CreateMortalityEvent(ctx context.Context, m model.MortalityEvent) (model.MortalityEvent, error) {
	if m.ID == "" {
		m.ID = newID()
	}

	q := r.db.WithContext(ctx).Where("batch_id = ? AND departure_date IS NULL", m.BatchID)
	if m.ContainerID != nil {
		q = q.Where("container_id = ?", *m.ContainerID)
	}
	var candidates []Assignment
	if err := q.Find(&candidates).Error; err != nil {
		return model.MortalityEvent{}, err
	}

	if len(candidates) == 0 {
		row := MortalityEvent{
			ID: m.ID, BatchID: m.BatchID, ContainerID: m.ContainerID, EventDate: m.EventDate,
			Count: m.Count, BiomassKg: m.BiomassKg, Cause: string(m.Cause),
		}
		if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
			return model.MortalityEvent{}, err
		}
		log.Warn().Str("batch_id", m.BatchID).Int64("count", m.Count).Msg("mortality event has no matching active assignment")
		return m, nil
	}

	var totalPopulation int64
	for _, a := range candidates {
		totalPopulation += a.PopulationCount
	}
	if m.Count > totalPopulation {
		log.Error().Str("batch_id", m.BatchID).Int64("count", m.Count).Int64("available_population", totalPopulation).
			Msg("mortality event count exceeds total available population; clamping")
	}

	allocations := distributeMortality(m.Count, candidates)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, alloc := range allocations {
			containerID := alloc.assignment.ContainerID
			row := MortalityEvent{
				ID: newID(), BatchID: m.BatchID, ContainerID: &containerID, EventDate: m.EventDate,
				Count: alloc.deaths, BiomassKg: float64(alloc.deaths) * alloc.assignment.AvgWeightG / 1000.0, Cause: string(m.Cause),
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
			if alloc.deaths == 0 {
				continue
			}

			newPopulation := alloc.assignment.PopulationCount - alloc.deaths
			if newPopulation < 0 {
				newPopulation = 0
			}
			updates := map[string]interface{}{
				"population_count": newPopulation,
				"biomass_kg":       float64(newPopulation) * alloc.assignment.AvgWeightG / 1000.0,
			}
			if newPopulation == 0 {
				updates["departure_date"] = m.EventDate
			}
			if err := tx.Model(&Assignment{}).Where("id = ?", alloc.assignment.ID).Updates(updates).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return model.MortalityEvent{}, err
	}

	return m, nil
}

// CreateScenario implements `POST scenario` (§6).
func (r *Repository) CreateScenario(ctx context.Context, s model.Scenario) (model.Scenario, error) {
	if s.ID == "" {
		s.ID = newID()
	}
	row := scenarioFromModel(s)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return model.Scenario{}, err
	}
	return scenarioToModel(row), nil
}

// GetScenario reads back a scenario by ID for the scenario API.
func (r *Repository) GetScenario(ctx context.Context, id string) (model.Scenario, error) {
	var row Scenario
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return model.Scenario{}, fmt.Errorf("scenario %s: %w", id, err)
	}
	return scenarioToModel(row), nil
}

// ListScenarioIDs returns every scenario's ID, for `regenerate_projections
// --all` (§6).
func (r *Repository) ListScenarioIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&Scenario{}).Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// GetLiveForwardProjections implements the `GET live_forward_projections`
// read API: rows for (assignmentID, computedDate) ordered by projection_date,
// or the most recent computed_date's rows when computedDate is nil.
func (r *Repository) GetLiveForwardProjections(ctx context.Context, assignmentID string, computedDate *time.Time) ([]model.LiveForwardProjection, error) {
	if computedDate == nil {
		return r.LoadLiveProjections(ctx, assignmentID)
	}
	var rows []LiveForwardProjection
	if err := r.db.WithContext(ctx).
		Where("assignment_id = ? AND computed_date = ?", assignmentID, *computedDate).
		Order("projection_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]model.LiveForwardProjection, len(rows))
	for i, row := range rows {
		out[i] = liveProjectionToModel(row)
	}
	return out, nil
}

// GetForecastSummary implements the `GET container_forecast_summary` read
// API: the stored rollup, without recomputing it.
func (r *Repository) GetForecastSummary(ctx context.Context, assignmentID string) (*model.ContainerForecastSummary, error) {
	var row ContainerForecastSummary
	err := r.db.WithContext(ctx).First(&row, "assignment_id = ?", assignmentID).Error
	if err != nil {
		return nil, err
	}
	summary := forecastSummaryToModel(row)
	return &summary, nil
}
