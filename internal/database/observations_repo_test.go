package database

import (
	"context"
	"testing"
	"time"

	"github.com/aquamind/growthengine/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	db, err := NewDatabase(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRepository(db)
}

// distributeMortality is pure and needs no database; these pin down §4.5.5's
// proportional-split algorithm directly.

func TestDistributeMortality_SingleAssignmentClampsToPopulation(t *testing.T) {
	allocs := distributeMortality(300, []Assignment{{ID: "a1", PopulationCount: 100}})
	require.Len(t, allocs, 1)
	assert.Equal(t, int64(100), allocs[0].deaths)
}

// §8 scenario S3: two assignments with populations 1000/500, event count 300,
// no container scoping -> proportional split 200/100.
func TestDistributeMortality_S3_ProportionalSplit(t *testing.T) {
	allocs := distributeMortality(300, []Assignment{
		{ID: "a1", PopulationCount: 1000},
		{ID: "a2", PopulationCount: 500},
	})
	require.Len(t, allocs, 2)
	byID := map[string]int64{}
	for _, a := range allocs {
		byID[a.assignment.ID] = a.deaths
	}
	assert.Equal(t, int64(200), byID["a1"])
	assert.Equal(t, int64(100), byID["a2"])
}

func TestDistributeMortality_MinimumOneWhenPopulationPositive(t *testing.T) {
	allocs := distributeMortality(1, []Assignment{
		{ID: "a1", PopulationCount: 10000},
		{ID: "a2", PopulationCount: 1},
	})
	var total int64
	for _, a := range allocs {
		assert.GreaterOrEqual(t, a.deaths, int64(0))
		total += a.deaths
	}
	assert.Equal(t, int64(1), total, "a single death is allocated to exactly one assignment")
}

func TestDistributeMortality_TotalMatchesCountWithTinyPopulation(t *testing.T) {
	allocs := distributeMortality(3, []Assignment{
		{ID: "small", PopulationCount: 1},
		{ID: "large", PopulationCount: 1000},
	})
	var total int64
	for _, a := range allocs {
		total += a.deaths
	}
	assert.Equal(t, int64(3), total)
}

func TestDistributeMortality_NeverExceedsTotalPopulation(t *testing.T) {
	allocs := distributeMortality(10000, []Assignment{
		{ID: "a1", PopulationCount: 100},
		{ID: "a2", PopulationCount: 200},
	})
	var total int64
	for _, a := range allocs {
		assert.LessOrEqual(t, a.deaths, a.assignment.PopulationCount)
		total += a.deaths
	}
	assert.Equal(t, int64(300), total, "count exceeding total population clamps to the total")
}

func TestDistributeMortality_NoAssignmentsReturnsNil(t *testing.T) {
	assert.Nil(t, distributeMortality(100, nil))
}

func createTestBatchAndAssignment(t *testing.T, repo *Repository, population int64, avgWeightG float64) (batchID, assignmentID string) {
	t.Helper()
	ctx := context.Background()

	b, err := repo.CreateBatch(ctx, model.Batch{ExternalNumber: "B-1", Species: "salmon", StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)

	c, err := repo.CreateContainer(ctx, model.Container{Name: "C-1", Class: model.ContainerClass("tank")})
	require.NoError(t, err)

	a, err := repo.CreateAssignment(ctx, model.Assignment{
		BatchID:         b.ID,
		ContainerID:     c.ID,
		Stage:           model.StageParr,
		AssignmentDate:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		PopulationCount: population,
		AvgWeightG:      avgWeightG,
		BiomassKg:       float64(population) * avgWeightG / 1000.0,
	})
	require.NoError(t, err)
	return b.ID, a.ID
}

// §8 scenario S4: a single assignment with population 100, event count 100
// -> population reaches 0, the assignment becomes inactive with
// departure_date = event_date.
func TestCreateMortalityEvent_S4_AssignmentGoesInactiveAtZero(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	batchID, assignmentID := createTestBatchAndAssignment(t, repo, 100, 500.0)

	eventDate := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err := repo.CreateMortalityEvent(ctx, model.MortalityEvent{
		BatchID:   batchID,
		EventDate: eventDate,
		Count:     100,
		Cause:     model.MortalityCause("disease"),
	})
	require.NoError(t, err)

	var row Assignment
	require.NoError(t, repo.db.WithContext(ctx).First(&row, "id = ?", assignmentID).Error)
	assert.Equal(t, int64(0), row.PopulationCount)
	require.NotNil(t, row.DepartureDate)
	assert.True(t, row.DepartureDate.Equal(eventDate))
}

// §8 scenario S3 end-to-end: two active assignments in the same batch split
// a batch-wide event proportionally and both remain active.
func TestCreateMortalityEvent_S3_ProportionalSplitAcrossAssignments(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	b, err := repo.CreateBatch(ctx, model.Batch{ExternalNumber: "B-1", Species: "salmon", StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	c1, err := repo.CreateContainer(ctx, model.Container{Name: "C-1", Class: model.ContainerClass("tank")})
	require.NoError(t, err)
	c2, err := repo.CreateContainer(ctx, model.Container{Name: "C-2", Class: model.ContainerClass("tank")})
	require.NoError(t, err)

	a1, err := repo.CreateAssignment(ctx, model.Assignment{
		BatchID: b.ID, ContainerID: c1.ID, Stage: model.StageParr,
		AssignmentDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), PopulationCount: 1000, AvgWeightG: 50.0,
	})
	require.NoError(t, err)
	a2, err := repo.CreateAssignment(ctx, model.Assignment{
		BatchID: b.ID, ContainerID: c2.ID, Stage: model.StageParr,
		AssignmentDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), PopulationCount: 500, AvgWeightG: 50.0,
	})
	require.NoError(t, err)

	eventDate := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err = repo.CreateMortalityEvent(ctx, model.MortalityEvent{
		BatchID: b.ID, EventDate: eventDate, Count: 300, Cause: model.MortalityCause("disease"),
	})
	require.NoError(t, err)

	var row1, row2 Assignment
	require.NoError(t, repo.db.WithContext(ctx).First(&row1, "id = ?", a1.ID).Error)
	require.NoError(t, repo.db.WithContext(ctx).First(&row2, "id = ?", a2.ID).Error)

	assert.Equal(t, int64(800), row1.PopulationCount)
	assert.Equal(t, int64(400), row2.PopulationCount)
	assert.Nil(t, row1.DepartureDate)
	assert.Nil(t, row2.DepartureDate)
}

func TestCreateMortalityEvent_ContainerScopingLimitsCandidates(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	b, err := repo.CreateBatch(ctx, model.Batch{ExternalNumber: "B-1", Species: "salmon", StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	c1, err := repo.CreateContainer(ctx, model.Container{Name: "C-1", Class: model.ContainerClass("tank")})
	require.NoError(t, err)
	c2, err := repo.CreateContainer(ctx, model.Container{Name: "C-2", Class: model.ContainerClass("tank")})
	require.NoError(t, err)

	a1, err := repo.CreateAssignment(ctx, model.Assignment{
		BatchID: b.ID, ContainerID: c1.ID, Stage: model.StageParr,
		AssignmentDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), PopulationCount: 1000, AvgWeightG: 50.0,
	})
	require.NoError(t, err)
	a2, err := repo.CreateAssignment(ctx, model.Assignment{
		BatchID: b.ID, ContainerID: c2.ID, Stage: model.StageParr,
		AssignmentDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), PopulationCount: 1000, AvgWeightG: 50.0,
	})
	require.NoError(t, err)

	eventDate := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err = repo.CreateMortalityEvent(ctx, model.MortalityEvent{
		BatchID: b.ID, ContainerID: &c1.ID, EventDate: eventDate, Count: 200, Cause: model.MortalityCause("disease"),
	})
	require.NoError(t, err)

	var row1, row2 Assignment
	require.NoError(t, repo.db.WithContext(ctx).First(&row1, "id = ?", a1.ID).Error)
	require.NoError(t, repo.db.WithContext(ctx).First(&row2, "id = ?", a2.ID).Error)

	assert.Equal(t, int64(800), row1.PopulationCount, "container-scoped event only touches the named container's assignment")
	assert.Equal(t, int64(1000), row2.PopulationCount, "the other container's assignment is untouched")
}

func TestCreateMortalityEvent_NoMatchingAssignmentFallsBackToRawInsert(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	m, err := repo.CreateMortalityEvent(ctx, model.MortalityEvent{
		BatchID: "batch-with-no-assignments", EventDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Count: 50,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(50), m.Count)
}
