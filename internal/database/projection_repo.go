package database

import (
	"context"
	"fmt"

	"github.com/aquamind/growthengine/pkg/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LoadScenario implements projection.Repository.
func (r *Repository) LoadScenario(ctx context.Context, scenarioID string) (model.Scenario, error) {
	var row Scenario
	if err := r.db.WithContext(ctx).First(&row, "id = ?", scenarioID).Error; err != nil {
		return model.Scenario{}, fmt.Errorf("scenario %s: %w", scenarioID, err)
	}
	return scenarioToModel(row), nil
}

// SaveProjections implements projection.Repository: replaces the scenario's
// existing projection rows with the new set in one transaction (§4.6 Writes).
func (r *Repository) SaveProjections(ctx context.Context, scenarioID string, rows []model.ScenarioProjection) error {
	dbRows := make([]ScenarioProjection, len(rows))
	for i, row := range rows {
		dbRows[i] = scenarioProjectionFromModel(row)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("scenario_id = ?", scenarioID).Delete(&ScenarioProjection{}).Error; err != nil {
			return fmt.Errorf("clear projections for %s: %w", scenarioID, err)
		}
		if len(dbRows) == 0 {
			return nil
		}
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&dbRows).Error; err != nil {
			return fmt.Errorf("save projections for %s: %w", scenarioID, err)
		}
		return nil
	})
}
