// Package stage implements the Stage Resolver (§4.5): weight/time-based
// lifecycle-stage determination, and the shared stage ordering / constraint
// cache used by the Assimilation, Projection, and Live Projection engines
// (kept separate per §9, but sharing this one source of truth).
package stage

import "github.com/aquamind/growthengine/pkg/model"

// Cache holds the per-stage weight-band and duration constraints for one
// engine instance. Constraints are not shared across processes (§5).
type Cache struct {
	constraints map[model.LifecycleStage]model.StageConstraint
	fcrStages   map[model.LifecycleStage]model.FCRStageEntry
}

// NewCache builds a Cache from explicit stage constraints and, for
// time-based transitions, the FCR model's per-stage durations (§4.6: "stage
// transitions are time-based ... from FCR model").
func NewCache(constraints []model.StageConstraint, fcrModel model.FCRModel) *Cache {
	c := &Cache{
		constraints: make(map[model.LifecycleStage]model.StageConstraint, len(constraints)),
		fcrStages:   make(map[model.LifecycleStage]model.FCRStageEntry, len(fcrModel.Stages)),
	}
	for _, sc := range constraints {
		c.constraints[sc.Stage] = sc
	}
	for _, s := range fcrModel.Stages {
		c.fcrStages[s.Stage] = s
	}
	return c
}

// MaxWeightFor returns the stage's max_weight_g constraint and whether one is
// configured.
func (c *Cache) MaxWeightFor(s model.LifecycleStage) (float64, bool) {
	sc, ok := c.constraints[s]
	if !ok || sc.MaxWeightG == 0 {
		return 0, false
	}
	return sc.MaxWeightG, true
}

// MinWeightFor returns the stage's min_weight_g constraint and whether one is
// configured.
func (c *Cache) MinWeightFor(s model.LifecycleStage) (float64, bool) {
	sc, ok := c.constraints[s]
	if !ok {
		return 0, false
	}
	return sc.MinWeightG, true
}

// ExpectedMinWeight returns the constraint's MinWeightG, the same value as
// MinWeightFor; the cache holds no separate expected-weight band.
func (c *Cache) ExpectedMinWeight(s model.LifecycleStage) (float64, bool) {
	return c.MinWeightFor(s)
}

// ResolveByWeight applies the Assimilation Engine's weight-triggered
// transition rule (§4.5.3 step 9): if the current stage has a cached
// max_weight_g and newWeight has reached it, transition to the next stage in
// species order; otherwise stay put.
func (c *Cache) ResolveByWeight(current model.LifecycleStage, newWeightG float64) model.LifecycleStage {
	maxW, ok := c.MaxWeightFor(current)
	if !ok || newWeightG < maxW {
		return current
	}
	next, hasNext := current.Next()
	if !hasNext {
		return current
	}
	return next
}

// ResolveByElapsedDays applies the Projection/Live Projection engines'
// time-based transition rule (§4.6): the stage is determined by cumulative
// stage durations from the FCR model, starting from startStage.
func (c *Cache) ResolveByElapsedDays(startStage model.LifecycleStage, elapsedDays int) model.LifecycleStage {
	order := model.StageOrder()
	startIdx := startStage.Index()
	if startIdx < 0 {
		startIdx = 0
	}

	remaining := elapsedDays
	current := startStage
	for i := startIdx; i < len(order); i++ {
		s := order[i]
		entry, ok := c.fcrStages[s]
		duration := 0
		if ok {
			duration = entry.DurationDays
		}
		current = s
		if duration <= 0 {
			// No configured duration for this stage: it persists for the
			// remainder of the projection.
			return current
		}
		if remaining < duration {
			return current
		}
		remaining -= duration
	}
	return current
}
