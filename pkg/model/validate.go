package model

// Validate checks Scenario creation constraints (§3, §6): duration_days in
// [1,1200], initial_count in [1,10^7], initial_weight_g in [0.01,10000], and
// every ScenarioModelChange's change_day within [1, duration_days] with at
// least one model reference set.
func (s Scenario) Validate() FieldErrors {
	var errs FieldErrors

	errs.AddIf(s.DurationDays < 1 || s.DurationDays > 1200, "duration_days", s.DurationDays,
		"duration_days must be in [1, 1200]")
	errs.AddIf(s.InitialCount < 1 || s.InitialCount > 10_000_000, "initial_count", s.InitialCount,
		"initial_count must be in [1, 10000000]")
	errs.AddIf(s.InitialWeightG <= 0 || s.InitialWeightG < 0.01 || s.InitialWeightG > 10000,
		"initial_weight_g", s.InitialWeightG, "initial_weight_g must be in [0.01, 10000]")

	for i, change := range s.ModelChanges {
		errs.AddIf(change.ChangeDay < 1 || change.ChangeDay > s.DurationDays,
			"model_changes", i, "change_day must be in [1, duration_days]")
		errs.AddIf(change.TGCModelID == nil && change.FCRModelID == nil && change.MortalityModelID == nil,
			"model_changes", i, "must reference at least one model")
	}

	return errs
}
