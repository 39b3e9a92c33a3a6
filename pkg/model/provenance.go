package model

// ProvenanceTag is the closed set of provenance tags a field may carry (§6).
type ProvenanceTag string

const (
	TagMeasured     ProvenanceTag = "measured"
	TagTGCComputed  ProvenanceTag = "tgc_computed"
	TagUnchanged    ProvenanceTag = "unchanged"
	TagProfile      ProvenanceTag = "profile"
	TagNone         ProvenanceTag = "none"
	TagActual       ProvenanceTag = "actual"
	TagModel        ProvenanceTag = "model"
	TagObserved     ProvenanceTag = "observed"
	TagNearestBefore ProvenanceTag = "nearest_before"
	TagNearestAfter  ProvenanceTag = "nearest_after"
	TagInterpolated  ProvenanceTag = "interpolated"
)

// FieldProvenance pairs a provenance tag with a confidence in [0,1] for a
// single daily-state dimension. Modeled as a small sum type rather than a
// loose map so every (tag, confidence) pair is constructed deliberately.
type FieldProvenance struct {
	Tag        ProvenanceTag
	Confidence float64
}

// Provenance carries per-dimension provenance for one ActualDailyAssignmentState
// row. It is the in-memory shape; internal/database flattens it to the
// `sources`/`confidence_scores` map pair at the storage boundary.
type Provenance struct {
	Weight    FieldProvenance
	Temp      FieldProvenance
	Mortality FieldProvenance
	Feed      FieldProvenance
	FCR       *FieldProvenance // nil when observed FCR is not computable
}

// Sources flattens provenance to the {field: tag} mapping used at the wire/DB
// boundary.
func (p Provenance) Sources() map[string]string {
	out := map[string]string{
		"weight":    string(p.Weight.Tag),
		"temp":      string(p.Temp.Tag),
		"mortality": string(p.Mortality.Tag),
		"feed":      string(p.Feed.Tag),
	}
	if p.FCR != nil {
		out["fcr"] = string(p.FCR.Tag)
	}
	return out
}

// ConfidenceScores flattens provenance to the {field: confidence} mapping.
func (p Provenance) ConfidenceScores() map[string]float64 {
	out := map[string]float64{
		"weight":    p.Weight.Confidence,
		"temp":      p.Temp.Confidence,
		"mortality": p.Mortality.Confidence,
		"feed":      p.Feed.Confidence,
	}
	if p.FCR != nil {
		out["fcr"] = p.FCR.Confidence
	}
	return out
}

// MinConfidence returns the lowest confidence across all present dimensions,
// or 0 if none are present. Used by the Forecast Summarizer's overall
// state-confidence rollup (§4.8).
func (p Provenance) MinConfidence() float64 {
	min := p.Weight.Confidence
	for _, c := range []float64{p.Temp.Confidence, p.Mortality.Confidence, p.Feed.Confidence} {
		if c < min {
			min = c
		}
	}
	if p.FCR != nil && p.FCR.Confidence < min {
		min = p.FCR.Confidence
	}
	return min
}
