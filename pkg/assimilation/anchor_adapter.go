package assimilation

import "github.com/aquamind/growthengine/pkg/anchor"

// anchorSet fuses raw anchor inputs into a resolved Set via the Anchor Set
// Builder (§4.4).
func anchorSet(in anchor.Inputs) anchor.Set {
	return anchor.Build(in)
}
