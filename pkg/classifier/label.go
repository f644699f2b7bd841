package classifier

// Label is a discrete classification outcome for one pixel or region.
//
// Two taxonomies share the type: the binary light/shadow labels used by the
// threshold, heuristic and trained policies, and the four-class soil/mesh x
// light/shadow labels produced by the rule-based policy. Every pixel in a
// finished classification map carries exactly one label.
type Label uint8

const (
	// Shadow and Light form the binary taxonomy.
	Shadow Label = iota
	Light

	// SoilShadow, SoilLight, MeshShadow and MeshLight form the four-class
	// taxonomy: soil-vs-mesh and light-vs-shadow folded into one code.
	SoilShadow
	SoilLight
	MeshShadow
	MeshLight

	numLabels
)

// Taxonomy identifies which label set a policy produces.
type Taxonomy int

const (
	TwoClass Taxonomy = iota
	FourClass
)

// IsLight reports whether the label belongs to the aggregate "light" group.
func (l Label) IsLight() bool {
	return l == Light || l == SoilLight || l == MeshLight
}

// String returns a human-readable label name.
func (l Label) String() string {
	switch l {
	case Shadow:
		return "shadow"
	case Light:
		return "light"
	case SoilShadow:
		return "soil_shadow"
	case SoilLight:
		return "soil_light"
	case MeshShadow:
		return "mesh_shadow"
	case MeshLight:
		return "mesh_light"
	default:
		return "unknown"
	}
}

// Labels returns the labels of a taxonomy in a stable order, suitable for
// building legends and count tables.
func (t Taxonomy) Labels() []Label {
	if t == FourClass {
		return []Label{SoilShadow, SoilLight, MeshShadow, MeshLight}
	}
	return []Label{Shadow, Light}
}
