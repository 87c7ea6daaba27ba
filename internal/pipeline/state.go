package pipeline

// UnitState is the progress of a single source unit through the build.
// States advance strictly in declaration order.
type UnitState int

const (
	Discovered UnitState = iota
	BaselineBuilt
	OptimizationVariantsBuilt
	Stripped
	PreprocessedForObfuscation
	CFFBuilt
	ELitBuilt
	Done
	// Aborted marks the unit that was being built when the run failed.
	Aborted
)

var stateNames = [...]string{
	Discovered:                 "Discovered",
	BaselineBuilt:              "BaselineBuilt",
	OptimizationVariantsBuilt:  "OptimizationVariantsBuilt",
	Stripped:                   "Stripped",
	PreprocessedForObfuscation: "PreprocessedForObfuscation",
	CFFBuilt:                   "CFFBuilt",
	ELitBuilt:                  "ELitBuilt",
	Done:                       "Done",
	Aborted:                    "Aborted",
}

func (s UnitState) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "Unknown"
	}
	return stateNames[s]
}

// next returns the state that follows s in a successful build.
func (s UnitState) next() UnitState {
	if s >= Done {
		return s
	}
	return s + 1
}
