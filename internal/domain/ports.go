package domain

type PortKind string

const (
	PortDefinitionOfDone PortKind = "definition-of-done"
	PortPreconditions    PortKind = "preconditions"
	PortComputation      PortKind = "computation"
	PortProcedure        PortKind = "procedure"
)

type ChecklistStep struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Port is a typed facet of an action: completion criteria, preconditions,
// effort estimate, or checklist steps.
type Port struct {
	Kind         PortKind        `json:"kind"`
	Criteria     []string        `json:"criteria,omitempty"`
	Conditions   []string        `json:"conditions,omitempty"`
	EnergyLevel  EnergyLevel     `json:"energyLevel,omitempty"`
	TimeEstimate string          `json:"timeEstimate,omitempty"`
	Steps        []ChecklistStep `json:"steps,omitempty"`
}

// MergeEnergyLevel sets level on the computation port, appending one when
// none exists. Other ports are kept as they are. ports is not modified.
func MergeEnergyLevel(ports []Port, level EnergyLevel) []Port {
	out := make([]Port, 0, len(ports)+1)
	merged := false
	for _, p := range ports {
		if p.Kind == PortComputation && !merged {
			p.EnergyLevel = level
			merged = true
		}
		out = append(out, p)
	}
	if !merged {
		out = append(out, Port{Kind: PortComputation, EnergyLevel: level})
	}
	return out
}
