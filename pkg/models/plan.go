package models

// Complexity is a coarse estimate of how involved a task is.
type Complexity string

const (
	ComplexitySimple  Complexity = "simple"
	ComplexityMedium  Complexity = "medium"
	ComplexityComplex Complexity = "complex"
)

// Step is one atomic action within a plan. Execution order is fixed at
// plan-creation time by Index.
type Step struct {
	Index            int    `json:"index"`
	Capability       string `json:"capability" validate:"required"`
	RequiresApproval bool   `json:"requires_approval"`
	DependsOn        *int   `json:"depends_on,omitempty"`
	Completed        bool   `json:"completed"`
}

// Plan is the ordered decomposition of a task description.
type Plan struct {
	TaskType   string     `json:"task_type"`
	Complexity Complexity `json:"complexity"`
	Steps      []Step     `json:"steps"`
}

// RequiresApproval reports whether any step performs a human-facing
// external effect.
func (p *Plan) RequiresApproval() bool {
	for _, step := range p.Steps {
		if step.RequiresApproval {
			return true
		}
	}

	return false
}

// Capabilities returns the capability tags of the plan steps in order.
func (p *Plan) Capabilities() []string {
	caps := make([]string, 0, len(p.Steps))
	for _, step := range p.Steps {
		caps = append(caps, step.Capability)
	}

	return caps
}
