package models

// Defaults applied to every generation request
const (
	DefaultGenerationContext = "Genera código full-stack (React + Node.js). Prioriza uso de MongoDB. Si hay ambigüedades, pregunta al usuario."
	DefaultTemperature       = 0.2
	DefaultMaxIterations     = 3
)

// GenerationRequest is the body of a generation call
type GenerationRequest struct {
	Prompt        string   `json:"prompt"`
	Context       string   `json:"context,omitempty"`
	Temperature   *float32 `json:"temperature,omitempty"`
	MaxIterations *int     `json:"max_iterations,omitempty"`
}

// WithDefaults fills unset optional fields
func (r GenerationRequest) WithDefaults() GenerationRequest {
	if r.Context == "" {
		r.Context = DefaultGenerationContext
	}
	if r.Temperature == nil {
		t := float32(DefaultTemperature)
		r.Temperature = &t
	}
	if r.MaxIterations == nil {
		n := DefaultMaxIterations
		r.MaxIterations = &n
	}
	return r
}

// GenerationResult is the structured response of one generation
type GenerationResult struct {
	Code              string       `json:"code"`
	Explanation       string       `json:"explanation"`
	Files             []FileChange `json:"files"`
	GenerationID      string       `json:"generationId"`
	FollowUpQuestions []string     `json:"followUpQuestions,omitempty"`
}
