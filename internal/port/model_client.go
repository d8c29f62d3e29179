package port

import "context"

// GenerateInput carries a prompt and an optional JSON schema the reply must follow.
type GenerateInput struct {
	Prompt string
	Schema map[string]any
}

// GenerateOutput holds the raw text reply of a model.
type GenerateOutput struct {
	Text      string
	ModelUsed string
}

// ModelClient abstracts a hosted generative model.
type ModelClient interface {
	Generate(ctx context.Context, input GenerateInput) (*GenerateOutput, error)
	// Model returns the identifier of the model endpoint this client calls.
	Model() string
}
