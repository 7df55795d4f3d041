package oracle

import (
	"context"
	"encoding/json"
)

// Provider is the transport abstraction for the AI backend. The oracle
// builds prompts and response schemas; a Provider turns them into one
// round trip against a concrete model API.
type Provider interface {
	// Generate sends a single-turn prompt and returns the model output.
	// When req.Schema is set the provider uses its native structured
	// output mechanism and the returned Content is the validated JSON.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes one generation call.
type Request struct {
	// System sets the model's role and constraints. Optional.
	System string

	// Prompt is the user message. Generation here is always single-turn.
	Prompt string

	// Schema, when set, is the JSON structure the response must conform to.
	Schema *Schema

	// MaxTokens bounds the response size.
	MaxTokens int

	// Temperature controls randomness, 0.0 - 1.0. Zero means deterministic.
	Temperature float64
}

// Schema defines the JSON structure expected from the model.
type Schema struct {
	// Name identifies the schema, kebab-case, e.g. "math-question".
	Name string

	// Description guides generation.
	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// Response holds the model output.
type Response struct {
	// Content is the generated output. With a Schema set this is the
	// validated JSON object.
	Content json.RawMessage

	// Model is the actual model that served the request.
	Model string
}

// resolveModel maps a friendly model name through the given alias table,
// falling back to the default (first entry under the "" key) when empty,
// and passing unknown names through untouched.
func resolveModel(name string, aliases map[string]string) string {
	if name == "" {
		return aliases[""]
	}
	if id, ok := aliases[name]; ok {
		return id
	}
	return name
}
