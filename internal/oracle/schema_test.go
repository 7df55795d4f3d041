package oracle

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestValidateResponse(t *testing.T) {
	if err := validateResponse(nil, json.RawMessage(`not even json`)); err != nil {
		t.Fatalf("nil schema should skip validation: %v", err)
	}

	if err := validateResponse(judgeSchema, json.RawMessage(
		`{"is_correct":true,"judgment_reason":"Correct","explanation":"Both forms reduce to 4."}`)); err != nil {
		t.Fatalf("valid judgment rejected: %v", err)
	}

	var inv *ErrInvalidResponse

	err := validateResponse(judgeSchema, json.RawMessage(`{"is_correct":"yes"}`))
	if !errors.As(err, &inv) {
		t.Fatalf("type mismatch err = %v, want ErrInvalidResponse", err)
	}

	err = validateResponse(judgeSchema, json.RawMessage(`{"is_correct":true}`))
	if !errors.As(err, &inv) {
		t.Fatalf("missing required fields err = %v, want ErrInvalidResponse", err)
	}

	err = validateResponse(judgeSchema, json.RawMessage(`{"broken`))
	if !errors.As(err, &inv) {
		t.Fatalf("malformed JSON err = %v, want ErrInvalidResponse", err)
	}
}

func TestCompiledSchemasAreCached(t *testing.T) {
	content := json.RawMessage(`{"summary":"s","recommendations":"r"}`)
	if err := validateResponse(insightsSchema, content); err != nil {
		t.Fatal(err)
	}
	if _, ok := schemaCache.Load(insightsSchema.Name); !ok {
		t.Fatal("schema not cached after validation")
	}
	if err := validateResponse(insightsSchema, content); err != nil {
		t.Fatal(err)
	}
}
