package dashboard

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const snapshotSchemaName = "dashboard_data.json"

const snapshotSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": [
    "total_users",
    "active_subscriptions",
    "total_revenue",
    "unpaid_invoices",
    "revenue_chart",
    "plan_distribution"
  ],
  "properties": {
    "total_users": {"type": "integer"},
    "active_subscriptions": {"type": "integer"},
    "total_revenue": {"type": "number"},
    "unpaid_invoices": {"type": "integer"},
    "revenue_chart": {"$ref": "#/definitions/series"},
    "plan_distribution": {"$ref": "#/definitions/series"}
  },
  "definitions": {
    "series": {
      "type": "object",
      "required": ["labels", "values"],
      "properties": {
        "labels": {"type": "array", "items": {"type": "string"}},
        "values": {"type": "array", "items": {"type": "number"}}
      }
    }
  }
}`

// SnapshotValidator checks a raw /api/dashboard_data body before decoding.
type SnapshotValidator interface {
	ValidatePayload(body []byte) error
}

// JSONSchemaValidator validates payloads against the dashboard data schema.
type JSONSchemaValidator struct {
	once     sync.Once
	compiled *jsonschema.Schema
	err      error
}

// NewJSONSchemaValidator builds a validator backed by jsonschema v5.
func NewJSONSchemaValidator() *JSONSchemaValidator {
	return &JSONSchemaValidator{}
}

// ValidatePayload decodes body and validates it against the schema.
func (v *JSONSchemaValidator) ValidatePayload(body []byte) error {
	schema, err := v.schema()
	if err != nil {
		return err
	}
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("dashboard: decode payload: %w", err)
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("dashboard: payload failed validation: %w", err)
	}
	return nil
}

func (v *JSONSchemaValidator) schema() (*jsonschema.Schema, error) {
	v.once.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(snapshotSchemaName, bytes.NewReader([]byte(snapshotSchema))); err != nil {
			v.err = fmt.Errorf("dashboard: load schema: %w", err)
			return
		}
		compiled, err := compiler.Compile(snapshotSchemaName)
		if err != nil {
			v.err = fmt.Errorf("dashboard: compile schema: %w", err)
			return
		}
		v.compiled = compiled
	})
	return v.compiled, v.err
}

type noopSnapshotValidator struct{}

func (noopSnapshotValidator) ValidatePayload([]byte) error { return nil }

// NoopSnapshotValidator accepts every payload.
func NoopSnapshotValidator() SnapshotValidator { return noopSnapshotValidator{} }
