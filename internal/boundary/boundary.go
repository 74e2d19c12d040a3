package boundary

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Payload kinds with a registered schema.
const (
	MasterRoleCreate    = "master_role.create"
	MasterRoleDecision  = "master_role.decision"
	StaffCreate         = "staff.create"
	StaffDecision       = "staff.decision"
	ResignationCreate   = "resignation.create"
	ResignationDecision = "resignation.decision"
	EnrollmentCreate    = "enrollment.create"
	EnrollmentDecision  = "enrollment.decision"
)

// Error reports a request body rejected at the boundary, before any
// struct-level validation runs.
type Error struct {
	Kind   string
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid %s payload: %s", e.Kind, e.Detail)
}

var rawSchemas = map[string]string{
	MasterRoleCreate: `{
		"type": "object",
		"additionalProperties": false,
		"required": ["mentor_id", "reason", "experience", "planned_classrooms"],
		"properties": {
			"mentor_id": {"type": "integer", "minimum": 1},
			"reason": {"type": "string"},
			"experience": {"type": "string"},
			"planned_classrooms": {"type": "string"},
			"qualifications": {
				"type": "object",
				"additionalProperties": {"type": "string"}
			}
		}
	}`,
	MasterRoleDecision: `{
		"type": "object",
		"additionalProperties": false,
		"required": ["status"],
		"properties": {
			"status": {"enum": ["approved", "rejected"]},
			"admin_notes": {"type": "string"}
		}
	}`,
	StaffCreate: `{
		"type": "object",
		"additionalProperties": false,
		"required": ["mentor_id", "classroom_id", "message"],
		"properties": {
			"mentor_id": {"type": "integer", "minimum": 1},
			"classroom_id": {"type": "integer", "minimum": 1},
			"message": {"type": "string"}
		}
	}`,
	StaffDecision: `{
		"type": "object",
		"additionalProperties": false,
		"required": ["status"],
		"properties": {
			"status": {"enum": ["approved", "rejected"]},
			"admin_notes": {"type": "string"}
		}
	}`,
	ResignationCreate: `{
		"type": "object",
		"additionalProperties": false,
		"required": ["mentor_id", "classroom_id", "reason"],
		"properties": {
			"mentor_id": {"type": "integer", "minimum": 1},
			"classroom_id": {"type": "integer", "minimum": 1},
			"reason": {"type": "string"}
		}
	}`,
	ResignationDecision: `{
		"type": "object",
		"additionalProperties": false,
		"required": ["status"],
		"properties": {
			"status": {"enum": ["approved", "rejected"]},
			"master_notes": {"type": "string"}
		}
	}`,
	EnrollmentCreate: `{
		"type": "object",
		"additionalProperties": false,
		"required": ["student_id"],
		"properties": {
			"student_id": {"type": "integer", "minimum": 1}
		}
	}`,
	EnrollmentDecision: `{
		"type": "object",
		"additionalProperties": false,
		"required": ["status"],
		"properties": {
			"status": {"enum": ["active", "rejected"]}
		}
	}`,
}

var compiled = compileAll()

func compileAll() map[string]*jsonschema.Schema {
	schemas := make(map[string]*jsonschema.Schema, len(rawSchemas))
	for kind, raw := range rawSchemas {
		compiler := jsonschema.NewCompiler()
		url := "mem://" + strings.ReplaceAll(kind, ".", "/") + ".json"
		if err := compiler.AddResource(url, strings.NewReader(raw)); err != nil {
			panic(err)
		}
		schemas[kind] = compiler.MustCompile(url)
	}
	return schemas
}

// Check validates the raw request body against the schema registered for the
// given kind. Unknown fields and wrong-typed fields are rejected here so they
// never silently pass through struct decoding.
func Check(kind string, body []byte) error {
	schema, ok := compiled[kind]
	if !ok {
		return fmt.Errorf("no schema registered for %q", kind)
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()

	var payload interface{}
	if err := decoder.Decode(&payload); err != nil {
		return &Error{Kind: kind, Detail: "malformed json"}
	}

	if err := schema.Validate(payload); err != nil {
		return &Error{Kind: kind, Detail: err.Error()}
	}
	return nil
}
