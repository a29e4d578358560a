package policy

import (
	"bytes"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/agentstation/flowtag/pkg/errors"
)

const schemaURL = "https://flowtag.dev/schema/policy.json"

// schemaJSON describes the structure of a policy file. Semantic checks
// (duplicate paths or labels, empty ids) are left to New.
const schemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["root"],
  "additionalProperties": false,
  "properties": {
    "root": {"type": "string", "minLength": 1},
    "labels": {
      "type": "object",
      "additionalProperties": {"type": "string", "minLength": 1}
    },
    "paths": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["path", "labels"],
        "additionalProperties": false,
        "properties": {
          "path": {"type": "string", "minLength": 1},
          "labels": {
            "type": "array",
            "minItems": 1,
            "items": {"type": "string", "minLength": 1}
          }
        }
      }
    }
  }
}`

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader([]byte(schemaJSON)))
	if err != nil {
		return nil, err
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, doc); err != nil {
		return nil, err
	}
	return c.Compile(schemaURL)
})

// validate checks a YAML policy document against the policy schema.
// Malformed YAML is a ParseError, a structural mismatch a ValidationError.
func validate(data []byte) error {
	js, err := yaml.YAMLToJSON(data)
	if err != nil {
		return errors.WrapParse("yaml", "", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(js))
	if err != nil {
		return errors.WrapParse("json", "", err)
	}

	sch, err := compileSchema()
	if err != nil {
		return err
	}
	if err := sch.Validate(inst); err != nil {
		return errors.NewValidationError("policy", nil, err.Error())
	}
	return nil
}
