package catalogs

import (
	"bytes"
	"embed"
	"encoding/json"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const (
	schemaStructures = "structures.schema.json"
	schemaStrain     = "strain.schema.json"
	schemaDevice     = "device.schema.json"
	schemaMethods    = "cultivation_methods.schema.json"
	schemaPrices     = "prices.schema.json"
	schemaTasks      = "task_definitions.schema.json"
)

const schemaBaseURL = "https://growsim.app/schemas/"

type validator struct {
	schemas map[string]*jsonschema.Schema
}

func newValidator() (*validator, error) {
	names := []string{schemaStructures, schemaStrain, schemaDevice, schemaMethods, schemaPrices, schemaTasks}
	c := jsonschema.NewCompiler()
	for _, name := range names {
		b, err := schemaFS.ReadFile("schemas/" + name)
		if err != nil {
			return nil, err
		}
		if err := c.AddResource(schemaBaseURL+name, bytes.NewReader(b)); err != nil {
			return nil, err
		}
	}
	v := &validator{schemas: map[string]*jsonschema.Schema{}}
	for _, name := range names {
		s, err := c.Compile(schemaBaseURL + name)
		if err != nil {
			return nil, err
		}
		v.schemas[name] = s
	}
	return v, nil
}

func (v *validator) validate(name string, raw []byte) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	return v.schemas[name].Validate(doc)
}
