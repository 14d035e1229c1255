package settings

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"
)

var (
	schemaOnce  sync.Once
	schemaBytes []byte
	schemaErr   error
)

// Schema returns the JSON schema of a settings document, including legacy keys.
// Additional properties are allowed because unknown keys are ignored.
func Schema() *jsonschema.Schema {
	reflector := &jsonschema.Reflector{
		Anonymous:                  true,
		DoNotReference:             true,
		AllowAdditionalProperties:  true,
		RequiredFromJSONSchemaTags: true,
	}
	s := reflector.Reflect(&document{})
	// gojsonschema does not know the 2020-12 meta schema
	s.Version = ""
	s.Title = "turncheck validation settings"
	return s
}

func compiledSchema() ([]byte, error) {
	schemaOnce.Do(func() {
		schemaBytes, schemaErr = json.Marshal(Schema())
	})
	return schemaBytes, schemaErr
}

// checkDocument validates a decoded YAML document against Schema.
func checkDocument(raw any) error {
	schema, err := compiledSchema()
	if err != nil {
		return errors.Wrap(err, "could not build settings schema")
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schema),
		gojsonschema.NewGoLoader(raw),
	)
	if err != nil {
		return errors.Wrap(err, "could not check settings")
	}
	if result.Valid() {
		return nil
	}

	descriptions := []string{}
	for _, desc := range result.Errors() {
		descriptions = append(descriptions, desc.String())
	}
	return errors.Errorf("settings do not match schema: %s", strings.Join(descriptions, "; "))
}
