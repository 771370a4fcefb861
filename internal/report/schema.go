package report

import (
	"encoding/json"
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/stoewer/go-strcase"
)

// NewReflector returns a reflector producing snake_case keys and definition
// names, with Value and Mode described the way they encode.
func NewReflector() *jsonschema.Reflector {
	return &jsonschema.Reflector{
		KeyNamer: strcase.SnakeCase,
		Namer: func(t reflect.Type) string {
			return strcase.SnakeCase(t.Name())
		},
		ExpandedStruct: true,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			switch t {
			case reflect.TypeOf(Value("")):
				return &jsonschema.Schema{
					Type:        "number",
					Description: "A count, or a percentage rounded to one decimal place",
				}
			case reflect.TypeOf(Mode("")):
				enum := make([]any, len(Modes))
				for i, m := range Modes {
					enum[i] = string(m)
				}
				return &jsonschema.Schema{Type: "string", Enum: enum}
			}
			return nil
		},
	}
}

// Schema returns the JSON Schema of the json output format.
func Schema() ([]byte, error) {
	s := NewReflector().Reflect(&Report{})
	s.Title = "divrep report"
	return json.MarshalIndent(s, "", "  ")
}
