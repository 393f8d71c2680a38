package tools

import (
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// inputSchema infers the JSON schema of T and restricts the named properties
// to a fixed set of values.
func inputSchema[T any](enums map[string][]any) *jsonschema.Schema {
	schema, err := jsonschema.For[T](nil)
	if err != nil {
		panic(fmt.Sprintf("tools: invalid input type %T: %v", *new(T), err))
	}
	for name, values := range enums {
		prop, ok := schema.Properties[name]
		if !ok {
			panic(fmt.Sprintf("tools: %T has no property %q", *new(T), name))
		}
		prop.Enum = values
	}
	return schema
}

func enumOf[T ~string](values []T) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
