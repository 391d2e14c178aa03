package httpapi

import (
	"errors"
	"fmt"
	"reflect"
	"sort"

	"github.com/invopop/jsonschema"

	"pyindent/internal/domain"
	"pyindent/internal/usecase"
)

// Types whose JSON schema can be requested by name.
var schemaTypes = map[string]any{
	"parse-result":    domain.ParseResult{},
	"edit":            domain.Edit{},
	"finding":         domain.Finding{},
	"newline-request": usecase.NewlineRequest{},
	"indent-response": IndentResponse{},
	"lint-request":    LintRequest{},
	"lint-summary":    domain.LintSummary{},
}

var hangingType = reflect.TypeOf(domain.HangingNone)

func newReflector() *jsonschema.Reflector {
	return &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		// Hanging is encoded as text, not as its underlying int.
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t != hangingType {
				return nil
			}
			return &jsonschema.Schema{
				Type: "string",
				Enum: []any{
					domain.HangingNone.String(),
					domain.HangingPartial.String(),
					domain.HangingFull.String(),
				},
			}
		},
	}
}

// ErrUnknownSchema is returned by Schema for names not in SchemaNames.
var ErrUnknownSchema = errors.New("unknown schema")

// Schema returns the JSON schema of the named type.
func Schema(name string) (*jsonschema.Schema, error) {
	v, ok := schemaTypes[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownSchema, name)
	}
	return newReflector().Reflect(v), nil
}

// SchemaNames lists the names Schema accepts, sorted.
func SchemaNames() []string {
	names := make([]string, 0, len(schemaTypes))
	for name := range schemaTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
