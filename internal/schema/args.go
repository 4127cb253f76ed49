package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/musher-dev/mcpterm/internal/mcp"
)

// ArgsErrorKind classifies argument conversion failures.
type ArgsErrorKind int

const (
	// MissingRequired means a required parameter had no argument.
	MissingRequired ArgsErrorKind = iota
	// InvalidInteger means an integer parameter got a non-integer.
	InvalidInteger
	// InvalidNumber means a number parameter got a non-number.
	InvalidNumber
	// InvalidBoolean means a boolean parameter got an unrecognized word.
	InvalidBoolean
	// InvalidJSON means an array or object parameter got malformed JSON.
	InvalidJSON
	// TooManyArgs means more arguments than parameters.
	TooManyArgs
	// InvalidSchema means the tool's input schema could not be decoded.
	InvalidSchema
)

// ArgsError describes why positional arguments do not fit a schema.
type ArgsError struct {
	Kind     ArgsErrorKind
	Param    string
	Value    string
	Type     string
	Expected int
	Got      int
	Err      error
}

func (e *ArgsError) Error() string {
	switch e.Kind {
	case MissingRequired:
		return fmt.Sprintf("missing required parameter: %s", e.Param)
	case InvalidInteger:
		return fmt.Sprintf("invalid integer value for %q: %s", e.Param, e.Value)
	case InvalidNumber:
		return fmt.Sprintf("invalid number value for %q: %s", e.Param, e.Value)
	case InvalidBoolean:
		return fmt.Sprintf("invalid boolean value for %q: %s", e.Param, e.Value)
	case InvalidJSON:
		return fmt.Sprintf("cannot parse %q as %s for %q", e.Value, e.Type, e.Param)
	case TooManyArgs:
		return fmt.Sprintf("too many arguments: expected at most %d, got %d", e.Expected, e.Got)
	case InvalidSchema:
		return fmt.Sprintf("invalid input schema: %v", e.Err)
	default:
		return "invalid arguments"
	}
}

func (e *ArgsError) Unwrap() error {
	return e.Err
}

// ToolArguments decodes the tool's input schema and converts args against it.
func ToolArguments(tool mcp.Tool, args []string) (*orderedmap.OrderedMap[string, any], error) {
	s, err := Parse(tool.InputSchema)
	if err != nil {
		return nil, &ArgsError{Kind: InvalidSchema, Err: err}
	}

	return Arguments(args, s)
}

// Arguments maps positional args onto the schema's parameters, required
// parameters first, and converts each value to its declared type. Optional
// parameters without an argument are omitted. The result marshals with keys
// in parameter order.
func Arguments(args []string, s *jsonschema.Schema) (*orderedmap.OrderedMap[string, any], error) {
	params := Params(s)

	if len(args) > len(params) {
		return nil, &ArgsError{Kind: TooManyArgs, Expected: len(params), Got: len(args)}
	}

	out := orderedmap.New[string, any]()

	for i, p := range params {
		if i >= len(args) {
			if p.Required {
				return nil, &ArgsError{Kind: MissingRequired, Param: p.Name}
			}

			continue
		}

		v, err := convert(args[i], p)
		if err != nil {
			return nil, err
		}

		out.Set(p.Name, v)
	}

	return out, nil
}

func convert(value string, p Param) (any, error) {
	typ := TypeName(p.Schema, "string")

	switch typ {
	case "integer":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, &ArgsError{Kind: InvalidInteger, Param: p.Name, Value: value}
		}

		return n, nil
	case "number":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, &ArgsError{Kind: InvalidNumber, Param: p.Name, Value: value}
		}

		return f, nil
	case "boolean":
		switch strings.ToLower(value) {
		case "true", "t", "yes", "y", "1":
			return true, nil
		case "false", "f", "no", "n", "0":
			return false, nil
		default:
			return nil, &ArgsError{Kind: InvalidBoolean, Param: p.Name, Value: value}
		}
	case "array", "object":
		var decoded any
		if err := json.Unmarshal([]byte(value), &decoded); err != nil {
			return nil, &ArgsError{Kind: InvalidJSON, Param: p.Name, Value: value, Type: typ}
		}

		if _, isArray := decoded.([]any); typ == "array" && !isArray {
			return nil, &ArgsError{Kind: InvalidJSON, Param: p.Name, Value: value, Type: typ}
		}

		if _, isObject := decoded.(map[string]any); typ == "object" && !isObject {
			return nil, &ArgsError{Kind: InvalidJSON, Param: p.Name, Value: value, Type: typ}
		}

		return json.RawMessage(value), nil
	default:
		return value, nil
	}
}
