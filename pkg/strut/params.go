package strut

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ParseFunc converts the raw string value of a route parameter into its typed
// Go value.
type ParseFunc func(Context, string) (any, error)

// ParamParser binds a pattern type name (the part after the colon in
// {id:int}) to a Go type and its conversion function.
type ParamParser struct {
	TypeName string
	GoType   reflect.Type
	Parse    ParseFunc
}

// ParserRegistry manages route parameter parsers. The zero registry is not
// usable; construct one with NewParserRegistry.
type ParserRegistry struct {
	mu      sync.RWMutex
	parsers map[string]ParamParser
	aliases map[string]string
}

// NewParserRegistry creates a parser registry pre-populated with the built-in
// parsers.
func NewParserRegistry() *ParserRegistry {
	r := &ParserRegistry{
		parsers: make(map[string]ParamParser),
		aliases: map[string]string{
			"UUID":      "uuid",
			"uuid.UUID": "uuid",
			"float":     "float64",
			"double":    "float64",
		},
	}
	for _, p := range builtinParsers {
		r.parsers[p.TypeName] = p
	}
	return r
}

// Register adds a parser for a new pattern type. Registering a type twice is
// an error.
func (r *ParserRegistry) Register(parser ParamParser) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.parsers[parser.TypeName]; exists {
		return fmt.Errorf("parameter parser for type %q is already registered", parser.TypeName)
	}
	r.parsers[parser.TypeName] = parser
	return nil
}

// Lookup retrieves a parser by pattern type name, resolving aliases.
func (r *ParserRegistry) Lookup(typeName string) (ParamParser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if alias, ok := r.aliases[typeName]; ok {
		typeName = alias
	}
	parser, ok := r.parsers[typeName]
	return parser, ok
}

// Types returns the names of all registered pattern types.
func (r *ParserRegistry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.parsers))
	for name := range r.parsers {
		types = append(types, name)
	}
	return types
}

// DefaultParserRegistry is the registry used when no explicit one is
// configured.
var DefaultParserRegistry = NewParserRegistry()

var builtinParsers = []ParamParser{
	{TypeName: "string", GoType: reflect.TypeOf(""), Parse: ParseString},
	{TypeName: "int", GoType: reflect.TypeOf(int(0)), Parse: ParseInt},
	{TypeName: "int64", GoType: reflect.TypeOf(int64(0)), Parse: ParseInt64},
	{TypeName: "float64", GoType: reflect.TypeOf(float64(0)), Parse: ParseFloat64},
	{TypeName: "float32", GoType: reflect.TypeOf(float32(0)), Parse: ParseFloat32},
	{TypeName: "bool", GoType: reflect.TypeOf(false), Parse: ParseBool},
	{TypeName: "uuid", GoType: reflect.TypeOf(uuid.UUID{}), Parse: ParseUUID},
}

// ParseString returns the parameter value as-is.
func ParseString(c Context, value string) (any, error) {
	return value, nil
}

// ParseInt parses a parameter value to int.
func ParseInt(c Context, value string) (any, error) {
	return strconv.Atoi(value)
}

// ParseInt64 parses a parameter value to int64.
func ParseInt64(c Context, value string) (any, error) {
	return strconv.ParseInt(value, 10, 64)
}

// ParseFloat64 parses a parameter value to float64.
func ParseFloat64(c Context, value string) (any, error) {
	return strconv.ParseFloat(value, 64)
}

// ParseFloat32 parses a parameter value to float32.
func ParseFloat32(c Context, value string) (any, error) {
	v, err := strconv.ParseFloat(value, 32)
	if err != nil {
		return nil, err
	}
	return float32(v), nil
}

// ParseBool parses a parameter value to bool. Accepts "true", "1", "yes",
// "on" (case insensitive) as true and "false", "0", "no", "off" as false.
func ParseBool(c Context, value string) (any, error) {
	switch strings.ToLower(value) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	}
	return nil, fmt.Errorf("invalid boolean value %q", value)
}

// ParseUUID parses a parameter value to uuid.UUID.
func ParseUUID(c Context, value string) (any, error) {
	return uuid.Parse(value)
}
