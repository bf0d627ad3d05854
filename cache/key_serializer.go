package cache

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// KeySeparator defines the delimiter used between cache key segments.
const KeySeparator = "::"

// maxKeyBytes bounds serialized keys. Longer keys keep their operation prefix
// and digest the argument tail, which stays deterministic across runs.
const maxKeyBytes = 256

// defaultKeySerializer implements KeySerializer using reflection-based
// serialization. It sorts named arguments and map keys for determinism and
// refuses values that have no stable representation.
type defaultKeySerializer struct{}

// NewDefaultKeySerializer creates a new instance of the default key serializer.
func NewDefaultKeySerializer() KeySerializer {
	return &defaultKeySerializer{}
}

// SerializeKey builds a cache key from an operation name and its arguments.
// Positional arguments are incorporated in call order; NamedArgs values are
// incorporated sorted by name so the caller's keyword order never matters.
func (s *defaultKeySerializer) SerializeKey(op string, args ...any) (string, error) {
	if len(args) == 0 {
		return op, nil
	}

	parts := make([]string, 0, len(args)+1)
	parts = append(parts, op)

	for _, arg := range args {
		serialized, err := s.serializeValue(op, arg)
		if err != nil {
			return "", err
		}
		parts = append(parts, serialized)
	}

	key := strings.Join(parts, KeySeparator)
	if len(key) > maxKeyBytes {
		key = op + KeySeparator + fmt.Sprintf("x%016x", xxhash.Sum64String(key))
	}
	return key, nil
}

// serializeValue handles individual argument serialization based on type.
func (s *defaultKeySerializer) serializeValue(op string, v any) (string, error) {
	if v == nil {
		return "nil", nil
	}

	if named, ok := v.(NamedArgs); ok {
		return s.serializeNamedArgs(op, named)
	}

	rv := reflect.ValueOf(v)
	rt := reflect.TypeOf(v)

	switch rt.Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		// Process addresses are not stable call identities; caching under
		// them would silently split or collide keys across runs.
		return "", &KeyGenerationError{
			Op:     op,
			Reason: fmt.Sprintf("values of kind %s have no stable representation", rt.Kind()),
		}
	case reflect.Ptr:
		if rv.IsNil() {
			return "nil", nil
		}
		return s.serializeValue(op, rv.Elem().Interface())
	case reflect.Slice:
		if rv.IsNil() {
			return "slice:nil", nil
		}
		return s.serializeList(op, "slice", rv)
	case reflect.Array:
		return s.serializeList(op, "array", rv)
	case reflect.Map:
		if rv.IsNil() {
			return "map:nil", nil
		}
		return s.serializeMap(op, rv)
	case reflect.Struct:
		return s.serializeStruct(op, rv, rt)
	case reflect.Interface:
		if rv.IsNil() {
			return "interface:nil", nil
		}
		return s.serializeValue(op, rv.Elem().Interface())
	}

	if s.isBasicKind(rt.Kind()) {
		return fmt.Sprintf("%v", v), nil
	}

	return s.jsonFallback(op, v)
}

// serializeNamedArgs incorporates name/value arguments sorted by name.
func (s *defaultKeySerializer) serializeNamedArgs(op string, named NamedArgs) (string, error) {
	names := make([]string, 0, len(named))
	for name := range named {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		serialized, err := s.serializeValue(op, named[name])
		if err != nil {
			return "", err
		}
		pairs = append(pairs, name+"="+serialized)
	}

	return fmt.Sprintf("named[%d]:{%s}", len(pairs), strings.Join(pairs, ",")), nil
}

// serializeList handles slice and array serialization recursively.
func (s *defaultKeySerializer) serializeList(op, label string, rv reflect.Value) (string, error) {
	length := rv.Len()
	parts := make([]string, length)

	for i := 0; i < length; i++ {
		serialized, err := s.serializeValue(op, rv.Index(i).Interface())
		if err != nil {
			return "", err
		}
		parts[i] = serialized
	}

	return fmt.Sprintf("%s[%d]:{%s}", label, length, strings.Join(parts, ",")), nil
}

// serializeMap handles map serialization with pairs sorted by serialized key.
func (s *defaultKeySerializer) serializeMap(op string, rv reflect.Value) (string, error) {
	iter := rv.MapRange()
	pairs := make([]string, 0, rv.Len())

	for iter.Next() {
		keyStr, err := s.serializeValue(op, iter.Key().Interface())
		if err != nil {
			return "", err
		}
		valueStr, err := s.serializeValue(op, iter.Value().Interface())
		if err != nil {
			return "", err
		}
		pairs = append(pairs, keyStr+"="+valueStr)
	}
	sort.Strings(pairs)

	return fmt.Sprintf("map[%d]:{%s}", len(pairs), strings.Join(pairs, ",")), nil
}

// serializeStruct handles struct serialization with exported field names.
func (s *defaultKeySerializer) serializeStruct(op string, rv reflect.Value, rt reflect.Type) (string, error) {
	numFields := rv.NumField()
	parts := make([]string, 0, numFields)

	for i := 0; i < numFields; i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		fieldValue := rv.Field(i)
		if !fieldValue.CanInterface() {
			continue
		}

		serialized, err := s.serializeValue(op, fieldValue.Interface())
		if err != nil {
			return "", err
		}
		parts = append(parts, field.Name+":"+serialized)
	}

	return fmt.Sprintf("struct:{%s}", strings.Join(parts, ",")), nil
}

// isBasicKind checks if a kind represents a basic Go type.
func (s *defaultKeySerializer) isBasicKind(kind reflect.Kind) bool {
	switch kind {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128,
		reflect.String:
		return true
	default:
		return false
	}
}

// jsonFallback serializes remaining types through JSON. A marshaling failure
// means the value has no stable representation and the key generation fails.
func (s *defaultKeySerializer) jsonFallback(op string, v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", &KeyGenerationError{
			Op:     op,
			Reason: fmt.Sprintf("type %T is not serializable", v),
			cause:  err,
		}
	}
	return "json:" + string(data), nil
}
