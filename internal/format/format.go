/*
Package format renders captured console arguments to text and classifies the
result by the lifecycle hook that most likely produced it.

Both functions are pure: the same arguments always produce the same string.
*/
package format

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// panicMarker is written when even the fallback string conversion panics.
const panicMarker = "[unprintable value]"

// Args renders every argument with Arg and joins the results with a single space.
// Args() and Args(nil) return the empty string.
func Args(args ...any) string {
	if len(args) == 0 {
		return ""
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = Arg(a)
	}
	return strings.Join(parts, " ")
}

// Arg renders a single argument.
//
// Non-nil structured values (structs, maps, slices, arrays and non-nil pointers
// to them) are JSON-encoded with a two-space indent; map keys come out sorted.
// If encoding fails (channels, funcs, NaN...) the value falls back to
// fmt.Sprint; cyclic values render as "[circular <type>]" since fmt would
// recurse forever on a map that contains itself. Errors, fmt.Stringer values,
// byte slices and scalars always use fmt.Sprint.
func Arg(v any) (s string) {
	defer func() {
		if r := recover(); r != nil {
			s = sprint(v)
		}
	}()
	if !isStructured(v) {
		return sprint(v)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		if isCycle(err) {
			return fmt.Sprintf("[circular %T]", v)
		}
		return sprint(v)
	}
	return string(data)
}

// sprint is fmt.Sprint guarded against panics that escape fmt's own recovery
// (fmt re-panics for nil pointer receivers in some cases).
func sprint(v any) (s string) {
	defer func() {
		if r := recover(); r != nil {
			s = panicMarker
		}
	}()
	return fmt.Sprint(v)
}

func isCycle(err error) bool {
	var uve *json.UnsupportedValueError
	return errors.As(err, &uve) && strings.HasPrefix(uve.Str, "encountered a cycle")
}

func isStructured(v any) bool {
	if v == nil {
		return false
	}
	switch v.(type) {
	case error, fmt.Stringer, []byte:
		return false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Struct, reflect.Array:
		return true
	case reflect.Map, reflect.Slice:
		return !rv.IsNil()
	}
	return false
}
