// Package feeders populates configuration sections from files and the
// environment. Every feeder implements FeedKey, which fills target with the
// value stored under key (a module's config section name) and leaves fields
// the source does not mention untouched, so defaults applied beforehand
// survive.
package feeders

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/golobby/cast"
)

var durationType = reflect.TypeOf(time.Duration(0))

// structValue dereferences target and checks it is a settable struct.
func structValue(target any) (reflect.Value, error) {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return reflect.Value{}, fmt.Errorf("%w, got %T", ErrTargetNotStructPointer, target)
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("%w, got %T", ErrTargetNotStructPointer, target)
	}
	return rv, nil
}

// setFieldFromString converts raw to the field's type and assigns it.
// Durations are parsed with time.ParseDuration, everything else goes
// through cast.
func setFieldFromString(field reflect.Value, raw, fieldPath string) error {
	if !field.CanSet() {
		return fmt.Errorf("%w: %s", ErrFieldCannotBeSet, fieldPath)
	}

	if field.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return wrapConversionError(fieldPath, raw, err)
		}
		field.SetInt(int64(d))
		return nil
	}

	if field.Kind() == reflect.Slice && field.Type().Elem().Kind() == reflect.String {
		parts := strings.Split(raw, ",")
		out := reflect.MakeSlice(field.Type(), 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = reflect.Append(out, reflect.ValueOf(p).Convert(field.Type().Elem()))
			}
		}
		field.Set(out)
		return nil
	}

	switch field.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
	default:
		return fmt.Errorf("%w: %s (%s)", ErrUnsupportedFieldType, fieldPath, field.Type())
	}

	converted, err := cast.FromType(raw, field.Type())
	if err != nil {
		return wrapConversionError(fieldPath, raw, err)
	}
	field.Set(reflect.ValueOf(converted).Convert(field.Type()))
	return nil
}

// tagName returns the name a field is stored under for the given tag,
// falling back to the Go field name. A "-" tag skips the field.
func tagName(f reflect.StructField, tag string) (string, bool) {
	name := f.Name
	if v, ok := f.Tag.Lookup(tag); ok {
		v = strings.Split(v, ",")[0]
		if v == "-" {
			return "", false
		}
		if v != "" {
			name = v
		}
	}
	return name, true
}
