package feeders

import (
	"fmt"
	"os"
	"reflect"

	"github.com/tidwall/gjson"
)

// JSONFeeder reads config sections from a JSON file. Values are looked up
// with gjson paths built from the section key and each field's json tag, so
// durations may be written as strings like "500ms".
type JSONFeeder struct {
	Path string
}

// NewJSONFeeder creates a new JSONFeeder that reads from the specified JSON file
func NewJSONFeeder(filePath string) *JSONFeeder {
	return &JSONFeeder{Path: filePath}
}

// FeedKey fills target from the object stored under key.
func (j *JSONFeeder) FeedKey(key string, target any) error {
	data, err := os.ReadFile(j.Path)
	if err != nil {
		return wrapFileError("json", j.Path, err)
	}
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("%w: %s", ErrInvalidJSON, j.Path)
	}

	section := gjson.GetBytes(data, key)
	if !section.Exists() {
		return nil
	}

	rv, err := structValue(target)
	if err != nil {
		return err
	}
	return j.feedStruct(rv, section, key)
}

func (j *JSONFeeder) feedStruct(rv reflect.Value, obj gjson.Result, prefix string) error {
	rt := rv.Type()
	for i := 0; i < rv.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		name, ok := tagName(sf, "json")
		if !ok {
			continue
		}

		value := obj.Get(name)
		if !value.Exists() || value.Type == gjson.Null {
			continue
		}

		field := rv.Field(i)
		path := prefix + "." + name

		if field.Kind() == reflect.Struct && field.Type() != durationType {
			if err := j.feedStruct(field, value, path); err != nil {
				return err
			}
			continue
		}

		if field.Kind() == reflect.Slice && value.IsArray() {
			if err := setSliceFromJSON(field, value, path); err != nil {
				return err
			}
			continue
		}

		if err := setFieldFromString(field, value.String(), path); err != nil {
			return err
		}
	}
	return nil
}

func setSliceFromJSON(field reflect.Value, value gjson.Result, path string) error {
	items := value.Array()
	out := reflect.MakeSlice(field.Type(), len(items), len(items))
	for i, item := range items {
		if err := setFieldFromString(out.Index(i), item.String(), fmt.Sprintf("%s[%d]", path, i)); err != nil {
			return err
		}
	}
	field.Set(out)
	return nil
}
