package initorder

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/golobby/cast"
)

const (
	tagDefault  = "default"
	tagRequired = "required"
	tagDesc     = "desc" // documentation only
)

// ConfigValidator is an interface for configuration validation.
// Configuration structs can implement this interface to provide
// custom validation logic beyond the standard required field checking.
type ConfigValidator interface {
	Validate() error
}

// ValidateConfig runs required-field checks and, when cfg implements
// ConfigValidator, its own Validate.
func ValidateConfig(cfg any) error {
	if err := ValidateConfigRequired(cfg); err != nil {
		return err
	}
	if v, ok := cfg.(ConfigValidator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrConfigValidationFailed, err)
		}
	}
	return nil
}

// ProcessConfigDefaults applies default values to a config struct based on struct tags.
// It looks for `default:"value"` tags on struct fields and sets the field value if currently zero/empty.
//
//	type Config struct {
//	    APIURL     string        `default:"https://api.example.com"`
//	    FetchDelay time.Duration `default:"1s"`
//	}
func ProcessConfigDefaults(cfg any) error {
	v, err := configStruct(cfg)
	if err != nil {
		return err
	}
	return processStructDefaults(v)
}

func processStructDefaults(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.CanSet() {
			continue
		}

		if field.Kind() == reflect.Struct && field.Type() != reflect.TypeOf(time.Time{}) {
			if err := processStructDefaults(field); err != nil {
				return err
			}
			continue
		}

		defaultVal, hasDefault := fieldType.Tag.Lookup(tagDefault)
		if !hasDefault || !field.IsZero() {
			continue
		}

		if err := setDefaultValue(field, defaultVal); err != nil {
			return fmt.Errorf("failed to set default value for %s: %w", fieldType.Name, err)
		}
	}

	return nil
}

// setDefaultValue sets a default value from a string to the proper field type
func setDefaultValue(field reflect.Value, defaultVal string) error {
	if field.Type() == reflect.TypeOf(time.Duration(0)) {
		d, err := time.ParseDuration(defaultVal)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrDefaultValueParseError, err)
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		converted, err := cast.FromType(defaultVal, field.Type())
		if err != nil {
			return fmt.Errorf("%w: %w", ErrDefaultValueParseError, err)
		}
		field.Set(reflect.ValueOf(converted).Convert(field.Type()))
		return nil
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("%w: %s", ErrUnsupportedTypeForDefault, field.Type())
		}
		parts := strings.Split(defaultVal, ",")
		out := reflect.MakeSlice(field.Type(), 0, len(parts))
		for _, p := range parts {
			out = reflect.Append(out, reflect.ValueOf(strings.TrimSpace(p)).Convert(field.Type().Elem()))
		}
		field.Set(out)
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedTypeForDefault, field.Kind())
	}
}

// ValidateConfigRequired checks all struct fields with `required:"true"` tag
// and verifies they are not zero/empty values
func ValidateConfigRequired(cfg any) error {
	v, err := configStruct(cfg)
	if err != nil {
		return err
	}

	var missing []string
	validateRequiredFields(v, "", &missing)
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrConfigRequiredFieldMissing, strings.Join(missing, ", "))
	}
	return nil
}

func validateRequiredFields(v reflect.Value, prefix string, missing *[]string) {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)
		fieldName := fieldType.Name
		if prefix != "" {
			fieldName = prefix + "." + fieldName
		}

		if !field.CanSet() {
			continue
		}

		if field.Kind() == reflect.Struct && field.Type() != reflect.TypeOf(time.Time{}) {
			validateRequiredFields(field, fieldName, missing)
			continue
		}

		if required, ok := fieldType.Tag.Lookup(tagRequired); ok && required == "true" && field.IsZero() {
			*missing = append(*missing, fieldName)
		}
	}
}

// ConfigFieldDoc describes one documented config field.
type ConfigFieldDoc struct {
	Field       string
	Default     string
	Required    bool
	Description string
}

// DescribeConfig lists the documented fields of a config struct in
// declaration order. Fields without a desc tag are omitted.
func DescribeConfig(cfg any) ([]ConfigFieldDoc, error) {
	v, err := configStruct(cfg)
	if err != nil {
		return nil, err
	}

	var docs []ConfigFieldDoc
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		desc, ok := f.Tag.Lookup(tagDesc)
		if !ok {
			continue
		}
		name := f.Name
		if y, ok := f.Tag.Lookup("yaml"); ok && y != "" {
			name = strings.Split(y, ",")[0]
		}
		docs = append(docs, ConfigFieldDoc{
			Field:       name,
			Default:     f.Tag.Get(tagDefault),
			Required:    f.Tag.Get(tagRequired) == "true",
			Description: desc,
		})
	}
	return docs, nil
}

func configStruct(cfg any) (reflect.Value, error) {
	if cfg == nil {
		return reflect.Value{}, ErrConfigNil
	}
	v := reflect.ValueOf(cfg)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return reflect.Value{}, ErrConfigNotPointer
	}
	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, ErrConfigNotStruct
	}
	return v, nil
}
