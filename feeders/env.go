package feeders

import (
	"os"
	"reflect"
	"strings"
)

// EnvFeeder reads config sections from environment variables. A field tagged
// `env:"API_URL"` in section "configloader" with prefix "INITORDER" is read
// from INITORDER_CONFIGLOADER_API_URL. Fields without an env tag are skipped.
type EnvFeeder struct {
	Prefix string

	lookup func(string) (string, bool)
}

// NewEnvFeeder creates a new EnvFeeder reading variables under prefix
func NewEnvFeeder(prefix string) EnvFeeder {
	return EnvFeeder{Prefix: prefix, lookup: os.LookupEnv}
}

// FeedKey fills target from the environment.
func (e EnvFeeder) FeedKey(key string, target any) error {
	rv, err := structValue(target)
	if err != nil {
		return err
	}
	return e.feedStruct(rv, e.envName(key))
}

func (e EnvFeeder) envName(parts ...string) string {
	var b []string
	if e.Prefix != "" {
		b = append(b, strings.ToUpper(e.Prefix))
	}
	for _, p := range parts {
		if p != "" {
			b = append(b, strings.ToUpper(p))
		}
	}
	return strings.Join(b, "_")
}

func (e EnvFeeder) feedStruct(rv reflect.Value, prefix string) error {
	lookup := e.lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}

	rt := rv.Type()
	for i := 0; i < rv.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag, ok := sf.Tag.Lookup("env")
		if !ok || tag == "" || tag == "-" {
			continue
		}

		field := rv.Field(i)
		name := prefix + "_" + strings.ToUpper(tag)

		if field.Kind() == reflect.Struct && field.Type() != durationType {
			if err := e.feedStruct(field, name); err != nil {
				return err
			}
			continue
		}

		raw, found := lookup(name)
		if !found || raw == "" {
			continue
		}
		if err := setFieldFromString(field, raw, name); err != nil {
			return err
		}
	}
	return nil
}
