package feeders

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// TomlFeeder reads config sections from a TOML file where each section is a
// table named after the module.
type TomlFeeder struct {
	Path string
}

func NewTomlFeeder(filePath string) TomlFeeder {
	return TomlFeeder{Path: filePath}
}

// FeedKey decodes table key into target. A missing table is not an error.
func (t TomlFeeder) FeedKey(key string, target any) error {
	var tables map[string]toml.Primitive
	md, err := toml.DecodeFile(t.Path, &tables)
	if err != nil {
		return wrapFileError("toml", t.Path, err)
	}

	prim, ok := tables[key]
	if !ok {
		return nil
	}
	if err := md.PrimitiveDecode(prim, target); err != nil {
		return fmt.Errorf("failed to decode TOML table %q: %w", key, err)
	}
	return nil
}
