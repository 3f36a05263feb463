package initorder

import (
	"github.com/GoCodeAlone/initorder/feeders"
)

// DefaultEnvPrefix is the prefix the default environment feeder reads under.
const DefaultEnvPrefix = "INITORDER"

// Feeder fills a config section. key is the section name; sources that do
// not mention the key leave target untouched.
type Feeder interface {
	FeedKey(key string, target any) error
}

// DefaultConfigFeeders returns the feeders used when an application is not
// given any explicitly: only the environment.
func DefaultConfigFeeders() []Feeder {
	return []Feeder{feeders.NewEnvFeeder(DefaultEnvPrefix)}
}
