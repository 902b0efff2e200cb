package config

import "fmt"

// knownFormats are the record formats the stats and print tools accept.
var knownFormats = map[string]bool{
	"tfrecord": true,
	"riegeli":  true,
}

// Validate checks that the configuration is internally consistent. It does
// not require any path to exist; stages check their own preconditions.
func (c *Config) Validate() error {
	if c.Dataset == "" {
		return fmt.Errorf("dataset is required")
	}
	if c.Shards < 1 || c.Shards > 99999 {
		return fmt.Errorf("shards must be between 1 and 99999, got %d", c.Shards)
	}
	if !knownFormats[c.FileFormat] {
		return fmt.Errorf("unknown file format %q (known: tfrecord, riegeli)", c.FileFormat)
	}
	return nil
}
