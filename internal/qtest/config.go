package qtest

import (
	"encoding/json"
	"io"
	"os"

	"github.com/zeebo/errs"
)

// Config holds the interpreter settings that can also be changed at run
// time with the option command.
type Config struct {
	Verbose           bool  `json:"verbose"`
	MallocFailPercent int   `json:"malloc_fail_percent"`
	StringLength      int   `json:"string_length"`
	ErrorLimit        int   `json:"error_limit"`
	Seed              int64 `json:"seed"`
}

func DefaultConfig() Config {
	return Config{
		StringLength: 1024,
		ErrorLimit:   5,
		Seed:         1,
	}
}

// LoadConfig reads a JSON config file on top of the defaults.
func LoadConfig(path string) (Config, error) {
	cfgFile, err := os.Open(path)
	if err != nil {
		return Config{}, errs.Wrap(err)
	}
	defer cfgFile.Close()

	raw, err := io.ReadAll(cfgFile)
	if err != nil {
		return Config{}, errs.Wrap(err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(raw, &config); err != nil {
		return Config{}, errs.New("could not parse %s: %w", path, err)
	}

	return config, config.Validate()
}

func (c Config) Validate() error {
	var group errs.Group

	if c.MallocFailPercent < 0 || c.MallocFailPercent > 100 {
		group.Add(errs.New("malloc_fail_percent %d out of range [0, 100]", c.MallocFailPercent))
	}
	if c.StringLength < 1 {
		group.Add(errs.New("string_length must be positive, got %d", c.StringLength))
	}
	if c.ErrorLimit < 1 {
		group.Add(errs.New("error_limit must be positive, got %d", c.ErrorLimit))
	}

	return group.Err()
}
