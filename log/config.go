package log

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config describes the optional log configuration file. Filters use
// the zapfilter rule syntax and are matched against logger names.
type Config struct {
	DefaultLevel string   `yaml:"defaultLevel"`
	Filters      []string `yaml:"filters"`
}

func LoadConfig(fileName string) (*Config, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, fmt.Errorf("could not read log config %s: %w", fileName, err)
	}
	ret := &Config{}
	if err := yaml.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("could not parse log config %s: %w", fileName, err)
	}
	return ret, nil
}

func (c *Config) Rules() string {
	return strings.Join(c.Filters, " ")
}
