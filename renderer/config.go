package renderer

import (
	"os"

	"gopkg.in/yaml.v2"
)

// Config holds the construction-time parameters for a Supervisor, loadable
// from a YAML file the same way sqldef's database.ParseGeneratorConfig
// loads its generator config.
type Config struct {
	DesktopName         string `yaml:"desktop_name"`
	RendererPath        string `yaml:"renderer_path"`
	DisablePathCheck    bool   `yaml:"disable_path_check"`
	SuppressErrorDialog bool   `yaml:"suppress_error_dialog"`
	ProtocolVersion     int    `yaml:"protocol_version"`
	ProductVersion      string `yaml:"product_version"`
}

// LoadConfig reads and parses a YAML supervisor config from path.
func LoadConfig(path string) (Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return ParseConfig(buf)
}

// ParseConfig parses a YAML supervisor config from raw bytes.
func ParseConfig(buf []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
