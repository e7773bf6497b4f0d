package config

// RuntimeConfig is the part of the configuration that can be changed
// while running through the web API. Hardware, loop and logging settings
// need a restart and are not part of it.
type RuntimeConfig struct {
	Strip StripConfig `yaml:"Strip" json:"Strip"`
}

func (c *Config) Runtime() RuntimeConfig {
	return RuntimeConfig{Strip: c.Strip}
}

// Merge copies the runtime settings into c.
func (c *Config) Merge(r RuntimeConfig) {
	c.Strip = r.Strip
}
