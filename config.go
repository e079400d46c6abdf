package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const envPrefix = "LEMONFEED"

type Config struct {
	Lemonbar LemonbarConfig
	Blocks   BlocksConfig
	Path     string
}

type LemonbarConfig struct {
	UpdateInterval     float64 `mapstructure:"update_interval"`
	Tick               float64 `mapstructure:"tick"`
	Offset             Offset  `mapstructure:"offset"`
	Dimensions         Size    `mapstructure:"dimensions"`
	Fonts              []Font  `mapstructure:"fonts"`
	Colors             Colors  `mapstructure:"colors"`
	UnderlineThickness int     `mapstructure:"underline_thickness"`
	Path               string  `mapstructure:"lemonbar_path"`
}

type Offset struct {
	X int `mapstructure:"x"`
	Y int `mapstructure:"y"`
}

// Size is the bar geometry. A zero width lets lemonbar span the screen.
type Size struct {
	W int `mapstructure:"w"`
	H int `mapstructure:"h"`
}

type Font struct {
	Str    string `mapstructure:"str"`
	Offset int    `mapstructure:"offset"`
}

type Colors struct {
	Foreground string `mapstructure:"foreground"`
	Background string `mapstructure:"background"`
}

// BlockEntry is one configured block, kept as a raw node until its type's
// factory decodes it.
type BlockEntry struct {
	Name string
	Body *yaml.Node
}

type BlocksConfig map[Alignment][]BlockEntry

const defaultConfigYAML = `
blocks:
  left:
    CPU:
      icon: "󰻠"
    Memory:
      icon: "󰍛"
      percentage: true
  center:
    Clock: {}
  right:
    Battery:
      interval: 60
`

func defaultConfigPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "lemonfeed", "config.yaml")
}

// LoadConfig reads the config file at path, or the default location when path
// is empty. A missing default file yields the built-in configuration; a
// missing explicit file is an error.
func LoadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist) && !explicit:
		data = []byte(defaultConfigYAML)
		path = ""
	default:
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, err
	}
	cfg.Path = path
	return cfg, nil
}

// ParseConfig decodes a YAML document. Environment overrides apply to the
// lemonbar section only.
func ParseConfig(data []byte) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("lemonbar.update_interval", defaultUpdateInterval.Seconds())
	v.SetDefault("lemonbar.tick", defaultTick.Seconds())
	v.SetDefault("lemonbar.offset.x", 0)
	v.SetDefault("lemonbar.offset.y", 0)
	v.SetDefault("lemonbar.dimensions.w", 0)
	v.SetDefault("lemonbar.dimensions.h", 20)
	v.SetDefault("lemonbar.colors.foreground", "#FFFFFF")
	v.SetDefault("lemonbar.colors.background", "#000000")
	v.SetDefault("lemonbar.underline_thickness", 1)
	v.SetDefault("lemonbar.lemonbar_path", "lemonbar")

	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Unmarshal rather than UnmarshalKey so env overrides are seen.
	var settings struct {
		Lemonbar LemonbarConfig `mapstructure:"lemonbar"`
	}
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("lemonbar section: %w", err)
	}
	cfg := Config{Lemonbar: settings.Lemonbar}
	if err := cfg.Lemonbar.validate(); err != nil {
		return nil, err
	}

	var doc struct {
		Blocks yaml.Node `yaml:"blocks"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	blocks, err := parseBlocks(&doc.Blocks)
	if err != nil {
		return nil, err
	}
	cfg.Blocks = blocks
	return &cfg, nil
}

func (c LemonbarConfig) validate() error {
	if c.UpdateInterval <= 0 {
		return fmt.Errorf("invalid update_interval: %v", c.UpdateInterval)
	}
	if c.Tick <= 0 {
		return fmt.Errorf("invalid tick: %v", c.Tick)
	}
	if c.Dimensions.W < 0 || c.Dimensions.H < 0 {
		return fmt.Errorf("invalid dimensions: %dx%d", c.Dimensions.W, c.Dimensions.H)
	}
	if c.UnderlineThickness < 0 {
		return fmt.Errorf("invalid underline_thickness: %d", c.UnderlineThickness)
	}
	for i, f := range c.Fonts {
		if f.Str == "" {
			return fmt.Errorf("font %d: missing str", i)
		}
	}
	return nil
}

var alignmentKeys = map[string]Alignment{
	"left":   AlignLeft,
	"center": AlignCenter,
	"right":  AlignRight,
}

// parseBlocks walks the blocks mapping keeping declaration order, which a
// plain map decode would lose.
func parseBlocks(node *yaml.Node) (BlocksConfig, error) {
	out := BlocksConfig{}
	if node.Kind == 0 || node.Tag == "!!null" {
		return out, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("blocks: line %d: want a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, group := node.Content[i], node.Content[i+1]
		align, ok := alignmentKeys[key.Value]
		if !ok {
			return nil, fmt.Errorf("blocks: line %d: unknown alignment %q", key.Line, key.Value)
		}
		if group.Tag == "!!null" {
			continue
		}
		if group.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("blocks.%s: line %d: want a mapping of block names", key.Value, group.Line)
		}
		for j := 0; j+1 < len(group.Content); j += 2 {
			out[align] = append(out[align], BlockEntry{
				Name: group.Content[j].Value,
				Body: group.Content[j+1],
			})
		}
	}
	return out, nil
}

// decodeStrict decodes node into out, rejecting keys out does not declare.
func decodeStrict(node *yaml.Node, out interface{}) error {
	if node == nil || node.Tag == "!!null" {
		return nil
	}
	raw, err := yaml.Marshal(node)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	return dec.Decode(out)
}
