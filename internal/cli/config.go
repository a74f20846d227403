package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Config is the optional YAML configuration file. Every field mirrors a
// flag; a flag set on the command line wins over the file.
//
//	definitions: [shapes/]
//	metamodel: [meta/templates.cue]
//	max_depth: 32
//	strict_lists: true
//	workers: 4
//	db: shaclq.db
//	format: json
type Config struct {
	Definitions []string `yaml:"definitions" validate:"dive,required"`
	Metamodel   []string `yaml:"metamodel" validate:"dive,required"`
	MaxDepth    int      `yaml:"max_depth" validate:"gte=0,lte=100000"`
	StrictLists bool     `yaml:"strict_lists"`
	Workers     int      `yaml:"workers" validate:"gte=0,lte=1024"`
	Database    string   `yaml:"db"`
	Graph       string   `yaml:"graph" validate:"omitempty,excluded_without=Database"`
	Format      string   `yaml:"format" validate:"omitempty,oneof=text json"`
}

var configValidate = validator.New()

// LoadConfig reads and validates a config file.
// Unknown fields are rejected.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := configValidate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// applyConfig loads the --config file, if any, into flags the user did
// not set. Definitions from the file are used only when no arguments name
// any.
func applyConfig(cmd *cobra.Command, root *RootOptions, in *InputOptions, args []string) ([]string, error) {
	if root.Config == "" {
		return args, nil
	}
	cfg, err := LoadConfig(root.Config)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if !flags.Changed("format") && cfg.Format != "" {
		root.Format = cfg.Format
	}
	if !flags.Changed("metamodel") && len(cfg.Metamodel) > 0 {
		in.Metamodel = cfg.Metamodel
	}
	if !flags.Changed("max-depth") && cfg.MaxDepth > 0 {
		in.MaxDepth = cfg.MaxDepth
	}
	if !flags.Changed("strict-lists") && cfg.StrictLists {
		in.StrictLists = true
	}
	if !flags.Changed("workers") && cfg.Workers > 0 {
		in.Workers = cfg.Workers
	}
	if !flags.Changed("db") && cfg.Database != "" {
		in.Database = cfg.Database
	}
	if !flags.Changed("graph") && cfg.Graph != "" {
		in.Graph = cfg.Graph
	}
	if len(args) == 0 {
		args = cfg.Definitions
	}
	return args, nil
}
