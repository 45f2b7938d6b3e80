package main

import (
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-html2pptx/internal/config"
	"github.com/alnah/go-html2pptx/internal/yamlutil"
)

// runConfig prints the configuration convert would use, after environment
// variables are applied, as YAML.
func runConfig(args []string, env *Environment) error {
	name, err := parseConfigFlags(args)
	if errors.Is(err, flag.ErrHelp) {
		printConfigUsage(env.Stdout)
		return nil
	}
	if err != nil {
		return err
	}

	envCfg := loadEnvConfig()
	cfg, err := loadConfig(name, envCfg.ConfigPath)
	if err != nil {
		return err
	}
	applyEnvConfig(envCfg, cfg)
	if cfg.Background.Mode == "" {
		cfg.Background.Mode = config.BackgroundSnapshot
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := yamlutil.Encode(env.Stdout, cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return nil
}
