package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/HuYW1007/Smart-Terminal-Monitor/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or update monitor configuration",
	}
	cmd.AddCommand(newConfigGetCmd())
	cmd.AddCommand(newConfigSetCmd())
	return cmd
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get [key]",
		Short: "Print one config value, or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			values := configValues(cfg)
			if len(args) == 1 {
				v, ok := values[args[0]]
				if !ok {
					return fmt.Errorf("unknown key %q (known: %s)", args[0], strings.Join(configKeys(values), ", "))
				}
				fmt.Fprintln(os.Stdout, v)
				return nil
			}
			for _, k := range configKeys(values) {
				fmt.Fprintf(os.Stdout, "%s=%s\n", k, values[k])
			}
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Update a config value and save the file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := setConfigValue(cfg, args[0], args[1]); err != nil {
				return err
			}
			if err := cfg.Save(); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "saved %s\n", cfg.Path)
			return nil
		},
	}
}

func configValues(cfg *config.Config) map[string]string {
	return map[string]string{
		"provider":           cfg.Provider,
		"api_key":            cfg.MaskedKey(),
		"model":              cfg.Model,
		"base_url":           cfg.BaseURL,
		"language":           cfg.Language,
		"max_context_chars":  strconv.Itoa(cfg.MaxContextChars),
		"log_summary_length": strconv.Itoa(cfg.LogSummaryLength),
		"log_dir":            cfg.LogDir,
	}
}

func configKeys(values map[string]string) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func setConfigValue(cfg *config.Config, key, value string) error {
	switch key {
	case "provider":
		cfg.Provider = value
	case "api_key":
		cfg.APIKey = value
	case "model":
		cfg.Model = value
	case "base_url":
		cfg.BaseURL = value
	case "language":
		cfg.Language = value
	case "max_context_chars", "log_summary_length":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("%s must be a positive integer", key)
		}
		if key == "max_context_chars" {
			cfg.MaxContextChars = n
		} else {
			cfg.LogSummaryLength = n
		}
	case "log_dir":
		cfg.LogDir = value
	default:
		return fmt.Errorf("unknown key %q", key)
	}
	return nil
}
