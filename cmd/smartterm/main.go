// Command smartterm wraps an interactive shell in a pseudo-terminal and,
// on Ctrl+G, sends the last command's output to an AI provider for
// diagnosis without disturbing normal terminal use.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/HuYW1007/Smart-Terminal-Monitor/internal/config"
	"github.com/HuYW1007/Smart-Terminal-Monitor/internal/convlog"
	"github.com/HuYW1007/Smart-Terminal-Monitor/internal/llm"
	"github.com/HuYW1007/Smart-Terminal-Monitor/internal/monitor"
)

func main() {
	var exitCode int

	rootCmd := &cobra.Command{
		Use:   "smartterm",
		Short: "Shell wrapper that explains command output with AI on Ctrl+G",
		RunE: func(cmd *cobra.Command, _ []string) error {
			code, err := runMonitor()
			if err != nil {
				return err
			}
			exitCode = code
			return nil
		},
		SilenceUsage: true,
	}
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newDoctorCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
	// The wrapper is transparent: it exits with the shell's own status.
	os.Exit(exitCode)
}

func runMonitor() (int, error) {
	cfg, err := config.Load()
	if err != nil {
		return 1, err
	}

	if strings.TrimSpace(cfg.Language) == "" {
		if err := promptLanguage(cfg); err != nil {
			return 1, err
		}
	}

	if err := cfg.Validate(); err != nil {
		if errors.Is(err, config.ErrNoAPIKey) {
			return 1, fmt.Errorf("no API key: set api_key in %s or export SMART_TERM_API_KEY", cfg.Path)
		}
		return 1, err
	}

	client, err := llm.New(cfg)
	if err != nil {
		return 1, err
	}
	logger := convlog.New(cfg.LogDir, cfg.LogSummaryLength)

	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/bash"
	}
	fmt.Printf("Starting smart terminal wrapper for %s...\n", shell)
	fmt.Printf("Provider %s, model %s, key %s\n", cfg.Provider, cfg.Model, cfg.MaskedKey())
	fmt.Println("Press Ctrl+G to ask AI for help with the last command output.")

	sess := monitor.New(cfg, client, logger)
	return sess.Run(context.Background())
}

// promptLanguage runs the first-run language selection and persists the
// choice. Happens before raw mode, so normal line input applies.
func promptLanguage(cfg *config.Config) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		cfg.Language = "en"
		return nil
	}
	fmt.Println("Welcome to Smart Terminal Monitor!")
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("Please select your preferred language (cn/en): ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read language selection: %w", err)
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "cn":
			cfg.Language = "cn"
		case "en":
			cfg.Language = "en"
		default:
			fmt.Println("Invalid selection. Please type 'cn' or 'en'.")
			continue
		}
		return cfg.Save()
	}
}
