package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/HuYW1007/Smart-Terminal-Monitor/internal/config"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Print local diagnostic information for troubleshooting",
		RunE: func(cmd *cobra.Command, _ []string) error {
			exe, _ := os.Executable()
			fmt.Fprintf(os.Stdout, "smartterm_executable=%s\n", strings.TrimSpace(exe))
			fmt.Fprintf(os.Stdout, "stdin_is_terminal=%t\n", term.IsTerminal(int(os.Stdin.Fd())))
			fmt.Fprintf(os.Stdout, "stdout_is_terminal=%t\n", term.IsTerminal(int(os.Stdout.Fd())))
			fmt.Fprintf(os.Stdout, "SHELL=%s\n", os.Getenv("SHELL"))
			fmt.Fprintf(os.Stdout, "TERM=%s\n", os.Getenv("TERM"))

			for _, p := range config.SearchPaths() {
				if _, err := os.Stat(p); err == nil {
					fmt.Fprintf(os.Stdout, "config_candidate=%s present=true\n", p)
				} else {
					fmt.Fprintf(os.Stdout, "config_candidate=%s present=false\n", p)
				}
			}

			cfg, err := config.Load()
			if err != nil {
				fmt.Fprintf(os.Stdout, "config_error=%s\n", err.Error())
				return nil
			}
			fmt.Fprintf(os.Stdout, "config_path=%s\n", cfg.Path)
			fmt.Fprintf(os.Stdout, "provider=%s\n", cfg.Provider)
			fmt.Fprintf(os.Stdout, "model=%s\n", cfg.Model)
			fmt.Fprintf(os.Stdout, "base_url=%s\n", cfg.BaseURL)
			fmt.Fprintf(os.Stdout, "language=%s\n", cfg.Language)
			fmt.Fprintf(os.Stdout, "api_key=%s\n", cfg.MaskedKey())
			fmt.Fprintf(os.Stdout, "env_SMART_TERM_API_KEY_set=%t\n", strings.TrimSpace(os.Getenv("SMART_TERM_API_KEY")) != "")
			if verr := cfg.Validate(); verr != nil {
				fmt.Fprintf(os.Stdout, "validation_error=%s\n", verr.Error())
			} else {
				fmt.Fprintln(os.Stdout, "validation=ok")
			}
			return nil
		},
	}
}
