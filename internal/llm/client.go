package llm

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/HuYW1007/Smart-Terminal-Monitor/internal/config"
)

const defaultTimeout = 120 * time.Second

// New builds a provider client from the resolved configuration.
func New(cfg *config.Config) (Client, error) {
	httpClient := &http.Client{Timeout: defaultTimeout}

	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "openai":
		return newOpenAIClient(httpClient, cfg)
	case "gemini":
		return newGeminiClient(httpClient, cfg)
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Provider)
	}
}

// systemPrompt returns the expert persona instruction with the response
// language directive applied.
func systemPrompt(language string) string {
	lang := "English"
	if strings.TrimSpace(language) == "cn" {
		lang = "Chinese"
	}
	return "You are an expert in programming, software installation, and Linux systems. " +
		"Analyze the logs to reach a conclusion and provide a response. " +
		"Answer in " + lang + "."
}
