package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/HuYW1007/Smart-Terminal-Monitor/internal/config"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

type geminiClient struct {
	http   *http.Client
	model  string
	apiKey string
	system string
	u      *url.URL
}

func newGeminiClient(httpClient *http.Client, cfg *config.Config) (Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = defaultGeminiBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("base_url: %w", err)
	}
	return &geminiClient{
		http:   httpClient,
		model:  cfg.Model,
		apiKey: cfg.APIKey,
		system: geminiSystemPrompt(cfg.Language),
		u:      u,
	}, nil
}

// geminiSystemPrompt is folded into the user content because the v1beta
// generateContent call used here has no separate system role.
func geminiSystemPrompt(language string) string {
	lang := "English"
	if strings.TrimSpace(language) == "cn" {
		lang = "Chinese"
	}
	return "You are a Linux system expert specializing in resolving various Linux system issues. " +
		"Analyze the provided Linux command log to determine what occurred. " +
		"If the log contains alerts or errors, provide a solution after analyzing the situation. " +
		"Answer in " + lang + "."
}

type geminiReq struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiResp struct {
	Candidates []struct {
		Content struct {
			Role  string `json:"role"`
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

func (c *geminiClient) Explain(ctx context.Context, transcript string) (string, error) {
	rel := &url.URL{Path: "/v1beta/models/" + url.PathEscape(c.model) + ":generateContent"}
	reqURL := c.u.ResolveReference(rel)

	prompt := c.system + "\n\nTerminal output:\n" + transcript
	body, _ := json.Marshal(geminiReq{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
	})

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL.String(), bytes.NewReader(body))
	if err != nil {
		return "", &Error{Kind: ProviderError, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", &Error{Kind: NetworkFailure, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", &Error{Kind: AuthFailure, Err: fmt.Errorf("http %d from %s", resp.StatusCode, reqURL)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return "", &Error{Kind: ProviderError, Err: fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))}
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return "", &Error{Kind: NetworkFailure, Err: err}
	}
	var out geminiResp
	if err := json.Unmarshal(b, &out); err != nil {
		return "", &Error{Kind: MalformedResponse, Err: fmt.Errorf("decode: %w", err)}
	}
	if out.Error != nil && strings.TrimSpace(out.Error.Message) != "" {
		return "", &Error{Kind: ProviderError, Err: fmt.Errorf("%s", out.Error.Message)}
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", &Error{Kind: MalformedResponse, Err: fmt.Errorf("empty candidates")}
	}

	var text strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	return text.String(), nil
}
