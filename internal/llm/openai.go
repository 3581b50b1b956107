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

const defaultOpenAIBaseURL = "https://api.openai.com"

type openAIClient struct {
	http   *http.Client
	model  string
	apiKey string
	system string
	u      *url.URL
}

func newOpenAIClient(httpClient *http.Client, cfg *config.Config) (Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = defaultOpenAIBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("base_url: %w", err)
	}
	return &openAIClient{
		http:   httpClient,
		model:  cfg.Model,
		apiKey: cfg.APIKey,
		system: systemPrompt(cfg.Language),
		u:      u,
	}, nil
}

type oaiChatReq struct {
	Model    string       `json:"model"`
	Messages []oaiChatMsg `json:"messages"`
}

type oaiChatMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type oaiChatResp struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

func (c *openAIClient) Explain(ctx context.Context, transcript string) (string, error) {
	reqURL := c.u.ResolveReference(&url.URL{Path: "/v1/chat/completions"})

	payload := oaiChatReq{
		Model: c.model,
		Messages: []oaiChatMsg{
			{Role: "system", Content: c.system},
			{Role: "user", Content: "Terminal output:\n" + transcript},
		},
	}
	body, _ := json.Marshal(payload)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL.String(), bytes.NewReader(body))
	if err != nil {
		return "", &Error{Kind: ProviderError, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

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
	var out oaiChatResp
	if err := json.Unmarshal(b, &out); err != nil {
		return "", &Error{Kind: MalformedResponse, Err: fmt.Errorf("decode: %w", err)}
	}
	if out.Error != nil && strings.TrimSpace(out.Error.Message) != "" {
		return "", &Error{Kind: ProviderError, Err: fmt.Errorf("%s", out.Error.Message)}
	}
	if len(out.Choices) == 0 {
		return "", &Error{Kind: MalformedResponse, Err: fmt.Errorf("empty choices")}
	}
	return out.Choices[0].Message.Content, nil
}
