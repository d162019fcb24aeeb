// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/template"
)

// DefaultBaseURL is the DeepSeek API endpoint used when none is configured.
const DefaultBaseURL = "https://api.deepseek.com"

// systemPrompt fixes the translator persona: academic register, Simplified
// Chinese, faithful and formal.
const systemPrompt = "你是学术翻译助手，输出简体中文，忠实准确，风格正式。"

// translationPromptTmpl wraps the English abstract with terminology rules:
// first occurrences of key terms keep the English with a Chinese gloss,
// names and acronyms stay in English, and nothing may be added or expanded.
var translationPromptTmpl = template.Must(template.New("translation").Parse(`请将下面英文摘要翻译为简体中文。
规则：
1) 关键术语首次出现采用：英文术语（中文翻译）；后续只保留英文术语，不再重复括号中文。
2) 模型名/方法名/数据集名/缩写：保留英文；必要时首次出现给出中文解释。
3) 不要添加原文没有的信息，不要扩写。

英文摘要：
{{.Abstract}}`))

// DeepSeekBackend calls the DeepSeek chat-completions API to translate one
// abstract per request.
type DeepSeekBackend struct {
	APIKey  string
	Model   string
	BaseURL string
	Client  *http.Client
}

// chatRequest is the request body for the chat-completions endpoint.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

// chatMessage is a single message in the chat conversation.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the response body from the chat-completions endpoint.
type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

// chatChoice is one completion choice in the response.
type chatChoice struct {
	Message chatMessage `json:"message"`
}

// Translate sends the abstract through the translation prompt and returns
// the model's trimmed reply.
func (d *DeepSeekBackend) Translate(ctx context.Context, abstract string) (string, error) {
	prompt, err := renderPrompt(abstract)
	if err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}

	reqBody := chatRequest{
		Model: d.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.2,
		Stream:      false,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	base := d.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	endpoint := strings.TrimRight(base, "/") + "/chat/completions"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+d.APIKey)

	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling DeepSeek API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("DeepSeek API returned %d: %s", resp.StatusCode, string(body))
	}

	var cResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return "", fmt.Errorf("decoding DeepSeek response: %w", err)
	}

	if len(cResp.Choices) == 0 {
		return "", fmt.Errorf("DeepSeek API returned no choices")
	}
	return strings.TrimSpace(cResp.Choices[0].Message.Content), nil
}

// renderPrompt executes the translation prompt template with the abstract.
func renderPrompt(abstract string) (string, error) {
	var buf bytes.Buffer
	if err := translationPromptTmpl.Execute(&buf, struct{ Abstract string }{Abstract: abstract}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
