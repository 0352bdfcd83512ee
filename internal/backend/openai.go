package backend

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	openai "github.com/sashabaranov/go-openai"

	"github.com/jwulff/fileforge/internal/domain"
)

// sampleSize is how many leading bytes of a file are shown to the model.
const sampleSize = 4096

// OpenAIConfig configures OpenAIBackend.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
	Scanner Scanner
}

// OpenAIBackend implements Service with chat completions. Scanning is
// delegated to a local Scanner; conversion handles text input only.
type OpenAIBackend struct {
	client  *openai.Client
	model   string
	scanner Scanner
}

// NewOpenAIBackend builds the backend. A missing API key is not an error
// here; every call then fails with ErrServiceUnavailable.
func NewOpenAIBackend(cfg OpenAIConfig) *OpenAIBackend {
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Scanner == nil {
		cfg.Scanner = NewSignatureScanner()
	}

	b := &OpenAIBackend{model: cfg.Model, scanner: cfg.Scanner}
	if cfg.APIKey != "" {
		clientCfg := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientCfg.BaseURL = cfg.BaseURL
		}
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
		b.client = openai.NewClientWithConfig(clientCfg)
	}
	return b
}

// Scan delegates to the configured scanner.
func (b *OpenAIBackend) Scan(ctx context.Context, file domain.File) (domain.ScanResult, error) {
	return b.scanner.Scan(ctx, file)
}

// Analyze classifies the file from its name, type and a content sample.
func (b *OpenAIBackend) Analyze(ctx context.Context, file domain.File, status domain.ScanStatus) (domain.AnalysisResult, error) {
	prompt := fmt.Sprintf(`Analyze this file and answer with a JSON object.
Use "type": "image" for images, otherwise "type": "file".
For "file" include: fileType, extension (with leading dot), description, commonUses, potentialRisks, conversionSuggestions.
For "image" include: format, description, tags, editSuggestions, conversionSuggestions.
conversionSuggestions is a list of {"format", "extension"} target formats.

Name: %s
MIME type: %s
Size: %d bytes
Threat scan: %s
Content sample:
%s`, file.Name(), file.MimeType(), file.Size(), status, contentSample(file.Bytes()))

	var payload AnalysisPayload
	if err := b.completeJSON(ctx, prompt, &payload); err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("analyze: %w", err)
	}
	return payload.ToDomain()
}

// GenerateScripts asks for example scripts converting between two formats.
func (b *OpenAIBackend) GenerateScripts(ctx context.Context, sourceFormat, targetFormat string) (map[string]string, error) {
	prompt := fmt.Sprintf(`Write short example scripts that convert a %s file to %s.
Answer with a JSON object {"scripts": {"<language>": "<script>"}} containing a Python and a shell example.`,
		sourceFormat, targetFormat)

	var payload struct {
		Scripts map[string]string `json:"scripts"`
	}
	if err := b.completeJSON(ctx, prompt, &payload); err != nil {
		return nil, fmt.Errorf("scripts: %w", err)
	}
	if payload.Scripts == nil {
		payload.Scripts = map[string]string{}
	}
	return payload.Scripts, nil
}

// Convert rewrites a text file into the target format.
func (b *OpenAIBackend) Convert(ctx context.Context, file domain.File, targetFormat string) (domain.ConversionResult, error) {
	if !utf8.Valid(file.Bytes()) {
		return domain.ConversionResult{}, fmt.Errorf("convert: binary input: %w", ErrUnsupported)
	}

	prompt := fmt.Sprintf(`Convert the following %s content named %q to %s.
Answer with a JSON object {"content": "<converted content>", "isBinary": false, "mimeType": "<mime type of the result>"}.
If the target format is binary, set isBinary to true and base64-encode content.

%s`, file.MimeType(), file.Name(), targetFormat, string(file.Bytes()))

	var payload ConversionPayload
	if err := b.completeJSON(ctx, prompt, &payload); err != nil {
		return domain.ConversionResult{}, fmt.Errorf("convert: %w", err)
	}
	if payload.MimeType == "" {
		payload.MimeType = "application/octet-stream"
	}
	return payload.ToDomain(), nil
}

// completeJSON runs one JSON-mode chat completion and decodes the reply into out.
func (b *OpenAIBackend) completeJSON(ctx context.Context, prompt string, out any) error {
	if b.client == nil {
		return fmt.Errorf("%w: no OpenAI API key configured", ErrServiceUnavailable)
	}

	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You are a file format expert. Reply with JSON only."},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return errors.New("model returned no choices")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("parse model reply: %w", err)
	}
	return nil
}

// classifyOpenAIError marks transport failures and server-side errors as
// ErrServiceUnavailable.
func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode >= 500 {
		return fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode >= 500 {
		return fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}
	return err
}

func contentSample(data []byte) string {
	head := data
	if len(head) > sampleSize {
		head = head[:sampleSize]
	}
	if utf8.Valid(head) {
		return string(head)
	}
	if len(head) > 64 {
		head = head[:64]
	}
	return fmt.Sprintf("<binary, %d bytes, leading bytes %s>", len(data), hex.EncodeToString(head))
}
