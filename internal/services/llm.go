package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"ai-recruiter/internal/config"
)

// retryInstruction is appended as a corrective user turn when the model
// replies with something that is not valid JSON.
const retryInstruction = "Your previous reply was not valid JSON. Respond again with ONLY the JSON object described in the system prompt, no markdown, no extra text."

// ChatMessage is one turn of conversation passed to the LLM. Role is the
// transcript role ("user" or "assistant"); it is mapped to the provider's
// role names inside the gateway.
type ChatMessage struct {
	Role string
	Text string
}

// Generator produces a raw completion for a conversation. It is the seam
// the JSON retry contract is built on.
type Generator interface {
	Generate(ctx context.Context, history []ChatMessage, systemPrompt string, temperature float32, model string, pdfFile []byte) (string, error)
}

type LLMService interface {
	Generator
	GenerateJSON(ctx context.Context, history []ChatMessage, systemPrompt string, temperature float32, model string, pdfFile []byte, target interface{}) error
	TranscribeAudio(ctx context.Context, audio []byte, filename string) (string, error)
	TextToSpeech(ctx context.Context, text string) ([]byte, error)
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// MalformedResponseError is returned when the LLM reply cannot be decoded
// into the expected JSON shape even after the single retry.
type MalformedResponseError struct {
	Raw string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed llm response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// jsonValidator is implemented by reply schemas that have required fields.
type jsonValidator interface {
	Validate() error
}

type llmService struct {
	client *genai.Client
	cfg    config.GeminiConfig
}

func NewLLMService(cfg config.GeminiConfig) (LLMService, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &llmService{client: client, cfg: cfg}, nil
}

// Generate implements LLMService.
func (s *llmService) Generate(ctx context.Context, history []ChatMessage, systemPrompt string, temperature float32, model string, pdfFile []byte) (string, error) {
	if model == "" {
		model = s.cfg.ChatModel
	}

	contents := make([]*genai.Content, 0, len(history))
	for _, message := range history {
		role := genai.RoleUser
		if message.Role == "assistant" {
			role = genai.RoleModel
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: message.Text}},
		})
	}

	if pdfFile != nil && len(contents) > 0 {
		last := contents[len(contents)-1]
		last.Parts = append(last.Parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: "application/pdf", Data: pdfFile},
		})
	}

	genCfg := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 4096,
	}
	if systemPrompt != "" {
		genCfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		}
	}

	resp, err := s.client.Models.GenerateContent(ctx, model, contents, genCfg)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}
	if resp == nil {
		return "", fmt.Errorf("no response generated")
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("no text content in response")
	}
	return text, nil
}

// GenerateJSON implements LLMService.
func (s *llmService) GenerateJSON(ctx context.Context, history []ChatMessage, systemPrompt string, temperature float32, model string, pdfFile []byte, target interface{}) error {
	return GenerateJSON(ctx, s, history, systemPrompt, temperature, model, pdfFile, target)
}

// GenerateJSON asks the generator for a JSON reply and decodes it into
// target. On a malformed reply it retries exactly once: the bad reply and a
// corrective user turn are appended to the history and the generator is
// re-invoked with the same system prompt. A second failure is fatal.
func GenerateJSON(ctx context.Context, gen Generator, history []ChatMessage, systemPrompt string, temperature float32, model string, pdfFile []byte, target interface{}) error {
	raw, err := gen.Generate(ctx, history, systemPrompt, temperature, model, pdfFile)
	if err != nil {
		return err
	}

	if err := decodeJSONReply(raw, target); err == nil {
		return nil
	} else {
		log.Warn().Err(err).Msg("LLM reply was not valid JSON, retrying once")
	}

	retryHistory := make([]ChatMessage, 0, len(history)+2)
	retryHistory = append(retryHistory, history...)
	retryHistory = append(retryHistory,
		ChatMessage{Role: "assistant", Text: raw},
		ChatMessage{Role: "user", Text: retryInstruction},
	)

	raw, err = gen.Generate(ctx, retryHistory, systemPrompt, temperature, model, pdfFile)
	if err != nil {
		return err
	}

	if err := decodeJSONReply(raw, target); err != nil {
		return &MalformedResponseError{Raw: raw, Err: err}
	}
	return nil
}

func decodeJSONReply(raw string, target interface{}) error {
	jsonStr := extractJSON(raw)
	if err := json.Unmarshal([]byte(jsonStr), target); err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	if v, ok := target.(jsonValidator); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// extractJSON pulls a JSON object or array out of text that might contain
// markdown or other wrapping.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	startObj := strings.Index(text, "{")
	startArr := strings.Index(text, "[")
	endObj := strings.LastIndex(text, "}")
	endArr := strings.LastIndex(text, "]")

	if startObj != -1 && endObj != -1 && endObj > startObj {
		return text[startObj : endObj+1]
	} else if startArr != -1 && endArr != -1 && endArr > startArr {
		return text[startArr : endArr+1]
	}

	return text
}

// TranscribeAudio implements LLMService. The audio bytes are sent as an
// inline part together with a transcription instruction.
func (s *llmService) TranscribeAudio(ctx context.Context, audio []byte, filename string) (string, error) {
	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{Text: "Transcribe this audio recording verbatim. Reply with the transcription text only."},
			{InlineData: &genai.Blob{MIMEType: audioMIMEType(filename), Data: audio}},
		},
	}}

	resp, err := s.client.Models.GenerateContent(ctx, s.cfg.STTModel, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to transcribe audio: %w", err)
	}
	if resp == nil {
		return "", fmt.Errorf("no transcription generated")
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("empty transcription")
	}
	return text, nil
}

// TextToSpeech implements LLMService.
func (s *llmService) TextToSpeech(ctx context.Context, text string) ([]byte, error) {
	genCfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{
					VoiceName: s.cfg.Voice,
				},
			},
		},
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.cfg.TTSModel, genai.Text(text), genCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to synthesize speech: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no audio generated")
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return part.InlineData.Data, nil
		}
	}
	return nil, fmt.Errorf("no audio content in response")
}

// GenerateEmbedding implements LLMService.
func (s *llmService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	// Truncate very long resumes; the embedding model has a token cap.
	if len(text) > 40000 {
		text = text[:40000]
	}

	result, err := s.client.Models.EmbedContent(ctx, s.cfg.EmbedModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}
	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	return result.Embeddings[0].Values, nil
}

func audioMIMEType(filename string) string {
	switch {
	case strings.HasSuffix(filename, ".mp3"):
		return "audio/mp3"
	case strings.HasSuffix(filename, ".ogg"):
		return "audio/ogg"
	case strings.HasSuffix(filename, ".webm"):
		return "audio/webm"
	default:
		return "audio/wav"
	}
}
