package speech

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/vigil/internal/model"
	"github.com/ppiankov/vigil/internal/worker"
	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

// OpenAIEngine transcribes with Whisper and translates with chat completions
type OpenAIEngine struct {
	client     *openai.Client
	httpClient *http.Client
	config     model.SpeechConfig
	limiter    *worker.Limiter
	limitKey   string
	logger     *logrus.Entry
}

// NewOpenAIEngine creates a new OpenAI engine
func NewOpenAIEngine(cfg model.SpeechConfig, limiter *worker.Limiter, logger *logrus.Logger) (*OpenAIEngine, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required (set speech.api_key or VIGIL_SPEECH_API_KEY)")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	httpClient := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: ProxyFor(cfg).Func(),
		},
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	clientConfig.HTTPClient = httpClient

	limitKey := "openai"
	if host, err := worker.HostKey(clientConfig.BaseURL); err == nil {
		limitKey = host
	}

	if limiter == nil {
		limiter = worker.NewLimiter(cfg.RequestsPerSecond, cfg.Burst)
	}

	return &OpenAIEngine{
		client:     openai.NewClientWithConfig(clientConfig),
		httpClient: httpClient,
		config:     cfg,
		limiter:    limiter,
		limitKey:   limitKey,
		logger:     logger.WithField("component", "speech.openai"),
	}, nil
}

// Name returns the engine name
func (e *OpenAIEngine) Name() string {
	return "openai"
}

// Transcribe sends the audio to the transcription endpoint and converts the
// verbose response into segments
func (e *OpenAIEngine) Transcribe(ctx context.Context, audio Audio) (*Transcript, error) {
	if len(audio.Data) == 0 {
		return nil, fmt.Errorf("audio %q is empty", audio.Name)
	}
	if err := e.limiter.Wait(ctx, e.limitKey); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	modelName := e.config.Model
	if modelName == "" {
		modelName = openai.Whisper1
	}

	name := audio.Name
	if name == "" {
		name = "audio.wav"
	}

	req := openai.AudioRequest{
		Model:    modelName,
		FilePath: name,
		Reader:   bytes.NewReader(audio.Data),
		Language: languageCode(audio.Language),
		Format:   openai.AudioResponseFormatVerboseJSON,
	}

	resp, err := e.client.CreateTranscription(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("OpenAI transcription error: %w", err)
	}

	language := RouteLanguage(resp.Language)
	if hint := RouteLanguage(audio.Language); hint != "" {
		language = hint
	}
	if language == "" {
		language = model.BaseLanguage
	}

	transcript := &Transcript{Language: language}
	for _, seg := range resp.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		// avg_logprob is a mean token log-probability; exp maps it into (0, 1]
		conf := math.Exp(seg.AvgLogprob)
		transcript.Segments = append(transcript.Segments, model.TranscriptSegment{
			ID:         segmentID(len(transcript.Segments)),
			Text:       text,
			Language:   language,
			StartTime:  seg.Start,
			Confidence: &conf,
		})
	}

	// Some models return text without segments
	if len(transcript.Segments) == 0 && strings.TrimSpace(resp.Text) != "" {
		transcript.Segments = append(transcript.Segments, model.TranscriptSegment{
			ID:       segmentID(0),
			Text:     strings.TrimSpace(resp.Text),
			Language: language,
		})
	}

	e.logger.WithFields(logrus.Fields{
		"audio":    audio.Name,
		"language": language,
		"segments": len(transcript.Segments),
		"duration": resp.Duration,
	}).Debug("Transcription complete")

	return transcript, nil
}

// Translate asks the chat model for a literal translation
func (e *OpenAIEngine) Translate(ctx context.Context, text, from, to string) (string, error) {
	if strings.TrimSpace(text) == "" || RouteLanguage(from) == RouteLanguage(to) {
		return text, nil
	}
	if err := e.limiter.Wait(ctx, e.limitKey); err != nil {
		return "", fmt.Errorf("rate limit: %w", err)
	}

	modelName := e.config.TranslationModel
	if modelName == "" {
		modelName = openai.GPT4oMini
	}

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: fmt.Sprintf("Translate the user's %s text into %s. Translate literally, keep names and numbers, "+
					"and reply with the translation only.", RouteLanguage(from), RouteLanguage(to)),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: text,
			},
		},
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI translation error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Close releases idle connections
func (e *OpenAIEngine) Close() error {
	e.httpClient.CloseIdleConnections()
	return nil
}
