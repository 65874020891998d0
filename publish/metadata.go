package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"reelforge/config"
	"reelforge/types"
)

const openRouterURL = "https://openrouter.ai/api/v1/chat/completions"

const metadataSystemPrompt = `You are a YouTube SEO specialist for short narrated slideshow videos.
Generate listing metadata that maximizes search ranking without misleading viewers.

You MUST respond with ONLY valid JSON — no markdown, no explanation, no preamble.

The JSON must have exactly these fields:
- "title": string (max 70 chars, in the same language as the script)
- "description": string (2-4 paragraphs summarizing the video, same language)
- "tags": array of up to 20 strings (mix of broad and specific tags)`

// MetadataGenerator writes the YouTube listing text for a finished video.
type MetadataGenerator struct {
	cfg        *config.Config
	httpClient *http.Client
}

// NewMetadataGenerator creates a MetadataGenerator.
func NewMetadataGenerator(cfg *config.Config) *MetadataGenerator {
	return &MetadataGenerator{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type metadataJSON struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// Generate asks the language model for listing metadata. Any failure falls
// back to metadata assembled from the script itself, so the upload can
// always proceed.
func (g *MetadataGenerator) Generate(ctx context.Context, sc *types.Script) Metadata {
	meta, err := g.generate(ctx, sc)
	if err != nil {
		log.Warn().Err(err).Msg("metadata generation failed, using script-derived metadata")
		return FallbackMetadata(sc)
	}
	return meta
}

func (g *MetadataGenerator) generate(ctx context.Context, sc *types.Script) (Metadata, error) {
	apiKey := os.Getenv("OPENROUTER_API_KEY")
	if apiKey == "" {
		return Metadata{}, fmt.Errorf("OPENROUTER_API_KEY not set")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "VIDEO TITLE: %s\nTOPIC: %s\n\nFULL NARRATION:\n", sc.Title, sc.Topic)
	for _, scene := range sc.Scenes {
		sb.WriteString(scene.Narration + "\n")
	}
	sb.WriteString("\nRespond ONLY with valid JSON.")

	reqBody := map[string]any{
		"model": g.cfg.Script.Model,
		"messages": []map[string]string{
			{"role": "system", "content": metadataSystemPrompt},
			{"role": "user", "content": sb.String()},
		},
		"temperature": 0.8,
		"max_tokens":  2048,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return Metadata{}, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", openRouterURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return Metadata{}, err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return Metadata{}, err
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return Metadata{}, err
	}

	var chat struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBytes, &chat); err != nil {
		return Metadata{}, fmt.Errorf("parse response: %w", err)
	}
	if chat.Error != nil {
		return Metadata{}, fmt.Errorf("openrouter error: %s", chat.Error.Message)
	}
	if len(chat.Choices) == 0 {
		return Metadata{}, fmt.Errorf("no choices returned")
	}

	content := strings.TrimSpace(chat.Choices[0].Message.Content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var raw metadataJSON
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &raw); err != nil {
		return Metadata{}, fmt.Errorf("parse metadata JSON: %w", err)
	}
	if raw.Title == "" {
		raw.Title = sc.Title
	}
	return Metadata{
		Title:       clipTitle(raw.Title),
		Description: raw.Description,
		Tags:        raw.Tags,
	}, nil
}

// FallbackMetadata derives listing metadata from the script alone.
func FallbackMetadata(sc *types.Script) Metadata {
	var desc strings.Builder
	desc.WriteString(sc.Title + "\n\n")
	for _, scene := range sc.Scenes {
		desc.WriteString(scene.Narration + "\n")
	}
	return Metadata{
		Title:       clipTitle(sc.Title),
		Description: desc.String(),
		Tags:        []string{"shorts", sc.Topic},
	}
}

// clipTitle enforces YouTube's 100-character title limit, cutting on a
// rune boundary.
func clipTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= 100 {
		return title
	}
	return string(runes[:100])
}
