// Package script turns a topic into a narrated storyboard via an
// OpenAI-compatible chat completion API.
package script

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

const systemPrompt = `You are a scriptwriter for short narrated slideshow videos. Given a topic, you produce a storyboard of scenes. Each scene is one spoken sentence or two, paired with a vivid image generation prompt.

You MUST respond with ONLY valid JSON — no preamble, no markdown, no explanation.

The JSON object has:
- "title": a short video title for the topic
- "scenes": an array where each element has:
  - "narration": the exact words to be spoken (1-2 sentences)
  - "image_prompt": a detailed image generation prompt for this scene, in English, describing a single vertical photograph or illustration

Write the narration in the same language as the topic. Keep every scene's narration tight; the whole video should run well under two minutes when read aloud.`

// Storyboarder produces a scene-by-scene script for a topic.
type Storyboarder interface {
	Storyboard(ctx context.Context, topic, persona string) (*types.Script, error)
}

// Writer generates storyboards through OpenRouter.
type Writer struct {
	cfg        *config.Config
	httpClient *http.Client
}

// New creates a script Writer.
func New(cfg *config.Config) *Writer {
	return &Writer{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// storyboardJSON is the raw structure the model returns.
type storyboardJSON struct {
	Title  string `json:"title"`
	Scenes []struct {
		Narration   string `json:"narration"`
		ImagePrompt string `json:"image_prompt"`
	} `json:"scenes"`
}

// Storyboard asks the model for a scene list on the topic. The persona
// string, when set, colors the narration voice ("a calm science teacher").
func (w *Writer) Storyboard(ctx context.Context, topic, persona string) (*types.Script, error) {
	apiKey := os.Getenv("OPENROUTER_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENROUTER_API_KEY not set")
	}

	log.Info().Str("topic", topic).Str("model", w.cfg.Script.Model).Msg("generating storyboard")

	reqBody := chatRequest{
		Model: w.cfg.Script.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: w.buildUserPrompt(topic, persona)},
		},
		Temperature: w.cfg.Script.Temperature,
		MaxTokens:   4096,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", openRouterURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openrouter request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var chat chatResponse
	if err := json.Unmarshal(respBytes, &chat); err != nil {
		return nil, fmt.Errorf("parse openrouter response: %w", err)
	}
	if chat.Error != nil {
		return nil, fmt.Errorf("openrouter error: %s", chat.Error.Message)
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("openrouter returned no choices")
	}

	content := cleanJSON(chat.Choices[0].Message.Content)
	var raw storyboardJSON
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("parse storyboard JSON: %w\nraw content: %s", err, head(content, 200))
	}

	script, err := w.convert(topic, persona, raw)
	if err != nil {
		return nil, err
	}
	log.Info().Int("scenes", len(script.Scenes)).Float64("estimated_sec", script.TotalSec).
		Msg("storyboard ready")
	return script, nil
}

func (w *Writer) buildUserPrompt(topic, persona string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Write a storyboard of %d-%d scenes on the topic below.\n\n",
		w.cfg.Script.MinScenes, w.cfg.Script.MaxScenes)
	fmt.Fprintf(&sb, "TOPIC: %s\n\n", topic)
	if persona != "" {
		fmt.Fprintf(&sb, "NARRATOR PERSONA: %s\n\n", persona)
	}
	sb.WriteString("Respond ONLY with valid JSON. No markdown. No explanation.")
	return sb.String()
}

func (w *Writer) convert(topic, persona string, raw storyboardJSON) (*types.Script, error) {
	script := &types.Script{
		Topic:   topic,
		Title:   strings.TrimSpace(raw.Title),
		Persona: persona,
	}
	if script.Title == "" {
		script.Title = topic
	}

	// Rough pre-synthesis timing at a natural reading pace. The real
	// durations come from probing the narration audio later.
	var elapsed float64
	for _, s := range raw.Scenes {
		narration := strings.TrimSpace(s.Narration)
		if narration == "" {
			continue
		}
		words := len(strings.Fields(narration))
		duration := float64(words) / 130.0 * 60.0
		script.Scenes = append(script.Scenes, types.Scene{
			Index:       len(script.Scenes) + 1,
			Narration:   narration,
			ImagePrompt: strings.TrimSpace(s.ImagePrompt),
			DurationSec: duration,
		})
		elapsed += duration
	}
	if len(script.Scenes) == 0 {
		return nil, fmt.Errorf("storyboard has no usable scenes")
	}
	script.TotalSec = elapsed
	return script, nil
}

// cleanJSON strips markdown fences if the model wraps its response.
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
