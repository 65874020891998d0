package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Trend     TrendConfig     `yaml:"trend"`
	Script    ScriptConfig    `yaml:"script"`
	Visuals   VisualsConfig   `yaml:"visuals"`
	Audio     AudioConfig     `yaml:"audio"`
	Render    RenderConfig    `yaml:"render"`
	Subtitles SubtitlesConfig `yaml:"subtitles"`
	Upload    UploadConfig    `yaml:"upload"`
	Paths     PathsConfig     `yaml:"paths"`
}

type TrendConfig struct {
	Subreddits []string `yaml:"subreddits"`
	MaxTopics  int      `yaml:"max_topics"`
	MinScore   int      `yaml:"min_score"`
}

type ScriptConfig struct {
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MinScenes   int     `yaml:"min_scenes"`
	MaxScenes   int     `yaml:"max_scenes"`
}

type VisualsConfig struct {
	ImageWidth     int     `yaml:"image_width"`
	ImageHeight    int     `yaml:"image_height"`
	Model          string  `yaml:"model"`
	MaxConcurrent  int     `yaml:"max_concurrent"`
	RequestsPerMin int     `yaml:"requests_per_min"`
	TimeoutSec     float64 `yaml:"timeout_sec"`
}

type AudioConfig struct {
	Voice          string  `yaml:"voice"`
	Rate           string  `yaml:"rate"`
	MaxConcurrent  int     `yaml:"max_concurrent"`
	TimeoutSec     float64 `yaml:"timeout_sec"`
	RequestsPerMin int     `yaml:"requests_per_min"`
}

type RenderConfig struct {
	Width        int     `yaml:"width"`
	Height       int     `yaml:"height"`
	FPS          int     `yaml:"fps"`
	ZoomRatio    float64 `yaml:"zoom_ratio"`
	CrossfadeSec float64 `yaml:"crossfade_sec"`
	BGMFile      string  `yaml:"bgm_file"`
	BGMVolume    float64 `yaml:"bgm_volume"`
	Preset       string  `yaml:"preset"`
	CRF          int     `yaml:"crf"`
}

type SubtitlesConfig struct {
	Enabled        bool    `yaml:"enabled"`
	FallbackSec    float64 `yaml:"fallback_sec"`
	MaxTitleLength int     `yaml:"max_title_length"`
}

type UploadConfig struct {
	Enabled           bool   `yaml:"enabled"`
	Visibility        string `yaml:"visibility"`
	CategoryID        string `yaml:"category_id"`
	DefaultLanguage   string `yaml:"default_language"`
	NotifySubscribers bool   `yaml:"notify_subscribers"`
	MadeForKids       bool   `yaml:"made_for_kids"`
}

type PathsConfig struct {
	Output string `yaml:"output"`
	Work   string `yaml:"work"`
}

// Default returns the built-in configuration. A config file overrides
// only the fields it sets.
func Default() *Config {
	return &Config{
		Trend: TrendConfig{
			Subreddits: []string{"popular"},
			MaxTopics:  10,
			MinScore:   100,
		},
		Script: ScriptConfig{
			Model:       "deepseek/deepseek-chat",
			Temperature: 0.8,
			MinScenes:   3,
			MaxScenes:   6,
		},
		Visuals: VisualsConfig{
			ImageWidth:     1080,
			ImageHeight:    1920,
			Model:          "flux",
			MaxConcurrent:  3,
			RequestsPerMin: 30,
			TimeoutSec:     90,
		},
		Audio: AudioConfig{
			Voice:          "zh-CN-XiaoxiaoNeural",
			Rate:           "+50%",
			MaxConcurrent:  3,
			TimeoutSec:     60,
			RequestsPerMin: 30,
		},
		Render: RenderConfig{
			Width:        1080,
			Height:       1920,
			FPS:          24,
			ZoomRatio:    0.15,
			CrossfadeSec: 0.3,
			BGMVolume:    0.12,
			Preset:       "medium",
			CRF:          22,
		},
		Subtitles: SubtitlesConfig{
			Enabled:     true,
			FallbackSec: 3.0,
		},
		Upload: UploadConfig{
			Visibility:      "private",
			CategoryID:      "22",
			DefaultLanguage: "zh-CN",
		},
		Paths: PathsConfig{
			Output: "output/video",
			Work:   "output/.work",
		},
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault uses Load when path exists, otherwise the defaults.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}
