// Package publish uploads finished videos to YouTube via Data API v3.
package publish

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"reelforge/config"
	"reelforge/types"
)

// Uploader publishes videos through the YouTube Data API.
type Uploader struct {
	cfg *config.Config
}

// New creates an Uploader.
func New(cfg *config.Config) *Uploader {
	return &Uploader{cfg: cfg}
}

// Metadata is the listing information attached to an upload.
type Metadata struct {
	Title       string
	Description string
	Tags        []string
}

// Upload pushes the video to YouTube and returns its watch URL. Files
// above 5 MB go through the API's resumable upload automatically.
func (u *Uploader) Upload(ctx context.Context, result *types.RenderResult, meta Metadata) (string, error) {
	client, err := u.oauthClient(ctx)
	if err != nil {
		return "", fmt.Errorf("youtube auth: %w", err)
	}

	svc, err := youtube.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return "", fmt.Errorf("youtube service: %w", err)
	}

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:                meta.Title,
			Description:          meta.Description,
			Tags:                 meta.Tags,
			CategoryId:           u.cfg.Upload.CategoryID,
			DefaultLanguage:      u.cfg.Upload.DefaultLanguage,
			DefaultAudioLanguage: u.cfg.Upload.DefaultLanguage,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           u.cfg.Upload.Visibility,
			SelfDeclaredMadeForKids: u.cfg.Upload.MadeForKids,
		},
	}

	f, err := os.Open(result.VideoFile)
	if err != nil {
		return "", fmt.Errorf("open video file: %w", err)
	}
	defer f.Close()

	if fi, err := f.Stat(); err == nil {
		log.Info().Str("title", meta.Title).
			Float64("size_mb", float64(fi.Size())/1024/1024).
			Msg("uploading video")
	}

	uploaded, err := svc.Videos.Insert([]string{"snippet", "status"}, video).
		NotifySubscribers(u.cfg.Upload.NotifySubscribers).
		Media(f).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("youtube upload: %w", err)
	}

	watchURL := fmt.Sprintf("https://www.youtube.com/watch?v=%s", uploaded.Id)
	log.Info().Str("video_id", uploaded.Id).Str("url", watchURL).Msg("upload complete")
	return watchURL, nil
}

// oauthClient builds an OAuth2 HTTP client from env refresh-token
// credentials, so the pipeline runs headless.
func (u *Uploader) oauthClient(ctx context.Context) (*http.Client, error) {
	clientID := os.Getenv("YOUTUBE_CLIENT_ID")
	clientSecret := os.Getenv("YOUTUBE_CLIENT_SECRET")
	refreshToken := os.Getenv("YOUTUBE_REFRESH_TOKEN")
	if clientID == "" || clientSecret == "" || refreshToken == "" {
		return nil, fmt.Errorf("YOUTUBE_CLIENT_ID, YOUTUBE_CLIENT_SECRET, or YOUTUBE_REFRESH_TOKEN not set")
	}

	conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{youtube.YoutubeUploadScope},
	}
	token := &oauth2.Token{
		RefreshToken: refreshToken,
		Expiry:       time.Now().Add(-time.Hour), // force refresh
	}
	return oauth2.NewClient(ctx, conf.TokenSource(ctx, token)), nil
}
