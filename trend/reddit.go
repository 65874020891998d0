// Package trend discovers video topics from trending Reddit posts.
package trend

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/vartanbeno/go-reddit/v2/reddit"

	"reelforge/config"
	"reelforge/types"
)

// Scout finds trending topics worth turning into videos.
type Scout struct {
	cfg    *config.Config
	client *reddit.Client
}

// New creates a Scout with a read-only Reddit client.
func New(cfg *config.Config) (*Scout, error) {
	client, err := reddit.NewReadonlyClient()
	if err != nil {
		return nil, fmt.Errorf("create reddit client: %w", err)
	}
	return &Scout{cfg: cfg, client: client}, nil
}

// Topics returns today's top candidates across the configured subreddits,
// best first. Subreddits that fail to load only log a warning; the call
// fails only when every source comes back empty.
func (s *Scout) Topics(ctx context.Context) ([]types.Topic, error) {
	var candidates []types.Topic
	for _, sub := range s.cfg.Trend.Subreddits {
		posts, _, err := s.client.Subreddit.TopPosts(ctx, sub, &reddit.ListPostOptions{
			ListOptions: reddit.ListOptions{Limit: 25},
			Time:        "day",
		})
		if err != nil {
			log.Warn().Str("subreddit", sub).Err(err).Msg("subreddit fetch failed")
			continue
		}
		for _, post := range posts {
			if post.Score < s.cfg.Trend.MinScore || post.NSFW {
				continue
			}
			title := cleanTitle(post.Title)
			if title == "" {
				continue
			}
			candidates = append(candidates, types.Topic{
				Title:  title,
				Source: "r/" + post.SubredditName,
				Score:  post.Score + post.NumberOfComments,
			})
		}
	}

	if len(candidates) == 0 {
		return nil, fmt.Errorf("no topics found in %v", s.cfg.Trend.Subreddits)
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if max := s.cfg.Trend.MaxTopics; max > 0 && len(candidates) > max {
		candidates = candidates[:max]
	}
	log.Info().Int("topics", len(candidates)).Msg("topic scan complete")
	return candidates, nil
}

// cleanTitle strips the tag brackets and flair prefixes posts often carry.
func cleanTitle(title string) string {
	title = strings.TrimSpace(title)
	for strings.HasPrefix(title, "[") {
		end := strings.Index(title, "]")
		if end < 0 {
			break
		}
		title = strings.TrimSpace(title[end+1:])
	}
	return title
}
