package sheetsync

import (
	"errors"
	"os"
	"strings"
)

var ActiveFeedConfig *FeedConfig

type FeedConfig struct {
	DefaultSheetURL string
	AllowedOrigins  []string
	CronExpr        string
}

// ParseFeedConfigFromEnv SHEET_FEED_URL is required; CORS_ALLOW_ORIGINS is a
// comma separated list defaulting to "*"; SYNC_CRON is an optional 5-field
// cron expression enabling scheduled syncs.
func ParseFeedConfigFromEnv() (*FeedConfig, error) {
	feedURL := os.Getenv("SHEET_FEED_URL")
	if feedURL == "" {
		return nil, errors.New("environment variable SHEET_FEED_URL is required")
	}

	origins := []string{"*"}
	if raw := os.Getenv("CORS_ALLOW_ORIGINS"); raw != "" {
		origins = nil
		for _, origin := range strings.Split(raw, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				origins = append(origins, origin)
			}
		}
	}

	return &FeedConfig{
		DefaultSheetURL: feedURL,
		AllowedOrigins:  origins,
		CronExpr:        os.Getenv("SYNC_CRON"),
	}, nil
}
