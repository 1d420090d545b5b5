package media

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

type YouTubeVideo struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	ChannelTitle string `json:"channel_title"`
	PublishedAt  string `json:"published_at"`
	Thumbnail    string `json:"thumbnail,omitempty"`
	ViewCount    uint64 `json:"view_count"`
	LikeCount    uint64 `json:"like_count"`
	CommentCount uint64 `json:"comment_count"`
}

// ErrVideoNotFound is returned when the API has no item for the id.
var ErrVideoNotFound = errors.New("media: youtube video not found")

type YouTubeClient struct {
	svc *youtube.Service
}

// NewYouTubeClient authenticates with an API key. endpoint overrides the
// default API host and may be empty.
func NewYouTubeClient(ctx context.Context, apiKey, endpoint string) (*YouTubeClient, error) {
	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("youtube client: %w", err)
	}
	return &YouTubeClient{svc: svc}, nil
}

func (c *YouTubeClient) Video(ctx context.Context, id string) (*YouTubeVideo, error) {
	resp, err := c.svc.Videos.List([]string{"snippet", "statistics"}).Id(id).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("youtube videos.list: %w", err)
	}
	if len(resp.Items) == 0 {
		return nil, ErrVideoNotFound
	}

	item := resp.Items[0]
	v := &YouTubeVideo{ID: item.Id}
	if sn := item.Snippet; sn != nil {
		v.Title = sn.Title
		v.ChannelTitle = sn.ChannelTitle
		v.PublishedAt = sn.PublishedAt
		if sn.Thumbnails != nil && sn.Thumbnails.High != nil {
			v.Thumbnail = sn.Thumbnails.High.Url
		}
	}
	if st := item.Statistics; st != nil {
		v.ViewCount = st.ViewCount
		v.LikeCount = st.LikeCount
		v.CommentCount = st.CommentCount
	}
	return v, nil
}
