package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	appErrors "github.com/ampplex/influencerflow/internal/errors"
	"github.com/ampplex/influencerflow/internal/media"
)

const (
	ownMediaLimit    = 50
	discoveryLimit   = 25
	batchConcurrency = 4
	maxBatchURLs     = 20
	lookupTimeout    = 30 * time.Second
)

// InstagramAPI is the Graph API surface used for monitoring.
type InstagramAPI interface {
	OwnMedia(ctx context.Context, limit int) ([]media.InstagramPost, error)
	Discover(ctx context.Context, username string, limit int) (*media.InstagramProfile, error)
}

type YouTubeAPI interface {
	Video(ctx context.Context, id string) (*media.YouTubeVideo, error)
}

var (
	_ InstagramAPI = (*media.InstagramClient)(nil)
	_ YouTubeAPI   = (*media.YouTubeClient)(nil)
)

type MonitorService struct {
	Instagram InstagramAPI
	YouTube   YouTubeAPI
	Log       logrus.FieldLogger

	cache *expirable.LRU[string, *media.InstagramPost]
	group singleflight.Group
}

func NewMonitorService(ig InstagramAPI, yt YouTubeAPI, size int, ttl time.Duration, log logrus.FieldLogger) *MonitorService {
	return &MonitorService{
		Instagram: ig,
		YouTube:   yt,
		Log:       log,
		cache:     expirable.NewLRU[string, *media.InstagramPost](size, nil, ttl),
	}
}

// InstagramPost finds a post of the connected business account by URL.
func (s *MonitorService) InstagramPost(ctx context.Context, postURL string) (*media.InstagramPost, error) {
	code, err := media.Shortcode(postURL)
	if err != nil {
		return nil, appErrors.BadRequest("%v", err)
	}
	if s.Instagram == nil {
		return nil, appErrors.Upstream("instagram", errors.New("not configured"))
	}

	posts, err := s.Instagram.OwnMedia(ctx, ownMediaLimit)
	if err != nil {
		return nil, appErrors.Upstream("instagram", err)
	}
	for i := range posts {
		if permalinkCode, err := media.Shortcode(posts[i].Permalink); err == nil && permalinkCode == code {
			return &posts[i], nil
		}
	}
	return nil, &appErrors.NotFoundError{Entity: "Instagram post", ID: code}
}

func (s *MonitorService) YouTubeVideo(ctx context.Context, videoURL string) (*media.YouTubeVideo, error) {
	id, err := media.VideoID(videoURL)
	if err != nil {
		return nil, appErrors.BadRequest("%v", err)
	}
	if s.YouTube == nil {
		return nil, appErrors.Upstream("youtube", errors.New("not configured"))
	}

	v, err := s.YouTube.Video(ctx, id)
	if errors.Is(err, media.ErrVideoNotFound) {
		return nil, &appErrors.NotFoundError{Entity: "YouTube video", ID: id}
	}
	if err != nil {
		return nil, appErrors.Upstream("youtube", err)
	}
	return v, nil
}

// InstagramPosts returns a professional account's recent media.
func (s *MonitorService) InstagramPosts(ctx context.Context, username string) (*media.InstagramProfile, error) {
	username, err := media.Username(username)
	if err != nil {
		return nil, appErrors.BadRequest("%v", err)
	}
	if s.Instagram == nil {
		return nil, appErrors.Upstream("instagram", errors.New("not configured"))
	}
	profile, err := s.Instagram.Discover(ctx, username, discoveryLimit)
	if err != nil {
		return nil, appErrors.Upstream("instagram", err)
	}
	return profile, nil
}

// InstagramPostByUsername looks a post up through business discovery. Results
// are cached per username:postId and concurrent misses share one call. The
// shared call outlives any single caller's cancellation.
func (s *MonitorService) InstagramPostByUsername(ctx context.Context, username, postID string) (*media.InstagramPost, error) {
	postID = strings.TrimSpace(postID)
	if postID == "" {
		return nil, appErrors.BadRequest("username and postId are required")
	}
	username, err := media.Username(username)
	if err != nil {
		return nil, appErrors.BadRequest("%v", err)
	}

	key := username + ":" + postID
	if post, ok := s.cache.Get(key); ok {
		return post, nil
	}

	ch := s.group.DoChan(key, func() (any, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lookupTimeout)
		defer cancel()

		profile, err := s.InstagramPosts(lookupCtx, username)
		if err != nil {
			return nil, err
		}
		for i := range profile.Media {
			if profile.Media[i].ID == postID {
				post := profile.Media[i]
				s.cache.Add(key, &post)
				return &post, nil
			}
		}
		return nil, &appErrors.NotFoundError{Entity: "Instagram post", ID: key}
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*media.InstagramPost), nil
	}
}

// MonitorResult is one entry of a batch lookup.
type MonitorResult struct {
	URL       string               `json:"url"`
	Instagram *media.InstagramPost `json:"instagram,omitempty"`
	YouTube   *media.YouTubeVideo  `json:"youtube,omitempty"`
	Error     string               `json:"error,omitempty"`
}

// MonitorBatch resolves a mix of Instagram and YouTube URLs concurrently.
// Failures are reported per URL.
func (s *MonitorService) MonitorBatch(ctx context.Context, urls []string) ([]MonitorResult, error) {
	if len(urls) == 0 || len(urls) > maxBatchURLs {
		return nil, appErrors.BadRequest("between 1 and %d urls are required", maxBatchURLs)
	}

	results := make([]MonitorResult, len(urls))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(batchConcurrency)

	for i, u := range urls {
		i, u := i, u
		eg.Go(func() error {
			res := MonitorResult{URL: u}
			var err error
			if _, idErr := media.VideoID(u); idErr == nil {
				res.YouTube, err = s.YouTubeVideo(egCtx, u)
			} else {
				res.Instagram, err = s.InstagramPost(egCtx, u)
			}
			if err != nil {
				res.Error = err.Error()
			}
			results[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("monitor batch: %w", err)
	}

	s.Log.WithField("count", len(urls)).Info("📊 media batch resolved")
	return results, nil
}
