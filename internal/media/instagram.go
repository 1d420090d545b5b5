package media

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const mediaFields = "id,caption,media_type,media_url,permalink,timestamp,like_count,comments_count"

// InstagramPost is the subset of Graph API media fields the dashboard shows.
type InstagramPost struct {
	ID            string `json:"id"`
	Caption       string `json:"caption,omitempty"`
	MediaType     string `json:"media_type,omitempty"`
	MediaURL      string `json:"media_url,omitempty"`
	Permalink     string `json:"permalink,omitempty"`
	Timestamp     string `json:"timestamp,omitempty"`
	LikeCount     int64  `json:"like_count"`
	CommentsCount int64  `json:"comments_count"`
}

// InstagramProfile is a business discovery result.
type InstagramProfile struct {
	Username       string          `json:"username"`
	FollowersCount int64           `json:"followers_count"`
	MediaCount     int64           `json:"media_count"`
	Media          []InstagramPost `json:"media"`
}

// GraphError is an error object returned by the Graph API.
type GraphError struct {
	Status  int
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
}

func (e *GraphError) Error() string {
	return fmt.Sprintf("instagram graph: %d %s: %s", e.Status, e.Type, e.Message)
}

type InstagramClient struct {
	BaseURL    string
	Token      string
	BusinessID string
	HTTP       *http.Client
}

func NewInstagramClient(baseURL, token, businessID string) *InstagramClient {
	return &InstagramClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
		BusinessID: businessID,
		HTTP:       &http.Client{Timeout: 15 * time.Second},
	}
}

// OwnMedia lists the connected business account's recent media.
func (c *InstagramClient) OwnMedia(ctx context.Context, limit int) ([]InstagramPost, error) {
	q := url.Values{}
	q.Set("fields", mediaFields)
	q.Set("limit", fmt.Sprint(limit))

	var out struct {
		Data []InstagramPost `json:"data"`
	}
	if err := c.get(ctx, c.BusinessID+"/media", q, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// Discover runs business discovery for another professional account.
func (c *InstagramClient) Discover(ctx context.Context, username string, limit int) (*InstagramProfile, error) {
	username, err := Username(username)
	if err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("fields", fmt.Sprintf(
		"business_discovery.username(%s){username,followers_count,media_count,media.limit(%d){%s}}",
		username, limit, mediaFields))

	var out struct {
		BusinessDiscovery struct {
			Username       string `json:"username"`
			FollowersCount int64  `json:"followers_count"`
			MediaCount     int64  `json:"media_count"`
			Media          struct {
				Data []InstagramPost `json:"data"`
			} `json:"media"`
		} `json:"business_discovery"`
	}
	if err := c.get(ctx, c.BusinessID, q, &out); err != nil {
		return nil, err
	}
	bd := out.BusinessDiscovery
	return &InstagramProfile{
		Username:       bd.Username,
		FollowersCount: bd.FollowersCount,
		MediaCount:     bd.MediaCount,
		Media:          bd.Media.Data,
	}, nil
}

func (c *InstagramClient) get(ctx context.Context, path string, q url.Values, out any) error {
	q.Set("access_token", c.Token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/"+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("instagram graph: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("instagram graph: read body: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		var wrapped struct {
			Error GraphError `json:"error"`
		}
		_ = json.Unmarshal(body, &wrapped)
		wrapped.Error.Status = resp.StatusCode
		return &wrapped.Error
	}
	return json.Unmarshal(body, out)
}
