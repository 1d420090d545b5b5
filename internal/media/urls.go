package media

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

var (
	ErrBadPostURL  = errors.New("media: not an instagram post url")
	ErrBadVideoURL = errors.New("media: not a youtube video url")
	ErrBadUsername = errors.New("media: not an instagram username")
)

var (
	shortcodePattern = regexp.MustCompile(`/(?:p|reel|reels|tv)/([A-Za-z0-9_-]+)`)
	videoIDPattern   = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	usernamePattern  = regexp.MustCompile(`^[A-Za-z0-9._]{1,30}$`)
)

// Username strips a leading @ and checks the handle against Instagram's
// character set.
func Username(raw string) (string, error) {
	name := strings.TrimPrefix(strings.TrimSpace(raw), "@")
	if !usernamePattern.MatchString(name) {
		return "", ErrBadUsername
	}
	return name, nil
}

func isInstagramHost(host string) bool {
	return host == "instagram.com" || strings.HasSuffix(host, ".instagram.com")
}

// Shortcode extracts the post code from an instagram.com /p/, /reel/ or /tv/ URL.
func Shortcode(postURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(postURL))
	if err != nil || !isInstagramHost(strings.ToLower(u.Hostname())) {
		return "", ErrBadPostURL
	}
	m := shortcodePattern.FindStringSubmatch(u.Path)
	if m == nil {
		return "", ErrBadPostURL
	}
	return m[1], nil
}

// VideoID extracts the id from watch?v=, youtu.be/, /shorts/ and /embed/ URLs.
func VideoID(videoURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(videoURL))
	if err != nil {
		return "", ErrBadVideoURL
	}

	var id string
	host := strings.TrimPrefix(u.Hostname(), "www.")
	switch {
	case host == "youtu.be":
		id = strings.Trim(u.Path, "/")
	case host == "youtube.com" || host == "m.youtube.com" || host == "music.youtube.com":
		switch {
		case u.Path == "/watch":
			id = u.Query().Get("v")
		case strings.HasPrefix(u.Path, "/shorts/"):
			id = strings.TrimPrefix(u.Path, "/shorts/")
		case strings.HasPrefix(u.Path, "/embed/"):
			id = strings.TrimPrefix(u.Path, "/embed/")
		}
		id = strings.Trim(id, "/")
	}

	if !videoIDPattern.MatchString(id) {
		return "", ErrBadVideoURL
	}
	return id, nil
}
