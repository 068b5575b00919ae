package sync

import (
	"fmt"
	"net/url"

	"github.com/desertthunder/ytsync/internal/models"
	"github.com/desertthunder/ytsync/internal/shared"
)

// Resolve maps a tracking URL to the provider's canonical address and feed
// kind. A single playlist_id query parameter yields a playlist URL, a
// single channel_id parameter a channel URL; any other shape is an input
// error wrapping [shared.ErrUnsupportedURL] for the caller to record.
func Resolve(trackingURL string) (string, models.Kind, error) {
	parsed, err := url.Parse(trackingURL)
	if err != nil {
		return "", "", fmt.Errorf("%w: %s: %v", shared.ErrUnsupportedURL, trackingURL, err)
	}

	params := parsed.Query()
	if len(params) != 1 {
		return "", "", fmt.Errorf("%w: expected exactly one of playlist_id or channel_id (%s)", shared.ErrUnsupportedURL, trackingURL)
	}

	if ids, ok := params["playlist_id"]; ok && len(ids) == 1 && ids[0] != "" {
		return "https://www.youtube.com/playlist?list=" + url.QueryEscape(ids[0]), models.KindPlaylist, nil
	}
	if ids, ok := params["channel_id"]; ok && len(ids) == 1 && ids[0] != "" {
		return "https://www.youtube.com/channel/" + url.PathEscape(ids[0]), models.KindChannel, nil
	}

	return "", "", fmt.Errorf("%w: unrecognized query parameters (%s)", shared.ErrUnsupportedURL, trackingURL)
}
