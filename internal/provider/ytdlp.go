package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"

	"github.com/desertthunder/ytsync/internal/shared"
)

const defaultBinary = "yt-dlp"
const defaultTimeout = 60 * time.Second

// commandRunner executes the extractor binary and returns its stdout.
// Abstracted so tests can substitute canned JSON documents.
type commandRunner func(ctx context.Context, binary string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, binary string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, binary, args...).Output()
}

// YTDLP implements [Provider] by invoking the yt-dlp binary.
type YTDLP struct {
	binary  string
	cookies string
	timeout time.Duration
	run     commandRunner
}

// YTDLPOpts contains configuration options for creating a [YTDLP] provider.
type YTDLPOpts struct {
	Binary      string        // Path to the yt-dlp binary (default "yt-dlp")
	CookiesPath string        // Optional cookies file forwarded to the extractor
	Timeout     time.Duration // Per-invocation timeout (default 60s)
}

// NewYTDLP creates a yt-dlp backed provider.
func NewYTDLP(opts YTDLPOpts) *YTDLP {
	if opts.Binary == "" {
		opts.Binary = defaultBinary
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	return &YTDLP{
		binary:  opts.Binary,
		cookies: opts.CookiesPath,
		timeout: opts.Timeout,
		run:     execRunner,
	}
}

// feedDocument mirrors the subset of a yt-dlp playlist/channel dump the
// engine consumes.
type feedDocument struct {
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Thumbnails    []thumbnailNode `json:"thumbnails"`
	WebpageURL    string          `json:"webpage_url"`
	PlaylistCount int             `json:"playlist_count"`
	Channel       string          `json:"channel"`
	Language      string          `json:"language"`
	ModifiedDate  string          `json:"modified_date"`
	Entries       []entryNode     `json:"entries"`
}

type thumbnailNode struct {
	URL   string `json:"url"`
	Width int    `json:"width"`
}

type entryNode struct {
	URL        string  `json:"url"`
	WebpageURL string  `json:"webpage_url"`
	Title      string  `json:"title"`
	Duration   float64 `json:"duration"`
	ViewCount  *int64  `json:"view_count"`
	Channel    string  `json:"channel"`
	ChannelURL string  `json:"channel_url"`
}

type detailDocument struct {
	Description string `json:"description"`
	Timestamp   int64  `json:"timestamp"`
	WebpageURL  string `json:"webpage_url"`
}

func (y *YTDLP) invoke(ctx context.Context, target string, extra ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, y.timeout)
	defer cancel()

	args := []string{"--dump-single-json", "--no-download"}
	if y.cookies != "" {
		args = append(args, "--cookies", y.cookies)
	}
	args = append(args, extra...)
	args = append(args, target)

	out, err := y.run(ctx, y.binary, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrFetchFailed, target, err)
	}
	return out, nil
}

// FetchFeed retrieves feed-level metadata without enumerating entries.
func (y *YTDLP) FetchFeed(ctx context.Context, canonicalURL string) (*FeedMetadata, error) {
	out, err := y.invoke(ctx, canonicalURL, "--flat-playlist", "--playlist-items", "0")
	if err != nil {
		return nil, err
	}

	var doc feedDocument
	if err := json.Unmarshal(out, &doc); err != nil {
		return nil, fmt.Errorf("%w: malformed feed document: %v", shared.ErrFetchFailed, err)
	}
	if doc.Title == "" || doc.WebpageURL == "" {
		return nil, fmt.Errorf("%w: feed document missing title or webpage_url (%s)", shared.ErrIncompleteMetadata, canonicalURL)
	}

	meta := &FeedMetadata{
		Title:        doc.Title,
		Description:  doc.Description,
		WebpageURL:   doc.WebpageURL,
		ItemCount:    doc.PlaylistCount,
		ChannelName:  doc.Channel,
		Language:     doc.Language,
		ModifiedDate: doc.ModifiedDate,
	}
	for _, t := range doc.Thumbnails {
		meta.Thumbnails = append(meta.Thumbnails, Thumbnail{URL: t.URL, Width: t.Width})
	}
	return meta, nil
}

// FetchFeedItems retrieves the flat item list for a canonical URL.
func (y *YTDLP) FetchFeedItems(ctx context.Context, canonicalURL string) ([]ItemMetadata, error) {
	out, err := y.invoke(ctx, canonicalURL, "--flat-playlist")
	if err != nil {
		return nil, err
	}

	var doc feedDocument
	if err := json.Unmarshal(out, &doc); err != nil {
		return nil, fmt.Errorf("%w: malformed item listing: %v", shared.ErrFetchFailed, err)
	}

	items := make([]ItemMetadata, 0, len(doc.Entries))
	for _, entry := range doc.Entries {
		url := entry.URL
		if url == "" {
			url = entry.WebpageURL
		}
		if url == "" {
			continue
		}
		items = append(items, ItemMetadata{
			URL:             url,
			Title:           entry.Title,
			DurationSeconds: int64(entry.Duration),
			ViewCount:       entry.ViewCount,
			ChannelName:     entry.Channel,
			ChannelURL:      entry.ChannelURL,
		})
	}
	return items, nil
}

// FetchItemDetail retrieves description and publish timestamp for one item.
func (y *YTDLP) FetchItemDetail(ctx context.Context, itemURL string) (*ItemDetail, error) {
	out, err := y.invoke(ctx, itemURL)
	if err != nil {
		return nil, err
	}

	var doc detailDocument
	if err := json.Unmarshal(out, &doc); err != nil {
		return nil, fmt.Errorf("%w: malformed item document: %v", shared.ErrFetchFailed, err)
	}
	if doc.Timestamp == 0 {
		return nil, fmt.Errorf("%w: item document missing timestamp (%s)", shared.ErrIncompleteMetadata, itemURL)
	}

	return &ItemDetail{
		Description:  doc.Description,
		PublishEpoch: doc.Timestamp,
	}, nil
}
