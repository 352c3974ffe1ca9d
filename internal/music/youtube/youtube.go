// Package youtube implements the music.Service contract against YouTube,
// using kkdai/youtube for item and playlist metadata and ytsearch for
// keyword search.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	yt "github.com/kkdai/youtube/v2"
	"github.com/ppalone/ytsearch"

	"github.com/keshon/server-jester/internal/music"
)

const watchURL = "https://www.youtube.com/watch?v="

type Service struct {
	client *yt.Client
	search *ytsearch.Client
}

func New() *Service {
	httpClient := &http.Client{Timeout: 15 * time.Second}
	return &Service{
		client: &yt.Client{HTTPClient: httpClient},
		search: ytsearch.NewClient(httpClient),
	}
}

// SearchTop10 returns lazy candidates only: id, title, page URL. Full
// metadata is fetched per item once a candidate is actually picked.
func (s *Service) SearchTop10(ctx context.Context, keyword string) ([]music.Candidate, error) {
	res, err := s.search.Search(ctx, keyword)
	if err != nil {
		return nil, fmt.Errorf("youtube search: %w", err)
	}

	var candidates []music.Candidate
	for _, v := range res.Results {
		if v.VideoID == "" || v.Title == "" {
			continue
		}
		candidates = append(candidates, music.Candidate{
			ID:    v.VideoID,
			Title: v.Title,
			URL:   watchURL + v.VideoID,
		})
		if len(candidates) == 10 {
			break
		}
	}
	return candidates, nil
}

// FetchItem pulls full video metadata and a playable stream URL. A result
// missing any required field comes back as an incomplete track, which the
// resolver discards.
func (s *Service) FetchItem(ctx context.Context, id string) (*music.Track, error) {
	video, err := s.client.GetVideoContext(ctx, watchURL+id)
	if err != nil {
		return nil, fmt.Errorf("youtube video %s: %w", id, err)
	}

	formats := video.Formats.WithAudioChannels()
	if len(formats) == 0 {
		return nil, errors.New("no audio formats for video " + id)
	}
	streamURL, err := s.client.GetStreamURLContext(ctx, video, &formats[0])
	if err != nil {
		return nil, fmt.Errorf("youtube stream URL %s: %w", id, err)
	}

	return &music.Track{
		ID:        video.ID,
		Title:     video.Title,
		URL:       watchURL + video.ID,
		StreamURL: streamURL,
		Thumbnail: pickThumbnail(video.Thumbnails),
		Artist:    video.Author,
		Duration:  video.Duration,
	}, nil
}

// FetchCollection enumerates a playlist's video IDs with a single call.
func (s *Service) FetchCollection(ctx context.Context, collectionID string) ([]string, error) {
	playlist, err := s.client.GetPlaylistContext(ctx, collectionID)
	if err != nil {
		return nil, fmt.Errorf("youtube playlist %s: %w", collectionID, err)
	}

	var ids []string
	for _, entry := range playlist.Videos {
		if entry.ID == "" {
			continue
		}
		ids = append(ids, entry.ID)
	}
	return ids, nil
}

// pickThumbnail prefers the highest-resolution square variant, which is what
// album art comes through as; otherwise it falls back to the largest
// thumbnail the service offers.
func pickThumbnail(thumbnails yt.Thumbnails) string {
	var squareURL string
	var squareSize uint
	var largestURL string
	var largestArea uint

	for _, t := range thumbnails {
		if t.URL == "" {
			continue
		}
		if t.Width == t.Height && t.Width > squareSize {
			squareSize = t.Width
			squareURL = t.URL
		}
		if area := t.Width * t.Height; area >= largestArea {
			largestArea = area
			largestURL = t.URL
		}
	}

	if squareURL != "" {
		return squareURL
	}
	return largestURL
}
