package music

import (
	"context"
	"log"
	"net/url"
	"strings"

	"golang.org/x/time/rate"
)

// Resolver turns keywords, item IDs and collection IDs into tracks, going
// through the shared History cache so previously seen items never hit the
// external service twice.
type Resolver struct {
	svc     Service
	history *History
	limiter *rate.Limiter
}

func NewResolver(svc Service, history *History) *Resolver {
	return &Resolver{
		svc:     svc,
		history: history,
		// The metadata service tolerates short bursts but throttles sustained
		// hammering, playlist imports included.
		limiter: rate.NewLimiter(rate.Limit(4), 8),
	}
}

// ResolveByQuery returns transient candidates for a keyword. Search results
// are not committed to history; only a later per-ID resolution is.
func (r *Resolver) ResolveByQuery(ctx context.Context, keyword string) ([]Candidate, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	candidates, err := r.svc.SearchTop10(ctx, keyword)
	if err != nil {
		log.Printf("[WARN] [resolver] search %q failed: %v", keyword, err)
		return nil, err
	}
	if len(candidates) > 10 {
		candidates = candidates[:10]
	}
	return candidates, nil
}

// ResolveByID returns the full track for an item ID, from history when
// possible. Incomplete service results are logged and discarded.
func (r *Resolver) ResolveByID(ctx context.Context, id string) (*Track, error) {
	if track, ok := r.history.Get(id); ok {
		return &track, nil
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	track, err := r.svc.FetchItem(ctx, id)
	if err != nil {
		log.Printf("[WARN] [resolver] fetch %q failed: %v", id, err)
		return nil, err
	}
	if track == nil {
		log.Printf("[WARN] [resolver] fetch %q returned nothing", id)
		return nil, ErrNoResult
	}
	if !track.Complete() {
		log.Printf("[WARN] [resolver] fetch %q returned incomplete metadata, discarding", id)
		return nil, ErrIncomplete
	}

	r.history.Put(*track)
	return track, nil
}

// ResolveCollection enumerates the member IDs of a collection in one call.
func (r *Resolver) ResolveCollection(ctx context.Context, collectionID string) ([]string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	ids, err := r.svc.FetchCollection(ctx, collectionID)
	if err != nil {
		log.Printf("[WARN] [resolver] collection %q failed: %v", collectionID, err)
		return nil, err
	}
	return ids, nil
}

// LinkKind classifies a submitted URL.
type LinkKind int

const (
	LinkUnknown LinkKind = iota
	LinkItem
	LinkCollection
)

// ClassifyURL extracts the media ID from a URL the service is known to
// handle: a collection link carries a list query parameter, an item link a
// v parameter, a youtu.be host, or a /shorts/ or /live/ path. Anything else
// is LinkUnknown.
func ClassifyURL(raw string) (LinkKind, string) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return LinkUnknown, ""
	}

	query := parsed.Query()
	switch {
	case query.Get("list") != "":
		return LinkCollection, query.Get("list")
	case query.Get("v") != "":
		return LinkItem, query.Get("v")
	case parsed.Host == "youtu.be" && len(parsed.Path) > 1:
		return LinkItem, strings.TrimPrefix(parsed.Path, "/")
	case strings.HasPrefix(parsed.Path, "/shorts/"):
		return LinkItem, strings.TrimPrefix(parsed.Path, "/shorts/")
	case strings.HasPrefix(parsed.Path, "/live/"):
		return LinkItem, strings.TrimPrefix(parsed.Path, "/live/")
	default:
		return LinkUnknown, ""
	}
}
