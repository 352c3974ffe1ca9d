package music

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	candidates []Candidate
	searchErr  error

	items     map[string]*Track
	fetchErr  error
	fetches   int
	members   []string
	memberErr error
}

func (f *fakeService) SearchTop10(ctx context.Context, keyword string) ([]Candidate, error) {
	return f.candidates, f.searchErr
}

func (f *fakeService) FetchItem(ctx context.Context, id string) (*Track, error) {
	f.fetches++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.items[id], nil
}

func (f *fakeService) FetchCollection(ctx context.Context, collectionID string) ([]string, error) {
	return f.members, f.memberErr
}

func TestResolveByIDCachesInHistory(t *testing.T) {
	a := track("a")
	svc := &fakeService{items: map[string]*Track{"a": &a}}
	r := NewResolver(svc, NewHistory())

	got, err := r.ResolveByID(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "a", got.ID)
	assert.Equal(t, 1, svc.fetches)

	// Second resolution is served from history.
	got, err = r.ResolveByID(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "a", got.ID)
	assert.Equal(t, 1, svc.fetches)
}

func TestResolveByIDDiscardsIncomplete(t *testing.T) {
	partial := track("a")
	partial.StreamURL = ""
	svc := &fakeService{items: map[string]*Track{"a": &partial}}
	history := NewHistory()
	r := NewResolver(svc, history)

	_, err := r.ResolveByID(context.Background(), "a")
	assert.ErrorIs(t, err, ErrIncomplete)
	assert.Equal(t, 0, history.Len(), "partial metadata never enters history")
}

func TestResolveByIDNoResult(t *testing.T) {
	svc := &fakeService{items: map[string]*Track{}}
	r := NewResolver(svc, NewHistory())

	_, err := r.ResolveByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNoResult)
}

func TestResolveByQueryCapsAtTen(t *testing.T) {
	svc := &fakeService{}
	for i := 0; i < 14; i++ {
		svc.candidates = append(svc.candidates, Candidate{ID: "c", Title: "t"})
	}
	r := NewResolver(svc, NewHistory())

	got, err := r.ResolveByQuery(context.Background(), "query")
	require.NoError(t, err)
	assert.Len(t, got, 10)
}

func TestResolveByQueryPropagatesError(t *testing.T) {
	svc := &fakeService{searchErr: errors.New("boom")}
	r := NewResolver(svc, NewHistory())

	_, err := r.ResolveByQuery(context.Background(), "query")
	assert.Error(t, err)
}

func TestResolveCollection(t *testing.T) {
	svc := &fakeService{members: []string{"a", "b", "c"}}
	r := NewResolver(svc, NewHistory())

	ids, err := r.ResolveCollection(context.Background(), "PL123")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestClassifyURL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		kind LinkKind
		id   string
	}{
		{"watch link", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", LinkItem, "dQw4w9WgXcQ"},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", LinkItem, "dQw4w9WgXcQ"},
		{"shorts path", "https://www.youtube.com/shorts/abc123", LinkItem, "abc123"},
		{"live path", "https://www.youtube.com/live/xyz789", LinkItem, "xyz789"},
		{"playlist", "https://www.youtube.com/playlist?list=PL0123", LinkCollection, "PL0123"},
		{"watch inside playlist", "https://www.youtube.com/watch?v=abc&list=PL0123", LinkCollection, "PL0123"},
		{"surrounding whitespace", "  https://youtu.be/trimmed  ", LinkItem, "trimmed"},
		{"plain keywords", "never gonna give you up", LinkUnknown, ""},
		{"unrelated url", "https://example.com/page", LinkUnknown, ""},
		{"empty", "", LinkUnknown, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, id := ClassifyURL(tt.raw)
			assert.Equal(t, tt.kind, kind)
			assert.Equal(t, tt.id, id)
		})
	}
}
