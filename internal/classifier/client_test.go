package classifier

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyLabels(t *testing.T) {
	var gotMessage string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMessage = r.URL.Query().Get("message")
		fmt.Fprint(w, "3")
	}))
	defer srv.Close()

	c := New(srv.URL)
	label, err := c.Classify(context.Background(), "play some jazz & chill")
	require.NoError(t, err)
	assert.Equal(t, LabelMusic, label)
	assert.Equal(t, "play some jazz & chill", gotMessage, "message must be query-escaped and round-trip")
}

func TestClassifyTrimsWhitespace(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, " 1\n")
	}))
	defer srv.Close()

	label, err := New(srv.URL).Classify(context.Background(), "rock paper scissors")
	require.NoError(t, err)
	assert.Equal(t, LabelRPS, label)
}

func TestClassifyRejectsGarbage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "not a number")
	}))
	defer srv.Close()

	_, err := New(srv.URL).Classify(context.Background(), "hello")
	assert.Error(t, err)
}

func TestClassifyRejectsUnknownLabel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "9")
	}))
	defer srv.Close()

	_, err := New(srv.URL).Classify(context.Background(), "hello")
	assert.Error(t, err)
}

func TestClassifyRejectsBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Classify(context.Background(), "hello")
	assert.Error(t, err)
}

func TestClassifyServerDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := New(srv.URL).Classify(context.Background(), "hello")
	assert.Error(t, err)
}
