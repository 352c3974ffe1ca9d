// Package classifier talks to the external message-scoring endpoint that
// guesses which bot feature a free-form message is asking for.
package classifier

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Label is the scoring endpoint's verdict for a message.
type Label int

const (
	LabelNone Label = iota
	LabelRPS
	LabelDice
	LabelMusic
	LabelWarn
)

const requestTimeout = 3 * time.Second

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

// Classify sends the message text and parses the plain-integer label the
// endpoint replies with. Anything outside the known label range is an error.
func (c *Client) Classify(ctx context.Context, message string) (Label, error) {
	endpoint := c.baseURL + "?message=" + url.QueryEscape(message)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return LabelNone, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return LabelNone, fmt.Errorf("classifier request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return LabelNone, fmt.Errorf("classifier returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64))
	if err != nil {
		return LabelNone, fmt.Errorf("failed to read classifier response: %w", err)
	}

	n, err := strconv.Atoi(strings.TrimSpace(string(body)))
	if err != nil {
		return LabelNone, fmt.Errorf("unexpected classifier response %q", string(body))
	}
	if n < int(LabelNone) || n > int(LabelWarn) {
		return LabelNone, fmt.Errorf("unknown classifier label %d", n)
	}
	return Label(n), nil
}
