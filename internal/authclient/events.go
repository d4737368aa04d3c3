package authclient

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Ayu-zh/placement-connector/internal/model"
	"github.com/Ayu-zh/placement-connector/internal/session"
)

// Watch opens the server's event stream for token. The channel closes when
// the stream ends or ctx is done.
func (c *Client) Watch(ctx context.Context, token string) (<-chan model.SessionEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/auth/events", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: connection failed: %w", session.ErrAuthorityUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		defer func() { _ = resp.Body.Close() }()
		body, _ := io.ReadAll(resp.Body)
		return nil, decodeError(resp.StatusCode, body)
	}

	events := make(chan model.SessionEvent, 16)
	go func() {
		defer close(events)
		defer func() { _ = resp.Body.Close() }()
		readEvents(ctx, resp.Body, events)
	}()
	return events, nil
}

// readEvents parses a server-sent event stream, forwarding session events
func readEvents(ctx context.Context, r io.Reader, out chan<- model.SessionEvent) {
	scanner := bufio.NewScanner(r)
	var currentEvent string
	var dataLines []string

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "event: "):
			currentEvent = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			dataLines = append(dataLines, strings.TrimPrefix(line, "data: "))
		case line == "":
			// End of event
			if ev, ok := parseEvent(currentEvent, strings.Join(dataLines, "\n")); ok {
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
			currentEvent = ""
			dataLines = nil
		}
	}
}

func parseEvent(name, data string) (model.SessionEvent, bool) {
	switch model.SessionEventType(name) {
	case model.EventSignedIn, model.EventSignedOut, model.EventTokenRefreshed, model.EventIdentityUpdated:
	default:
		// connected and anything unknown
		return model.SessionEvent{}, false
	}
	var ev model.SessionEvent
	if err := json.Unmarshal([]byte(data), &ev); err != nil {
		return model.SessionEvent{}, false
	}
	if ev.Type == "" {
		ev.Type = model.SessionEventType(name)
	}
	return ev, true
}
