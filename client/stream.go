// Copyright 2025 The Go Dify Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/go-dify/dify"
)

// EventStream is one open SSE connection, decoded frame by frame into typed
// stream events. Frames whose outer SSE event name is not "message" are
// skipped; everything else is parsed with [dify.ParseStreamEvent].
//
// Next is not safe for concurrent use; one goroutine should own the stream.
// Close may be called from any goroutine.
type EventStream struct {
	reader       *bufio.Reader
	closer       io.Closer
	allowUnknown bool

	mu   sync.Mutex
	done bool
	err  error
}

func newEventStream(rc io.ReadCloser, allowUnknown bool) *EventStream {
	return &EventStream{
		reader:       bufio.NewReader(rc),
		closer:       rc,
		allowUnknown: allowUnknown,
	}
}

// Close closes the underlying connection. It is safe to call more than once.
func (s *EventStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done {
		return nil
	}
	s.done = true
	s.err = io.EOF
	return s.closer.Close()
}

// Err returns the error that terminated the stream, or nil while the stream
// is live. A stream that ended normally reports io.EOF.
func (s *EventStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// fail latches err as the stream's terminal state and closes the connection.
func (s *EventStream) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done {
		return
	}
	s.done = true
	s.err = err
	s.closer.Close()
}

// Next reads frames until it can return one decoded event. It returns io.EOF
// when the server closes the stream; after any error the stream is terminal
// and Next keeps returning the same error.
func (s *EventStream) Next(ctx context.Context) (dify.StreamEvent, error) {
	s.mu.Lock()
	if s.done {
		err := s.err
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()

	var eventName string
	var data []string

	for {
		select {
		case <-ctx.Done():
			s.fail(ctx.Err())
			return nil, ctx.Err()
		default:
		}

		line, err := s.reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				// A partial frame at EOF is discarded.
				s.fail(io.EOF)
				return nil, io.EOF
			}
			terr := &TransportError{Op: "reading stream", Err: err}
			s.fail(terr)
			return nil, terr
		}

		line = strings.TrimRight(line, "\r\n")
		if line != "" {
			switch {
			case strings.HasPrefix(line, ":"):
				// Comment line, ignored.
			case strings.HasPrefix(line, "event:"):
				eventName = trimFieldValue(line[len("event:"):])
			case strings.HasPrefix(line, "data:"):
				data = append(data, trimFieldValue(line[len("data:"):]))
			}
			continue
		}

		// Blank line: frame boundary.
		if len(data) == 0 {
			eventName = ""
			continue
		}
		payload := strings.Join(data, "\n")
		name := eventName
		eventName = ""
		data = nil

		// An absent event field means "message" per the SSE protocol.
		if name != "" && name != "message" {
			continue
		}

		event, err := dify.ParseStreamEvent([]byte(payload))
		if err != nil {
			var unknownErr *dify.UnknownEventError
			if s.allowUnknown && errors.As(err, &unknownErr) {
				return &dify.UnknownEvent{
					Event: unknownErr.Event,
					Data:  jsontext.Value(unknownErr.Data),
				}, nil
			}
			derr := &DecodeError{Data: payload, Err: err}
			s.fail(derr)
			return nil, derr
		}
		return event, nil
	}
}

// trimFieldValue removes the single optional space after an SSE field colon.
// Anything beyond it is part of the value.
func trimFieldValue(value string) string {
	return strings.TrimPrefix(value, " ")
}

// openStream sends payload to path with streaming delivery and hands the
// response body to an EventStream. A non-200 status means the server refused
// the stream; its body is reconciled into an error.
func (c *Client) openStream(ctx context.Context, path apiPath, payload any, opts ...RequestOption) (*EventStream, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, NewValidationError("encoding request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+string(path), bytes.NewReader(body))
	if err != nil {
		return nil, NewValidationError("building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.send(ctx, req, applyRequestOptions(opts...))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, &TransportError{Op: "reading response body", Err: err}
		}
		return nil, parseError(respBody)
	}

	return newEventStream(resp.Body, c.allowUnknownEvents), nil
}

// ChatMessagesEvents sends a chat message with streaming delivery and
// returns the raw event stream. The caller owns the stream and must close
// it. Most callers want [ChatMessagesStream] instead.
func (c *Client) ChatMessagesEvents(ctx context.Context, req *dify.ChatMessagesRequest, opts ...RequestOption) (*EventStream, error) {
	if req == nil {
		return nil, NewValidationError("request cannot be nil")
	}

	r := *req
	r.ResponseMode = dify.ResponseModeStreaming
	if r.Inputs == nil {
		r.Inputs = map[string]any{}
	}

	return c.openStream(ctx, pathChatMessages, &r, opts...)
}

// CompletionMessagesEvents sends a completion message with streaming
// delivery and returns the raw event stream.
func (c *Client) CompletionMessagesEvents(ctx context.Context, req *dify.CompletionMessagesRequest, opts ...RequestOption) (*EventStream, error) {
	if req == nil {
		return nil, NewValidationError("request cannot be nil")
	}

	r := *req
	r.ResponseMode = dify.ResponseModeStreaming
	if r.Inputs == nil {
		r.Inputs = map[string]any{}
	}

	return c.openStream(ctx, pathCompletionMessages, &r, opts...)
}

// WorkflowsRunEvents executes a workflow with streaming delivery and returns
// the raw event stream.
func (c *Client) WorkflowsRunEvents(ctx context.Context, req *dify.WorkflowsRunRequest, opts ...RequestOption) (*EventStream, error) {
	if req == nil {
		return nil, NewValidationError("request cannot be nil")
	}

	r := *req
	r.ResponseMode = dify.ResponseModeStreaming
	if r.Inputs == nil {
		r.Inputs = map[string]any{}
	}

	return c.openStream(ctx, pathWorkflowsRun, &r, opts...)
}
