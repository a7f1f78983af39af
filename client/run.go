// Copyright 2025 The Go Dify Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"errors"
	"io"

	"github.com/go-dify/dify"
)

// Projector folds one stream event into zero or one values of the caller's
// choosing. Returning ok=false skips the event; returning an error aborts
// the whole collection.
type Projector[T any] func(event dify.StreamEvent) (T, bool, error)

// Collect drains stream to its end, applying project to every event in
// arrival order, and returns the projected values in that same order. The
// first projection error, decode error or transport error aborts the
// collection; nothing partial is returned. Collect closes the stream.
func Collect[T any](ctx context.Context, stream *EventStream, project Projector[T]) ([]T, error) {
	defer stream.Close()

	var out []T
	for {
		event, err := stream.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, err
		}

		value, ok, err := project(event)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, value)
		}
	}
}

// ChatMessagesStream sends a chat message with streaming delivery and
// collects the projected values of every event until the server closes the
// stream.
func ChatMessagesStream[T any](ctx context.Context, c *Client, req *dify.ChatMessagesRequest, project Projector[T], opts ...RequestOption) ([]T, error) {
	stream, err := c.ChatMessagesEvents(ctx, req, opts...)
	if err != nil {
		return nil, err
	}
	return Collect(ctx, stream, project)
}

// CompletionMessagesStream sends a completion message with streaming
// delivery and collects the projected values of every event.
func CompletionMessagesStream[T any](ctx context.Context, c *Client, req *dify.CompletionMessagesRequest, project Projector[T], opts ...RequestOption) ([]T, error) {
	stream, err := c.CompletionMessagesEvents(ctx, req, opts...)
	if err != nil {
		return nil, err
	}
	return Collect(ctx, stream, project)
}

// WorkflowsRunStream executes a workflow with streaming delivery and
// collects the projected values of every event.
func WorkflowsRunStream[T any](ctx context.Context, c *Client, req *dify.WorkflowsRunRequest, project Projector[T], opts ...RequestOption) ([]T, error) {
	stream, err := c.WorkflowsRunEvents(ctx, req, opts...)
	if err != nil {
		return nil, err
	}
	return Collect(ctx, stream, project)
}

// AnswerChunks is a ready-made projector that keeps the answer text of
// message and agent message events and drops everything else.
func AnswerChunks(event dify.StreamEvent) (string, bool, error) {
	switch e := event.(type) {
	case *dify.MessageEvent:
		return e.Answer, true, nil
	case *dify.AgentMessageEvent:
		return e.Answer, true, nil
	}
	return "", false, nil
}
