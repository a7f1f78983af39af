// Copyright 2025 The Go Dify Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"

	"github.com/go-dify/dify"
)

// stopTask posts a stop request for the task named in the path. The task id
// travels only in the path; the body carries the user identity.
func stopTask(ctx context.Context, c *Client, path apiPath, req *dify.StopTaskRequest, opts ...RequestOption) (*dify.ResultResponse, error) {
	if req == nil {
		return nil, NewValidationError("request cannot be nil")
	}
	if req.TaskID == "" {
		return nil, NewValidationError("task_id is required")
	}

	return postJSON[dify.ResultResponse](ctx, c, path.with("{task_id}", req.TaskID), req, opts...)
}

// ChatMessagesStop asks the server to terminate a running streaming chat
// task. Generation already delivered stays delivered; the stream ends early
// on the server side. Stopping a finished or unknown task is not an error.
func (c *Client) ChatMessagesStop(ctx context.Context, req *dify.StopTaskRequest, opts ...RequestOption) (*dify.ResultResponse, error) {
	return stopTask(ctx, c, pathChatMessagesStop, req, opts...)
}

// CompletionMessagesStop asks the server to terminate a running streaming
// completion task.
func (c *Client) CompletionMessagesStop(ctx context.Context, req *dify.StopTaskRequest, opts ...RequestOption) (*dify.ResultResponse, error) {
	return stopTask(ctx, c, pathCompletionMessagesStop, req, opts...)
}

// WorkflowsStop asks the server to terminate a running streaming workflow
// task.
func (c *Client) WorkflowsStop(ctx context.Context, req *dify.StopTaskRequest, opts ...RequestOption) (*dify.ResultResponse, error) {
	return stopTask(ctx, c, pathWorkflowsStop, req, opts...)
}
