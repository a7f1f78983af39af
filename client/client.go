// Copyright 2025 The Go Dify Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/google/go-querystring/query"

	"github.com/go-dify/dify"
	"github.com/go-dify/dify/auth"
)

// Client is an HTTP client for one Dify application. The API key given to
// [New] is the application's secret and is sent as a bearer token on every
// request.
//
// A Client is safe for concurrent use. Each call owns exactly one HTTP
// exchange; no state is shared between calls beyond the configuration.
type Client struct {
	baseURL            string
	creds              *auth.Credentials
	httpClient         *http.Client
	headers            http.Header
	interceptors       []Interceptor
	userAgent          string
	beforeSend         func(req *http.Request) *http.Request
	allowUnknownEvents bool
}

// New creates a new Client for the application reachable at baseURL,
// authorized with apiKey.
func New(baseURL, apiKey string, opts ...Option) *Client {
	config := DefaultOptions()
	for _, opt := range opts {
		opt(&config)
	}

	creds := config.Credentials
	if creds == nil {
		creds = auth.NewAPIKey(apiKey)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}

	return &Client{
		baseURL:            strings.TrimRight(baseURL, "/"),
		creds:              creds,
		httpClient:         httpClient,
		headers:            config.Headers,
		interceptors:       config.Interceptors,
		userAgent:          config.UserAgent,
		beforeSend:         config.BeforeSend,
		allowUnknownEvents: config.AllowUnknownEvents,
	}
}

// send finalizes headers, runs the hooks and the interceptor chain, and
// performs the exchange.
func (c *Client) send(ctx context.Context, req *http.Request, config requestConfig) (*http.Response, error) {
	req.Header.Set("Cache-Control", "no-cache")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	authHeader, err := c.creds.ToAuthHeader()
	if err != nil {
		return nil, NewValidationError("credentials: %v", err)
	}
	req.Header.Set("Authorization", authHeader)

	for key, values := range c.headers {
		for _, value := range values {
			req.Header.Set(key, value)
		}
	}
	for key, values := range config.headers {
		for _, value := range values {
			req.Header.Set(key, value)
		}
	}

	if c.beforeSend != nil {
		req = c.beforeSend(req)
	}
	if config.beforeSend != nil {
		req = config.beforeSend(req)
	}

	invoker := chainInterceptors(c.interceptors, func(ctx context.Context, req *http.Request) (*http.Response, error) {
		return c.httpClient.Do(req.WithContext(ctx))
	})

	resp, err := invoker(ctx, req)
	if err != nil {
		return nil, &TransportError{Op: "sending request", Err: err}
	}
	return resp, nil
}

// postJSON sends payload as a JSON body and reconciles the response into T.
func postJSON[T any](ctx context.Context, c *Client, path apiPath, payload any, opts ...RequestOption) (*T, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, NewValidationError("encoding request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+string(path), bytes.NewReader(body))
	if err != nil {
		return nil, NewValidationError("building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := c.send(ctx, req, applyRequestOptions(opts...))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return reconcile[T](resp)
}

// getQuery encodes params into the query string and reconciles the response
// into T. params must be a struct carrying url tags.
func getQuery[T any](ctx context.Context, c *Client, path apiPath, params any, opts ...RequestOption) (*T, error) {
	values, err := query.Values(params)
	if err != nil {
		return nil, NewValidationError("encoding query: %v", err)
	}

	u := c.baseURL + string(path)
	if encoded := values.Encode(); encoded != "" {
		u += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, NewValidationError("building request: %v", err)
	}

	resp, err := c.send(ctx, req, applyRequestOptions(opts...))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return reconcile[T](resp)
}

// ChatMessages sends a chat message and waits for the complete answer. The
// response mode is forced to blocking; use [ChatMessagesStream] or
// [Client.ChatMessagesEvents] for streaming delivery.
func (c *Client) ChatMessages(ctx context.Context, req *dify.ChatMessagesRequest, opts ...RequestOption) (*dify.ChatMessagesResponse, error) {
	if req == nil {
		return nil, NewValidationError("request cannot be nil")
	}

	r := *req
	r.ResponseMode = dify.ResponseModeBlocking
	if r.Inputs == nil {
		r.Inputs = map[string]any{}
	}

	return postJSON[dify.ChatMessagesResponse](ctx, c, pathChatMessages, &r, opts...)
}

// CompletionMessages sends input to a text-generation application and waits
// for the complete answer.
func (c *Client) CompletionMessages(ctx context.Context, req *dify.CompletionMessagesRequest, opts ...RequestOption) (*dify.CompletionMessagesResponse, error) {
	if req == nil {
		return nil, NewValidationError("request cannot be nil")
	}

	r := *req
	r.ResponseMode = dify.ResponseModeBlocking
	if r.Inputs == nil {
		r.Inputs = map[string]any{}
	}

	return postJSON[dify.CompletionMessagesResponse](ctx, c, pathCompletionMessages, &r, opts...)
}

// WorkflowsRun executes a workflow and waits for its terminal result.
func (c *Client) WorkflowsRun(ctx context.Context, req *dify.WorkflowsRunRequest, opts ...RequestOption) (*dify.WorkflowsRunResponse, error) {
	if req == nil {
		return nil, NewValidationError("request cannot be nil")
	}

	r := *req
	r.ResponseMode = dify.ResponseModeBlocking
	if r.Inputs == nil {
		r.Inputs = map[string]any{}
	}

	return postJSON[dify.WorkflowsRunResponse](ctx, c, pathWorkflowsRun, &r, opts...)
}

// Messages pages through a conversation's history, newest first.
func (c *Client) Messages(ctx context.Context, req *dify.MessagesRequest, opts ...RequestOption) (*dify.MessagesResponse, error) {
	if req == nil {
		return nil, NewValidationError("request cannot be nil")
	}
	if req.ConversationID == "" {
		return nil, NewValidationError("conversation_id is required")
	}

	return getQuery[dify.MessagesResponse](ctx, c, pathMessages, req, opts...)
}

// MessagesSuggested fetches suggested follow-up questions for a message.
func (c *Client) MessagesSuggested(ctx context.Context, req *dify.MessagesSuggestedRequest, opts ...RequestOption) (*dify.MessagesSuggestedResponse, error) {
	if req == nil {
		return nil, NewValidationError("request cannot be nil")
	}
	if req.MessageID == "" {
		return nil, NewValidationError("message_id is required")
	}

	path := pathMessagesSuggested.with("{message_id}", req.MessageID)
	return getQuery[dify.MessagesSuggestedResponse](ctx, c, path, req, opts...)
}

// MessagesFeedbacks records or revokes end-user feedback on a message.
func (c *Client) MessagesFeedbacks(ctx context.Context, req *dify.MessagesFeedbacksRequest, opts ...RequestOption) (*dify.ResultResponse, error) {
	if req == nil {
		return nil, NewValidationError("request cannot be nil")
	}
	if req.MessageID == "" {
		return nil, NewValidationError("message_id is required")
	}

	path := pathMessagesFeedbacks.with("{message_id}", req.MessageID)
	return postJSON[dify.ResultResponse](ctx, c, path, req, opts...)
}

// Conversations lists the user's conversations.
func (c *Client) Conversations(ctx context.Context, req *dify.ConversationsRequest, opts ...RequestOption) (*dify.ConversationsResponse, error) {
	if req == nil {
		return nil, NewValidationError("request cannot be nil")
	}
	if req.User == "" {
		return nil, NewValidationError("user is required")
	}

	return getQuery[dify.ConversationsResponse](ctx, c, pathConversations, req, opts...)
}

// ConversationsRename renames a conversation, either to an explicit name or
// to a server-generated one.
func (c *Client) ConversationsRename(ctx context.Context, req *dify.ConversationsRenameRequest, opts ...RequestOption) (*dify.ConversationsResponse, error) {
	if req == nil {
		return nil, NewValidationError("request cannot be nil")
	}
	if req.ConversationID == "" {
		return nil, NewValidationError("conversation_id is required")
	}
	if req.Name == "" && !req.AutoGenerate {
		return nil, NewValidationError("either name or auto_generate must be set")
	}

	path := pathConversationsRename.with("{conversation_id}", req.ConversationID)
	return postJSON[dify.ConversationsResponse](ctx, c, path, req, opts...)
}

// ConversationsDelete deletes a conversation. The server acknowledges with
// 204 No Content; any other outcome is surfaced as an error.
func (c *Client) ConversationsDelete(ctx context.Context, req *dify.ConversationsDeleteRequest, opts ...RequestOption) error {
	if req == nil {
		return NewValidationError("request cannot be nil")
	}
	if req.ConversationID == "" {
		return NewValidationError("conversation_id is required")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return NewValidationError("encoding request: %v", err)
	}

	path := pathConversationsDelete.with("{conversation_id}", req.ConversationID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+string(path), bytes.NewReader(body))
	if err != nil {
		return NewValidationError("building request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := c.send(ctx, httpReq, applyRequestOptions(opts...))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: "reading response body", Err: err}
	}
	return parseError(respBody)
}

// Parameters fetches the application's configuration: opening statement,
// input form, upload settings and feature switches.
func (c *Client) Parameters(ctx context.Context, req *dify.ParametersRequest, opts ...RequestOption) (*dify.ParametersResponse, error) {
	if req == nil {
		return nil, NewValidationError("request cannot be nil")
	}
	if req.User == "" {
		return nil, NewValidationError("user is required")
	}

	return getQuery[dify.ParametersResponse](ctx, c, pathParameters, req, opts...)
}

// Meta fetches the application's meta information, currently the tool icons.
func (c *Client) Meta(ctx context.Context, req *dify.MetaRequest, opts ...RequestOption) (*dify.MetaResponse, error) {
	if req == nil {
		return nil, NewValidationError("request cannot be nil")
	}
	if req.User == "" {
		return nil, NewValidationError("user is required")
	}

	return getQuery[dify.MetaResponse](ctx, c, pathMeta, req, opts...)
}

// TextToAudio synthesizes speech from text and returns the raw audio bytes.
// A response without an audio content type is run through the error
// reconciler instead.
func (c *Client) TextToAudio(ctx context.Context, req *dify.TextToAudioRequest, opts ...RequestOption) ([]byte, error) {
	if req == nil {
		return nil, NewValidationError("request cannot be nil")
	}
	if req.Text == "" {
		return nil, NewValidationError("text is required")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, NewValidationError("encoding request: %v", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+string(pathTextToAudio), bytes.NewReader(body))
	if err != nil {
		return nil, NewValidationError("building request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := c.send(ctx, httpReq, applyRequestOptions(opts...))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "reading response body", Err: err}
	}

	if contentType := resp.Header.Get("Content-Type"); strings.HasPrefix(contentType, "audio/") {
		return respBody, nil
	}
	return nil, parseError(respBody)
}
