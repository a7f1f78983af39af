// Copyright 2025 The Go Dify Authors
// SPDX-License-Identifier: Apache-2.0

package client_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-json-experiment/json"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/go-dify/dify"
	"github.com/go-dify/dify/client"
)

// TestChatMessages tests the blocking chat call end to end: forced response
// mode, authorization header and decoded payload.
func TestChatMessages(t *testing.T) {
	conversationID := uuid.New().String()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST request, got %s", r.Method)
		}
		if r.URL.Path != "/v1/chat-messages" {
			t.Errorf("Expected path /v1/chat-messages, got %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Expected Authorization: Bearer test-key, got %s", got)
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("Failed to read request body: %v", err)
		}
		var req dify.ChatMessagesRequest
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		if req.ResponseMode != dify.ResponseModeBlocking {
			t.Errorf("Expected response_mode blocking, got %s", req.ResponseMode)
		}
		if req.Query != "What is Dify?" {
			t.Errorf("Expected query to survive, got %q", req.Query)
		}
		if req.Inputs == nil {
			t.Error("Expected inputs to default to an empty object")
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"event":"message","message_id":"m-1","conversation_id":"` + conversationID + `","mode":"chat","answer":"Dify is an LLM application platform.","created_at":1705395332}`))
	}))
	defer server.Close()

	c := client.New(server.URL, "test-key")

	resp, err := c.ChatMessages(context.Background(), &dify.ChatMessagesRequest{
		Query: "What is Dify?",
		User:  "user-1",
	})
	if err != nil {
		t.Fatalf("ChatMessages failed: %v", err)
	}

	want := &dify.ChatMessagesResponse{
		MessageBase: dify.MessageBase{
			MessageID:      "m-1",
			ConversationID: conversationID,
			CreatedAt:      1705395332,
		},
		Event:  "message",
		Mode:   dify.AppModeChat,
		Answer: "Dify is an LLM application platform.",
	}
	if diff := cmp.Diff(want, resp); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

// TestChatMessages_ServiceError tests that an error body surfaces verbatim
// as the service error.
func TestChatMessages_ServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"code":"not_found","message":"Conversation Not Exists.","status":404}`))
	}))
	defer server.Close()

	c := client.New(server.URL, "test-key")

	_, err := c.ChatMessages(context.Background(), &dify.ChatMessagesRequest{
		Query:          "hello",
		User:           "user-1",
		ConversationID: uuid.New().String(),
	})
	serviceErr, ok := client.AsServiceError(err)
	if !ok {
		t.Fatalf("expected service error, got %T: %v", err, err)
	}
	if serviceErr.Code != "not_found" || serviceErr.Status != 404 {
		t.Errorf("got code=%s status=%d, want not_found/404", serviceErr.Code, serviceErr.Status)
	}
	if serviceErr.Message != "Conversation Not Exists." {
		t.Errorf("Message = %q, want server message", serviceErr.Message)
	}
}

func TestChatMessages_NilRequest(t *testing.T) {
	c := client.New("http://127.0.0.1:0", "test-key")

	_, err := c.ChatMessages(context.Background(), nil)
	var validationErr *client.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected *ValidationError, got %T: %v", err, err)
	}
}

// TestMessages tests GET query string encoding.
func TestMessages(t *testing.T) {
	conversationID := uuid.New().String()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Expected GET request, got %s", r.Method)
		}
		if r.URL.Path != "/v1/messages" {
			t.Errorf("Expected path /v1/messages, got %s", r.URL.Path)
		}
		q := r.URL.Query()
		if got := q.Get("conversation_id"); got != conversationID {
			t.Errorf("conversation_id = %q, want %q", got, conversationID)
		}
		if got := q.Get("user"); got != "user-1" {
			t.Errorf("user = %q, want user-1", got)
		}
		if got := q.Get("limit"); got != "20" {
			t.Errorf("limit = %q, want 20", got)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"limit":20,"has_more":false,"data":[{"id":"m-1","conversation_id":"` + conversationID + `","query":"hi","answer":"hello","created_at":1705395332}]}`))
	}))
	defer server.Close()

	c := client.New(server.URL, "test-key")

	resp, err := c.Messages(context.Background(), &dify.MessagesRequest{
		ConversationID: conversationID,
		User:           "user-1",
		Limit:          20,
	})
	if err != nil {
		t.Fatalf("Messages failed: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].Answer != "hello" {
		t.Errorf("unexpected page: %+v", resp)
	}
}

func TestMessages_RequiresConversationID(t *testing.T) {
	c := client.New("http://127.0.0.1:0", "test-key")

	_, err := c.Messages(context.Background(), &dify.MessagesRequest{User: "user-1"})
	var validationErr *client.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected *ValidationError, got %T: %v", err, err)
	}
}

// TestConversationsRename tests path substitution and local validation.
func TestConversationsRename(t *testing.T) {
	conversationID := uuid.New().String()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if want := "/v1/conversations/" + conversationID + "/name"; r.URL.Path != want {
			t.Errorf("Expected path %s, got %s", want, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		var payload map[string]any
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		if _, ok := payload["conversation_id"]; ok {
			t.Error("conversation_id must travel in the path, not the body")
		}
		if payload["auto_generate"] != true {
			t.Errorf("auto_generate = %v, want true", payload["auto_generate"])
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"has_more":false,"limit":0,"data":[]}`))
	}))
	defer server.Close()

	c := client.New(server.URL, "test-key")

	if _, err := c.ConversationsRename(context.Background(), &dify.ConversationsRenameRequest{
		ConversationID: conversationID,
		AutoGenerate:   true,
		User:           "user-1",
	}); err != nil {
		t.Fatalf("ConversationsRename failed: %v", err)
	}
}

func TestConversationsRename_RequiresNameOrAutoGenerate(t *testing.T) {
	c := client.New("http://127.0.0.1:0", "test-key")

	_, err := c.ConversationsRename(context.Background(), &dify.ConversationsRenameRequest{
		ConversationID: uuid.New().String(),
		User:           "user-1",
	})
	var validationErr *client.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected *ValidationError, got %T: %v", err, err)
	}
}

// TestConversationsDelete tests the 204 acknowledgment and the error path
// for any other status.
func TestConversationsDelete(t *testing.T) {
	conversationID := uuid.New().String()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("Expected DELETE request, got %s", r.Method)
		}
		if want := "/v1/conversations/" + conversationID; r.URL.Path != want {
			t.Errorf("Expected path %s, got %s", want, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	c := client.New(server.URL, "test-key")

	if err := c.ConversationsDelete(context.Background(), &dify.ConversationsDeleteRequest{
		ConversationID: conversationID,
		User:           "user-1",
	}); err != nil {
		t.Fatalf("ConversationsDelete failed: %v", err)
	}
}

func TestConversationsDelete_UnexpectedSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 200 with an empty body is not the contract; it must not be
		// mistaken for success.
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := client.New(server.URL, "test-key")

	err := c.ConversationsDelete(context.Background(), &dify.ConversationsDeleteRequest{
		ConversationID: uuid.New().String(),
		User:           "user-1",
	})
	serviceErr, ok := client.AsServiceError(err)
	if !ok {
		t.Fatalf("expected service error, got %T: %v", err, err)
	}
	if serviceErr.Code != dify.UnknownErrorCode {
		t.Errorf("Code = %q, want %q", serviceErr.Code, dify.UnknownErrorCode)
	}
}

// TestParameters tests decoding of the application configuration, including
// the per-kind input form controls.
func TestParameters(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/parameters" {
			t.Errorf("Expected path /v1/parameters, got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"opening_statement": "Hello!",
			"suggested_questions_after_answer": {"enabled": true},
			"speech_to_text": {"enabled": false},
			"retriever_resource": {"enabled": false},
			"annotation_reply": {"enabled": false},
			"user_input_form": [
				{"text-input": {"label": "Name", "variable": "name", "required": true}},
				{"select": {"label": "Tier", "variable": "tier", "required": false, "options": ["free", "pro"]}}
			],
			"file_upload": {"image": {"enabled": true, "number_limits": 3, "transfer_methods": ["remote_url", "local_file"]}},
			"system_parameters": {"image_file_size_limit": "10"}
		}`))
	}))
	defer server.Close()

	c := client.New(server.URL, "test-key")

	resp, err := c.Parameters(context.Background(), &dify.ParametersRequest{User: "user-1"})
	if err != nil {
		t.Fatalf("Parameters failed: %v", err)
	}
	if !resp.SuggestedQuestionsAfterAnswer.Enabled {
		t.Error("expected suggested_questions_after_answer to be enabled")
	}
	if len(resp.UserInputForm) != 2 {
		t.Fatalf("expected 2 form items, got %d", len(resp.UserInputForm))
	}
	if resp.UserInputForm[0].TextInput == nil || resp.UserInputForm[0].TextInput.Variable != "name" {
		t.Errorf("unexpected first form item: %+v", resp.UserInputForm[0])
	}
	if resp.UserInputForm[1].Select == nil || len(resp.UserInputForm[1].Select.Options) != 2 {
		t.Errorf("unexpected second form item: %+v", resp.UserInputForm[1])
	}
}

// TestMeta tests the tool icon union through the endpoint.
func TestMeta(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"tool_icons":{"dalle2":"https://example.com/dalle2.png","api_tool":{"background":"#252525","content":"😁"}}}`))
	}))
	defer server.Close()

	c := client.New(server.URL, "test-key")

	resp, err := c.Meta(context.Background(), &dify.MetaRequest{User: "user-1"})
	if err != nil {
		t.Fatalf("Meta failed: %v", err)
	}
	if got := resp.ToolIcons["dalle2"].URL; got != "https://example.com/dalle2.png" {
		t.Errorf("dalle2 icon = %q, want URL form", got)
	}
	emoji := resp.ToolIcons["api_tool"].Emoji
	if emoji == nil || emoji.Background != "#252525" {
		t.Errorf("api_tool icon = %+v, want emoji form", resp.ToolIcons["api_tool"])
	}
}

// TestTextToAudio tests the audio/JSON content type fork.
func TestTextToAudio(t *testing.T) {
	audio := []byte{0xFF, 0xFB, 0x90, 0x64, 0x00}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/wav")
		w.Write(audio)
	}))
	defer server.Close()

	c := client.New(server.URL, "test-key")

	got, err := c.TextToAudio(context.Background(), &dify.TextToAudioRequest{Text: "hello", User: "user-1"})
	if err != nil {
		t.Fatalf("TextToAudio failed: %v", err)
	}
	if diff := cmp.Diff(audio, got); diff != "" {
		t.Errorf("audio mismatch (-want +got):\n%s", diff)
	}
}

func TestTextToAudio_ErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":"provider_not_initialize","message":"TTS provider not configured.","status":400}`))
	}))
	defer server.Close()

	c := client.New(server.URL, "test-key")

	_, err := c.TextToAudio(context.Background(), &dify.TextToAudioRequest{Text: "hello", User: "user-1"})
	serviceErr, ok := client.AsServiceError(err)
	if !ok {
		t.Fatalf("expected service error, got %T: %v", err, err)
	}
	if serviceErr.Code != "provider_not_initialize" {
		t.Errorf("Code = %q, want provider_not_initialize", serviceErr.Code)
	}
}

// TestClient_RequestOptions tests per-call header overrides.
func TestClient_RequestOptions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer per-call-token" {
			t.Errorf("Authorization = %q, want per-call override", got)
		}
		if got := r.Header.Get("X-Request-Id"); got == "" {
			t.Error("expected X-Request-Id to be set")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"result":"success"}`))
	}))
	defer server.Close()

	c := client.New(server.URL, "test-key")

	_, err := c.ChatMessagesStop(context.Background(), &dify.StopTaskRequest{
		TaskID: uuid.New().String(),
		User:   "user-1",
	},
		client.WithRequestBearerToken("per-call-token"),
		client.WithRequestHeader("X-Request-Id", uuid.New().String()),
	)
	if err != nil {
		t.Fatalf("ChatMessagesStop failed: %v", err)
	}
}
