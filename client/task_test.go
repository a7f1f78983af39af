// Copyright 2025 The Go Dify Authors
// SPDX-License-Identifier: Apache-2.0

package client_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/go-json-experiment/json"
	"github.com/google/uuid"

	"github.com/go-dify/dify"
	"github.com/go-dify/dify/client"
)

// TestChatMessagesStop tests path substitution and the body contract: the
// task id travels in the path only, the user identity in the body.
func TestChatMessagesStop(t *testing.T) {
	taskID := uuid.New().String()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST request, got %s", r.Method)
		}
		if want := "/v1/chat-messages/" + taskID + "/stop"; r.URL.Path != want {
			t.Errorf("Expected path %s, got %s", want, r.URL.Path)
		}

		body, _ := io.ReadAll(r.Body)
		var payload map[string]any
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		if payload["user"] != "user-1" {
			t.Errorf("user = %v, want user-1", payload["user"])
		}
		if _, ok := payload["task_id"]; ok {
			t.Error("task_id must travel in the path, not the body")
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"result":"success"}`))
	}))
	defer server.Close()

	c := client.New(server.URL, "test-key")

	resp, err := c.ChatMessagesStop(context.Background(), &dify.StopTaskRequest{
		TaskID: taskID,
		User:   "user-1",
	})
	if err != nil {
		t.Fatalf("ChatMessagesStop failed: %v", err)
	}
	if resp.Result != "success" {
		t.Errorf("Result = %q, want success", resp.Result)
	}
}

// TestStop_EmptyTaskID tests that a missing task id is rejected locally with
// zero network traffic.
func TestStop_EmptyTaskID(t *testing.T) {
	var hits atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"result":"success"}`))
	}))
	defer server.Close()

	c := client.New(server.URL, "test-key")

	stops := []func() error{
		func() error {
			_, err := c.ChatMessagesStop(context.Background(), &dify.StopTaskRequest{User: "user-1"})
			return err
		},
		func() error {
			_, err := c.CompletionMessagesStop(context.Background(), &dify.StopTaskRequest{User: "user-1"})
			return err
		},
		func() error {
			_, err := c.WorkflowsStop(context.Background(), &dify.StopTaskRequest{User: "user-1"})
			return err
		},
	}
	for _, stop := range stops {
		err := stop()
		var validationErr *client.ValidationError
		if !errors.As(err, &validationErr) {
			t.Fatalf("expected *ValidationError, got %T: %v", err, err)
		}
	}

	if got := hits.Load(); got != 0 {
		t.Errorf("server hits = %d, want 0", got)
	}
}

// TestWorkflowsStop tests the workflow stop path.
func TestWorkflowsStop(t *testing.T) {
	taskID := uuid.New().String()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if want := "/v1/workflows/" + taskID + "/stop"; r.URL.Path != want {
			t.Errorf("Expected path %s, got %s", want, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"result":"success"}`))
	}))
	defer server.Close()

	c := client.New(server.URL, "test-key")

	if _, err := c.WorkflowsStop(context.Background(), &dify.StopTaskRequest{
		TaskID: taskID,
		User:   "user-1",
	}); err != nil {
		t.Fatalf("WorkflowsStop failed: %v", err)
	}
}
