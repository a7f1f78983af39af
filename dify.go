// Copyright 2025 The Go Dify Authors
// SPDX-License-Identifier: Apache-2.0

// Package dify provides the wire types for the Dify application API: request
// and response payloads, the server-sent stream event taxonomy, and the
// enumerations shared by both. The HTTP client lives in the client subpackage.
package dify

// Version is the current version of the go-dify module.
const Version = "0.1.0"

// ResponseMode selects how the server delivers a task's result: a single
// response body, or an SSE stream of incremental events. The caller fully
// determines the code path; the mode is not negotiated.
type ResponseMode string

const (
	// ResponseModeBlocking waits for the task to finish and returns one body.
	ResponseModeBlocking ResponseMode = "blocking"

	// ResponseModeStreaming returns incremental output over Server-Sent Events.
	ResponseModeStreaming ResponseMode = "streaming"
)

// AppMode identifies the kind of Dify application that produced a response.
type AppMode string

const (
	AppModeCompletion   AppMode = "completion"
	AppModeWorkflow     AppMode = "workflow"
	AppModeChat         AppMode = "chat"
	AppModeAdvancedChat AppMode = "advanced-chat"
	AppModeAgentChat    AppMode = "agent-chat"
	AppModeChannel      AppMode = "channel"
)

// FinishedStatus is the execution status attached to workflow and node
// terminal data.
type FinishedStatus string

const (
	FinishedStatusRunning   FinishedStatus = "running"
	FinishedStatusSucceeded FinishedStatus = "succeeded"
	FinishedStatusFailed    FinishedStatus = "failed"
	FinishedStatusStopped   FinishedStatus = "stopped"
)

// IsTerminal reports whether the status describes a finished execution.
// Well-formed server output never carries FinishedStatusRunning inside a
// terminal event; callers should treat such data as an anomaly rather than
// discard it.
func (s FinishedStatus) IsTerminal() bool {
	switch s {
	case FinishedStatusSucceeded, FinishedStatusFailed, FinishedStatusStopped:
		return true
	}
	return false
}

// FileType is the kind of a file attached to a message. The API currently
// only supports images.
type FileType string

const (
	FileTypeImage FileType = "image"
)

// BelongsTo identifies which side of the conversation a file belongs to.
type BelongsTo string

const (
	BelongsToUser      BelongsTo = "user"
	BelongsToAssistant BelongsTo = "assistant"
)

// TransferMethod is how a message file is handed to the server.
type TransferMethod string

const (
	TransferMethodRemoteURL TransferMethod = "remote_url"
	TransferMethodLocalFile TransferMethod = "local_file"
)

// Rating is an end-user feedback rating for a message.
type Rating string

const (
	RatingLike    Rating = "like"
	RatingDislike Rating = "dislike"
)
