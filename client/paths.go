// Copyright 2025 The Go Dify Authors
// SPDX-License-Identifier: Apache-2.0

package client

import "strings"

// apiPath is a versioned endpoint path relative to the client's base URL.
// Paths with a placeholder segment are completed with [apiPath.with] before
// use.
type apiPath string

const (
	pathChatMessages           apiPath = "/v1/chat-messages"
	pathChatMessagesStop       apiPath = "/v1/chat-messages/{task_id}/stop"
	pathCompletionMessages     apiPath = "/v1/completion-messages"
	pathCompletionMessagesStop apiPath = "/v1/completion-messages/{task_id}/stop"
	pathWorkflowsRun           apiPath = "/v1/workflows/run"
	pathWorkflowsStop          apiPath = "/v1/workflows/{task_id}/stop"
	pathMessages               apiPath = "/v1/messages"
	pathMessagesFeedbacks      apiPath = "/v1/messages/{message_id}/feedbacks"
	pathMessagesSuggested      apiPath = "/v1/messages/{message_id}/suggested"
	pathConversations          apiPath = "/v1/conversations"
	pathConversationsDelete    apiPath = "/v1/conversations/{conversation_id}"
	pathConversationsRename    apiPath = "/v1/conversations/{conversation_id}/name"
	pathFilesUpload            apiPath = "/v1/files/upload"
	pathAudioToText            apiPath = "/v1/audio-to-text"
	pathTextToAudio            apiPath = "/v1/text-to-audio"
	pathParameters             apiPath = "/v1/parameters"
	pathMeta                   apiPath = "/v1/meta"
)

// with returns a copy of the path with the named placeholder replaced by
// value.
func (p apiPath) with(placeholder, value string) apiPath {
	return apiPath(strings.Replace(string(p), placeholder, value, 1))
}
