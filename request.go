// Copyright 2025 The Go Dify Authors
// SPDX-License-Identifier: Apache-2.0

package dify

// ChatMessagesRequest creates a conversation message.
type ChatMessagesRequest struct {
	// Inputs carries values for the variables defined by the application.
	Inputs map[string]any `json:"inputs"`

	// Query is the end-user input or question.
	Query string `json:"query"`

	// ResponseMode selects blocking or streaming delivery. The client
	// overwrites it according to the call used, so it never needs to be set.
	ResponseMode ResponseMode `json:"response_mode"`

	// User uniquely identifies the end user within the application.
	User string `json:"user"`

	// ConversationID continues a previous conversation when set.
	ConversationID string `json:"conversation_id,omitempty"`

	// Files to attach to the message.
	Files []ChatMessageFile `json:"files,omitempty"`

	// AutoGenerateName controls asynchronous title generation for new
	// conversations. The server default is true when unset.
	AutoGenerateName *bool `json:"auto_generate_name,omitempty"`
}

// CompletionMessagesRequest sends input to a text-generation application.
type CompletionMessagesRequest struct {
	Inputs         map[string]any    `json:"inputs"`
	ResponseMode   ResponseMode      `json:"response_mode"`
	User           string            `json:"user"`
	ConversationID string            `json:"conversation_id,omitempty"`
	Files          []ChatMessageFile `json:"files,omitempty"`
}

// WorkflowsRunRequest executes a workflow.
type WorkflowsRunRequest struct {
	Inputs       map[string]any    `json:"inputs"`
	ResponseMode ResponseMode      `json:"response_mode"`
	User         string            `json:"user"`
	Files        []ChatMessageFile `json:"files,omitempty"`
}

// ChatMessageFile is a file attached to a message, passed either by remote
// URL or by a previously uploaded file id.
type ChatMessageFile struct {
	Type           FileType       `json:"type"`
	TransferMethod TransferMethod `json:"transfer_method"`

	// URL is set for TransferMethodRemoteURL.
	URL string `json:"url,omitempty"`

	// UploadFileID is set for TransferMethodLocalFile.
	UploadFileID string `json:"upload_file_id,omitempty"`
}

// RemoteURLFile attaches an image by URL.
func RemoteURLFile(url string) ChatMessageFile {
	return ChatMessageFile{
		Type:           FileTypeImage,
		TransferMethod: TransferMethodRemoteURL,
		URL:            url,
	}
}

// LocalFileRef attaches a previously uploaded image by its file id.
func LocalFileRef(uploadFileID string) ChatMessageFile {
	return ChatMessageFile{
		Type:           FileTypeImage,
		TransferMethod: TransferMethodLocalFile,
		UploadFileID:   uploadFileID,
	}
}

// StopTaskRequest asks the server to terminate a running streaming task.
// TaskID is obtained from the task's stream events; it is substituted into
// the URL path and never sent in the body. User must match the user of the
// originating request.
type StopTaskRequest struct {
	TaskID string `json:"-"`
	User   string `json:"user"`
}

// MessagesRequest pages through the history of a conversation, newest first.
type MessagesRequest struct {
	ConversationID string `url:"conversation_id"`
	User           string `url:"user"`

	// FirstID is the id of the first record on the current page.
	FirstID string `url:"first_id,omitempty"`

	// Limit is the number of records to return; the server caps it.
	Limit int `url:"limit,omitempty"`
}

// ConversationsRequest lists the current user's conversations.
type ConversationsRequest struct {
	User string `url:"user"`

	// LastID is the id of the last record on the current page.
	LastID string `url:"last_id,omitempty"`

	Limit int `url:"limit,omitempty"`

	// Pinned restricts the listing to pinned (true) or unpinned (false)
	// conversations.
	Pinned bool `url:"pinned"`
}

// MessagesSuggestedRequest fetches suggested follow-up questions for a
// message. MessageID is substituted into the URL path.
type MessagesSuggestedRequest struct {
	MessageID string `url:"-"`
}

// MessagesFeedbacksRequest records end-user feedback on a message.
// MessageID is substituted into the URL path. A nil Rating revokes previous
// feedback.
type MessagesFeedbacksRequest struct {
	MessageID string  `json:"-"`
	Rating    *Rating `json:"rating"`
	User      string  `json:"user"`
}

// ConversationsRenameRequest renames a conversation. Either Name must be set
// or AutoGenerate must be true.
type ConversationsRenameRequest struct {
	ConversationID string `json:"-"`
	Name           string `json:"name,omitempty"`
	AutoGenerate   bool   `json:"auto_generate,omitempty"`
	User           string `json:"user"`
}

// ConversationsDeleteRequest deletes a conversation.
type ConversationsDeleteRequest struct {
	ConversationID string `json:"-"`
	User           string `json:"user"`
}

// ParametersRequest fetches the application's configuration.
type ParametersRequest struct {
	User string `url:"user"`
}

// MetaRequest fetches the application's meta information (tool icons).
type MetaRequest struct {
	User string `url:"user"`
}

// FilesUploadRequest uploads a file (images only) for use in later messages.
// The content type and file name are derived from the file bytes.
type FilesUploadRequest struct {
	File []byte
	User string
}

// AudioToTextRequest transcribes an audio file.
type AudioToTextRequest struct {
	File []byte
	User string
}

// TextToAudioRequest synthesizes speech from text.
type TextToAudioRequest struct {
	Text      string `json:"text"`
	User      string `json:"user"`
	Streaming bool   `json:"streaming"`
}
