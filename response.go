// Copyright 2025 The Go Dify Authors
// SPDX-License-Identifier: Apache-2.0

package dify

import (
	"fmt"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// UnknownErrorCode is the code of an ErrorResponse synthesized by the client
// for a response body that matches neither the expected payload nor the
// service error shape.
const UnknownErrorCode = "unknown_error"

// ErrorResponse is the uniform shape the service uses to report any failure,
// blocking or streaming. It implements error so it can be surfaced verbatim.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

var _ error = (*ErrorResponse)(nil)

// Error implements the error interface.
func (e *ErrorResponse) Error() string {
	return fmt.Sprintf("dify: %s (code=%s, status=%d)", e.Message, e.Code, e.Status)
}

// NewUnknownError synthesizes the ErrorResponse used when a response body is
// unrecognizable. The message carries the raw body text.
func NewUnknownError(message string) *ErrorResponse {
	return &ErrorResponse{
		Code:    UnknownErrorCode,
		Message: message,
		Status:  503,
	}
}

// ResultResponse is the generic acknowledgment body, e.g. {"result": "success"}.
type ResultResponse struct {
	Result string `json:"result"`
}

// MessageBase carries the identifiers common to message-scoped payloads.
type MessageBase struct {
	MessageID      string `json:"message_id,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
	CreatedAt      int64  `json:"created_at,omitempty"`
}

// ChatMessagesResponse is the blocking-mode response to a chat message.
type ChatMessagesResponse struct {
	MessageBase
	ID       string                    `json:"id,omitempty"`
	TaskID   string                    `json:"task_id,omitempty"`
	Event    string                    `json:"event"`
	Mode     AppMode                   `json:"mode"`
	Answer   string                    `json:"answer"`
	Metadata map[string]jsontext.Value `json:"metadata,omitempty"`
}

// CompletionMessagesResponse is the blocking-mode response to a completion
// message.
type CompletionMessagesResponse struct {
	MessageBase
	ID       string                    `json:"id,omitempty"`
	TaskID   string                    `json:"task_id"`
	Event    string                    `json:"event"`
	Mode     AppMode                   `json:"mode"`
	Answer   string                    `json:"answer"`
	Metadata map[string]jsontext.Value `json:"metadata,omitempty"`
}

// WorkflowsRunResponse is the blocking-mode response to a workflow run.
type WorkflowsRunResponse struct {
	WorkflowRunID string               `json:"workflow_run_id"`
	TaskID        string               `json:"task_id"`
	Data          WorkflowFinishedData `json:"data"`
}

// MessagesSuggestedResponse lists suggested follow-up questions.
type MessagesSuggestedResponse struct {
	Result string   `json:"result"`
	Data   []string `json:"data"`
}

// MessagesResponse is one page of conversation history, newest first.
type MessagesResponse struct {
	Limit   int           `json:"limit"`
	HasMore bool          `json:"has_more"`
	Data    []MessageData `json:"data"`
}

// MessageData is one history record.
type MessageData struct {
	ID                 string            `json:"id"`
	ConversationID     string            `json:"conversation_id"`
	Inputs             jsontext.Value    `json:"inputs,omitempty"`
	Query              string            `json:"query"`
	Answer             string            `json:"answer"`
	MessageFiles       []MessageFileInfo `json:"message_files,omitempty"`
	Feedback           *MessageFeedback  `json:"feedback,omitempty"`
	RetrieverResources []jsontext.Value  `json:"retriever_resources,omitempty"`
	CreatedAt          int64             `json:"created_at"`
}

// MessageFileInfo describes a file referenced by a history record.
type MessageFileInfo struct {
	ID        string    `json:"id"`
	Type      FileType  `json:"type"`
	URL       string    `json:"url"`
	BelongsTo BelongsTo `json:"belongs_to"`
}

// MessageFeedback is the recorded end-user feedback on a message.
type MessageFeedback struct {
	Rating Rating `json:"rating"`
}

// ConversationsResponse is one page of the user's conversation listing.
type ConversationsResponse struct {
	HasMore bool               `json:"has_more"`
	Limit   int                `json:"limit"`
	Data    []ConversationData `json:"data"`
}

// ConversationData is one conversation record.
type ConversationData struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Inputs       map[string]string `json:"inputs,omitempty"`
	Introduction string            `json:"introduction,omitempty"`
	CreatedAt    int64             `json:"created_at"`
}

// ParametersResponse is the application configuration fetched on page load.
type ParametersResponse struct {
	OpeningStatement              string              `json:"opening_statement"`
	SuggestedQuestions            []string            `json:"suggested_questions,omitempty"`
	SuggestedQuestionsAfterAnswer FeatureToggle       `json:"suggested_questions_after_answer"`
	SpeechToText                  FeatureToggle       `json:"speech_to_text"`
	RetrieverResource             FeatureToggle       `json:"retriever_resource"`
	AnnotationReply               FeatureToggle       `json:"annotation_reply"`
	UserInputForm                 []UserInputFormItem `json:"user_input_form,omitempty"`
	FileUpload                    FileUploadConfig    `json:"file_upload"`
	SystemParameters              SystemParameters    `json:"system_parameters"`
}

// FeatureToggle is an on/off application feature switch.
type FeatureToggle struct {
	Enabled bool `json:"enabled"`
}

// UserInputFormItem is one input control of the application form. Exactly one
// of the control fields is set, keyed by the control kind on the wire.
type UserInputFormItem struct {
	TextInput *TextControl   `json:"text-input,omitempty"`
	Paragraph *TextControl   `json:"paragraph,omitempty"`
	Number    *TextControl   `json:"number,omitempty"`
	Select    *SelectControl `json:"select,omitempty"`
}

// TextControl is a free-form input control.
type TextControl struct {
	Label    string `json:"label"`
	Variable string `json:"variable"`
	Required bool   `json:"required"`
}

// SelectControl is a fixed-options input control.
type SelectControl struct {
	Label    string   `json:"label"`
	Variable string   `json:"variable"`
	Required bool     `json:"required"`
	Options  []string `json:"options,omitempty"`
}

// FileUploadConfig describes the application's upload settings.
type FileUploadConfig struct {
	Image *ImageUploadConfig `json:"image,omitempty"`
}

// ImageUploadConfig describes image upload limits.
type ImageUploadConfig struct {
	Enabled         bool             `json:"enabled"`
	NumberLimits    int              `json:"number_limits"`
	TransferMethods []TransferMethod `json:"transfer_methods,omitempty"`
}

// SystemParameters carries server-side limits.
type SystemParameters struct {
	ImageFileSizeLimit string `json:"image_file_size_limit"`
}

// MetaResponse is the application meta information.
type MetaResponse struct {
	ToolIcons map[string]ToolIcon `json:"tool_icons"`
}

// ToolIcon is either a plain URL string or an emoji object on the wire.
type ToolIcon struct {
	URL   string
	Emoji *ToolIconEmoji
}

// ToolIconEmoji is the emoji form of a tool icon.
type ToolIconEmoji struct {
	Background string `json:"background"`
	Content    string `json:"content"`
}

// UnmarshalJSON accepts both wire forms of a tool icon.
func (t *ToolIcon) UnmarshalJSON(data []byte) error {
	var url string
	if err := json.Unmarshal(data, &url); err == nil {
		t.URL = url
		t.Emoji = nil
		return nil
	}
	var emoji ToolIconEmoji
	if err := json.Unmarshal(data, &emoji); err != nil {
		return fmt.Errorf("tool icon is neither a URL nor an emoji object: %w", err)
	}
	t.URL = ""
	t.Emoji = &emoji
	return nil
}

// MarshalJSON writes the icon back in its wire form.
func (t ToolIcon) MarshalJSON() ([]byte, error) {
	if t.Emoji != nil {
		return json.Marshal(t.Emoji)
	}
	return json.Marshal(t.URL)
}

// AudioToTextResponse is the transcription result.
type AudioToTextResponse struct {
	Text string `json:"text"`
}

// FilesUploadResponse describes an uploaded file.
type FilesUploadResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Size      int64  `json:"size"`
	Extension string `json:"extension"`
	MimeType  string `json:"mime_type"`
	CreatedBy string `json:"created_by"`
	CreatedAt int64  `json:"created_at"`
}
