// Copyright 2025 The Go Dify Authors
// SPDX-License-Identifier: Apache-2.0

package dify

import (
	"fmt"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// StreamEventType is the inner discriminator of a stream event, carried in
// the "event" member of the frame's JSON payload. It is distinct from the
// outer SSE event name, which is always "message" for frames of interest.
type StreamEventType string

const (
	StreamEventMessage          StreamEventType = "message"
	StreamEventMessageFile      StreamEventType = "message_file"
	StreamEventMessageEnd       StreamEventType = "message_end"
	StreamEventMessageReplace   StreamEventType = "message_replace"
	StreamEventWorkflowStarted  StreamEventType = "workflow_started"
	StreamEventNodeStarted      StreamEventType = "node_started"
	StreamEventNodeFinished     StreamEventType = "node_finished"
	StreamEventWorkflowFinished StreamEventType = "workflow_finished"
	StreamEventAgentMessage     StreamEventType = "agent_message"
	StreamEventAgentThought     StreamEventType = "agent_thought"
	StreamEventError            StreamEventType = "error"
	StreamEventPing             StreamEventType = "ping"
)

// StreamEvent is one decoded, typed unit of a task's SSE stream.
//
// All variants except PingEvent and the terminal ones carry the task id of the
// invocation they belong to; consumers correlate an invocation's events by
// that id. MessageEndEvent, WorkflowFinishedEvent and ErrorEvent are the
// terminal variants: receiving one ends the logical stream for the task even
// if the transport stream stays open.
type StreamEvent interface {
	// Kind returns the event discriminator.
	Kind() StreamEventType

	streamEvent()
}

// MessageEvent is one chunk of generated answer text.
type MessageEvent struct {
	MessageBase
	Event  StreamEventType           `json:"event"`
	ID     string                    `json:"id,omitempty"`
	TaskID string                    `json:"task_id"`
	Answer string                    `json:"answer"`
	Extra  map[string]jsontext.Value `json:",unknown"`
}

// MessageFileEvent announces a file that became available mid-stream.
type MessageFileEvent struct {
	MessageBase
	Event     StreamEventType           `json:"event"`
	ID        string                    `json:"id"`
	TaskID    string                    `json:"task_id,omitempty"`
	Type      FileType                  `json:"type"`
	BelongsTo BelongsTo                 `json:"belongs_to"`
	URL       string                    `json:"url"`
	Extra     map[string]jsontext.Value `json:",unknown"`
}

// MessageEndEvent terminates the stream for a message.
type MessageEndEvent struct {
	MessageBase
	Event    StreamEventType           `json:"event"`
	ID       string                    `json:"id,omitempty"`
	TaskID   string                    `json:"task_id"`
	Metadata map[string]jsontext.Value `json:"metadata,omitempty"`
	Extra    map[string]jsontext.Value `json:",unknown"`
}

// MessageReplaceEvent replaces the entire answer text, emitted when content
// moderation substitutes the reply.
type MessageReplaceEvent struct {
	MessageBase
	Event  StreamEventType           `json:"event"`
	TaskID string                    `json:"task_id"`
	Answer string                    `json:"answer"`
	Extra  map[string]jsontext.Value `json:",unknown"`
}

// WorkflowStartedEvent announces the start of a workflow run.
type WorkflowStartedEvent struct {
	MessageBase
	Event         StreamEventType           `json:"event"`
	TaskID        string                    `json:"task_id"`
	WorkflowRunID string                    `json:"workflow_run_id"`
	Data          WorkflowStartedData       `json:"data"`
	Extra         map[string]jsontext.Value `json:",unknown"`
}

// NodeStartedEvent announces the start of one workflow node.
type NodeStartedEvent struct {
	MessageBase
	Event         StreamEventType           `json:"event"`
	TaskID        string                    `json:"task_id"`
	WorkflowRunID string                    `json:"workflow_run_id"`
	Data          NodeStartedData           `json:"data"`
	Extra         map[string]jsontext.Value `json:",unknown"`
}

// NodeFinishedEvent carries one workflow node's outcome; success and failure
// share the event, distinguished by the status in Data.
type NodeFinishedEvent struct {
	MessageBase
	Event         StreamEventType           `json:"event"`
	TaskID        string                    `json:"task_id"`
	WorkflowRunID string                    `json:"workflow_run_id"`
	Data          NodeFinishedData          `json:"data"`
	Extra         map[string]jsontext.Value `json:",unknown"`
}

// WorkflowFinishedEvent is the terminal event of a workflow run.
type WorkflowFinishedEvent struct {
	MessageBase
	Event         StreamEventType           `json:"event"`
	TaskID        string                    `json:"task_id"`
	WorkflowRunID string                    `json:"workflow_run_id"`
	Data          WorkflowFinishedData      `json:"data"`
	Extra         map[string]jsontext.Value `json:",unknown"`
}

// AgentMessageEvent is one chunk of answer text in agent mode.
type AgentMessageEvent struct {
	MessageBase
	Event  StreamEventType           `json:"event"`
	ID     string                    `json:"id,omitempty"`
	TaskID string                    `json:"task_id"`
	Answer string                    `json:"answer"`
	Extra  map[string]jsontext.Value `json:",unknown"`
}

// AgentThoughtEvent carries one round of agent reasoning, including the tool
// invoked and its input/output.
type AgentThoughtEvent struct {
	MessageBase
	Event        StreamEventType           `json:"event"`
	ID           string                    `json:"id,omitempty"`
	TaskID       string                    `json:"task_id"`
	Position     int                       `json:"position"`
	Thought      string                    `json:"thought,omitempty"`
	Observation  string                    `json:"observation,omitempty"`
	Tool         string                    `json:"tool,omitempty"`
	ToolLabels   jsontext.Value            `json:"tool_labels,omitempty"`
	ToolInput    string                    `json:"tool_input,omitempty"`
	MessageFiles []string                  `json:"message_files,omitempty"`
	Extra        map[string]jsontext.Value `json:",unknown"`
}

// ErrorEvent is the terminal event of a failed stream.
type ErrorEvent struct {
	MessageBase
	Event   StreamEventType           `json:"event"`
	TaskID  string                    `json:"task_id,omitempty"`
	Status  int                       `json:"status"`
	Code    string                    `json:"code"`
	Message string                    `json:"message"`
	Extra   map[string]jsontext.Value `json:",unknown"`
}

// AsError converts the event to the service error shape.
func (e *ErrorEvent) AsError() *ErrorResponse {
	return &ErrorResponse{Code: e.Code, Message: e.Message, Status: e.Status}
}

// PingEvent is the keep-alive frame sent every few seconds. It carries no
// payload and consumers are expected to ignore it.
type PingEvent struct {
	Event StreamEventType `json:"event"`
}

// UnknownEvent is an event whose discriminator is not part of the known
// taxonomy, carrying the raw tag and payload. ParseStreamEvent never returns
// it; the client's event stream produces it only when unknown-event
// passthrough is enabled.
type UnknownEvent struct {
	Event string
	Data  jsontext.Value
}

func (e *MessageEvent) Kind() StreamEventType          { return StreamEventMessage }
func (e *MessageFileEvent) Kind() StreamEventType      { return StreamEventMessageFile }
func (e *MessageEndEvent) Kind() StreamEventType       { return StreamEventMessageEnd }
func (e *MessageReplaceEvent) Kind() StreamEventType   { return StreamEventMessageReplace }
func (e *WorkflowStartedEvent) Kind() StreamEventType  { return StreamEventWorkflowStarted }
func (e *NodeStartedEvent) Kind() StreamEventType      { return StreamEventNodeStarted }
func (e *NodeFinishedEvent) Kind() StreamEventType     { return StreamEventNodeFinished }
func (e *WorkflowFinishedEvent) Kind() StreamEventType { return StreamEventWorkflowFinished }
func (e *AgentMessageEvent) Kind() StreamEventType     { return StreamEventAgentMessage }
func (e *AgentThoughtEvent) Kind() StreamEventType     { return StreamEventAgentThought }
func (e *ErrorEvent) Kind() StreamEventType            { return StreamEventError }
func (e *PingEvent) Kind() StreamEventType             { return StreamEventPing }
func (e *UnknownEvent) Kind() StreamEventType          { return StreamEventType(e.Event) }

func (e *MessageEvent) streamEvent()          {}
func (e *MessageFileEvent) streamEvent()      {}
func (e *MessageEndEvent) streamEvent()       {}
func (e *MessageReplaceEvent) streamEvent()   {}
func (e *WorkflowStartedEvent) streamEvent()  {}
func (e *NodeStartedEvent) streamEvent()      {}
func (e *NodeFinishedEvent) streamEvent()     {}
func (e *WorkflowFinishedEvent) streamEvent() {}
func (e *AgentMessageEvent) streamEvent()     {}
func (e *AgentThoughtEvent) streamEvent()     {}
func (e *ErrorEvent) streamEvent()            {}
func (e *PingEvent) streamEvent()             {}
func (e *UnknownEvent) streamEvent()          {}

// WorkflowStartedData is the payload of a WorkflowStartedEvent.
type WorkflowStartedData struct {
	ID             string         `json:"id"`
	WorkflowID     string         `json:"workflow_id"`
	SequenceNumber int            `json:"sequence_number"`
	Inputs         jsontext.Value `json:"inputs,omitempty"`
	CreatedAt      int64          `json:"created_at"`
}

// WorkflowFinishedData is the payload of a WorkflowFinishedEvent and of the
// blocking WorkflowsRunResponse. A Status of FinishedStatusRunning here is
// malformed server output; it is surfaced unchanged.
type WorkflowFinishedData struct {
	ID          string         `json:"id"`
	WorkflowID  string         `json:"workflow_id"`
	Status      FinishedStatus `json:"status"`
	Outputs     jsontext.Value `json:"outputs,omitempty"`
	Error       string         `json:"error,omitempty"`
	ElapsedTime float64        `json:"elapsed_time,omitempty"`
	TotalTokens int            `json:"total_tokens,omitempty"`
	TotalSteps  int            `json:"total_steps"`
	CreatedAt   int64          `json:"created_at"`
	FinishedAt  int64          `json:"finished_at"`
}

// NodeStartedData is the payload of a NodeStartedEvent.
type NodeStartedData struct {
	ID                string         `json:"id"`
	NodeID            string         `json:"node_id"`
	NodeType          string         `json:"node_type"`
	Title             string         `json:"title"`
	Index             int            `json:"index"`
	PredecessorNodeID string         `json:"predecessor_node_id,omitempty"`
	Inputs            jsontext.Value `json:"inputs,omitempty"`
	CreatedAt         int64          `json:"created_at"`
}

// NodeFinishedData is the payload of a NodeFinishedEvent.
type NodeFinishedData struct {
	ID                string             `json:"id"`
	NodeID            string             `json:"node_id"`
	Index             int                `json:"index"`
	PredecessorNodeID string             `json:"predecessor_node_id,omitempty"`
	Inputs            jsontext.Value     `json:"inputs,omitempty"`
	ProcessData       jsontext.Value     `json:"process_data,omitempty"`
	Outputs           jsontext.Value     `json:"outputs,omitempty"`
	Status            FinishedStatus     `json:"status"`
	Error             string             `json:"error,omitempty"`
	ElapsedTime       float64            `json:"elapsed_time,omitempty"`
	ExecutionMetadata *ExecutionMetadata `json:"execution_metadata,omitempty"`
	CreatedAt         int64              `json:"created_at"`
}

// ExecutionMetadata carries a finished node's accounting data.
type ExecutionMetadata struct {
	TotalTokens int    `json:"total_tokens,omitempty"`
	TotalPrice  string `json:"total_price,omitempty"`
	Currency    string `json:"currency,omitempty"`
}

// UnknownEventError is returned by ParseStreamEvent for a payload whose
// "event" discriminator is not in the known taxonomy. It carries the raw
// payload so callers can choose to handle the variant themselves.
type UnknownEventError struct {
	Event string
	Data  []byte
}

// Error implements the error interface.
func (e *UnknownEventError) Error() string {
	return fmt.Sprintf("unknown stream event %q: %s", e.Event, e.Data)
}

// ParseStreamEvent decodes one stream event payload, dispatching on the
// embedded "event" discriminator. The taxonomy is closed: an unrecognized
// discriminator fails with *UnknownEventError rather than being skipped.
func ParseStreamEvent(data []byte) (StreamEvent, error) {
	var probe struct {
		Event StreamEventType `json:"event"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decoding stream event envelope: %w", err)
	}

	var event StreamEvent
	switch probe.Event {
	case StreamEventMessage:
		event = &MessageEvent{}
	case StreamEventMessageFile:
		event = &MessageFileEvent{}
	case StreamEventMessageEnd:
		event = &MessageEndEvent{}
	case StreamEventMessageReplace:
		event = &MessageReplaceEvent{}
	case StreamEventWorkflowStarted:
		event = &WorkflowStartedEvent{}
	case StreamEventNodeStarted:
		event = &NodeStartedEvent{}
	case StreamEventNodeFinished:
		event = &NodeFinishedEvent{}
	case StreamEventWorkflowFinished:
		event = &WorkflowFinishedEvent{}
	case StreamEventAgentMessage:
		event = &AgentMessageEvent{}
	case StreamEventAgentThought:
		event = &AgentThoughtEvent{}
	case StreamEventError:
		event = &ErrorEvent{}
	case StreamEventPing:
		event = &PingEvent{}
	default:
		return nil, &UnknownEventError{
			Event: string(probe.Event),
			Data:  append([]byte(nil), data...),
		}
	}

	if err := json.Unmarshal(data, event); err != nil {
		return nil, fmt.Errorf("decoding %s stream event: %w", probe.Event, err)
	}
	return event, nil
}
