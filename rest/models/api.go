package models

import "github.com/bluefunda/backlogr/types"

// REST API request and response structures

// APIResponse represents a generic API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// CommandRequest carries either free text for the intent parser or an
// already structured command.
type CommandRequest struct {
	Text   string                 `json:"text,omitempty"`
	Type   types.EntityType       `json:"type,omitempty"`
	Action types.Action           `json:"action,omitempty"`
	Params map[string]interface{} `json:"params,omitempty"`
}

// CommandResponse is the outcome of one executed command
type CommandResponse struct {
	Intent types.Intent `json:"intent"`
	Result types.Result `json:"result"`
}

// ParseResponse is the intent derived from free text, without executing it
type ParseResponse struct {
	Intent types.Intent `json:"intent"`
}

// CommandListResponse lists every supported command
type CommandListResponse struct {
	Total    int                 `json:"total"`
	Commands []types.CommandSpec `json:"commands"`
}
