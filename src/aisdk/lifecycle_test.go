package aisdk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toolPart(name, id string, state ToolState) Part {
	return Part{Type: ToolPartType(name), ToolCallID: id, State: string(state)}
}

func TestIsToolSettled(t *testing.T) {
	tests := []struct {
		state ToolState
		want  bool
	}{
		{ToolInputStreaming, false},
		{ToolInputAvailable, false},
		{ToolOutputAvailable, true},
		{ToolOutputDenied, true},
		{ToolOutputError, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			assert.Equal(t, tt.want, IsToolSettled(toolPart("execute_sql", "c1", tt.state)))
		})
	}

	assert.False(t, IsToolSettled(NewTextPart("hello")), "text parts are never settled tool calls")
}

func TestIsAgentGenerating(t *testing.T) {
	user := UIMessage{ID: "u1", Role: RoleUser, Parts: []Part{NewTextPart("how many orders?")}}

	tests := []struct {
		name     string
		status   ChatStatus
		messages []UIMessage
		want     bool
	}{
		{
			name:     "ready status is never generating",
			status:   StatusReady,
			messages: []UIMessage{user, {Role: RoleAssistant, Parts: []Part{{Type: PartText, State: TextStreaming}}}},
			want:     false,
		},
		{
			name:     "no messages",
			status:   StatusStreaming,
			messages: nil,
			want:     false,
		},
		{
			name:     "streaming text",
			status:   StatusStreaming,
			messages: []UIMessage{user, {Role: RoleAssistant, Parts: []Part{{Type: PartText, State: TextStreaming}}}},
			want:     true,
		},
		{
			name:     "streaming reasoning",
			status:   StatusSubmitted,
			messages: []UIMessage{user, {Role: RoleAssistant, Parts: []Part{{Type: PartReasoning, State: TextStreaming}}}},
			want:     true,
		},
		{
			name:   "pending tool call",
			status: StatusStreaming,
			messages: []UIMessage{user, {Role: RoleAssistant, Parts: []Part{
				NewTextPart("let me check"),
				toolPart("execute_sql", "c1", ToolInputAvailable),
			}}},
			want: true,
		},
		{
			name:   "everything settled",
			status: StatusStreaming,
			messages: []UIMessage{user, {Role: RoleAssistant, Parts: []Part{
				NewTextPart("done"),
				toolPart("execute_sql", "c1", ToolOutputAvailable),
			}}},
			want: false,
		},
		{
			name:     "submitted but last message is the user's",
			status:   StatusSubmitted,
			messages: []UIMessage{user},
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAgentGenerating(tt.status, tt.messages))
		})
	}
}

func TestPartAdvanceIsForwardOnly(t *testing.T) {
	p := toolPart("grep", "c1", ToolInputStreaming)

	require.True(t, p.Advance(ToolInputAvailable))
	assert.False(t, p.Advance(ToolInputStreaming))
	assert.Equal(t, ToolInputAvailable, p.ToolState())

	require.True(t, p.Advance(ToolOutputAvailable))
	assert.False(t, p.Advance(ToolOutputError), "settled parts cannot move to another terminal state")
	assert.False(t, p.Advance(ToolInputAvailable))
	assert.True(t, IsToolSettled(p))
}

func TestPartAdvanceRejectsUnknownState(t *testing.T) {
	p := Part{Type: ToolPartType("grep"), ToolCallID: "c1"}
	assert.False(t, p.Advance(ToolState("output-pending")))
	assert.Empty(t, p.State)

	p = toolPart("grep", "c1", ToolInputAvailable)
	assert.False(t, p.Advance(ToolState("")))
	assert.Equal(t, ToolInputAvailable, p.ToolState())
}

func TestAbort(t *testing.T) {
	msg := UIMessage{Role: RoleAssistant, Parts: []Part{
		{Type: PartText, Text: "partial", State: TextStreaming},
		toolPart("execute_sql", "c1", ToolOutputAvailable),
		toolPart("execute_sql", "c2", ToolInputAvailable),
		toolPart("display_chart", "c3", ToolInputStreaming),
	}}

	changed := Abort(&msg, "")
	assert.Equal(t, 3, changed)

	assert.Equal(t, TextDone, msg.Parts[0].State)
	assert.Equal(t, ToolOutputAvailable, msg.Parts[1].ToolState())
	assert.Empty(t, msg.Parts[1].ErrorText)
	assert.Equal(t, ToolOutputDenied, msg.Parts[2].ToolState())
	assert.Equal(t, AbortedDenyText, msg.Parts[2].ErrorText)
	assert.Equal(t, ToolOutputError, msg.Parts[3].ToolState())
	assert.Equal(t, AbortedInputText, msg.Parts[3].ErrorText)

	assert.False(t, IsAgentGenerating(StatusStreaming, []UIMessage{msg}))
	assert.Zero(t, Abort(&msg, ""), "aborting twice is a no-op")
}

func TestAbortWithReason(t *testing.T) {
	msg := UIMessage{Role: RoleAssistant, Parts: []Part{toolPart("read", "c1", ToolInputAvailable)}}
	Abort(&msg, "provider disconnected")
	assert.Equal(t, "provider disconnected", msg.Parts[0].ErrorText)
}
