// Package chatview turns a flat message list into the grouped, per-part views
// that the HTTP API and the CLI transcript present.
package chatview

import "github.com/elee1766/naochat/src/aisdk"

// MessageGroup is one user turn: the user message and the assistant messages
// that answered it.
type MessageGroup struct {
	User      aisdk.UIMessage   `json:"user"`
	Responses []aisdk.UIMessage `json:"responses"`
}

// GroupMessages partitions messages into user turns. Each user message opens a
// group that collects the assistant messages directly after it. Assistant
// messages with no preceding user message are dropped, and any other role
// closes the current group without being grouped itself.
func GroupMessages(messages []aisdk.UIMessage) []MessageGroup {
	var groups []MessageGroup
	for i := 0; i < len(messages); {
		msg := messages[i]
		i++
		if msg.Role != aisdk.RoleUser {
			continue
		}
		group := MessageGroup{User: msg, Responses: []aisdk.UIMessage{}}
		for i < len(messages) && messages[i].Role == aisdk.RoleAssistant {
			group.Responses = append(group.Responses, messages[i])
			i++
		}
		groups = append(groups, group)
	}
	return groups
}

// Flatten is the inverse of GroupMessages.
func Flatten(groups []MessageGroup) []aisdk.UIMessage {
	var out []aisdk.UIMessage
	for _, g := range groups {
		out = append(out, g.User)
		out = append(out, g.Responses...)
	}
	return out
}

// SerializeForCopy returns the clipboard form of a message: its text parts
// joined by newlines. Reasoning and tool parts are left out.
func SerializeForCopy(message aisdk.UIMessage) string {
	return message.Text()
}
