package chatview

import (
	"time"

	"github.com/elee1766/naochat/src/aisdk"
	"github.com/elee1766/naochat/src/charts"
)

// PartView is one message part ready for display.
type PartView struct {
	Type      aisdk.PartType `json:"type"`
	Text      string         `json:"text,omitempty"`
	Streaming bool           `json:"streaming,omitempty"`
	Tool      *ToolView      `json:"tool,omitempty"`
}

// MessageView is a message ready for display.
type MessageView struct {
	ID        string     `json:"id"`
	Role      aisdk.Role `json:"role"`
	CreatedAt time.Time  `json:"created_at,omitempty"`
	TimeAgo   string     `json:"time_ago,omitempty"`
	Parts     []PartView `json:"parts"`
	// CopyText is what the copy action puts on the clipboard.
	CopyText string `json:"copy_text"`
}

// GroupView is a user turn ready for display.
type GroupView struct {
	User      MessageView   `json:"user"`
	Responses []MessageView `json:"responses"`
}

// Builder assembles views. The zero value is not usable, use NewBuilder.
type Builder struct {
	Registry *Registry
	Now      func() time.Time
}

// NewBuilder returns a builder with the built-in renderers and the wall clock.
func NewBuilder() *Builder {
	return &Builder{Registry: NewRegistry(), Now: time.Now}
}

// BuildView groups messages and renders every part with the built-in
// renderers.
func BuildView(messages []aisdk.UIMessage) []GroupView {
	return NewBuilder().Build(messages)
}

// Build groups messages and renders every part. Chart bindings are resolved
// once for the whole snapshot.
func (b *Builder) Build(messages []aisdk.UIMessage) []GroupView {
	rc := &RenderContext{Charts: charts.BindAll(messages)}
	now := b.Now()

	groups := GroupMessages(messages)
	out := make([]GroupView, 0, len(groups))
	for _, g := range groups {
		gv := GroupView{
			User:      b.message(g.User, rc, now),
			Responses: make([]MessageView, 0, len(g.Responses)),
		}
		for _, r := range g.Responses {
			gv.Responses = append(gv.Responses, b.message(r, rc, now))
		}
		out = append(out, gv)
	}
	return out
}

func (b *Builder) message(msg aisdk.UIMessage, rc *RenderContext, now time.Time) MessageView {
	mv := MessageView{
		ID:        msg.ID,
		Role:      msg.Role,
		CreatedAt: msg.CreatedAt,
		Parts:     make([]PartView, 0, len(msg.Parts)),
		CopyText:  SerializeForCopy(msg),
	}
	if !msg.CreatedAt.IsZero() {
		mv.TimeAgo = FormatTimeAgo(now, msg.CreatedAt)
	}

	for _, part := range msg.Parts {
		switch {
		case part.IsToolPart():
			tv := b.Registry.Render(part, rc)
			mv.Parts = append(mv.Parts, PartView{Type: part.Type, Tool: &tv})
		case part.Type == aisdk.PartText || part.Type == aisdk.PartReasoning:
			mv.Parts = append(mv.Parts, PartView{Type: part.Type, Text: part.Text, Streaming: part.IsStreaming()})
		}
	}
	return mv
}
