package aisdk

// IsToolSettled reports whether a tool part has reached a terminal state and
// needs no further action.
func IsToolSettled(part Part) bool {
	return part.IsToolPart() && part.ToolState().Settled()
}

// IsAgentRunning reports whether a run is in flight.
func IsAgentRunning(status ChatStatus) bool {
	return status == StatusStreaming || status == StatusSubmitted
}

// IsAgentGenerating reports whether the agent is actively producing content:
// the run is in flight and the last message has a streaming text or reasoning
// part, or a tool call that has not settled.
//
// It is a pure function of the snapshot and must be re-evaluated after every
// update.
func IsAgentGenerating(status ChatStatus, messages []UIMessage) bool {
	if !IsAgentRunning(status) || len(messages) == 0 {
		return false
	}

	last := messages[len(messages)-1]
	for _, part := range last.Parts {
		if part.IsStreaming() {
			return true
		}
		if part.IsToolPart() && !IsToolSettled(part) {
			return true
		}
	}
	return false
}

// Abort messages recorded on tool parts that an aborted run left unsettled.
const (
	AbortedInputText = "aborted before the tool input was complete"
	AbortedDenyText  = "aborted before the tool ran"
)

// Abort closes out a message whose run was cancelled so that nothing in it
// stays pending:
//
//	input-streaming -> output-error  (the input never finished arriving)
//	input-available -> output-denied (the tool never ran)
//	streaming text/reasoning -> done
//
// Settled parts are left untouched. reason, when non-empty, replaces the
// default error text. Abort returns the number of parts it changed.
func Abort(message *UIMessage, reason string) int {
	if message == nil {
		return 0
	}

	changed := 0
	for i := range message.Parts {
		part := &message.Parts[i]

		if part.IsStreaming() {
			part.State = TextDone
			changed++
			continue
		}
		if !part.IsToolPart() || part.ToolState().Settled() {
			continue
		}

		switch part.ToolState() {
		case ToolInputAvailable:
			part.State = string(ToolOutputDenied)
			part.ErrorText = AbortedDenyText
		default:
			part.State = string(ToolOutputError)
			part.ErrorText = AbortedInputText
		}
		if reason != "" {
			part.ErrorText = reason
		}
		changed++
	}
	return changed
}
