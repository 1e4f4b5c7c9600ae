// Package bot implements the conversation controller: a per-user state
// machine that turns inbound chat events into storage and LLM calls and
// exactly one outbound reply.
package bot

// Event is one inbound interaction, already stripped of transport details.
type Event struct {
	UserID    int64
	ChatID    int64
	MessageID int64  // message carrying the menu, set for callback events
	Text      string // free text or a /command
	Callback  string // button payload, empty for text messages
}

// Button is one inline menu choice.
type Button struct {
	Text string
	Data string
}

// Reply is the outbound message produced for a handled event. A zero Reply
// means the event was not for this subsystem and nothing is sent.
type Reply struct {
	Text    string
	Buttons [][]Button
	// Edit rewrites the originating menu message instead of sending a new one.
	Edit bool
}

// Empty reports whether there is nothing to send.
func (r Reply) Empty() bool {
	return r.Text == ""
}
