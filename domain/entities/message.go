package entities

// DefaultIntimacyIncrement is applied when a message is recorded without an explicit increment
const DefaultIntimacyIncrement = 1

// MessageRecord is the outcome of charging and recording one user message.
// UserGuild is nil for direct messages.
type MessageRecord struct {
	User      *User      `json:"user"`
	UserGuild *UserGuild `json:"userGuild,omitempty"`
}
