package core

import "encoding/json"

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandHello announces the connection's identity.
	CommandHello CommandKind = iota
	// CommandChatMessage fans a chat payload out to everyone.
	CommandChatMessage
	// CommandJoinVoice puts the sender's identity into the voice room.
	CommandJoinVoice
	// CommandLeaveVoice removes the sender's identity from the voice room.
	CommandLeaveVoice
	// CommandVoiceState patches the voice flags of a participant.
	CommandVoiceState
)

// Command represents an action requested by a client. Fields beyond Kind are
// meaningful only for the kinds that use them.
type Command struct {
	Kind     CommandKind
	User     *Identity       // CommandHello
	Message  json.RawMessage // CommandChatMessage, stored verbatim
	TargetID string          // CommandVoiceState
	State    StatePatch      // CommandVoiceState
}
