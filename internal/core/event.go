package core

import "encoding/json"

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventChatHistory delivers the retained chat buffer after hello.
	EventChatHistory EventKind = iota
	// EventUserList delivers the other registered identities after hello.
	EventUserList
	// EventUserJoined notifies existing clients about a newly identified one.
	EventUserJoined
	// EventChatMessage relays a chat payload.
	EventChatMessage
	// EventVoiceUsers delivers the full voice-room snapshot.
	EventVoiceUsers
)

// Event is sent to clients to describe what happened in the system. Events
// are shared between recipients and must be treated as read-only.
type Event struct {
	Kind         EventKind
	User         *Identity           // EventUserJoined
	Message      json.RawMessage     // EventChatMessage
	Messages     []json.RawMessage   // EventChatHistory, oldest first
	Roles        map[string][]string // EventUserList, identity id -> display roles
	Participants []VoiceParticipant  // EventVoiceUsers, join order
}
