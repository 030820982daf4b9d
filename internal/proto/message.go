package proto

import "encoding/json"

// The relay speaks a flat protocol: every frame is one JSON object whose
// "type" field selects the payload fields on the same object. There is no
// envelope and no error frames; anything the server cannot make sense of
// is dropped without a reply.

const (
	InboundTypeHello       = "hello"
	InboundTypeChatMessage = "chat_message"
	InboundTypeJoinVoice   = "join_voice"
	InboundTypeLeaveVoice  = "leave_voice"
	InboundTypeVoiceState  = "voice_state"

	OutboundTypeChatHistory = "chat_history"
	OutboundTypeUserList    = "user_list"
	OutboundTypeUserJoined  = "user_joined"
	OutboundTypeChatMessage = "chat_message"
	OutboundTypeVoiceUsers  = "voice_users"
)

// Inbound is the superset of all client frame shapes. Which fields are
// meaningful depends on Type.
type Inbound struct {
	Type    string           `json:"type"`
	User    *UserInfo        `json:"user,omitempty"`
	Message json.RawMessage  `json:"message,omitempty"`
	UserID  string           `json:"userId,omitempty"`
	State   *VoiceStatePatch `json:"state,omitempty"`
}

// UserInfo is the identity a client announces with hello.
type UserInfo struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Avatar       *string  `json:"avatar"`
	DisplayRoles []string `json:"displayRoles"`
}

// VoiceStatePatch carries only the voice flags present on the wire;
// nil means the client did not mention that flag.
type VoiceStatePatch struct {
	Muted        *bool `json:"muted,omitempty"`
	SpeakerMuted *bool `json:"speakerMuted,omitempty"`
	Speaking     *bool `json:"speaking,omitempty"`
	CameraOn     *bool `json:"cameraOn,omitempty"`
	Streaming    *bool `json:"streaming,omitempty"`
}

// VoiceUser is one voice-room participant as serialized to clients.
type VoiceUser struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Avatar       *string `json:"avatar"`
	Muted        bool    `json:"muted"`
	SpeakerMuted bool    `json:"speakerMuted"`
	Speaking     bool    `json:"speaking"`
	CameraOn     bool    `json:"cameraOn"`
	Streaming    bool    `json:"streaming"`
}

// RoleSet is the per-user value in a user_list frame.
type RoleSet struct {
	DisplayRoles []string `json:"displayRoles"`
}

// ChatHistory replays the retained chat buffer to a client that just
// said hello, oldest message first.
type ChatHistory struct {
	Type     string            `json:"type"`
	Messages []json.RawMessage `json:"messages"`
}

// UserList tells a client who else has announced themselves.
type UserList struct {
	Type  string             `json:"type"`
	Users map[string]RoleSet `json:"users"`
}

// UserJoined announces a newly identified client to everyone else.
type UserJoined struct {
	Type string   `json:"type"`
	User UserInfo `json:"user"`
}

// ChatMessage fans a chat payload out to all clients. The relay never
// looks inside the message body.
type ChatMessage struct {
	Type    string          `json:"type"`
	Message json.RawMessage `json:"message"`
}

// VoiceUsers is the full voice-room snapshot, sent after every change
// (and after attempted changes, so clients can treat it as authoritative).
type VoiceUsers struct {
	Type  string      `json:"type"`
	Users []VoiceUser `json:"users"`
}
