package http

import (
	"bytes"
	"encoding/json"

	"github.com/nicqsizaccent/wonderfulkillers/internal/core"
	"github.com/nicqsizaccent/wonderfulkillers/internal/proto"
)

var jsonNull = []byte("null")

// inboundToCommand maps a decoded frame to a hub command. A nil return means
// the frame is unknown or missing required fields and must be dropped
// silently; the relay never answers bad input with an error.
func inboundToCommand(inbound proto.Inbound) *core.Command {
	switch inbound.Type {
	case proto.InboundTypeHello:
		if inbound.User == nil {
			return nil
		}
		return &core.Command{
			Kind: core.CommandHello,
			User: identityFromUserInfo(*inbound.User),
		}
	case proto.InboundTypeChatMessage:
		if len(inbound.Message) == 0 || bytes.Equal(inbound.Message, jsonNull) {
			return nil
		}
		return &core.Command{
			Kind:    core.CommandChatMessage,
			Message: inbound.Message,
		}
	case proto.InboundTypeJoinVoice:
		return &core.Command{Kind: core.CommandJoinVoice}
	case proto.InboundTypeLeaveVoice:
		return &core.Command{Kind: core.CommandLeaveVoice}
	case proto.InboundTypeVoiceState:
		if inbound.UserID == "" || inbound.State == nil {
			return nil
		}
		return &core.Command{
			Kind:     core.CommandVoiceState,
			TargetID: inbound.UserID,
			State: core.StatePatch{
				Muted:        inbound.State.Muted,
				SpeakerMuted: inbound.State.SpeakerMuted,
				Speaking:     inbound.State.Speaking,
				CameraOn:     inbound.State.CameraOn,
				Streaming:    inbound.State.Streaming,
			},
		}
	default:
		return nil
	}
}

// outboundFromEvent builds the wire frame for a hub event. Collections are
// always concrete JSON arrays/objects, never null, so launcher clients can
// iterate without guarding.
func outboundFromEvent(event *core.Event) any {
	switch event.Kind {
	case core.EventChatHistory:
		messages := event.Messages
		if messages == nil {
			messages = []json.RawMessage{}
		}
		return proto.ChatHistory{
			Type:     proto.OutboundTypeChatHistory,
			Messages: messages,
		}
	case core.EventUserList:
		users := make(map[string]proto.RoleSet, len(event.Roles))
		for id, roles := range event.Roles {
			if roles == nil {
				roles = []string{}
			}
			users[id] = proto.RoleSet{DisplayRoles: roles}
		}
		return proto.UserList{
			Type:  proto.OutboundTypeUserList,
			Users: users,
		}
	case core.EventUserJoined:
		return proto.UserJoined{
			Type: proto.OutboundTypeUserJoined,
			User: userInfoFromIdentity(event.User),
		}
	case core.EventChatMessage:
		return proto.ChatMessage{
			Type:    proto.OutboundTypeChatMessage,
			Message: event.Message,
		}
	case core.EventVoiceUsers:
		users := make([]proto.VoiceUser, 0, len(event.Participants))
		for _, participant := range event.Participants {
			users = append(users, voiceUserFromParticipant(participant))
		}
		return proto.VoiceUsers{
			Type:  proto.OutboundTypeVoiceUsers,
			Users: users,
		}
	default:
		return proto.VoiceUsers{Type: proto.OutboundTypeVoiceUsers, Users: []proto.VoiceUser{}}
	}
}

func identityFromUserInfo(user proto.UserInfo) *core.Identity {
	roles := user.DisplayRoles
	if roles == nil {
		roles = []string{}
	}
	return &core.Identity{
		ID:           user.ID,
		Name:         user.Name,
		Avatar:       user.Avatar,
		DisplayRoles: roles,
	}
}

func userInfoFromIdentity(identity *core.Identity) proto.UserInfo {
	if identity == nil {
		return proto.UserInfo{DisplayRoles: []string{}}
	}
	roles := identity.DisplayRoles
	if roles == nil {
		roles = []string{}
	}
	return proto.UserInfo{
		ID:           identity.ID,
		Name:         identity.Name,
		Avatar:       identity.Avatar,
		DisplayRoles: roles,
	}
}

func voiceUserFromParticipant(p core.VoiceParticipant) proto.VoiceUser {
	return proto.VoiceUser{
		ID:           p.ID,
		Name:         p.Name,
		Avatar:       p.Avatar,
		Muted:        p.Muted,
		SpeakerMuted: p.SpeakerMuted,
		Speaking:     p.Speaking,
		CameraOn:     p.CameraOn,
		Streaming:    p.Streaming,
	}
}
