package core

// VoiceParticipant is the mutable per-user record of voice-room membership.
// Voice state is ephemeral: it lives only as long as the process and is
// rebuilt entirely from join/state/leave traffic.
type VoiceParticipant struct {
	ID           string
	Name         string
	Avatar       *string
	Muted        bool
	SpeakerMuted bool
	Speaking     bool
	CameraOn     bool
	Streaming    bool
}

// StatePatch is a partial update to a participant's flags. Nil fields keep
// their prior values.
type StatePatch struct {
	Muted        *bool
	SpeakerMuted *bool
	Speaking     *bool
	CameraOn     *bool
	Streaming    *bool
}

// Presence tracks the users currently in the voice room, keyed by identity id
// and kept in join order. Owned by the hub goroutine.
type Presence struct {
	participants map[string]*VoiceParticipant
	order        []string
}

// NewPresence constructs an empty presence store.
func NewPresence() *Presence {
	return &Presence{
		participants: make(map[string]*VoiceParticipant),
	}
}

// Join adds a participant with default flags for the given identity. Joining
// while already present returns the existing record unchanged.
func (p *Presence) Join(identity Identity) *VoiceParticipant {
	if existing, ok := p.participants[identity.ID]; ok {
		return existing
	}
	participant := &VoiceParticipant{
		ID:     identity.ID,
		Name:   identity.Name,
		Avatar: identity.Avatar,
	}
	p.participants[identity.ID] = participant
	p.order = append(p.order, identity.ID)
	return participant
}

// Leave removes the participant for id. Returns false if there was none.
func (p *Presence) Leave(id string) bool {
	if _, ok := p.participants[id]; !ok {
		return false
	}
	delete(p.participants, id)
	for i, existing := range p.order {
		if existing == id {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
	return true
}

// Apply merges a patch into the participant for id. Patching an unknown id
// does not create a participant; it reports false and changes nothing.
func (p *Presence) Apply(id string, patch StatePatch) bool {
	participant, ok := p.participants[id]
	if !ok {
		return false
	}
	if patch.Muted != nil {
		participant.Muted = *patch.Muted
	}
	if patch.SpeakerMuted != nil {
		participant.SpeakerMuted = *patch.SpeakerMuted
	}
	if patch.Speaking != nil {
		participant.Speaking = *patch.Speaking
	}
	if patch.CameraOn != nil {
		participant.CameraOn = *patch.CameraOn
	}
	if patch.Streaming != nil {
		participant.Streaming = *patch.Streaming
	}
	return true
}

// Snapshot copies the current membership in join order. The copy is safe to
// hand to other goroutines.
func (p *Presence) Snapshot() []VoiceParticipant {
	users := make([]VoiceParticipant, 0, len(p.order))
	for _, id := range p.order {
		users = append(users, *p.participants[id])
	}
	return users
}

// Len returns the number of participants in the voice room.
func (p *Presence) Len() int {
	return len(p.participants)
}
