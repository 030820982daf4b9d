package core

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"
)

// ErrHubStopped is returned by hub queries after Run has exited.
var ErrHubStopped = errors.New("hub stopped")

// Stats is a consistent point-in-time view of the hub for the status API.
type Stats struct {
	Clients    int
	Identified int
	VoiceUsers []VoiceParticipant
}

type submission struct {
	client *Client
	cmd    *Command
}

// Hub is the relay's dispatch loop. A single goroutine (Run) owns the
// connection registry, the voice presence store, and the chat history;
// transport goroutines hand it parsed commands over a channel and never touch
// that state directly. Every broadcast therefore reflects a fully applied
// mutation, never a partial one.
type Hub struct {
	log *zerolog.Logger

	registry *Registry
	presence *Presence
	history  *History

	register   chan *Client
	unregister chan *Client
	commands   chan submission
	stats      chan chan Stats

	stopped chan struct{}
}

// NewHub creates a hub retaining at most historyLimit chat messages.
func NewHub(historyLimit int, logger *zerolog.Logger) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Hub{
		log:        logger,
		registry:   NewRegistry(),
		presence:   NewPresence(),
		history:    NewHistory(historyLimit),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		commands:   make(chan submission),
		stats:      make(chan chan Stats),
		stopped:    make(chan struct{}),
	}
}

// Run processes registrations and commands until ctx is cancelled. It must be
// running for any other hub method to make progress.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.dropClient(client)
		case sub := <-h.commands:
			h.dispatch(sub.client, sub.cmd)
		case reply := <-h.stats:
			reply <- Stats{
				Clients:    h.registry.Len(),
				Identified: h.registry.IdentifiedLen(),
				VoiceUsers: h.presence.Snapshot(),
			}
		}
	}
}

// RegisterClient adds a connection to the hub.
func (h *Hub) RegisterClient(c *Client) {
	select {
	case h.register <- c:
	case <-h.stopped:
	}
}

// UnregisterClient removes a connection, cleans up any voice presence its
// identity held, and closes the client's Events channel.
func (h *Hub) UnregisterClient(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.stopped:
	}
}

// Submit hands a parsed command to the dispatch loop.
func (h *Hub) Submit(c *Client, cmd *Command) {
	select {
	case h.commands <- submission{client: c, cmd: cmd}:
	case <-h.stopped:
	}
}

// Stats returns a consistent snapshot of hub state.
func (h *Hub) Stats(ctx context.Context) (Stats, error) {
	reply := make(chan Stats, 1)
	select {
	case h.stats <- reply:
	case <-h.stopped:
		return Stats{}, ErrHubStopped
	case <-ctx.Done():
		return Stats{}, ctx.Err()
	}
	select {
	case stats := <-reply:
		return stats, nil
	case <-ctx.Done():
		return Stats{}, ctx.Err()
	}
}

func (h *Hub) addClient(c *Client) {
	if c == nil || !h.registry.Add(c) {
		return
	}
	h.log.Debug().Str("client_id", c.ID).Int("clients", h.registry.Len()).Msg("client registered")
}

func (h *Hub) dropClient(c *Client) {
	identity, bound := h.registry.Remove(c)
	close(c.Events)
	h.log.Debug().Str("client_id", c.ID).Int("clients", h.registry.Len()).Msg("client unregistered")

	if bound && h.presence.Leave(identity.ID) {
		h.broadcast(h.voiceUsersEvent())
	}
}

// dispatch applies one inbound command. Semantically invalid commands are
// absorbed without a reply; the relay never sends error frames.
func (h *Hub) dispatch(c *Client, cmd *Command) {
	if c == nil || cmd == nil {
		return
	}
	switch cmd.Kind {
	case CommandHello:
		h.handleHello(c, cmd.User)
	case CommandChatMessage:
		h.handleChatMessage(cmd.Message)
	case CommandJoinVoice:
		h.handleJoinVoice(c)
	case CommandLeaveVoice:
		h.handleLeaveVoice(c)
	case CommandVoiceState:
		h.handleVoiceState(cmd.TargetID, cmd.State)
	}
}

func (h *Hub) handleHello(c *Client, user *Identity) {
	if user == nil {
		return
	}
	if !h.registry.Bind(c, *user) {
		// Repeat hello on the same connection; first binding stays.
		return
	}

	h.send(c, &Event{Kind: EventChatHistory, Messages: h.history.Snapshot()})
	h.send(c, &Event{Kind: EventUserList, Roles: h.rolesExcept(c)})
	h.send(c, h.voiceUsersEvent())

	h.broadcastExcept(c, &Event{Kind: EventUserJoined, User: user})
	h.log.Info().Str("client_id", c.ID).Str("user_id", user.ID).Str("name", user.Name).Msg("hello")
}

func (h *Hub) handleChatMessage(message json.RawMessage) {
	h.history.Append(message)
	h.broadcast(&Event{Kind: EventChatMessage, Message: message})
}

func (h *Hub) handleJoinVoice(c *Client) {
	identity, ok := h.registry.IdentityOf(c)
	if !ok {
		return
	}
	h.presence.Join(identity)
	h.broadcast(h.voiceUsersEvent())
}

func (h *Hub) handleLeaveVoice(c *Client) {
	identity, ok := h.registry.IdentityOf(c)
	if !ok {
		return
	}
	h.presence.Leave(identity.ID)
	h.broadcast(h.voiceUsersEvent())
}

func (h *Hub) handleVoiceState(targetID string, patch StatePatch) {
	// The snapshot goes out even when the target is unknown and nothing
	// changed; launcher clients rely on voice_users as a periodic refresh.
	h.presence.Apply(targetID, patch)
	h.broadcast(h.voiceUsersEvent())
}

// rolesExcept maps every other registered identity's id to its display roles.
func (h *Hub) rolesExcept(c *Client) map[string][]string {
	roles := make(map[string][]string)
	for _, other := range h.registry.Clients() {
		if other == c {
			continue
		}
		identity, ok := h.registry.IdentityOf(other)
		if !ok {
			continue
		}
		roles[identity.ID] = identity.DisplayRoles
	}
	return roles
}

func (h *Hub) voiceUsersEvent() *Event {
	return &Event{Kind: EventVoiceUsers, Participants: h.presence.Snapshot()}
}

func (h *Hub) broadcast(event *Event) {
	for _, client := range h.registry.Clients() {
		h.send(client, event)
	}
}

func (h *Hub) broadcastExcept(skip *Client, event *Event) {
	for _, client := range h.registry.Clients() {
		if client == skip {
			continue
		}
		h.send(client, event)
	}
}

func (h *Hub) send(c *Client, event *Event) {
	select {
	case c.Events <- event:
	default:
		// Slow consumer; drop rather than stall the dispatch loop.
		h.log.Warn().Str("client_id", c.ID).Msg("outbound queue full, dropping event")
	}
}

func (h *Hub) shutdown() {
	clients := append([]*Client(nil), h.registry.Clients()...)
	for _, client := range clients {
		h.registry.Remove(client)
		close(client.Events)
	}
}
