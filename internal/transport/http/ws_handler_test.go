package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/nicqsizaccent/wonderfulkillers/internal/config"
	"github.com/nicqsizaccent/wonderfulkillers/internal/core"
	"github.com/nicqsizaccent/wonderfulkillers/internal/proto"
)

// frame is the superset of all server frame shapes, for test-side decoding.
type frame struct {
	Type     string            `json:"type"`
	User     *proto.UserInfo   `json:"user"`
	UserMap  json.RawMessage   `json:"users"`
	Message  json.RawMessage   `json:"message"`
	Messages []json.RawMessage `json:"messages"`
}

func (f frame) voiceUsers(t *testing.T) []proto.VoiceUser {
	t.Helper()
	var users []proto.VoiceUser
	if err := json.Unmarshal(f.UserMap, &users); err != nil {
		t.Fatalf("decode voice users: %v", err)
	}
	return users
}

func (f frame) userList(t *testing.T) map[string]proto.RoleSet {
	t.Helper()
	var users map[string]proto.RoleSet
	if err := json.Unmarshal(f.UserMap, &users); err != nil {
		t.Fatalf("decode user list: %v", err)
	}
	return users
}

func startTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	hub := core.NewHub(0, nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	logger := zerolog.Nop()
	server := NewServer(hub, config.Config{
		Addr:              ":0",
		ReadHeaderTimeout: time.Second,
		ShutdownTimeout:   time.Second,
		HistoryLimit:      100,
		ClientBuffer:      32,
	}, &logger)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return ts
}

func dialRelay(ctx context.Context, t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial relay: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })
	return conn
}

func readFrame(ctx context.Context, t *testing.T, conn *websocket.Conn) frame {
	t.Helper()

	var f frame
	if err := wsjson.Read(ctx, conn, &f); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return f
}

func expectFrame(ctx context.Context, t *testing.T, conn *websocket.Conn, frameType string) frame {
	t.Helper()

	f := readFrame(ctx, t, conn)
	if f.Type != frameType {
		t.Fatalf("expected %s frame, got %s", frameType, f.Type)
	}
	return f
}

func sendHello(ctx context.Context, t *testing.T, conn *websocket.Conn, id, name string, roles ...string) {
	t.Helper()

	if roles == nil {
		roles = []string{}
	}
	err := wsjson.Write(ctx, conn, map[string]any{
		"type": "hello",
		"user": map[string]any{"id": id, "name": name, "avatar": nil, "displayRoles": roles},
	})
	if err != nil {
		t.Fatalf("send hello: %v", err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts := startTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestRelayEndToEnd(t *testing.T) {
	ts := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Alice connects and introduces herself; she gets the empty snapshots.
	connA := dialRelay(ctx, t, ts)
	sendHello(ctx, t, connA, "u1", "Alice")

	history := expectFrame(ctx, t, connA, proto.OutboundTypeChatHistory)
	if len(history.Messages) != 0 {
		t.Fatalf("expected empty history, got %+v", history.Messages)
	}
	userList := expectFrame(ctx, t, connA, proto.OutboundTypeUserList)
	if len(userList.userList(t)) != 0 {
		t.Fatalf("expected empty user list, got %s", userList.UserMap)
	}
	voice := expectFrame(ctx, t, connA, proto.OutboundTypeVoiceUsers)
	if len(voice.voiceUsers(t)) != 0 {
		t.Fatalf("expected empty voice room, got %s", voice.UserMap)
	}

	// Bob connects; Alice is told about him.
	connB := dialRelay(ctx, t, ts)
	sendHello(ctx, t, connB, "u2", "Bob")

	expectFrame(ctx, t, connB, proto.OutboundTypeChatHistory)
	bobList := expectFrame(ctx, t, connB, proto.OutboundTypeUserList).userList(t)
	if len(bobList) != 1 {
		t.Fatalf("expected alice in bob's user list, got %+v", bobList)
	}
	if _, ok := bobList["u1"]; !ok {
		t.Fatalf("expected u1 in user list, got %+v", bobList)
	}
	expectFrame(ctx, t, connB, proto.OutboundTypeVoiceUsers)

	joined := expectFrame(ctx, t, connA, proto.OutboundTypeUserJoined)
	if joined.User == nil || joined.User.ID != "u2" || joined.User.Name != "Bob" {
		t.Fatalf("unexpected user_joined payload: %+v", joined.User)
	}

	// Bob joins voice; everyone gets the roster.
	if err := wsjson.Write(ctx, connB, map[string]any{"type": "join_voice"}); err != nil {
		t.Fatalf("join_voice: %v", err)
	}
	for _, conn := range []*websocket.Conn{connA, connB} {
		users := expectFrame(ctx, t, conn, proto.OutboundTypeVoiceUsers).voiceUsers(t)
		if len(users) != 1 || users[0].ID != "u2" || users[0].Name != "Bob" {
			t.Fatalf("unexpected voice roster: %+v", users)
		}
		if users[0].Muted || users[0].Speaking || users[0].CameraOn || users[0].Streaming || users[0].SpeakerMuted {
			t.Fatalf("expected default flags: %+v", users[0])
		}
	}

	// Bob mutes himself; only the muted flag flips.
	err := wsjson.Write(ctx, connB, map[string]any{
		"type":   "voice_state",
		"userId": "u2",
		"state":  map[string]any{"muted": true},
	})
	if err != nil {
		t.Fatalf("voice_state: %v", err)
	}
	for _, conn := range []*websocket.Conn{connA, connB} {
		users := expectFrame(ctx, t, conn, proto.OutboundTypeVoiceUsers).voiceUsers(t)
		if len(users) != 1 || !users[0].Muted {
			t.Fatalf("expected muted participant: %+v", users)
		}
		if users[0].Speaking || users[0].CameraOn || users[0].Streaming || users[0].SpeakerMuted {
			t.Fatalf("other flags must stay false: %+v", users[0])
		}
	}

	// Chat goes to everyone, including the sender, verbatim.
	chatBody := map[string]any{"from": "Alice", "text": "hi"}
	if err := wsjson.Write(ctx, connA, map[string]any{"type": "chat_message", "message": chatBody}); err != nil {
		t.Fatalf("chat_message: %v", err)
	}
	for _, conn := range []*websocket.Conn{connA, connB} {
		chat := expectFrame(ctx, t, conn, proto.OutboundTypeChatMessage)
		var body map[string]any
		if err := json.Unmarshal(chat.Message, &body); err != nil {
			t.Fatalf("decode chat body: %v", err)
		}
		if body["text"] != "hi" || body["from"] != "Alice" {
			t.Fatalf("unexpected chat body: %+v", body)
		}
	}

	// Bob disconnects; Alice sees the voice room empty out.
	connB.Close(websocket.StatusNormalClosure, "bye")
	users := expectFrame(ctx, t, connA, proto.OutboundTypeVoiceUsers).voiceUsers(t)
	if len(users) != 0 {
		t.Fatalf("expected empty voice room after disconnect: %+v", users)
	}
}

func TestRelayDropsBadFramesWithoutClosing(t *testing.T) {
	ts := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn := dialRelay(ctx, t, ts)
	sendHello(ctx, t, conn, "u1", "Alice")
	expectFrame(ctx, t, conn, proto.OutboundTypeChatHistory)
	expectFrame(ctx, t, conn, proto.OutboundTypeUserList)
	expectFrame(ctx, t, conn, proto.OutboundTypeVoiceUsers)

	// None of these may produce a reply or close the connection.
	if err := conn.Write(ctx, websocket.MessageText, []byte("not json at all")); err != nil {
		t.Fatalf("write garbage: %v", err)
	}
	if err := wsjson.Write(ctx, conn, map[string]any{"type": "self_destruct"}); err != nil {
		t.Fatalf("write unknown type: %v", err)
	}
	if err := wsjson.Write(ctx, conn, map[string]any{"type": "voice_state", "userId": "u1"}); err != nil {
		t.Fatalf("write incomplete voice_state: %v", err)
	}
	if err := wsjson.Write(ctx, conn, map[string]any{"type": "chat_message"}); err != nil {
		t.Fatalf("write empty chat_message: %v", err)
	}

	// The connection still works: a real chat message comes back.
	if err := wsjson.Write(ctx, conn, map[string]any{"type": "chat_message", "message": "still here"}); err != nil {
		t.Fatalf("write chat: %v", err)
	}
	chat := expectFrame(ctx, t, conn, proto.OutboundTypeChatMessage)
	if string(chat.Message) != `"still here"` {
		t.Fatalf("unexpected chat payload: %s", chat.Message)
	}
}

func TestStatusEndpoint(t *testing.T) {
	ts := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn := dialRelay(ctx, t, ts)
	sendHello(ctx, t, conn, "u1", "Alice")
	expectFrame(ctx, t, conn, proto.OutboundTypeChatHistory)
	expectFrame(ctx, t, conn, proto.OutboundTypeUserList)
	expectFrame(ctx, t, conn, proto.OutboundTypeVoiceUsers)

	if err := wsjson.Write(ctx, conn, map[string]any{"type": "join_voice"}); err != nil {
		t.Fatalf("join_voice: %v", err)
	}
	expectFrame(ctx, t, conn, proto.OutboundTypeVoiceUsers)

	resp, err := ts.Client().Get(ts.URL + "/api/status")
	if err != nil {
		t.Fatalf("status request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("unexpected status code: %d", resp.StatusCode)
	}

	var status StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.Connections != 1 || status.Identified != 1 {
		t.Fatalf("unexpected counts: %+v", status)
	}
	if len(status.VoiceUsers) != 1 || status.VoiceUsers[0].ID != "u1" {
		t.Fatalf("unexpected voice users: %+v", status.VoiceUsers)
	}
}
