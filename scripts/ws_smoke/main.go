package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/nicqsizaccent/wonderfulkillers/internal/proto"
)

// Manual smoke test for a running relay: announce an identity, join voice,
// send a chat message, and print every frame the server pushes back.
func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:4000/ws", "WebSocket address")
	userID := flag.String("id", "smoke", "user id to announce with hello")
	name := flag.String("name", "Smoke Tester", "display name")
	text := flag.String("text", "hello from smoke test", "chat message to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(v any) error {
		if err := wsjson.Write(ctx, conn, v); err != nil {
			return fmt.Errorf("send: %w", err)
		}
		return nil
	}

	hello := map[string]any{
		"type": proto.InboundTypeHello,
		"user": proto.UserInfo{ID: *userID, Name: *name, DisplayRoles: []string{}},
	}
	if err := send(hello); err != nil {
		return err
	}
	if err := send(map[string]any{"type": proto.InboundTypeJoinVoice}); err != nil {
		return err
	}
	chat := map[string]any{
		"type":    proto.InboundTypeChatMessage,
		"message": map[string]any{"from": *name, "text": *text},
	}
	if err := send(chat); err != nil {
		return err
	}

	for {
		var frame json.RawMessage
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		fmt.Printf("<- %s\n", frame)
	}
}
