package core

// Client is one relay connection as seen by the core layer. The hub owns the
// Events channel and closes it when the client is unregistered; the transport
// layer drains it into the websocket.
type Client struct {
	ID     string
	Events chan *Event
}

// NewClient constructs a client with a buffered outbound event queue.
func NewClient(id string, buffer int) *Client {
	if buffer <= 0 {
		buffer = 32
	}
	return &Client{
		ID:     id,
		Events: make(chan *Event, buffer),
	}
}
