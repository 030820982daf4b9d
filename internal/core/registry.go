package core

// Registry tracks open connections and the identity each one announced.
// It is owned by the hub goroutine and needs no locking of its own.
type Registry struct {
	clients    []*Client
	identities map[*Client]Identity
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		identities: make(map[*Client]Identity),
	}
}

// Add inserts a client with no identity yet. Adding a client twice is a no-op.
func (r *Registry) Add(c *Client) bool {
	for _, existing := range r.clients {
		if existing == c {
			return false
		}
	}
	r.clients = append(r.clients, c)
	return true
}

// Bind associates an identity with a client. The first binding wins; a repeat
// hello on the same connection is ignored. Binding an unknown client fails.
func (r *Registry) Bind(c *Client, identity Identity) bool {
	if _, bound := r.identities[c]; bound {
		return false
	}
	known := false
	for _, existing := range r.clients {
		if existing == c {
			known = true
			break
		}
	}
	if !known {
		return false
	}
	r.identities[c] = identity
	return true
}

// IdentityOf returns the identity bound to a client, if any.
func (r *Registry) IdentityOf(c *Client) (Identity, bool) {
	identity, ok := r.identities[c]
	return identity, ok
}

// Remove deletes a client and returns the identity that was bound to it so
// callers can clean up dependent state. Removing an unknown client is a no-op.
func (r *Registry) Remove(c *Client) (Identity, bool) {
	for i, existing := range r.clients {
		if existing == c {
			r.clients = append(r.clients[:i], r.clients[i+1:]...)
			break
		}
	}
	identity, bound := r.identities[c]
	delete(r.identities, c)
	return identity, bound
}

// Clients returns the open clients in connection order.
func (r *Registry) Clients() []*Client {
	return r.clients
}

// Len returns the number of open clients.
func (r *Registry) Len() int {
	return len(r.clients)
}

// IdentifiedLen returns the number of clients that completed hello.
func (r *Registry) IdentifiedLen() int {
	return len(r.identities)
}
