package realtime

import "sync"

// Registry maps a user ID to its single live connection on this worker.
// Each server instance owns exactly one Registry, constructed at startup and
// injected into the hub; there is no package-level instance. State is
// process-local: a sibling worker has its own Registry and no visibility
// into this one.
//
// Hub events are serialized by the hub run loop, but Lookup and UserIDs are
// also called from REST handler goroutines, so access is guarded here.
type Registry struct {
	mu       sync.RWMutex
	bindings map[string]*Client
}

func NewRegistry() *Registry {
	return &Registry{bindings: make(map[string]*Client)}
}

// Bind inserts or overwrites the binding for the client's user ID. The
// evicted prior client, if any, is returned so the caller can close it
// explicitly rather than leaving a dangling live socket.
func (r *Registry) Bind(client *Client) (prev *Client, evicted bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, evicted = r.bindings[client.userID]
	r.bindings[client.userID] = client
	return prev, evicted
}

// Unbind removes the binding only if it still points at client. A stale
// disconnect from an evicted connection must not unbind its replacement.
func (r *Registry) Unbind(client *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.bindings[client.userID]
	if !ok || current != client {
		return false
	}
	delete(r.bindings, client.userID)
	return true
}

func (r *Registry) Lookup(userID string) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	client, ok := r.bindings[userID]
	return client, ok
}

// UserIDs returns a snapshot of the user IDs currently bound.
func (r *Registry) UserIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.bindings))
	for id := range r.bindings {
		ids = append(ids, id)
	}
	return ids
}

// Clients returns a snapshot of all bound clients.
func (r *Registry) Clients() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clients := make([]*Client, 0, len(r.bindings))
	for _, c := range r.bindings {
		clients = append(clients, c)
	}
	return clients
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.bindings)
}
