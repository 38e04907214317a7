package websocket

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/bedic/places-backend/internal/core/domain"
)

// ConnectionInfo is a snapshot entry describing one live connection.
type ConnectionInfo struct {
	ConnID uuid.UUID
	UserID uuid.UUID
	Role   domain.Role
}

// Hub tracks the set of active Clients and their group membership, and
// delivers events to group members.
//
// Every client belongs to exactly two groups for its whole lifetime: its
// identity group and its role group. Membership is fixed at registration;
// there is no mid-session role change.
type Hub struct {
	// groups maps group names ("identity:<id>", "role:<role>") to members.
	groups map[string]map[*Client]bool

	// conns is the set of all registered clients.
	conns map[*Client]bool

	// mu protects the groups and conns maps. Broadcast iterates a snapshot
	// copy so sends never happen under the lock.
	mu sync.RWMutex

	// logger for the hub
	logger *slog.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		groups: make(map[string]map[*Client]bool),
		conns:  make(map[*Client]bool),
		logger: logger.With("component", "websocket_hub"),
	}
}

// Register adds a client to the hub and joins it to its identity and role
// groups.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.conns[client] = true
	h.joinGroup(client.IdentityGroup(), client)
	h.joinGroup(client.RoleGroup(), client)

	h.logger.Info("client registered",
		"conn_id", client.ConnID,
		"user_id", client.UserID,
		"role", client.Role,
		"total_connections", len(h.conns),
	)
}

// joinGroup adds a client to a named group. Caller must hold h.mu.
func (h *Hub) joinGroup(group string, client *Client) {
	if h.groups[group] == nil {
		h.groups[group] = make(map[*Client]bool)
	}
	h.groups[group][client] = true
}

// Unregister removes the client from the hub and both of its groups, and
// closes its send channel.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()

	if _, ok := h.conns[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.conns, client)
	h.leaveGroup(client.IdentityGroup(), client)
	h.leaveGroup(client.RoleGroup(), client)

	remaining := len(h.conns)
	h.mu.Unlock()

	client.CloseSend()

	h.logger.Info("client unregistered",
		"conn_id", client.ConnID,
		"user_id", client.UserID,
		"total_connections", remaining,
	)
}

// leaveGroup removes a client from a named group. Caller must hold h.mu.
func (h *Hub) leaveGroup(group string, client *Client) {
	if members, ok := h.groups[group]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.groups, group)
		}
	}
}

// Broadcast sends an event to every member of a group. A group with no
// members is a no-op. Delivery is best-effort: a client whose send buffer
// is full loses its copy of the event.
func (h *Hub) Broadcast(group string, event domain.Event) {
	h.mu.RLock()
	members, ok := h.groups[group]
	if !ok {
		h.mu.RUnlock()
		return
	}

	// Copy the member list to avoid holding the lock while sending
	clients := make([]*Client, 0, len(members))
	for client := range members {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	h.logger.Debug("broadcasting event",
		"event_kind", event.Kind,
		"group", group,
		"client_count", len(clients),
	)

	for _, client := range clients {
		client.enqueue(event)
	}
}

// BroadcastAll sends an event to every registered client.
func (h *Hub) BroadcastAll(event domain.Event) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.conns))
	for client := range h.conns {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	h.logger.Debug("broadcasting event to all",
		"event_kind", event.Kind,
		"client_count", len(clients),
	)

	for _, client := range clients {
		client.enqueue(event)
	}
}

// CountConnections returns the current number of registered clients.
func (h *Hub) CountConnections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// ListConnections returns a snapshot of (connID, userID, role) triples for
// all registered clients. Ordering is not guaranteed and the snapshot may
// be stale immediately after return.
func (h *Hub) ListConnections() []ConnectionInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()

	infos := make([]ConnectionInfo, 0, len(h.conns))
	for client := range h.conns {
		infos = append(infos, ConnectionInfo{
			ConnID: client.ConnID,
			UserID: client.UserID,
			Role:   client.Role,
		})
	}
	return infos
}

// GroupSize returns the number of clients in a named group.
func (h *Hub) GroupSize(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[group])
}

// GroupsOf returns the group names the client is currently a member of.
func (h *Hub) GroupsOf(client *Client) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var groups []string
	for name, members := range h.groups {
		if members[client] {
			groups = append(groups, name)
		}
	}
	return groups
}

// IsUserConnected checks if a user has any active connections
func (h *Hub) IsUserConnected(userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[domain.IdentityGroup(userID.String())]) > 0
}
