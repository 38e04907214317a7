package websocket

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bedic/places-backend/internal/core/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(hub *Hub, role domain.Role) *Client {
	return NewClient(hub, nil, nil, uuid.New(), role, testLogger())
}

// drain collects every event currently buffered for a client.
func drain(c *Client) []domain.Event {
	var events []domain.Event
	for {
		select {
		case event := <-c.Send:
			events = append(events, event)
		default:
			return events
		}
	}
}

func TestHub_RegisterJoinsIdentityAndRoleGroups(t *testing.T) {
	hub := NewHub(testLogger())
	client := newTestClient(hub, domain.RoleModerator)

	hub.Register(client)

	groups := hub.GroupsOf(client)
	require.Len(t, groups, 2)
	assert.Contains(t, groups, domain.IdentityGroup(client.UserID.String()))
	assert.Contains(t, groups, domain.RoleGroup(domain.RoleModerator))
}

func TestHub_CountConnections(t *testing.T) {
	hub := NewHub(testLogger())

	clients := make([]*Client, 5)
	for i := range clients {
		clients[i] = newTestClient(hub, domain.RoleUser)
		hub.Register(clients[i])
	}
	assert.Equal(t, 5, hub.CountConnections())

	hub.Unregister(clients[0])
	hub.Unregister(clients[1])
	assert.Equal(t, 3, hub.CountConnections())
}

func TestHub_UnregisterIsIdempotent(t *testing.T) {
	hub := NewHub(testLogger())
	client := newTestClient(hub, domain.RoleUser)

	hub.Register(client)
	hub.Unregister(client)
	hub.Unregister(client)

	assert.Equal(t, 0, hub.CountConnections())
	assert.Empty(t, hub.GroupsOf(client))
}

func TestHub_UnregisterRemovesFromGroups(t *testing.T) {
	hub := NewHub(testLogger())
	client := newTestClient(hub, domain.RoleAdmin)

	hub.Register(client)
	hub.Unregister(client)

	assert.Equal(t, 0, hub.GroupSize(domain.RoleGroup(domain.RoleAdmin)))
	assert.False(t, hub.IsUserConnected(client.UserID))
}

func TestHub_BroadcastReachesOnlyGroupMembers(t *testing.T) {
	hub := NewHub(testLogger())

	moderator := newTestClient(hub, domain.RoleModerator)
	user := newTestClient(hub, domain.RoleUser)
	hub.Register(moderator)
	hub.Register(user)

	hub.Broadcast(domain.RoleGroup(domain.RoleModerator), domain.NewEvent(domain.EventReportCreated, "hello"))

	assert.Len(t, drain(moderator), 1)
	assert.Empty(t, drain(user))
}

func TestHub_BroadcastToEmptyGroupIsNoOp(t *testing.T) {
	hub := NewHub(testLogger())
	user := newTestClient(hub, domain.RoleUser)
	hub.Register(user)

	hub.Broadcast(domain.RoleGroup(domain.RoleAdmin), domain.NewEvent(domain.EventReportCreated, "hello"))

	assert.Empty(t, drain(user))
}

func TestHub_BroadcastAll(t *testing.T) {
	hub := NewHub(testLogger())

	a := newTestClient(hub, domain.RoleUser)
	b := newTestClient(hub, domain.RoleAdmin)
	hub.Register(a)
	hub.Register(b)

	hub.BroadcastAll(domain.NewEvent(domain.EventNotification, "news"))

	assert.Len(t, drain(a), 1)
	assert.Len(t, drain(b), 1)
}

func TestHub_MultipleConnectionsSameUser(t *testing.T) {
	hub := NewHub(testLogger())

	userID := uuid.New()
	phone := NewClient(hub, nil, nil, userID, domain.RoleUser, testLogger())
	laptop := NewClient(hub, nil, nil, userID, domain.RoleUser, testLogger())
	hub.Register(phone)
	hub.Register(laptop)

	identityGroup := domain.IdentityGroup(userID.String())
	assert.Equal(t, 2, hub.GroupSize(identityGroup))

	hub.Broadcast(identityGroup, domain.NewEvent(domain.EventNotification, "ping"))
	assert.Len(t, drain(phone), 1)
	assert.Len(t, drain(laptop), 1)

	hub.Unregister(phone)
	assert.Equal(t, 1, hub.GroupSize(identityGroup))
	assert.True(t, hub.IsUserConnected(userID))

	hub.Unregister(laptop)
	assert.False(t, hub.IsUserConnected(userID))
}

func TestHub_ListConnections(t *testing.T) {
	hub := NewHub(testLogger())

	moderator := newTestClient(hub, domain.RoleModerator)
	user := newTestClient(hub, domain.RoleUser)
	hub.Register(moderator)
	hub.Register(user)

	infos := hub.ListConnections()
	require.Len(t, infos, 2)

	byConn := make(map[uuid.UUID]ConnectionInfo, len(infos))
	for _, info := range infos {
		byConn[info.ConnID] = info
	}
	assert.Equal(t, moderator.UserID, byConn[moderator.ConnID].UserID)
	assert.Equal(t, domain.RoleModerator, byConn[moderator.ConnID].Role)
	assert.Equal(t, domain.RoleUser, byConn[user.ConnID].Role)
}

func TestHub_DuplicateBroadcastDeliversTwice(t *testing.T) {
	hub := NewHub(testLogger())
	admin := newTestClient(hub, domain.RoleAdmin)
	hub.Register(admin)

	event := domain.NewEvent(domain.EventReportCreated, "same")
	hub.Broadcast(domain.RoleGroup(domain.RoleAdmin), event)
	hub.Broadcast(domain.RoleGroup(domain.RoleAdmin), event)

	assert.Len(t, drain(admin), 2)
}

func TestClient_EnqueueDropsWhenBufferFull(t *testing.T) {
	hub := NewHub(testLogger())
	client := newTestClient(hub, domain.RoleUser)

	for i := 0; i < sendBufferSize+10; i++ {
		client.enqueue(domain.NewEvent(domain.EventNotification, i))
	}

	assert.Len(t, drain(client), sendBufferSize)
}

func TestClient_EnqueueAfterUnregisterIsDropped(t *testing.T) {
	hub := NewHub(testLogger())
	client := newTestClient(hub, domain.RoleUser)

	hub.Register(client)
	hub.Unregister(client)

	assert.NotPanics(t, func() {
		client.enqueue(domain.NewEvent(domain.EventNotification, "late"))
	})
}

// Broadcasts iterate a member snapshot taken before the lock is released, so
// a client may be unregistered while its copy is still pending. The enqueue
// must degrade to a drop, never a send on the closed channel.
func TestHub_ConcurrentBroadcastAndUnregisterChurn(t *testing.T) {
	hub := NewHub(testLogger())
	group := domain.RoleGroup(domain.RoleAdmin)

	for i := 0; i < 50; i++ {
		hub.Register(newTestClient(hub, domain.RoleAdmin))
	}

	done := make(chan struct{})
	var wg sync.WaitGroup

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
					hub.Broadcast(group, domain.NewEvent(domain.EventNotification, "stress"))
				}
			}
		}()
	}

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
					client := newTestClient(hub, domain.RoleAdmin)
					hub.Register(client)
					hub.Unregister(client)
				}
			}
		}()
	}

	time.Sleep(200 * time.Millisecond)
	close(done)
	wg.Wait()

	assert.Equal(t, 50, hub.CountConnections())
}
