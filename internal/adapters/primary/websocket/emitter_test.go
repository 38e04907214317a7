package websocket

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bedic/places-backend/internal/core/domain"
)

type emitterFixture struct {
	hub     *Hub
	emitter *Emitter
}

func newEmitterFixture(t *testing.T) *emitterFixture {
	t.Helper()
	hub := NewHub(testLogger())
	return &emitterFixture{
		hub:     hub,
		emitter: NewEmitter(hub, testLogger()),
	}
}

func TestEmitter_EmitToIdentity(t *testing.T) {
	f := newEmitterFixture(t)
	userID := uuid.New()
	target := NewClient(f.hub, nil, nil, userID, domain.RoleUser, testLogger())
	other := newTestClient(f.hub, domain.RoleUser)
	f.hub.Register(target)
	f.hub.Register(other)

	f.emitter.EmitToIdentity(userID, domain.EventNotification, "hola")

	event := requireOne(t, target)
	assert.Equal(t, domain.EventNotification, event.Kind)
	assert.Equal(t, "hola", event.Payload)
	assert.Empty(t, drain(other))
}

func TestEmitter_EmitToRole(t *testing.T) {
	f := newEmitterFixture(t)
	modA := newTestClient(f.hub, domain.RoleModerator)
	modB := newTestClient(f.hub, domain.RoleModerator)
	user := newTestClient(f.hub, domain.RoleUser)
	f.hub.Register(modA)
	f.hub.Register(modB)
	f.hub.Register(user)

	f.emitter.EmitToRole(domain.RoleModerator, domain.EventNotification, "aviso")

	assert.Len(t, drain(modA), 1)
	assert.Len(t, drain(modB), 1)
	assert.Empty(t, drain(user))
}

func TestEmitter_EmitToAll(t *testing.T) {
	f := newEmitterFixture(t)
	a := newTestClient(f.hub, domain.RoleUser)
	b := newTestClient(f.hub, domain.RoleAdmin)
	f.hub.Register(a)
	f.hub.Register(b)

	f.emitter.EmitToAll(domain.EventNotification, "global")

	assert.Len(t, drain(a), 1)
	assert.Len(t, drain(b), 1)
}

func TestEmitter_EmitToDisconnectedUserIsNoOp(t *testing.T) {
	f := newEmitterFixture(t)

	// Must not panic or block with nobody connected.
	f.emitter.EmitToIdentity(uuid.New(), domain.EventNotification, "nadie")
	f.emitter.NotifyRecommendation(uuid.New(), "Parque Arví")
}

func TestEmitter_NotifyRecommendation(t *testing.T) {
	f := newEmitterFixture(t)
	userID := uuid.New()
	client := NewClient(f.hub, nil, nil, userID, domain.RoleUser, testLogger())
	f.hub.Register(client)

	f.emitter.NotifyRecommendation(userID, "Museo del Oro")

	event := requireOne(t, client)
	assert.Equal(t, domain.EventNotification, event.Kind)

	payload, ok := event.Payload.(NotificationPayload)
	require.True(t, ok)
	assert.Equal(t, domain.NotifyRecommendation, payload.Kind)
	assert.Equal(t, "Recomendación", payload.Title)
	assert.Equal(t, "Te recomendamos visitar Museo del Oro", payload.Message)
}

func TestEmitter_NotifyNewComment(t *testing.T) {
	f := newEmitterFixture(t)
	userID := uuid.New()
	client := NewClient(f.hub, nil, nil, userID, domain.RoleUser, testLogger())
	f.hub.Register(client)

	f.emitter.NotifyNewComment(userID, "Ana", "Café San Alberto")

	event := requireOne(t, client)
	payload, ok := event.Payload.(NotificationPayload)
	require.True(t, ok)
	assert.Equal(t, domain.NotifyNewComment, payload.Kind)
	assert.Equal(t, "Ana comentó en Café San Alberto", payload.Message)
}

func TestEmitter_NotifyEventRSVP(t *testing.T) {
	f := newEmitterFixture(t)
	userID := uuid.New()
	client := NewClient(f.hub, nil, nil, userID, domain.RoleUser, testLogger())
	f.hub.Register(client)

	f.emitter.NotifyEventRSVP(userID, "Carlos", "Feria de las Flores")

	event := requireOne(t, client)
	payload, ok := event.Payload.(NotificationPayload)
	require.True(t, ok)
	assert.Equal(t, domain.NotifyEventRSVP, payload.Kind)
	assert.Equal(t, "Carlos asistirá a Feria de las Flores", payload.Message)
}
