package websocket

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bedic/places-backend/internal/core/domain"
	apperrors "github.com/bedic/places-backend/internal/core/errors"
)

type routerFixture struct {
	hub    *Hub
	router *Router
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	hub := NewHub(testLogger())
	return &routerFixture{
		hub:    hub,
		router: NewRouter(hub, testLogger()),
	}
}

func (f *routerFixture) connect(role domain.Role) *Client {
	client := NewClient(f.hub, f.router, nil, uuid.New(), role, testLogger())
	f.hub.Register(client)
	return client
}

func (f *routerFixture) connectUser(userID uuid.UUID, role domain.Role) *Client {
	client := NewClient(f.hub, f.router, nil, userID, role, testLogger())
	f.hub.Register(client)
	return client
}

func requireOne(t *testing.T, c *Client) domain.Event {
	t.Helper()
	events := drain(c)
	require.Len(t, events, 1)
	return events[0]
}

func TestRouter_ReportCreated_ModeratorGetsSummary(t *testing.T) {
	f := newRouterFixture(t)
	moderator := f.connect(domain.RoleModerator)

	err := f.router.Publish(domain.EventReportCreated, domain.ReportCreatedPayload{
		ID:       uuid.NewString(),
		Type:     "user",
		Reason:   "spam",
		Severity: "high",
	})
	require.NoError(t, err)

	event := requireOne(t, moderator)
	assert.Equal(t, domain.EventReportCreated, event.Kind)

	summary, ok := event.Payload.(ReportSummary)
	require.True(t, ok)
	assert.Equal(t, "spam", summary.Reason)
	assert.Equal(t, "high", summary.Severity)
	assert.Equal(t, "Nuevo reporte recibido: spam", summary.Message)
}

func TestRouter_ReportCreated_AdminGetsVerbatimPayload(t *testing.T) {
	f := newRouterFixture(t)
	admin := f.connect(domain.RoleAdmin)

	raw := json.RawMessage(`{"id":"` + uuid.NewString() + `","type":"place","reason":"fraude","severity":"medium","extra":"kept"}`)
	reporter := f.connect(domain.RoleUser)
	f.router.DispatchFrom(reporter, domain.EventReportCreated, raw)

	event := requireOne(t, admin)
	payload, ok := event.Payload.(json.RawMessage)
	require.True(t, ok)
	assert.JSONEq(t, string(raw), string(payload))
	assert.Empty(t, drain(reporter))
}

func TestRouter_ReportCreated_UserRoleGetsNothing(t *testing.T) {
	f := newRouterFixture(t)
	user := f.connect(domain.RoleUser)

	err := f.router.Publish(domain.EventReportCreated, domain.ReportCreatedPayload{
		ID: uuid.NewString(), Type: "user", Reason: "spam", Severity: "low",
	})
	require.NoError(t, err)

	assert.Empty(t, drain(user))
}

func TestRouter_ReportUpdated_GoesToModeratorsAndAdmins(t *testing.T) {
	f := newRouterFixture(t)
	moderator := f.connect(domain.RoleModerator)
	admin := f.connect(domain.RoleAdmin)
	user := f.connect(domain.RoleUser)

	err := f.router.Publish(domain.EventReportUpdated, domain.ReportUpdatedPayload{
		ReportID: uuid.NewString(),
		Status:   "under_review",
	})
	require.NoError(t, err)

	assert.Len(t, drain(moderator), 1)
	assert.Len(t, drain(admin), 1)
	assert.Empty(t, drain(user))
}

func TestRouter_ReportModerated_BanNotifiesReportedUser(t *testing.T) {
	f := newRouterFixture(t)
	reportedID := uuid.New()
	reported := f.connectUser(reportedID, domain.RoleUser)
	bystander := f.connect(domain.RoleUser)
	moderator := f.connect(domain.RoleModerator)

	err := f.router.Publish(domain.EventReportModerated, domain.ReportModeratedPayload{
		ReportID:       uuid.NewString(),
		Status:         "resolved",
		Action:         "ban",
		ModeratorID:    uuid.NewString(),
		ReportedUserID: reportedID.String(),
	})
	require.NoError(t, err)

	event := requireOne(t, reported)
	notice, ok := event.Payload.(SanctionNotice)
	require.True(t, ok)
	assert.Equal(t, "Has sido baneado", notice.Message)

	assert.Empty(t, drain(bystander))

	modEvent := requireOne(t, moderator)
	summary, ok := modEvent.Payload.(ModerationSummary)
	require.True(t, ok)
	assert.Equal(t, "ban", summary.Action)
}

func TestRouter_ReportModerated_MuteNotifiesReportedUser(t *testing.T) {
	f := newRouterFixture(t)
	reportedID := uuid.New()
	reported := f.connectUser(reportedID, domain.RoleUser)

	err := f.router.Publish(domain.EventReportModerated, domain.ReportModeratedPayload{
		ReportID:       uuid.NewString(),
		Status:         "resolved",
		Action:         "mute",
		ModeratorID:    uuid.NewString(),
		ReportedUserID: reportedID.String(),
	})
	require.NoError(t, err)

	event := requireOne(t, reported)
	notice, ok := event.Payload.(SanctionNotice)
	require.True(t, ok)
	assert.Equal(t, "Has sido silenciado", notice.Message)
}

func TestRouter_ReportModerated_WarnSendsNoSanctionNotice(t *testing.T) {
	f := newRouterFixture(t)
	reportedID := uuid.New()
	reported := f.connectUser(reportedID, domain.RoleUser)

	err := f.router.Publish(domain.EventReportModerated, domain.ReportModeratedPayload{
		ReportID:       uuid.NewString(),
		Status:         "resolved",
		Action:         "warn",
		ModeratorID:    uuid.NewString(),
		ReportedUserID: reportedID.String(),
	})
	require.NoError(t, err)

	assert.Empty(t, drain(reported))
}

func TestRouter_ReportModerated_InvalidActionRejected(t *testing.T) {
	f := newRouterFixture(t)
	admin := f.connect(domain.RoleAdmin)

	err := f.router.Publish(domain.EventReportModerated, domain.ReportModeratedPayload{
		ReportID:    uuid.NewString(),
		Status:      "resolved",
		Action:      "delete_everything",
		ModeratorID: uuid.NewString(),
	})
	require.ErrorIs(t, err, apperrors.ErrMalformedEvent)
	assert.Empty(t, drain(admin))
}

func TestRouter_PlaceCreated_SupportAgentGetsSummary(t *testing.T) {
	f := newRouterFixture(t)
	agent := f.connect(domain.RoleSupportAgent)

	err := f.router.Publish(domain.EventPlaceCreated, domain.PlaceCreatedPayload{
		ID:       uuid.NewString(),
		Name:     "Museo del Oro",
		Category: "museum",
	})
	require.NoError(t, err)

	event := requireOne(t, agent)
	summary, ok := event.Payload.(PlaceSummary)
	require.True(t, ok)
	assert.Equal(t, "Nuevo lugar registrado: Museo del Oro", summary.Message)
}

func TestRouter_PlaceUpdated_OwnerGetsNotice(t *testing.T) {
	f := newRouterFixture(t)
	ownerID := uuid.New()
	owner := f.connectUser(ownerID, domain.RoleUser)

	placeID := uuid.NewString()
	err := f.router.Publish(domain.EventPlaceUpdated, domain.PlaceUpdatedPayload{
		ID:      placeID,
		OwnerID: ownerID.String(),
	})
	require.NoError(t, err)

	event := requireOne(t, owner)
	notice, ok := event.Payload.(OwnerNotice)
	require.True(t, ok)
	assert.Equal(t, placeID, notice.PlaceID)
	assert.Equal(t, "Tu lugar ha sido actualizado", notice.Message)
}

func TestRouter_PlaceVerified_OwnerGetsCongratulation(t *testing.T) {
	f := newRouterFixture(t)
	ownerID := uuid.New()
	owner := f.connectUser(ownerID, domain.RoleUser)

	err := f.router.Publish(domain.EventPlaceVerified, domain.PlaceVerifiedPayload{
		PlaceID: uuid.NewString(),
		OwnerID: ownerID.String(),
	})
	require.NoError(t, err)

	event := requireOne(t, owner)
	notice, ok := event.Payload.(OwnerNotice)
	require.True(t, ok)
	assert.Equal(t, "¡Felicidades! Tu lugar ha sido verificado", notice.Message)
}

func TestRouter_PlaceDeleted_WithoutOwnerNoIdentityBroadcast(t *testing.T) {
	f := newRouterFixture(t)
	agent := f.connect(domain.RoleSupportAgent)
	user := f.connect(domain.RoleUser)

	err := f.router.Publish(domain.EventPlaceDeleted, domain.PlaceDeletedPayload{
		PlaceID: uuid.NewString(),
	})
	require.NoError(t, err)

	assert.Len(t, drain(agent), 1)
	assert.Empty(t, drain(user))
}

func TestRouter_UserMuted_BothAudiencesGetHours(t *testing.T) {
	f := newRouterFixture(t)
	mutedID := uuid.New()
	muted := f.connectUser(mutedID, domain.RoleUser)
	moderator := f.connect(domain.RoleModerator)

	err := f.router.Publish(domain.EventUserMuted, domain.UserMutedPayload{
		UserID: mutedID.String(),
		Hours:  24,
	})
	require.NoError(t, err)

	modEvent := requireOne(t, moderator)
	info, ok := modEvent.Payload.(MuteInfo)
	require.True(t, ok)
	assert.Equal(t, 24, info.Hours)
	assert.Equal(t, "Usuario silenciado por 24 horas", info.Message)

	userEvent := requireOne(t, muted)
	notice, ok := userEvent.Payload.(SanctionNotice)
	require.True(t, ok)
	assert.Equal(t, "Has sido silenciado por 24 horas", notice.Message)
}

func TestRouter_UserBanned_TargetGetsBanNotice(t *testing.T) {
	f := newRouterFixture(t)
	bannedID := uuid.New()
	banned := f.connectUser(bannedID, domain.RoleUser)
	other := f.connect(domain.RoleUser)

	err := f.router.Publish(domain.EventUserBanned, domain.UserBannedPayload{
		UserID: bannedID.String(),
	})
	require.NoError(t, err)

	event := requireOne(t, banned)
	notice, ok := event.Payload.(SanctionNotice)
	require.True(t, ok)
	assert.Equal(t, "Has sido baneado", notice.Message)

	assert.Empty(t, drain(other))
}

func TestRouter_DuplicatePublishDeliversTwice(t *testing.T) {
	f := newRouterFixture(t)
	moderator := f.connect(domain.RoleModerator)

	payload := domain.ReportCreatedPayload{
		ID: uuid.NewString(), Type: "user", Reason: "spam", Severity: "low",
	}
	require.NoError(t, f.router.Publish(domain.EventReportCreated, payload))
	require.NoError(t, f.router.Publish(domain.EventReportCreated, payload))

	assert.Len(t, drain(moderator), 2)
}

func TestRouter_MalformedPayloadRejectedToOriginOnly(t *testing.T) {
	f := newRouterFixture(t)
	moderator := f.connect(domain.RoleModerator)
	admin := f.connect(domain.RoleAdmin)
	origin := f.connect(domain.RoleUser)

	// Missing required fields.
	f.router.DispatchFrom(origin, domain.EventReportCreated, json.RawMessage(`{"id":"x"}`))

	event := requireOne(t, origin)
	assert.Equal(t, domain.EventRejected, event.Kind)
	rejection, ok := event.Payload.(Rejection)
	require.True(t, ok)
	assert.Equal(t, string(domain.EventReportCreated), rejection.Kind)

	assert.Empty(t, drain(moderator))
	assert.Empty(t, drain(admin))
}

func TestRouter_InvalidJSONRejected(t *testing.T) {
	f := newRouterFixture(t)
	origin := f.connect(domain.RoleUser)

	f.router.DispatchFrom(origin, domain.EventReportCreated, json.RawMessage(`{not json`))

	event := requireOne(t, origin)
	assert.Equal(t, domain.EventRejected, event.Kind)
}

func TestRouter_ProducerAuthorization(t *testing.T) {
	tests := []struct {
		name    string
		kind    domain.EventKind
		role    domain.Role
		allowed bool
	}{
		{"user may file reports", domain.EventReportCreated, domain.RoleUser, true},
		{"user may not moderate", domain.EventReportModerated, domain.RoleUser, false},
		{"user may not mute", domain.EventUserMuted, domain.RoleUser, false},
		{"user may not ban", domain.EventUserBanned, domain.RoleUser, false},
		{"user may not publish places", domain.EventPlaceCreated, domain.RoleUser, false},
		{"moderator may moderate", domain.EventReportModerated, domain.RoleModerator, true},
		{"moderator may not publish places", domain.EventPlaceCreated, domain.RoleModerator, false},
		{"support agent may publish places", domain.EventPlaceCreated, domain.RoleSupportAgent, true},
		{"support agent may not moderate", domain.EventReportModerated, domain.RoleSupportAgent, false},
		{"admin may moderate", domain.EventUserBanned, domain.RoleAdmin, true},
		{"admin may publish places", domain.EventPlaceDeleted, domain.RoleAdmin, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, producerAllowed(tt.kind, tt.role))
		})
	}
}

func TestRouter_UnauthorizedProducerGetsRejection(t *testing.T) {
	f := newRouterFixture(t)
	moderator := f.connect(domain.RoleModerator)
	origin := f.connect(domain.RoleUser)

	f.router.DispatchFrom(origin, domain.EventUserBanned, json.RawMessage(`{"userId":"`+uuid.NewString()+`"}`))

	event := requireOne(t, origin)
	assert.Equal(t, domain.EventRejected, event.Kind)
	assert.Empty(t, drain(moderator))
}

func TestRouter_NotificationRead_EchoesToOwnDevices(t *testing.T) {
	f := newRouterFixture(t)
	userID := uuid.New()
	phone := f.connectUser(userID, domain.RoleUser)
	laptop := f.connectUser(userID, domain.RoleUser)

	notificationID := uuid.NewString()
	raw, err := json.Marshal(domain.NotificationReadPayload{
		NotificationID: notificationID,
		UserID:         userID.String(),
	})
	require.NoError(t, err)

	f.router.DispatchFrom(phone, domain.EventNotificationRead, raw)

	for _, device := range []*Client{phone, laptop} {
		event := requireOne(t, device)
		assert.Equal(t, domain.EventNotificationRead, event.Kind)
		receipt, ok := event.Payload.(ReadReceipt)
		require.True(t, ok)
		assert.Equal(t, notificationID, receipt.NotificationID)
	}
}

func TestRouter_NotificationRead_RejectsForeignReceipt(t *testing.T) {
	f := newRouterFixture(t)
	victimID := uuid.New()
	victim := f.connectUser(victimID, domain.RoleUser)
	origin := f.connect(domain.RoleUser)

	raw, err := json.Marshal(domain.NotificationReadPayload{
		NotificationID: uuid.NewString(),
		UserID:         victimID.String(),
	})
	require.NoError(t, err)

	f.router.DispatchFrom(origin, domain.EventNotificationRead, raw)

	event := requireOne(t, origin)
	assert.Equal(t, domain.EventRejected, event.Kind)
	assert.Empty(t, drain(victim))
}

func TestRouter_PublishUnknownKindFails(t *testing.T) {
	f := newRouterFixture(t)

	err := f.router.Publish(domain.EventKind("mystery:event"), map[string]string{"x": "y"})
	assert.ErrorIs(t, err, apperrors.ErrUnknownEvent)
}

func TestParseEventKind(t *testing.T) {
	kind, ok := domain.ParseEventKind("report:created")
	assert.True(t, ok)
	assert.Equal(t, domain.EventReportCreated, kind)

	_, ok = domain.ParseEventKind("event:rejected")
	assert.False(t, ok, "outbound-only kinds are not accepted inbound")

	_, ok = domain.ParseEventKind(string(domain.EventPing))
	assert.False(t, ok, "keep-alive frames are handled at the edge, not routed")

	_, ok = domain.ParseEventKind(string(domain.EventPong))
	assert.False(t, ok)

	_, ok = domain.ParseEventKind("bogus")
	assert.False(t, ok)
}
