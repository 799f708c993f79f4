package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garmentscore/internal/config"
	"garmentscore/internal/logger"
	"garmentscore/internal/service"
)

func newFeedServer(t *testing.T) (*Hub, *service.AuthService, *httptest.Server) {
	t.Helper()
	hub := NewHub(logger.Nop())
	auth := service.NewAuthService(&config.Config{AdminUsername: "admin", AdminPassword: "pw", JWTSecret: "secret"}, nil)
	srv := httptest.NewServer(http.HandlerFunc(NewHandler(hub, auth).AdminFeed))
	t.Cleanup(func() {
		srv.Close()
		hub.Close()
	})
	return hub, auth, srv
}

func readMessage(t *testing.T, c *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := c.ReadMessage()
	require.NoError(t, err)
	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestAdminFeed_DeliversEvents(t *testing.T) {
	hub, auth, srv := newFeedServer(t)

	login, err := auth.Login("admin", "pw")
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?token=" + login.Token
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer c.Close()

	hello := readMessage(t, c)
	assert.Equal(t, MsgConnected, hello.Type)
	assert.Equal(t, 1, hub.Count())

	hub.BroadcastToAdmins(service.EventAssessmentCompleted, service.AssessmentEvent{AssessmentID: "a-1", Grade: "B"})

	msg := readMessage(t, c)
	assert.Equal(t, MessageType(service.EventAssessmentCompleted), msg.Type)
	var ev service.AssessmentEvent
	require.NoError(t, json.Unmarshal(msg.Payload, &ev))
	assert.Equal(t, "a-1", ev.AssessmentID)
	assert.Equal(t, "B", ev.Grade)
}

func TestAdminFeed_RejectsMissingOrBadToken(t *testing.T) {
	_, _, srv := newFeedServer(t)
	base := "ws" + strings.TrimPrefix(srv.URL, "http")

	_, resp, err := websocket.DefaultDialer.Dial(base, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(base+"?token=nope", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHub_BroadcastWithoutListeners(t *testing.T) {
	hub := NewHub(logger.Nop())
	defer hub.Close()

	assert.NotPanics(t, func() {
		hub.BroadcastToAdmins(service.EventReportRegenerated, map[string]string{"reportId": "r-1"})
	})
	assert.Equal(t, 0, hub.Count())
}

func TestAdminFeed_ClosedHubGreetsThenCloses(t *testing.T) {
	hub, auth, srv := newFeedServer(t)
	hub.Close()

	login, err := auth.Login("admin", "pw")
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?token=" + login.Token
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer c.Close()

	hello := readMessage(t, c)
	assert.Equal(t, MsgConnected, hello.Type)
	var payload map[string]string
	require.NoError(t, json.Unmarshal(hello.Payload, &payload))
	assert.Equal(t, login.AdminID, payload["adminId"])

	require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = c.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNoStatusReceived), "got %v", err)
	assert.Equal(t, 0, hub.Count())
}
