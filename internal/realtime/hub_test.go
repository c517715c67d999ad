package realtime

import (
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mechbook/internal/domain"
	"mechbook/internal/modules/booking"
)

func wsServer(t *testing.T, hub *Hub) *httptest.Server {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws/bookings", func(c *gin.Context) {
		id, _ := strconv.ParseInt(c.Query("user"), 10, 64)
		c.Set("user_id", id)
		NewHandler(hub).Subscribe(c)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dialWS(t *testing.T, srv *httptest.Server, userID int64) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(srv.URL, "http") +
		"/ws/bookings?user=" + strconv.FormatInt(userID, 10)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitOnline(t *testing.T, hub *Hub, userID int64) {
	for i := 0; i < 100; i++ {
		if hub.Online(userID) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("user %d never registered", userID)
}

func TestHub_DeliversToBothParticipants(t *testing.T) {
	hub := NewHub()
	defer hub.Close()
	srv := wsServer(t, hub)

	customer := dialWS(t, srv, 1)
	mechanic := dialWS(t, srv, 2)
	waitOnline(t, hub, 1)
	waitOnline(t, hub, 2)

	hub.PublishBookingUpdate(booking.BookingEvent{
		BookingID:     9,
		BookingNumber: "MB-20260915-103045-0042",
		Status:        domain.BookingConfirmed,
		CustomerID:    1,
		MechanicID:    2,
	})

	for _, conn := range []*websocket.Conn{customer, mechanic} {
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		var msg envelope
		require.NoError(t, conn.ReadJSON(&msg))
		assert.Equal(t, "booking_update", msg.Type)
		assert.Equal(t, int64(9), msg.Event.BookingID)
		assert.Equal(t, domain.BookingConfirmed, msg.Event.Status)
	}
}

func TestHub_ConcurrentPublishesToOneConnection(t *testing.T) {
	hub := NewHub()
	defer hub.Close()
	srv := wsServer(t, hub)

	client := dialWS(t, srv, 7)
	waitOnline(t, hub, 7)

	// status changes fire from concurrent HTTP handlers; all writes to the
	// single connection must be serialized
	const events = 200
	var wg sync.WaitGroup
	for i := 0; i < events; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			hub.PublishBookingUpdate(booking.BookingEvent{
				BookingID:  int64(n),
				Status:     domain.BookingConfirmed,
				CustomerID: 7,
				MechanicID: 7,
			})
		}(i)
	}
	wg.Wait()

	_ = client.SetReadDeadline(time.Now().Add(5 * time.Second))
	seen := make(map[int64]bool, events)
	for i := 0; i < events; i++ {
		var msg envelope
		require.NoError(t, client.ReadJSON(&msg))
		seen[msg.Event.BookingID] = true
	}
	assert.Len(t, seen, events)
}

func TestHub_ReRegisterReplacesConnection(t *testing.T) {
	hub := NewHub()
	defer hub.Close()
	srv := wsServer(t, hub)

	stale := dialWS(t, srv, 3)
	waitOnline(t, hub, 3)
	fresh := dialWS(t, srv, 3)

	// the stale socket gets closed by the hub when the fresh one registers
	_ = stale.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := stale.ReadMessage()
	require.Error(t, err)

	hub.PublishBookingUpdate(booking.BookingEvent{
		BookingID:  11,
		Status:     domain.BookingCompleted,
		CustomerID: 3,
		MechanicID: 4,
	})

	_ = fresh.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg envelope
	require.NoError(t, fresh.ReadJSON(&msg))
	assert.Equal(t, int64(11), msg.Event.BookingID)
}
