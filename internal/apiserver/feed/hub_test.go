package feed

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clothing-store/internal/apiserver/auth"
	"clothing-store/internal/shared/model"
)

type connCounter struct {
	opened, closed atomic.Int32
}

func (c *connCounter) WSConnectionOpened() { c.opened.Add(1) }
func (c *connCounter) WSConnectionClosed() { c.closed.Add(1) }

// newFeedServer 启动测试服务器，请求以 user 身份进入
func newFeedServer(t *testing.T, hub *Hub, user *auth.AuthUser) string {
	t.Helper()
	mux := http.NewServeMux()
	hub.RegisterRoutes(mux)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user != nil {
			r = r.WithContext(auth.WithAuthUser(r.Context(), user))
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/payments"
}

func TestHub_BroadcastPayment(t *testing.T) {
	counter := &connCounter{}
	hub := NewHub(counter)
	url := newFeedServer(t, hub, &auth.AuthUser{Role: "Admin", UserName: "root"})

	conns := make([]*websocket.Conn, 2)
	for i := range conns {
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		defer conn.Close()
		conns[i] = conn
	}
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, 2*time.Second, 10*time.Millisecond)

	p := &model.Payment{ID: model.NewID(), ItemID: model.NewID(), Quantity: "2", Size: model.SizeM, Price: 40}
	hub.PublishPayment(p)

	for _, conn := range conns {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)

		var msg struct {
			Type      string        `json:"type"`
			Data      model.Payment `json:"data"`
			Timestamp time.Time     `json:"timestamp"`
		}
		require.NoError(t, json.Unmarshal(data, &msg))
		assert.Equal(t, "payment", msg.Type)
		assert.Equal(t, p.ID, msg.Data.ID)
		assert.False(t, msg.Timestamp.IsZero())
	}

	conns[0].Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(2), counter.opened.Load())

	hub.Close()
	assert.Equal(t, 0, hub.ClientCount())
	require.Eventually(t, func() bool { return counter.closed.Load() == 2 }, time.Second, 10*time.Millisecond)
}

func TestHub_RequiresAdmin(t *testing.T) {
	hub := NewHub(nil)

	url := newFeedServer(t, hub, &auth.AuthUser{Role: "User"})
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	url = newFeedServer(t, hub, nil)
	_, resp, err = websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHub_DropsSlowClient(t *testing.T) {
	counter := &connCounter{}
	hub := NewHub(counter)

	// 无缓冲且无人读取的队列，首次广播即判定为慢连接
	slow := &client{send: make(chan []byte)}
	hub.addClient(slow)
	fast := &client{send: make(chan []byte, 1)}
	hub.addClient(fast)

	hub.PublishPayment(&model.Payment{ID: "p1"})

	assert.Equal(t, 1, hub.ClientCount())
	_, ok := <-slow.send
	assert.False(t, ok, "slow client's queue should be closed")
	assert.Len(t, fast.send, 1)
	assert.Equal(t, int32(1), counter.closed.Load())

	// 重复移除不会再次关闭队列
	hub.removeClient(slow)
	assert.Equal(t, int32(1), counter.closed.Load())
}
