package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_RegisterUnregister(t *testing.T) {
	h := NewHub()

	c1 := &Client{UserID: 1, CompanyID: 10}
	c2 := &Client{UserID: 1, CompanyID: 10} // 同一用户的第二个连接
	c3 := &Client{UserID: 2, CompanyID: 10}

	h.Register(c1)
	h.Register(c2)
	h.Register(c3)

	assert.True(t, h.IsOnline(1))
	assert.True(t, h.IsOnline(2))
	assert.Equal(t, 3, h.ConnectionCount())

	h.Unregister(c1)
	// 还有一个连接在，用户仍在线
	assert.True(t, h.IsOnline(1))

	h.Unregister(c2)
	assert.False(t, h.IsOnline(1))
	assert.Equal(t, 1, h.ConnectionCount())
}

func TestHub_SendToOfflineUser(t *testing.T) {
	h := NewHub()

	// 用户不在线时静默丢弃，不报错
	err := h.SendToUser(404, &Message{Type: "analysis_status"})
	require.NoError(t, err)

	err = h.SendToCompany(404, &Message{Type: "analysis_status"})
	require.NoError(t, err)
}

func TestHub_UnregisterUnknownClient(t *testing.T) {
	h := NewHub()

	// 没注册过的客户端反注册是空操作
	h.Unregister(&Client{UserID: 9, CompanyID: 9})
	assert.Equal(t, 0, h.ConnectionCount())
}
