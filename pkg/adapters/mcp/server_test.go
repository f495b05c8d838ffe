package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aretw0/tablesession/pkg/adapters/memory"
	"github.com/aretw0/tablesession/pkg/domain"
	"github.com/aretw0/tablesession/pkg/ports"
	"github.com/aretw0/tablesession/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, client *memory.Client, now *int64) *Server {
	t.Helper()
	return NewServer(func() (ports.Handler, error) {
		return session.NewStore(client, domain.DefaultTable, session.WithClock(func() int64 { return *now }))
	})
}

func TestTools_SessionLifecycle(t *testing.T) {
	ctx := context.Background()
	client := memory.NewClient()
	now := int64(100)
	s := newTestServer(t, client, &now)
	req := mcp.CallToolRequest{}

	res, err := s.handleRead(ctx, req, map[string]interface{}{"session_id": "abc"})
	require.NoError(t, err)
	assert.Equal(t, SessionResult{SessionID: "abc"}, res)

	_, err = s.handleWrite(ctx, req, map[string]interface{}{"session_id": "abc", "data": "user|s:5:\"alice\";"})
	require.NoError(t, err)

	res, err = s.handleRead(ctx, req, map[string]interface{}{"session_id": "abc"})
	require.NoError(t, err)
	assert.Equal(t, "user|s:5:\"alice\";", res.Data)

	_, err = s.handleDestroy(ctx, req, map[string]interface{}{"session_id": "abc"})
	require.NoError(t, err)
	assert.Empty(t, client.Rows(domain.DefaultTable))
}

func TestTools_CollectGarbage(t *testing.T) {
	ctx := context.Background()
	client := memory.NewClient()
	now := int64(100)
	s := newTestServer(t, client, &now)
	req := mcp.CallToolRequest{}

	_, err := s.handleWrite(ctx, req, map[string]interface{}{"session_id": "old", "data": "A"})
	require.NoError(t, err)
	now = 1000
	_, err = s.handleWrite(ctx, req, map[string]interface{}{"session_id": "new", "data": "B"})
	require.NoError(t, err)

	res, err := s.handleGC(ctx, req, map[string]interface{}{"max_age": "10m"})
	require.NoError(t, err)
	assert.Equal(t, GCResult{Deleted: 1, MaxAge: "10m0s"}, res)

	_, err = s.handleGC(ctx, req, map[string]interface{}{"max_age": "-1h"})
	assert.Error(t, err)
	_, err = s.handleGC(ctx, req, map[string]interface{}{})
	assert.Error(t, err)
}

func TestTools_ArgumentErrors(t *testing.T) {
	ctx := context.Background()
	now := int64(0)
	s := newTestServer(t, memory.NewClient(), &now)
	req := mcp.CallToolRequest{}

	_, err := s.handleRead(ctx, req, map[string]interface{}{})
	assert.Error(t, err)
	_, err = s.handleWrite(ctx, req, map[string]interface{}{"session_id": "abc"})
	assert.Error(t, err)
	_, err = s.handleDestroy(ctx, req, map[string]interface{}{"session_id": 42})
	assert.Error(t, err)
}

func TestTools_StoreFailures(t *testing.T) {
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	unavailable := NewServer(func() (ports.Handler, error) { return nil, errors.New("no backend") })
	_, err := unavailable.handleRead(ctx, req, map[string]interface{}{"session_id": "abc"})
	assert.ErrorContains(t, err, "no backend")

	client := memory.NewClient()
	require.NoError(t, client.Insert(ctx, domain.DefaultTable, domain.Row{
		domain.ColumnSessionID:   "abc",
		domain.ColumnTimeCreated: int64(1),
		domain.ColumnSessionData: "%%%",
	}))
	now := int64(0)
	_, err = newTestServer(t, client, &now).handleRead(ctx, req, map[string]interface{}{"session_id": "abc"})
	assert.ErrorIs(t, err, domain.ErrCorruptedData)
}

func TestServer_ListsTools(t *testing.T) {
	now := int64(0)
	s := newTestServer(t, memory.NewClient(), &now)

	msg := s.mcpServer.HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	out, err := json.Marshal(msg)
	require.NoError(t, err)

	for _, name := range []string{"read_session", "write_session", "destroy_session", "collect_garbage"} {
		assert.Contains(t, string(out), `"`+name+`"`)
	}
}
