package admin

import (
	"os"
	"path/filepath"
	"testing"

	"community-bot/bot/bottest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusRequiresAdmin(t *testing.T) {
	b, srv := bottest.New(t, bottest.Config())
	Register(b)

	b.Dispatcher.HandleInteraction(b.Session, bottest.Moderator().Command("status"))

	resp, ok := srv.Response()
	require.True(t, ok)
	assert.Contains(t, resp.Data.Content, "permission")
	assert.Empty(t, resp.Data.Embeds)
}

func TestStatusReportsThrottle(t *testing.T) {
	b, srv := bottest.New(t, bottest.Config())
	Register(b)

	admin := bottest.Member()
	admin.Roles = []string{bottest.AdminRoleID}
	b.Dispatcher.HandleInteraction(b.Session, admin.Command("status"))

	resp, ok := srv.Response()
	require.True(t, ok)
	require.Len(t, resp.Data.Embeds, 1)
	fields := map[string]string{}
	for _, f := range resp.Data.Embeds[0].Fields {
		fields[f.Name] = f.Value
	}
	assert.Contains(t, fields["🚦 Rate limit"], "calls")
	assert.Contains(t, fields["🚦 Rate limit"], "buckets")
	assert.Contains(t, fields, "🧠 Memory")
	assert.Contains(t, fields, "⏱️ Gateway latency")
}

func TestDataSize(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.db"), make([]byte, 100), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.db"), make([]byte, 50), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), make([]byte, 999), 0o600))

	assert.Equal(t, int64(150), dataSize(dir))
	assert.Zero(t, dataSize(""))
}
