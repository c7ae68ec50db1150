package repos

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giftfinder/internal/apiclient"
	"giftfinder/internal/secure"
)

var _ apiclient.Session = (*BoundSession)(nil)

func newRepo(t *testing.T) *SessionRepo {
	t.Helper()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSessionRepo(db, secure.NewSealer("test-secret"))
}

func TestOpenDBIsIdempotent(t *testing.T) {
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, migrateUp(db))

	var n int
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM sessions`))
	assert.Zero(t, n)
}

func TestTokenIsSealedAtRest(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	s := r.For("sid-1")

	require.NoError(t, s.SetToken("tok-admin"))
	tok, err := s.Token()
	require.NoError(t, err)
	assert.Equal(t, "tok-admin", tok)

	var raw string
	require.NoError(t, r.DB.GetContext(ctx, &raw, `SELECT token FROM sessions WHERE id=?`, "sid-1"))
	assert.NotEmpty(t, raw)
	assert.NotContains(t, raw, "tok-admin")

	require.NoError(t, s.ClearToken())
	tok, err = s.Token()
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestUnknownSessionHasNoTokenOrLang(t *testing.T) {
	r := newRepo(t)
	tok, err := r.Token(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, tok)
	lang, err := r.Lang(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, lang)
}

func TestLangSurvivesTokenChanges(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	require.NoError(t, r.SetLang(ctx, "sid-2", "en"))
	require.NoError(t, r.SetToken(ctx, "sid-2", "t"))
	require.NoError(t, r.ClearToken(ctx, "sid-2"))

	lang, err := r.Lang(ctx, "sid-2")
	require.NoError(t, err)
	assert.Equal(t, "en", lang)
}

func TestPurgeIdle(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	require.NoError(t, r.SetLang(ctx, "fresh", "en"))
	require.NoError(t, r.SetLang(ctx, "stale", "en"))
	old := time.Now().UTC().Add(-48 * time.Hour).Format(tsLayout)
	_, err := r.DB.ExecContext(ctx, `UPDATE sessions SET last_seen=? WHERE id=?`, old, "stale")
	require.NoError(t, err)

	n, err := r.PurgeIdle(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var ids []string
	require.NoError(t, r.DB.SelectContext(ctx, &ids, `SELECT id FROM sessions`))
	assert.Equal(t, []string{"fresh"}, ids)
}

func TestReadsKeepSessionAlive(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	require.NoError(t, r.SetToken(ctx, "admin", "tok"))
	require.NoError(t, r.SetLang(ctx, "visitor", "en"))
	old := time.Now().UTC().Add(-48 * time.Hour).Format(tsLayout)
	_, err := r.DB.ExecContext(ctx, `UPDATE sessions SET last_seen=?`, old)
	require.NoError(t, err)

	tok, err := r.For("admin").Token()
	require.NoError(t, err)
	assert.Equal(t, "tok", tok)
	lang, err := r.Lang(ctx, "visitor")
	require.NoError(t, err)
	assert.Equal(t, "en", lang)

	n, err := r.PurgeIdle(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	tok, err = r.For("admin").Token()
	require.NoError(t, err)
	assert.Equal(t, "tok", tok)
}

func TestUnreadSessionIsStillPurged(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	require.NoError(t, r.SetToken(ctx, "gone", "tok"))
	old := time.Now().UTC().Add(-48 * time.Hour).Format(tsLayout)
	_, err := r.DB.ExecContext(ctx, `UPDATE sessions SET last_seen=? WHERE id=?`, old, "gone")
	require.NoError(t, err)

	n, err := r.PurgeIdle(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	tok, err := r.For("gone").Token()
	require.NoError(t, err)
	assert.Empty(t, tok)
}
