package repos

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"giftfinder/internal/secure"
)

const tsLayout = "2006-01-02 15:04:05"

// SessionRepo keeps per-browser state: the sealed admin token and the
// chosen language.
type SessionRepo struct {
	DB     *sqlx.DB
	sealer *secure.Sealer
}

func NewSessionRepo(db *sqlx.DB, sealer *secure.Sealer) *SessionRepo {
	return &SessionRepo{DB: db, sealer: sealer}
}

// seen marks an existing session as in use. Reads count as activity, so
// PurgeIdle only removes sessions nobody has used within the TTL.
func (r *SessionRepo) seen(ctx context.Context, sid string) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE sessions SET last_seen=CURRENT_TIMESTAMP WHERE id=?`, sid)
	return err
}

func (r *SessionRepo) Lang(ctx context.Context, sid string) (string, error) {
	var lang string
	err := r.DB.GetContext(ctx, &lang, `SELECT lang FROM sessions WHERE id=?`, sid)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return lang, r.seen(ctx, sid)
}

func (r *SessionRepo) SetLang(ctx context.Context, sid, lang string) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO sessions(id,lang,last_seen) VALUES(?,?,CURRENT_TIMESTAMP)
                                     ON CONFLICT(id) DO UPDATE SET lang=excluded.lang,last_seen=CURRENT_TIMESTAMP`, sid, lang)
	return err
}

// Token returns the opened admin token, or "" when none is stored.
func (r *SessionRepo) Token(ctx context.Context, sid string) (string, error) {
	var sealed string
	err := r.DB.GetContext(ctx, &sealed, `SELECT token FROM sessions WHERE id=?`, sid)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if err := r.seen(ctx, sid); err != nil {
		return "", err
	}
	return r.sealer.Open(sealed)
}

func (r *SessionRepo) SetToken(ctx context.Context, sid, token string) error {
	sealed, err := r.sealer.Seal(token)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, `INSERT INTO sessions(id,token,last_seen) VALUES(?,?,CURRENT_TIMESTAMP)
                                    ON CONFLICT(id) DO UPDATE SET token=excluded.token,last_seen=CURRENT_TIMESTAMP`, sid, sealed)
	return err
}

func (r *SessionRepo) ClearToken(ctx context.Context, sid string) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE sessions SET token='',last_seen=CURRENT_TIMESTAMP WHERE id=?`, sid)
	return err
}

// PurgeIdle deletes sessions not seen within ttl.
func (r *SessionRepo) PurgeIdle(ctx context.Context, ttl time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-ttl).Format(tsLayout)
	res, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE last_seen < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// For binds the repo to one browser session.
func (r *SessionRepo) For(sid string) *BoundSession {
	return &BoundSession{repo: r, sid: sid}
}

// BoundSession is the token store of a single browser, usable by the API
// client.
type BoundSession struct {
	repo *SessionRepo
	sid  string
}

func (s *BoundSession) ID() string { return s.sid }

func (s *BoundSession) Token() (string, error) {
	return s.repo.Token(context.Background(), s.sid)
}

func (s *BoundSession) SetToken(token string) error {
	return s.repo.SetToken(context.Background(), s.sid, token)
}

func (s *BoundSession) ClearToken() error {
	return s.repo.ClearToken(context.Background(), s.sid)
}
