package auth

import (
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"lanchat/errors"
)

func TestSessionStore_Create_Resolve_Destroy(t *testing.T) {
	req := require.New(t)
	store := NewSessionStore(time.Hour, nil, slog.Default())

	sess := store.Create("alice")
	req.Equal("alice", sess.Username)

	resolved, err := store.Resolve(sess.ID)
	req.NoError(err)
	req.Equal(sess, resolved)

	destroyed, ok := store.Destroy(sess.ID)
	req.True(ok)
	req.Equal("alice", destroyed.Username)

	_, err = store.Resolve(sess.ID)
	req.ErrorIs(err, errors.ErrUnauthenticated)
}

func TestSessionStore_Unknown_Id(t *testing.T) {
	req := require.New(t)
	store := NewSessionStore(time.Hour, nil, slog.Default())

	_, err := store.Resolve(uuid.New())
	req.ErrorIs(err, errors.ErrUnauthenticated)

	_, ok := store.Destroy(uuid.New())
	req.False(ok)
}

func TestSessionStore_Expiry(t *testing.T) {
	req := require.New(t)
	now := time.Now()
	clock := func() time.Time { return now }
	store := NewSessionStore(time.Minute, clock, slog.Default())

	sess := store.Create("alice")
	_, err := store.Resolve(sess.ID)
	req.NoError(err)

	now = now.Add(2 * time.Minute)
	_, err = store.Resolve(sess.ID)
	req.ErrorIs(err, errors.ErrSessionExpired)

	// Expired sessions are gone, not merely rejected.
	_, err = store.Resolve(sess.ID)
	req.ErrorIs(err, errors.ErrUnauthenticated)
}

func TestSessionStore_Sweep(t *testing.T) {
	req := require.New(t)
	now := time.Now()
	clock := func() time.Time { return now }
	store := NewSessionStore(time.Minute, clock, slog.Default())

	store.Create("alice")
	store.Create("bob")
	req.Zero(store.Sweep())

	now = now.Add(2 * time.Minute)
	req.Equal(2, store.Sweep())
	req.Zero(store.Sweep())
}

func TestSessionStore_Zero_TTL_Never_Expires(t *testing.T) {
	req := require.New(t)
	now := time.Now()
	clock := func() time.Time { return now }
	store := NewSessionStore(0, clock, slog.Default())

	sess := store.Create("alice")
	now = now.Add(24 * time.Hour)
	_, err := store.Resolve(sess.ID)
	req.NoError(err)
}
