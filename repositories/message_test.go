package repositories

import (
	"log/slog"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"lanchat/errors"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func Test_Append_Then_History_Preserves_Order(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository, err := NewMessageRepository(db, slog.Default(), 500)
	req.NoError(err)
	defer repository.Close()

	authors := []string{"Alice", "Bob", "Clara", "Alice"}
	for i, author := range authors {
		msg, err := repository.Append(author, "message number "+string(rune('0'+i)))
		req.NoError(err)
		req.Equal(author, msg.Author)
		req.False(msg.At.IsZero())
	}

	history, err := repository.History()
	req.NoError(err)
	req.Len(history, len(authors))
	for i := 1; i < len(history); i++ {
		req.Greater(history[i].Seq, history[i-1].Seq)
	}
	for i, author := range authors {
		req.Equal(author, history[i].Author)
	}
}

func Test_History_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository, err := NewMessageRepository(db, slog.Default(), 500)
	req.NoError(err)
	defer repository.Close()

	_, err = repository.Append("Alice", "hi")
	req.NoError(err)
	_, err = repository.Append("Bob", "hello")
	req.NoError(err)

	first, err := repository.History()
	req.NoError(err)
	second, err := repository.History()
	req.NoError(err)
	req.Equal(first, second)
}

func Test_Append_Rejects_Invalid_Bodies(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository, err := NewMessageRepository(db, slog.Default(), 10)
	req.NoError(err)
	defer repository.Close()

	tests := []struct {
		name string
		body string
		want error
	}{
		{"empty", "", errors.ErrEmptyMessage},
		{"whitespace only", "   \t ", errors.ErrEmptyMessage},
		{"over the bound", "this body is longer than ten characters", errors.ErrMessageTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repository.Append("Alice", tt.body)
			require.ErrorIs(t, err, tt.want)
		})
	}

	// Nothing was persisted.
	history, err := repository.History()
	req.NoError(err)
	req.Empty(history)
}

func Test_Sequence_Survives_Reopen(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()

	db, err := badger.Open(badger.DefaultOptions(dir).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	repository, err := NewMessageRepository(db, slog.Default(), 500)
	req.NoError(err)
	first, err := repository.Append("Alice", "before restart")
	req.NoError(err)
	req.NoError(repository.Close())
	req.NoError(db.Close())

	db, err = badger.Open(badger.DefaultOptions(dir).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()
	repository, err = NewMessageRepository(db, slog.Default(), 500)
	req.NoError(err)
	defer repository.Close()

	second, err := repository.Append("Bob", "after restart")
	req.NoError(err)
	req.Greater(second.Seq, first.Seq)

	history, err := repository.History()
	req.NoError(err)
	req.Len(history, 2)
	req.Equal("before restart", history[0].Body)
	req.Equal("after restart", history[1].Body)
}
