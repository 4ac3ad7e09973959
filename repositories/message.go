//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"

	"lanchat/domain"
	"lanchat/errors"
)

const (
	messagePrefix = "msg:"
	sequenceKey   = "seq:msg"
	// Leased in batches; restarts may leave gaps in the sequence,
	// which is fine as long as it stays monotonic.
	sequenceBandwidth = 64
)

type IMessageRepository interface {
	Append(author, body string) (domain.Message, error)
	History() ([]domain.Message, error)
	Close() error
}

type MessageRepository struct {
	db      *badger.DB
	seq     *badger.Sequence
	log     *slog.Logger
	maxBody int
}

// diskMessage is the stored shape of a chat record.
type diskMessage struct {
	Seq    uint64    `json:"seq"`
	Author string    `json:"author"`
	Body   string    `json:"body"`
	At     time.Time `json:"at"`
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, maxBody int) (*MessageRepository, error) {
	seq, err := db.GetSequence([]byte(sequenceKey), sequenceBandwidth)
	if err != nil {
		return nil, fmt.Errorf("message sequence: %w", err)
	}
	return &MessageRepository{db: db, seq: seq, log: log, maxBody: maxBody}, nil
}

// messageKey formats the storage key as "msg:{seq_padded}" with 20-digit
// zero padding so lexicographic key order equals ascending sequence order.
func messageKey(seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", messagePrefix, seq))
}

// Append validates the body, assigns the next sequence id, and commits the
// record. The returned message is durable by the time Append returns: the
// caller may only broadcast it after a nil error.
func (m *MessageRepository) Append(author, body string) (domain.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return domain.Message{}, errors.ErrEmptyMessage
	}
	if m.maxBody > 0 && len([]rune(body)) > m.maxBody {
		return domain.Message{}, errors.ErrMessageTooLong
	}

	seq, err := m.seq.Next()
	if err != nil {
		return domain.Message{}, fmt.Errorf("%w: %v", errors.ErrPersistence, err)
	}
	msg := domain.Message{
		Seq:    seq,
		Author: author,
		Body:   body,
		At:     time.Now().UTC(),
	}
	value, err := json.Marshal(fromMessage(msg))
	if err != nil {
		return domain.Message{}, fmt.Errorf("%w: %v", errors.ErrPersistence, err)
	}
	err = m.db.Update(func(txn *badger.Txn) error {
		return txn.Set(messageKey(seq), value)
	})
	if err != nil {
		return domain.Message{}, fmt.Errorf("%w: %v", errors.ErrPersistence, err)
	}
	return msg, nil
}

// History returns every stored message in ascending sequence order using a
// forward prefix scan. Thanks to the padded key, no sorting is needed.
func (m *MessageRepository) History() ([]domain.Message, error) {
	var records []diskMessage
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(messagePrefix)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var record diskMessage
				if err := json.Unmarshal(val, &record); err != nil {
					return err
				}
				records = append(records, record)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrPersistence, err)
	}
	return lo.Map(records, func(record diskMessage, _ int) domain.Message {
		return toMessage(record)
	}), nil
}

// Close releases the unused part of the sequence lease.
func (m *MessageRepository) Close() error {
	return m.seq.Release()
}

func fromMessage(msg domain.Message) diskMessage {
	return diskMessage{
		Seq:    msg.Seq,
		Author: msg.Author,
		Body:   msg.Body,
		At:     msg.At,
	}
}

func toMessage(record diskMessage) domain.Message {
	return domain.Message{
		Seq:    record.Seq,
		Author: record.Author,
		Body:   record.Body,
		At:     record.At.UTC(),
	}
}
