package services

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"lanchat/domain"
	"lanchat/domain/event"
	"lanchat/errors"
	"lanchat/observability"
)

type recordingPublisher struct {
	events []event.DomainEvent
}

func (p *recordingPublisher) Publish(e event.DomainEvent) {
	p.events = append(p.events, e)
}

type fakeMessageRepository struct {
	appendErr error
	nextSeq   uint64
	stored    []domain.Message
}

func (f *fakeMessageRepository) Append(author, body string) (domain.Message, error) {
	if f.appendErr != nil {
		return domain.Message{}, f.appendErr
	}
	msg := domain.Message{Seq: f.nextSeq, Author: author, Body: body, At: time.Now().UTC()}
	f.nextSeq++
	f.stored = append(f.stored, msg)
	return msg, nil
}

func (f *fakeMessageRepository) History() ([]domain.Message, error) {
	return f.stored, nil
}

func (f *fakeMessageRepository) Close() error { return nil }

func TestPostMessage_Broadcasts_Only_After_Persistence(t *testing.T) {
	req := require.New(t)
	publisher := &recordingPublisher{}
	repo := &fakeMessageRepository{}
	service := NewChatService(repo, publisher, observability.NewMonitor(slog.Default()), slog.Default())

	msg, err := service.PostMessage("alice", "hi")
	req.NoError(err)
	req.Len(repo.stored, 1)
	req.Len(publisher.events, 1)

	received, ok := publisher.events[0].(event.MessageReceived)
	req.True(ok)
	req.Equal(msg.Seq, received.Seq)
	req.Equal("alice", received.Username)
	req.Equal("hi", received.Message)
	req.Equal(msg.At, received.At)
}

func TestPostMessage_Failed_Append_Is_Never_Broadcast(t *testing.T) {
	req := require.New(t)
	publisher := &recordingPublisher{}
	repo := &fakeMessageRepository{appendErr: errors.ErrPersistence}
	service := NewChatService(repo, publisher, observability.NewMonitor(slog.Default()), slog.Default())

	_, err := service.PostMessage("alice", "hi")
	req.ErrorIs(err, errors.ErrPersistence)
	req.Empty(publisher.events)
}

func TestPostMessage_Empty_Body_Is_Never_Broadcast(t *testing.T) {
	req := require.New(t)
	publisher := &recordingPublisher{}
	repo := &fakeMessageRepository{appendErr: errors.ErrEmptyMessage}
	service := NewChatService(repo, publisher, observability.NewMonitor(slog.Default()), slog.Default())

	_, err := service.PostMessage("alice", "")
	req.ErrorIs(err, errors.ErrEmptyMessage)
	req.Empty(publisher.events)
}

func TestShareFile_Announces_The_Upload(t *testing.T) {
	req := require.New(t)
	publisher := &recordingPublisher{}
	service := NewChatService(&fakeMessageRepository{}, publisher, observability.NewMonitor(slog.Default()), slog.Default())

	service.ShareFile("alice", "notes.txt")
	req.Len(publisher.events, 1)
	shared, ok := publisher.events[0].(event.FileShared)
	req.True(ok)
	req.Equal("notes.txt", shared.Filename)
	req.Equal("alice", shared.Username)
}
