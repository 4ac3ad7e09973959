//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
package services

import (
	"log/slog"

	"lanchat/domain"
	"lanchat/domain/event"
	"lanchat/observability"
	"lanchat/repositories"
)

type IChatService interface {
	PostMessage(author, body string) (domain.Message, error)
	History() ([]domain.Message, error)
	ShareFile(author, filename string)
}

// Publisher is the slice of the fanout bus the chat service needs.
type Publisher interface {
	Publish(e event.DomainEvent)
}

// ChatService couples the durable log with the fanout bus: a message is
// broadcast only after its append committed, so no connection ever observes
// an unpersisted message.
type ChatService struct {
	messages repositories.IMessageRepository
	bus      Publisher
	monitor  *observability.Monitor
	log      *slog.Logger
}

func NewChatService(messages repositories.IMessageRepository, bus Publisher,
	monitor *observability.Monitor, log *slog.Logger) *ChatService {
	return &ChatService{messages: messages, bus: bus, monitor: monitor, log: log}
}

// PostMessage persists the message and broadcasts it. A failed append
// surfaces to the caller and nothing is broadcast.
func (s *ChatService) PostMessage(author, body string) (domain.Message, error) {
	msg, err := s.messages.Append(author, body)
	if err != nil {
		return domain.Message{}, err
	}
	s.monitor.IncrMessagesPersisted()
	s.bus.Publish(event.MessageReceived{
		Seq:      msg.Seq,
		Username: msg.Author,
		Message:  msg.Body,
		At:       msg.At,
	})
	return msg, nil
}

// History replays the full ordered backlog.
func (s *ChatService) History() ([]domain.Message, error) {
	return s.messages.History()
}

// ShareFile announces a completed upload. The filename is an opaque key
// already validated by the upload layer; nothing is persisted here.
func (s *ChatService) ShareFile(author, filename string) {
	s.bus.Publish(event.FileShared{Filename: filename, Username: author})
}
