package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ecovision/internal/chat"
	"ecovision/internal/domain"
	"ecovision/internal/i18n"
)

// ErrEmptyMessage se devuelve para texto vacío; los transportes lo ignoran.
var ErrEmptyMessage = errors.New("empty message")

const maxTranscriptLen = 200

// ChatService arma los mensajes de la conversación y guarda la transcripción
// de la sesión en memoria.
type ChatService struct {
	responder  *chat.Responder
	languages  *LanguageService
	replyDelay time.Duration
	logger     *zap.Logger
	now        func() time.Time
	newID      func() string

	mu          sync.Mutex
	transcripts map[string][]domain.ChatMessage
}

func NewChatService(responder *chat.Responder, languages *LanguageService, replyDelay time.Duration, logger *zap.Logger) *ChatService {
	return &ChatService{
		responder:   responder,
		languages:   languages,
		replyDelay:  replyDelay,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
		newID:       uuid.NewString,
		transcripts: make(map[string][]domain.ChatMessage),
	}
}

// Welcome reinicia la conversación con el saludo del idioma activo.
func (s *ChatService) Welcome(ctx context.Context, clientID string) domain.ChatMessage {
	lang := s.languages.Current(ctx, clientID)
	msg := domain.ChatMessage{
		ID:          "welcome-" + lang,
		Content:     s.responder.Welcome(lang),
		Sender:      domain.SenderAssistant,
		CreatedAt:   s.now(),
		Language:    lang,
		Suggestions: chat.WelcomeSuggestions(),
	}
	s.mu.Lock()
	s.transcripts[clientID] = []domain.ChatMessage{msg}
	s.mu.Unlock()
	return msg
}

// Send registra el mensaje del usuario y, tras la pausa de escritura,
// la respuesta del asistente. lang vacío usa el idioma activo.
func (s *ChatService) Send(ctx context.Context, clientID, text, lang string) (domain.ChatMessage, domain.ChatMessage, error) {
	user, err := s.Accept(ctx, clientID, text, lang)
	if err != nil {
		return domain.ChatMessage{}, domain.ChatMessage{}, err
	}
	reply, err := s.Reply(ctx, clientID, user)
	if err != nil {
		return user, domain.ChatMessage{}, err
	}
	return user, reply, nil
}

// Accept valida y registra el mensaje del usuario.
func (s *ChatService) Accept(ctx context.Context, clientID, text, lang string) (domain.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.ChatMessage{}, ErrEmptyMessage
	}
	lang = i18n.Normalize(lang)
	if lang == "" || !s.languages.Catalog().Supported(lang) {
		lang = s.languages.Current(ctx, clientID)
	}
	user := domain.ChatMessage{
		ID:        s.newID(),
		Content:   text,
		Sender:    domain.SenderUser,
		CreatedAt: s.now(),
		Language:  lang,
	}
	s.append(clientID, user)
	return user, nil
}

// Reply espera la pausa de escritura y responde en el idioma del mensaje.
func (s *ChatService) Reply(ctx context.Context, clientID string, user domain.ChatMessage) (domain.ChatMessage, error) {
	if s.replyDelay > 0 {
		timer := time.NewTimer(s.replyDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return domain.ChatMessage{}, ctx.Err()
		case <-timer.C:
		}
	}

	topic, matched := s.responder.Match(user.Content)
	reply := domain.ChatMessage{
		ID:          s.newID(),
		Content:     s.responder.Respond(user.Content, user.Language),
		Sender:      domain.SenderAssistant,
		CreatedAt:   s.now(),
		Language:    user.Language,
		Suggestions: chat.ReplySuggestions(),
	}
	s.append(clientID, reply)
	s.logger.Debug("chat reply",
		zap.String("client_id", clientID),
		zap.String("lang", user.Language),
		zap.String("topic", string(topic)),
		zap.Bool("matched", matched),
	)
	return reply, nil
}

// Transcript devuelve una copia de la conversación actual.
func (s *ChatService) Transcript(clientID string) []domain.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.ChatMessage(nil), s.transcripts[clientID]...)
}

func (s *ChatService) QuickQuestions() []domain.QuickQuestion {
	return chat.QuickQuestions()
}

func (s *ChatService) append(clientID string, msg domain.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := append(s.transcripts[clientID], msg)
	if len(t) > maxTranscriptLen {
		t = t[len(t)-maxTranscriptLen:]
	}
	s.transcripts[clientID] = t
}
