// Package explore runs the career assistant chat. Messages in other languages
// are translated to English for the prompt backend, and replies are
// translated back.
package explore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/akshayks13/genai-frontend-sub000/internal/services"
	"github.com/akshayks13/genai-frontend-sub000/internal/session"
	"github.com/akshayks13/genai-frontend-sub000/internal/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrEmptyMessage is returned for blank input.
var ErrEmptyMessage = errors.New("message text is empty")

// Service keeps transcripts in the session store.
type Service struct {
	store      session.Store
	prompter   Prompter
	translator services.Translator
	logger     *zap.Logger
	now        func() time.Time
}

// New creates a Service. translator may be nil, in which case every message
// is treated as English.
func New(store session.Store, prompter Prompter, translator services.Translator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:      store,
		prompter:   prompter,
		translator: translator,
		logger:     logger,
		now:        time.Now,
	}
}

// Send records text from the user, asks the assistant and records the reply.
// The user's message stays in the transcript when the assistant fails.
func (s *Service) Send(ctx context.Context, sessionID, token, text string) (*types.SendMessageResponse, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}

	lang, english := s.toEnglish(ctx, text)

	msg := s.newMessage(types.RoleUser, text, lang)
	if !services.IsEnglish(lang) {
		msg.TranslatedText = english
	}
	if err := s.appendMessages(ctx, sessionID, msg); err != nil {
		return nil, err
	}

	answer, err := s.prompter.Prompt(ctx, token, english)
	if err != nil {
		return nil, fmt.Errorf("assistant request failed: %w", err)
	}

	reply := s.newMessage(types.RoleAssistant, answer, lang)
	if !services.IsEnglish(lang) {
		reply.TranslatedText = s.fromEnglish(ctx, answer, lang)
	}
	if err := s.appendMessages(ctx, sessionID, reply); err != nil {
		return nil, err
	}

	return &types.SendMessageResponse{Message: msg, Reply: reply}, nil
}

// History returns the transcript, oldest first.
func (s *Service) History(ctx context.Context, sessionID string) ([]types.Message, error) {
	rec, err := s.store.Get(ctx, sessionID)
	if errors.Is(err, session.ErrNotFound) {
		return []types.Message{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load transcript: %w", err)
	}
	if rec.Messages == nil {
		return []types.Message{}, nil
	}
	return rec.Messages, nil
}

// Reset clears the transcript but keeps the login.
func (s *Service) Reset(ctx context.Context, sessionID string) error {
	_, err := s.store.Update(ctx, sessionID, func(rec *session.Record) error {
		rec.Messages = nil
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to reset transcript: %w", err)
	}
	return nil
}

// toEnglish detects text's language and returns it with an English version.
// Translation trouble degrades to treating the text as English.
func (s *Service) toEnglish(ctx context.Context, text string) (lang, english string) {
	if s.translator == nil {
		return services.English, text
	}

	lang, err := s.translator.Detect(ctx, text)
	if err != nil {
		s.logger.Warn("language detection failed", zap.Error(err))
		return services.English, text
	}
	if services.IsEnglish(lang) {
		return services.English, text
	}

	english, err = s.translator.Translate(ctx, text, lang, services.English)
	if err != nil {
		s.logger.Warn("translation to English failed", zap.String("language", lang), zap.Error(err))
		return services.English, text
	}
	return lang, english
}

// fromEnglish translates a reply back to lang, keeping the English text when
// that fails.
func (s *Service) fromEnglish(ctx context.Context, text, lang string) string {
	translated, err := s.translator.Translate(ctx, text, services.English, lang)
	if err != nil {
		s.logger.Warn("reply translation failed", zap.String("language", lang), zap.Error(err))
		return text
	}
	return translated
}

func (s *Service) newMessage(role, text, lang string) *types.Message {
	return &types.Message{
		ID:        uuid.New(),
		Role:      role,
		Text:      text,
		Language:  lang,
		CreatedAt: s.now().UTC(),
	}
}

func (s *Service) appendMessages(ctx context.Context, sessionID string, msgs ...*types.Message) error {
	_, err := s.store.Update(ctx, sessionID, func(rec *session.Record) error {
		for _, m := range msgs {
			rec.Messages = append(rec.Messages, *m)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}
	return nil
}
