package chat

import (
	"context"
	"errors"
	"strings"
	"sync"

	"kaupod/internal/platform/logger"
	"kaupod/internal/ports/assistant"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrBusy         = errors.New("exchange already in progress")
)

// Service maneja el transcript por usuario y la máquina de estados de cada
// exchange: append optimista del mensaje del usuario, streaming de la
// respuesta, rollback en fallas de transporte y retención en errores de
// aplicación del upstream.
type Service struct {
	repo     Repository
	streamer assistant.Streamer
	log      logger.Logger

	mu      sync.Mutex
	busy    map[string]bool   // userID => exchange en vuelo
	lastErr map[string]string // userID => último error visible (latest wins)
}

func NewService(repo Repository, streamer assistant.Streamer, log logger.Logger) *Service {
	return &Service{
		repo:     repo,
		streamer: streamer,
		log:      log,
		busy:     make(map[string]bool),
		lastErr:  make(map[string]string),
	}
}

// History devuelve el transcript (sembrado con el welcome la primera vez)
// y el último error visible, si hay.
func (s *Service) History(ctx context.Context, userID string) ([]Message, string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, "", ErrInvalidInput
	}

	msgs, err := s.history(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	s.mu.Lock()
	lastErr := s.lastErr[userID]
	s.mu.Unlock()

	return msgs, lastErr, nil
}

// Stream ejecuta un exchange completo: valida, hace el append optimista,
// consume el streamer (reenviando cada chunk a onChunk en orden de llegada)
// y deja el transcript en su estado final.
//
// Semántica de fallas:
//   - falla de transporte: transcript vuelve al estado pre-exchange
//     (se revierte exactamente el mensaje del usuario que lo disparó)
//   - ReplyError del upstream: el mensaje del usuario se retiene
//     (el upstream sí lo recibió antes de fallar)
//
// Un segundo exchange del mismo usuario mientras uno está en vuelo devuelve
// ErrBusy sin tocar el transcript.
func (s *Service) Stream(ctx context.Context, userID, text string, onChunk func(string) error) error {
	userID = strings.TrimSpace(userID)
	text = strings.TrimSpace(text)
	if userID == "" || text == "" {
		return ErrInvalidInput
	}

	s.mu.Lock()
	if s.busy[userID] {
		s.mu.Unlock()
		return ErrBusy
	}
	s.busy[userID] = true
	delete(s.lastErr, userID) // nuevo intento limpia el error anterior
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.busy, userID)
		s.mu.Unlock()
	}()

	base, err := s.history(ctx, userID)
	if err != nil {
		return err
	}

	// Append optimista del mensaje del usuario
	transcript := append(append([]Message(nil), base...), Message{Role: RoleUser, Content: text})
	if err := s.repo.Save(ctx, userID, transcript); err != nil {
		return err
	}

	reply, err := s.streamer.StreamReply(ctx, text, onChunk)
	if err != nil {
		var re *assistant.ReplyError
		if errors.As(err, &re) {
			s.setLastErr(userID, re.Content)
			return err
		}

		// Transporte: rollback al transcript pre-exchange
		if saveErr := s.repo.Save(ctx, userID, base); saveErr != nil {
			s.log.Error("chat rollback failed", map[string]any{"user_id": userID, "error": saveErr.Error()})
		}
		s.setLastErr(userID, "The assistant is unavailable right now. Please try again.")
		s.log.Warn("assistant stream failed", map[string]any{"user_id": userID, "error": err.Error()})
		return err
	}

	transcript = append(transcript, Message{Role: RoleAssistant, Content: reply})
	return s.repo.Save(ctx, userID, transcript)
}

// Clear reinicia la conversación al welcome sembrado.
// Si el upstream falla, el transcript queda intacto y se surfa el error.
// Idempotente: limpiar dos veces deja exactamente un mensaje.
func (s *Service) Clear(ctx context.Context, userID string) ([]Message, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidInput
	}

	if err := s.streamer.Clear(ctx); err != nil {
		s.setLastErr(userID, "Could not clear the conversation. Please try again.")
		return nil, err
	}

	msgs := seeded()
	if err := s.repo.Save(ctx, userID, msgs); err != nil {
		return nil, err
	}

	s.mu.Lock()
	delete(s.lastErr, userID)
	s.mu.Unlock()

	return msgs, nil
}

func (s *Service) history(ctx context.Context, userID string) ([]Message, error) {
	msgs, err := s.repo.Get(ctx, userID)
	if err == nil && len(msgs) > 0 {
		return msgs, nil
	}

	// Primera vez (o transcript vacío): sembrar welcome
	msgs = seeded()
	if err := s.repo.Save(ctx, userID, msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (s *Service) setLastErr(userID, msg string) {
	s.mu.Lock()
	s.lastErr[userID] = msg
	s.mu.Unlock()
}
