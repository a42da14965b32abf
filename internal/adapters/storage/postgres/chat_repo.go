package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"kaupod/internal/domain/chat"
)

// ChatRepo guarda el transcript completo por usuario como JSONB.
// El transcript es chico (una conversación), no hace falta una fila por mensaje.
type ChatRepo struct {
	db *sql.DB
}

func NewChatRepo(db *sql.DB) *ChatRepo {
	return &ChatRepo{db: db}
}

func (r *ChatRepo) Get(ctx context.Context, userID string) ([]chat.Message, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT messages
		FROM chat_transcripts
		WHERE user_id = $1
	`, userID)

	var raw []byte
	if err := row.Scan(&raw); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	var msgs []chat.Message
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &msgs); err != nil {
			return nil, err
		}
	}
	return msgs, nil
}

func (r *ChatRepo) Save(ctx context.Context, userID string, messages []chat.Message) error {
	raw, err := json.Marshal(messages)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO chat_transcripts (user_id, messages, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id)
		DO UPDATE SET messages = EXCLUDED.messages, updated_at = EXCLUDED.updated_at
	`, userID, raw, time.Now().UTC())
	return err
}
