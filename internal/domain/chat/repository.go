package chat

import "context"

// Repository guarda el transcript por usuario.
// Es estado de sesión del lado servidor; alcanza con el adapter in-memory.
type Repository interface {
	Get(ctx context.Context, userID string) ([]Message, error)
	Save(ctx context.Context, userID string, messages []Message) error
}
