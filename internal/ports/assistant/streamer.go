package assistant

import (
	"context"
	"fmt"
)

// Streamer entrega la respuesta del asistente de a pedazos, en orden de llegada.
// onChunk se invoca por cada fragmento; si devuelve error, el stream se corta.
// Devuelve la respuesta completa ya ensamblada.
type Streamer interface {
	StreamReply(ctx context.Context, message string, onChunk func(chunk string) error) (string, error)
	Clear(ctx context.Context) error
}

// ReplyError es un error de aplicación emitido por el upstream (evento type=error):
// el upstream sí recibió el mensaje, pero no pudo responder. Se distingue de los
// errores de transporte porque el mensaje del usuario no se revierte.
type ReplyError struct {
	Content string
}

func (e *ReplyError) Error() string {
	return fmt.Sprintf("assistant reply error: %s", e.Content)
}
