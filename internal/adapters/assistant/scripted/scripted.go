package scripted

import (
	"context"
	"strings"

	"kaupod/internal/ports/assistant"
)

// Streamer es el asistente de modo dev: sin upstream configurado responde
// con guiones fijos, emitidos palabra por palabra por el mismo contrato
// que el relay real. Determinista, sin I/O.
type Streamer struct{}

var _ assistant.Streamer = (*Streamer)(nil)

func New() *Streamer {
	return &Streamer{}
}

const fallbackReply = "I can help you order a discreet HIV test kit, book a " +
	"consultation with a clinician, or answer general questions about testing. " +
	"What would you like to do?"

// scripts matchea por keyword simple; alcanza para dev y tests e2e.
var scripts = []struct {
	keywords []string
	reply    string
}{
	{
		keywords: []string{"kit", "test", "order"},
		reply: "You can request a test kit from the Kit Orders page. It ships in " +
			"plain packaging and you can track every step from your order detail.",
	},
	{
		keywords: []string{"consult", "doctor", "clinician"},
		reply: "You can request a consultation and a clinician will be assigned " +
			"to you. We will coordinate the schedule through the app.",
	},
	{
		keywords: []string{"result"},
		reply: "Results are released through your kit order once the lab has " +
			"received and processed your sample kit.",
	},
}

func (s *Streamer) StreamReply(ctx context.Context, message string, onChunk func(string) error) (string, error) {
	reply := fallbackReply

	lower := strings.ToLower(message)
	for _, sc := range scripts {
		for _, kw := range sc.keywords {
			if strings.Contains(lower, kw) {
				reply = sc.reply
				break
			}
		}
		if reply != fallbackReply {
			break
		}
	}

	if onChunk != nil {
		words := strings.SplitAfter(reply, " ")
		for _, w := range words {
			if err := ctx.Err(); err != nil {
				return "", err
			}
			if err := onChunk(w); err != nil {
				return "", err
			}
		}
	}

	return reply, nil
}

// Clear no guarda contexto, así que no hay nada que limpiar.
func (s *Streamer) Clear(ctx context.Context) error {
	return nil
}
