package chat

// Role identifica quién emitió un mensaje del transcript.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message es un mensaje del transcript. Append-only durante la sesión.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// WelcomeMessage es el mensaje sembrado al iniciar o limpiar una conversación.
const WelcomeMessage = "Hi! I'm the Kaupod assistant. You can ask me about " +
	"HIV test kits, consultations, or our health products. This conversation " +
	"is private."

func seeded() []Message {
	return []Message{{Role: RoleAssistant, Content: WelcomeMessage}}
}
