package chat

import (
	"context"
	"errors"
	"testing"

	"kaupod/internal/platform/logger"
	"kaupod/internal/ports/assistant"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	byUser map[string][]Message
}

func newTestRepo() *testRepo {
	return &testRepo{byUser: map[string][]Message{}}
}

func (r *testRepo) Get(ctx context.Context, userID string) ([]Message, error) {
	return r.byUser[userID], nil
}

func (r *testRepo) Save(ctx context.Context, userID string, messages []Message) error {
	r.byUser[userID] = append([]Message(nil), messages...)
	return nil
}

// -------------------------
// Streamer falso
// -------------------------

type fakeStreamer struct {
	chunks   []string
	err      error
	clearErr error
}

func (f *fakeStreamer) StreamReply(ctx context.Context, message string, onChunk func(string) error) (string, error) {
	var full string
	for _, c := range f.chunks {
		full += c
		if onChunk != nil {
			if err := onChunk(c); err != nil {
				return full, err
			}
		}
	}
	return full, f.err
}

func (f *fakeStreamer) Clear(ctx context.Context) error {
	return f.clearErr
}

func newTestService(st assistant.Streamer) (*Service, *testRepo) {
	repo := newTestRepo()
	return NewService(repo, st, logger.New(logger.Options{Level: logger.Error})), repo
}

// -------------------------
// Tests
// -------------------------

func TestStream_ExchangeCompleto(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(&fakeStreamer{chunks: []string{"Hel", "lo"}})

	var received []string
	err := svc.Stream(ctx, "user-1", "hi there", func(c string) error {
		received = append(received, c)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msgs, lastErr, err := svc.History(ctx, "user-1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if lastErr != "" {
		t.Fatalf("error debe quedar limpio, got %q", lastErr)
	}

	// welcome + user + assistant
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d: %v", len(msgs), msgs)
	}
	if msgs[0].Role != RoleAssistant || msgs[0].Content != WelcomeMessage {
		t.Fatalf("transcript debe arrancar con el welcome: %+v", msgs[0])
	}
	if msgs[1].Role != RoleUser || msgs[1].Content != "hi there" {
		t.Fatalf("mensaje del usuario mal guardado: %+v", msgs[1])
	}
	if msgs[2].Role != RoleAssistant || msgs[2].Content != "Hello" {
		t.Fatalf("respuesta debe ser la concatenación en orden: %+v", msgs[2])
	}

	if len(received) != 2 || received[0] != "Hel" || received[1] != "lo" {
		t.Fatalf("chunks reenviados fuera de orden: %v", received)
	}
}

func TestStream_RollbackEnFallaDeTransporte(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(&fakeStreamer{err: errors.New("connection refused")})

	before, _, _ := svc.History(ctx, "user-1")
	n := len(before)

	err := svc.Stream(ctx, "user-1", "hello?", nil)
	if err == nil {
		t.Fatal("expected error")
	}

	after, lastErr, _ := svc.History(ctx, "user-1")
	if len(after) != n {
		t.Fatalf("el mensaje optimista debe revertirse: antes=%d después=%d", n, len(after))
	}
	if lastErr == "" {
		t.Fatal("la falla de transporte debe surfar un error visible")
	}
}

func TestStream_ReplyErrorRetieneMensaje(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(&fakeStreamer{err: &assistant.ReplyError{Content: "model overloaded"}})

	before, _, _ := svc.History(ctx, "user-1")
	n := len(before)

	err := svc.Stream(ctx, "user-1", "hello?", nil)
	var re *assistant.ReplyError
	if !errors.As(err, &re) {
		t.Fatalf("expected ReplyError, got %v", err)
	}

	// El upstream acknowledgeó el mensaje: se retiene
	after, lastErr, _ := svc.History(ctx, "user-1")
	if len(after) != n+1 {
		t.Fatalf("el mensaje del usuario debe retenerse: antes=%d después=%d", n, len(after))
	}
	if lastErr != "model overloaded" {
		t.Fatalf("el content del error debe ser visible, got %q", lastErr)
	}
}

func TestStream_NuevoIntentoLimpiaError(t *testing.T) {
	ctx := context.Background()
	st := &fakeStreamer{err: errors.New("down")}
	svc, _ := newTestService(st)

	_ = svc.Stream(ctx, "user-1", "first", nil)
	if _, lastErr, _ := svc.History(ctx, "user-1"); lastErr == "" {
		t.Fatal("setup: debía quedar error")
	}

	st.err = nil
	st.chunks = []string{"ok"}
	if err := svc.Stream(ctx, "user-1", "second", nil); err != nil {
		t.Fatalf("retry falló: %v", err)
	}
	if _, lastErr, _ := svc.History(ctx, "user-1"); lastErr != "" {
		t.Fatalf("latest-error-wins: el retry exitoso debe limpiar, got %q", lastErr)
	}
}

func TestStream_MensajeVacio(t *testing.T) {
	svc, _ := newTestService(&fakeStreamer{})
	if err := svc.Stream(context.Background(), "user-1", "   ", nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestStream_RechazaExchangeConcurrente(t *testing.T) {
	ctx := context.Background()

	svc, _ := newTestService(&fakeStreamer{chunks: []string{"slow"}})

	release := make(chan struct{})
	started := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- svc.Stream(ctx, "user-1", "first", func(string) error {
			close(started)
			<-release
			return nil
		})
	}()

	<-started
	if err := svc.Stream(ctx, "user-1", "second", nil); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy mientras hay exchange en vuelo, got %v", err)
	}
	close(release)

	if err := <-done; err != nil {
		t.Fatalf("primer exchange falló: %v", err)
	}

	// Con el exchange terminado, el siguiente entra
	if err := svc.Stream(ctx, "user-1", "third", nil); err != nil {
		t.Fatalf("exchange posterior debió aceptarse: %v", err)
	}
}

func TestClear_Idempotente(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(&fakeStreamer{chunks: []string{"reply"}})

	if err := svc.Stream(ctx, "user-1", "hello", nil); err != nil {
		t.Fatalf("setup: %v", err)
	}

	first, err := svc.Clear(ctx, "user-1")
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	second, err := svc.Clear(ctx, "user-1")
	if err != nil {
		t.Fatalf("clear x2: %v", err)
	}

	for _, msgs := range [][]Message{first, second} {
		if len(msgs) != 1 {
			t.Fatalf("clear debe dejar exactamente 1 mensaje, got %d", len(msgs))
		}
		if msgs[0].Role != RoleAssistant || msgs[0].Content != WelcomeMessage {
			t.Fatalf("clear debe sembrar el welcome: %+v", msgs[0])
		}
	}
}

func TestClear_FallaUpstreamNoTocaTranscript(t *testing.T) {
	ctx := context.Background()
	st := &fakeStreamer{chunks: []string{"reply"}}
	svc, _ := newTestService(st)

	if err := svc.Stream(ctx, "user-1", "hello", nil); err != nil {
		t.Fatalf("setup: %v", err)
	}
	before, _, _ := svc.History(ctx, "user-1")

	st.clearErr = errors.New("upstream down")
	if _, err := svc.Clear(ctx, "user-1"); err == nil {
		t.Fatal("expected error")
	}

	after, lastErr, _ := svc.History(ctx, "user-1")
	if len(after) != len(before) {
		t.Fatalf("transcript debe quedar intacto: %d vs %d", len(before), len(after))
	}
	if lastErr == "" {
		t.Fatal("la falla de clear debe surfar un error")
	}
}
