package status

import (
	"testing"
	"time"
)

func TestOrderTimeline_OrdenCronologico(t *testing.T) {
	history := map[string]string{
		"2024-01-02T10:00:00Z": "shipped",
		"2024-01-01T09:00:00Z": "in_review",
	}

	got := OrderTimeline(KindKit, history)
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].Status != KitInReview || got[1].Status != KitShipped {
		t.Fatalf("expected [in_review, shipped], got [%s, %s]", got[0].Status, got[1].Status)
	}

	want := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	if !got[0].RecordedAt.Equal(want) {
		t.Fatalf("recorded_at mal parseado: %v", got[0].RecordedAt)
	}
}

func TestOrderTimeline_TimestampsMalformados(t *testing.T) {
	history := map[string]string{
		"not-a-timestamp":      "confirmed",
		"2024-03-05T08:00:00Z": "in_review",
		"also-broken":          "accepted",
	}

	got := OrderTimeline(KindKit, history)
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}

	// El parseable va primero; los rotos se hunden al final, ordenados por key
	if got[0].Status != KitInReview {
		t.Fatalf("la entrada parseable debe ir primero, got %s", got[0].Status)
	}
	if got[1].Key != "also-broken" || got[2].Key != "not-a-timestamp" {
		t.Fatalf("keys no parseables deben ordenarse entre sí por key: [%s, %s]",
			got[1].Key, got[2].Key)
	}
}

func TestOrderTimeline_EmpateDeterminista(t *testing.T) {
	// Mismo instante en dos zonas distintas: desempata por key cruda
	history := map[string]string{
		"2024-06-01T12:00:00+00:00": "confirmed",
		"2024-06-01T12:00:00Z":      "accepted",
	}

	first := OrderTimeline(KindKit, history)
	for i := 0; i < 20; i++ {
		again := OrderTimeline(KindKit, history)
		for j := range first {
			if again[j].Key != first[j].Key {
				t.Fatalf("orden no determinista en iteración %d: %s vs %s",
					i, again[j].Key, first[j].Key)
			}
		}
	}

	if first[0].Key != "2024-06-01T12:00:00+00:00" {
		t.Fatalf("empate debe resolverse por key cruda, got %s", first[0].Key)
	}
}

func TestOrderTimeline_SinZona(t *testing.T) {
	history := map[string]string{
		"2024-02-10 14:30:00": "processing",
	}
	got := OrderTimeline(KindKit, history)
	if len(got) != 1 || got[0].RecordedAt.IsZero() {
		t.Fatalf("formato sin zona debe parsearse: %+v", got)
	}
}

func TestOrderTimeline_Vacio(t *testing.T) {
	if got := OrderTimeline(KindKit, nil); len(got) != 0 {
		t.Fatalf("history nil debe dar escalera vacía, got %v", got)
	}
}
