package status

import (
	"sort"
	"time"
)

// Entry es un escalón del timeline ya listo para renderizar.
type Entry struct {
	RecordedAt time.Time `json:"recorded_at"`
	Key        string    `json:"key"`    // timestamp crudo tal como vino en el history
	Status     Code      `json:"status"` // código normalizado
	Display    Display   `json:"display"`
}

// OrderTimeline ordena un history (timestamp => status) en escalera cronológica.
// El history llega como bolsa de propiedades sin orden garantizado (JSON object),
// así que acá se impone el orden:
//   - keys parseables: ascendente por tiempo; empates por key cruda
//   - keys no parseables: al final, ordenadas entre sí por key cruda
func OrderTimeline(k Kind, history map[string]string) []Entry {
	out := make([]Entry, 0, len(history))

	for key, raw := range history {
		e := Entry{
			Key:     key,
			Status:  Normalize(raw),
			Display: Project(k, raw),
		}
		if t, err := parseTimestamp(key); err == nil {
			e.RecordedAt = t
		}
		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := out[i].RecordedAt, out[j].RecordedAt
		switch {
		case ti.IsZero() != tj.IsZero():
			// los no parseables (zero) se hunden al final
			return tj.IsZero()
		case !ti.Equal(tj):
			return ti.Before(tj)
		default:
			return out[i].Key < out[j].Key
		}
	})

	return out
}

// parseTimestamp acepta RFC3339 y los formatos sin zona que suele emitir el backend.
func parseTimestamp(s string) (time.Time, error) {
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
	}

	var err error
	for _, layout := range layouts {
		var t time.Time
		t, err = time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}
