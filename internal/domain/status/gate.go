package status

// Action es una acción que la UI puede ofrecer sobre una entidad.
type Action string

const (
	ActionCancel           Action = "cancel"
	ActionSetReturnDetails Action = "set_return_details"
	ActionReschedule       Action = "reschedule"
)

// CanTransition responde si una acción es legal dado el estado actual.
// Predicado puro; es la misma regla que aplican los handlers, así que acá
// vive una sola vez. Cualquier combinación no listada devuelve false.
func CanTransition(k Kind, raw string, a Action) bool {
	code := Normalize(raw)

	switch k {
	case KindKit:
		switch a {
		case ActionCancel:
			return code == KitInReview
		case ActionSetReturnDetails:
			return code == KitAccepted
		}
	case KindConsultation:
		if a == ActionReschedule {
			return code == ConsultInReview || code == ConsultCoordinating || code == ConsultConfirmed
		}
	}
	return false
}

// AllowedActions lista las acciones legales para el estado actual.
// Útil para que el detalle de una entidad le diga a la UI qué botones habilitar.
func AllowedActions(k Kind, raw string) []Action {
	var candidates []Action
	switch k {
	case KindKit:
		candidates = []Action{ActionCancel, ActionSetReturnDetails}
	case KindConsultation:
		candidates = []Action{ActionReschedule}
	}

	out := make([]Action, 0, len(candidates))
	for _, a := range candidates {
		if CanTransition(k, raw, a) {
			out = append(out, a)
		}
	}
	return out
}
