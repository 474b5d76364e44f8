package project

import "github.com/flowfix/flowfix-api/internal/domain/entity"

// Máquina de estados del ciclo de vida de un Project.
//
//	submitted  --(master asigna admin)-->     assigned
//	assigned   --(admin crea propuesta)-->    proposed
//	proposed   --(cliente acepta)-->          accepted
//	proposed   --(cliente rechaza)-->         assigned
//	accepted   --(admin inicia trabajo)-->    in_progress
//	in_progress--(admin marca completo)-->    completed
//	no-terminal--(cliente o master cancela)-->cancelled
//
// completed y cancelled son terminales. La tabla solo responde legalidad;
// la aplicación efectiva siempre es un update condicional contra el estado
// almacenado (nunca contra uno cacheado).
var transitions = map[string][]string{
	entity.ProjectSubmitted:  {entity.ProjectAssigned, entity.ProjectCancelled},
	entity.ProjectAssigned:   {entity.ProjectProposed, entity.ProjectCancelled},
	entity.ProjectProposed:   {entity.ProjectAccepted, entity.ProjectAssigned, entity.ProjectCancelled},
	entity.ProjectAccepted:   {entity.ProjectInProgress, entity.ProjectCancelled},
	entity.ProjectInProgress: {entity.ProjectCompleted, entity.ProjectCancelled},
	entity.ProjectCompleted:  {},
	entity.ProjectCancelled:  {},
}

// CanTransition indica si la arista from→to es legal.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal indica si un estado no admite más transiciones.
func Terminal(status string) bool {
	return status == entity.ProjectCompleted || status == entity.ProjectCancelled
}

// CancellableStates devuelve los estados desde los que se permite cancelar.
func CancellableStates() []string {
	return []string{
		entity.ProjectSubmitted,
		entity.ProjectAssigned,
		entity.ProjectProposed,
		entity.ProjectAccepted,
		entity.ProjectInProgress,
	}
}

// ValidStatus verifica pertenencia al conjunto cerrado de estados.
func ValidStatus(status string) bool {
	_, ok := transitions[status]
	return ok
}
