package entity

import "time"

// Message es un mensaje del hilo de un proyecto (cliente ↔ admin asignado).
type Message struct {
	ID        string
	ProjectID string
	SenderID  string
	Body      string
	CreatedAt time.Time
}
