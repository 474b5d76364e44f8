package dto

import "time"

// PostMessageRequest mensaje nuevo en el hilo del proyecto.
type PostMessageRequest struct {
	Body string `json:"body"`
}

// MessageResponse vista de un mensaje.
type MessageResponse struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	SenderID  string    `json:"sender_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
