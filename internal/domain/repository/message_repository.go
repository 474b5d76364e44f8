package repository

import "github.com/flowfix/flowfix-api/internal/domain/entity"

// MessageRepository define el puerto de persistencia para Message.
type MessageRepository interface {
	Create(message *entity.Message) error
	ListByProject(projectID string) ([]*entity.Message, error)
}
