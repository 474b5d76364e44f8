package dto

import "time"

// CreateProjectRequest solicitud de intake de un proyecto (cliente).
type CreateProjectRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	RepoURL     string `json:"repo_url"`
}

// AssignProjectRequest asignación de admin (solo master_admin).
type AssignProjectRequest struct {
	AdminID string `json:"admin_id"`
}

// ProjectResponse vista de un proyecto.
type ProjectResponse struct {
	ID              string    `json:"id"`
	ClientID        string    `json:"client_id"`
	AssignedAdminID string    `json:"assigned_admin_id,omitempty"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	RepoURL         string    `json:"repo_url,omitempty"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
