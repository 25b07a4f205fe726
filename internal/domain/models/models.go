package models

import "time"

// Категории, которые создаются автоматически вместе с новым пользователем.
var DefaultCategories = []string{"Work", "Personal", "Shopping", "Health"}

type User struct {
	ID        string    `json:"id" validate:"omitempty,uuid"`
	Name      string    `json:"name" validate:"required,min=3,max=100"`
	Email     string    `json:"email" validate:"required,contains=@,max=255"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

type Category struct {
	ID        string    `json:"id" validate:"omitempty,uuid"`
	Name      string    `json:"name" validate:"required,max=100"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

type Task struct {
	ID         string `json:"id" validate:"omitempty,uuid"`
	Task       string `json:"task" validate:"required,max=1000"`
	Date       string `json:"date"`
	Time       string `json:"time" validate:"max=100"`
	CategoryID string `json:"category_id"`
	IsComplete bool   `json:"is_complete"`
	UserID     string `json:"user_id"`
}

type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=3,max=100"`
	Email    string `json:"email" validate:"required,contains=@,max=255"`
	Password string `json:"password" validate:"required,min=8,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UpdateUserRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=3,max=100"`
	Password *string `json:"password" validate:"omitempty,min=8,max=100"`
}

type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type UpdateCategoryRequest struct {
	Name string `json:"updated_name" validate:"required,max=100"`
}

type CreateTaskRequest struct {
	Task       string `json:"task" validate:"required,max=1000"`
	Date       string `json:"date" validate:"required"`
	Time       string `json:"time" validate:"required,max=100"`
	CategoryID string `json:"category_id" validate:"required,uuid"`
}

type UpdateTaskRequest struct {
	Task       *string `json:"updated_task" validate:"omitempty,max=1000"`
	Date       *string `json:"updated_date"`
	Time       *string `json:"updated_time" validate:"omitempty,max=100"`
	CategoryID *string `json:"updated_category" validate:"omitempty,uuid"`
	IsComplete *bool   `json:"is_complete"`
}
