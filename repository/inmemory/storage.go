package storage

import (
	"context"
	"sync"
	"time"

	"taskhub/internal/domain/errors"
	"taskhub/internal/domain/models"

	"github.com/google/uuid"
)

// Storage хранит все сущности в памяти. Используется как запасной вариант,
// когда база данных недоступна, и в модульных тестах.
type Storage struct {
	mu         sync.RWMutex
	users      map[string]models.User
	categories map[string]models.Category
	tasks      map[string]models.Task
	sessions   map[string]models.Session
}

func NewStorage() *Storage {
	return &Storage{
		users:      make(map[string]models.User),
		categories: make(map[string]models.Category),
		tasks:      make(map[string]models.Task),
		sessions:   make(map[string]models.Session),
	}
}

func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == user.Email {
			return errors.ErrUserAlreadyExists
		}
	}

	user.ID = uuid.New().String()
	user.CreatedAt = time.Now().UTC()
	s.users[user.ID] = *user

	for _, name := range models.DefaultCategories {
		category := models.Category{
			ID:        uuid.New().String(),
			Name:      name,
			CreatedBy: user.ID,
			CreatedAt: user.CreatedAt,
		}
		s.categories[category.ID] = category
	}
	return nil
}

func (s *Storage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[id]
	if !exists {
		return nil, errors.ErrUserNotFound
	}
	return &user, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Email == email {
			return &user, nil
		}
	}
	return nil, errors.ErrUserNotFound
}

func (s *Storage) GetUsers(ctx context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := []models.User{}
	for _, user := range s.users {
		users = append(users, user)
	}
	return users, nil
}

func (s *Storage) UpdateUser(ctx context.Context, id string, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[id]; !exists {
		return errors.ErrUserNotFound
	}
	user.ID = id
	s.users[id] = *user
	return nil
}

func (s *Storage) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[id]; !exists {
		return errors.ErrUserNotFound
	}
	delete(s.users, id)

	for categoryID, category := range s.categories {
		if category.CreatedBy == id {
			delete(s.categories, categoryID)
		}
	}
	for taskID, task := range s.tasks {
		if task.UserID == id {
			delete(s.tasks, taskID)
		}
	}
	for sessionID, session := range s.sessions {
		if session.UserID == id {
			delete(s.sessions, sessionID)
		}
	}
	return nil
}

func (s *Storage) CreateCategory(ctx context.Context, category *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.categories {
		if existing.CreatedBy == category.CreatedBy && existing.Name == category.Name {
			return errors.ErrCategoryExists
		}
	}

	category.ID = uuid.New().String()
	category.CreatedAt = time.Now().UTC()
	s.categories[category.ID] = *category
	return nil
}

func (s *Storage) GetCategoryByID(ctx context.Context, id, ownerID string) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	category, exists := s.categories[id]
	if !exists || category.CreatedBy != ownerID {
		return nil, errors.ErrCategoryNotFound
	}
	return &category, nil
}

func (s *Storage) GetCategories(ctx context.Context, ownerID string) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	categories := []models.Category{}
	for _, category := range s.categories {
		if category.CreatedBy == ownerID {
			categories = append(categories, category)
		}
	}
	return categories, nil
}

func (s *Storage) UpdateCategory(ctx context.Context, id, ownerID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	category, exists := s.categories[id]
	if !exists || category.CreatedBy != ownerID {
		return errors.ErrCategoryNotFound
	}
	for _, existing := range s.categories {
		if existing.ID != id && existing.CreatedBy == ownerID && existing.Name == name {
			return errors.ErrCategoryExists
		}
	}
	category.Name = name
	s.categories[id] = category
	return nil
}

func (s *Storage) DeleteCategory(ctx context.Context, id, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	category, exists := s.categories[id]
	if !exists || category.CreatedBy != ownerID {
		return errors.ErrCategoryNotFound
	}
	delete(s.categories, id)

	for taskID, task := range s.tasks {
		if task.CategoryID == id {
			delete(s.tasks, taskID)
		}
	}
	return nil
}

func (s *Storage) CreateTask(ctx context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task.ID = uuid.New().String()
	s.tasks[task.ID] = *task
	return nil
}

func (s *Storage) GetTaskByID(ctx context.Context, id, ownerID string) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, exists := s.tasks[id]
	if !exists || task.UserID != ownerID {
		return nil, errors.ErrTaskNotFound
	}
	return &task, nil
}

func (s *Storage) GetTasks(ctx context.Context, ownerID string) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := []models.Task{}
	for _, task := range s.tasks {
		if task.UserID == ownerID {
			tasks = append(tasks, task)
		}
	}
	return tasks, nil
}

func (s *Storage) UpdateTask(ctx context.Context, id, ownerID string, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.tasks[id]
	if !exists || existing.UserID != ownerID {
		return errors.ErrTaskNotFound
	}
	task.ID = id
	task.UserID = ownerID
	s.tasks[id] = *task
	return nil
}

func (s *Storage) DeleteTask(ctx context.Context, id, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, exists := s.tasks[id]
	if !exists || task.UserID != ownerID {
		return errors.ErrTaskNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *Storage) CreateSession(ctx context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.ID] = *session
	return nil
}

func (s *Storage) GetSession(ctx context.Context, id string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, exists := s.sessions[id]
	if !exists {
		return nil, errors.ErrSessionNotFound
	}
	if time.Now().After(session.ExpiresAt) {
		delete(s.sessions, id)
		return nil, errors.ErrSessionNotFound
	}
	return &session, nil
}

// DeleteSession идемпотентен: повторный выход из системы не является ошибкой.
func (s *Storage) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}
