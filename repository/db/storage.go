package db

import (
	"context"
	stderrors "errors"
	"log"
	"time"

	"taskhub/internal/domain/errors"
	"taskhub/internal/domain/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type Storage struct {
	conn               *pgx.Conn
	prepCreateUser     string
	prepGetUserByID    string
	prepGetUserByEmail string
	prepGetUsers       string
	prepUpdateUser     string
	prepDeleteUser     string

	prepCreateCategory string
	prepGetCategory    string
	prepGetCategories  string
	prepUpdateCategory string
	prepDeleteCategory string

	prepCreateTask string
	prepGetTask    string
	prepGetTasks   string
	prepUpdateTask string
	prepDeleteTask string

	prepCreateSession string
	prepGetSession    string
	prepDeleteSession string
}

func NewStorage(connStr string) (*Storage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		log.Println("[ERROR] Не удалось подключиться к базе данных:", err)
		return nil, err
	}

	s := &Storage{
		conn:               conn,
		prepCreateUser:     `INSERT INTO users (id, name, email, password, created_at) VALUES ($1, $2, $3, $4, $5)`,
		prepGetUserByID:    `SELECT id, name, email, password, created_at FROM users WHERE id = $1`,
		prepGetUserByEmail: `SELECT id, name, email, password, created_at FROM users WHERE email = $1`,
		prepGetUsers:       `SELECT id, name, email, password, created_at FROM users`,
		prepUpdateUser:     `UPDATE users SET name = $1, password = $2 WHERE id = $3`,
		prepDeleteUser:     `DELETE FROM users WHERE id = $1`,

		prepCreateCategory: `INSERT INTO categories (id, name, created_by, created_at) VALUES ($1, $2, $3, $4)`,
		prepGetCategory:    `SELECT id, name, created_by, created_at FROM categories WHERE id = $1 AND created_by = $2`,
		prepGetCategories:  `SELECT id, name, created_by, created_at FROM categories WHERE created_by = $1`,
		prepUpdateCategory: `UPDATE categories SET name = $1 WHERE id = $2 AND created_by = $3`,
		prepDeleteCategory: `DELETE FROM categories WHERE id = $1 AND created_by = $2`,

		prepCreateTask: `INSERT INTO tasks (id, task, date, time, category_id, is_complete, user_id) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		prepGetTask:    `SELECT id, task, date, time, category_id, is_complete, user_id FROM tasks WHERE id = $1 AND user_id = $2`,
		prepGetTasks:   `SELECT id, task, date, time, category_id, is_complete, user_id FROM tasks WHERE user_id = $1`,
		prepUpdateTask: `UPDATE tasks SET task = $1, date = $2, time = $3, category_id = $4, is_complete = $5 WHERE id = $6 AND user_id = $7`,
		prepDeleteTask: `DELETE FROM tasks WHERE id = $1 AND user_id = $2`,

		prepCreateSession: `INSERT INTO sessions (id, user_id, created_at, expires_at) VALUES ($1, $2, $3, $4)`,
		prepGetSession:    `SELECT id, user_id, created_at, expires_at FROM sessions WHERE id = $1 AND expires_at > now()`,
		prepDeleteSession: `DELETE FROM sessions WHERE id = $1`,
	}
	log.Println("[SUCCESS] Соединение с базой данных установлено успешно")
	return s, nil
}

// Уникальные индексы БД являются источником истины для конфликтов:
// проверка перед вставкой не атомарна при конкурентных запросах.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return stderrors.As(err, &pgErr) && pgErr.Code == "23505"
}

// CreateUser создаёт пользователя и его категории по умолчанию в одной
// транзакции: частичный сбой не оставит пользователя без категорий.
func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	user.ID = uuid.New().String()
	user.CreatedAt = time.Now().UTC()

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		log.Println("[ERROR] Не удалось начать транзакцию создания пользователя:", err)
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, s.prepCreateUser, user.ID, user.Name, user.Email, user.Password, user.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			log.Println("[ERROR] Пользователь с таким email уже существует:", user.Email)
			return errors.ErrUserAlreadyExists
		}
		log.Println("[ERROR] Не удалось создать пользователя:", err)
		return err
	}

	for _, name := range models.DefaultCategories {
		if _, err := tx.Exec(ctx, s.prepCreateCategory, uuid.New().String(), name, user.ID, user.CreatedAt); err != nil {
			log.Println("[ERROR] Не удалось создать категорию по умолчанию:", err)
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		log.Println("[ERROR] Не удалось зафиксировать создание пользователя:", err)
		return err
	}
	log.Println("[SUCCESS] Пользователь успешно создан:", user.ID)
	return nil
}

func (s *Storage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	stmt, err := s.conn.Prepare(ctx, "get_user_by_id", s.prepGetUserByID)
	if err != nil {
		log.Println("[ERROR] Не удалось подготовить запрос на получение пользователя по ID:", err)
		return nil, err
	}
	row := s.conn.QueryRow(ctx, stmt.Name, id)
	user := &models.User{}
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.ErrUserNotFound
		}
		log.Println("[ERROR] Ошибка при получении пользователя:", err)
		return nil, err
	}
	return user, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	stmt, err := s.conn.Prepare(ctx, "get_user_by_email", s.prepGetUserByEmail)
	if err != nil {
		log.Println("[ERROR] Не удалось подготовить запрос на получение пользователя по email:", err)
		return nil, err
	}
	row := s.conn.QueryRow(ctx, stmt.Name, email)
	user := &models.User{}
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.ErrUserNotFound
		}
		log.Println("[ERROR] Ошибка при получении пользователя:", err)
		return nil, err
	}
	return user, nil
}

func (s *Storage) GetUsers(ctx context.Context) ([]models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	stmt, err := s.conn.Prepare(ctx, "get_users", s.prepGetUsers)
	if err != nil {
		log.Println("[ERROR] Не удалось подготовить запрос на получение пользователей:", err)
		return nil, err
	}
	rows, err := s.conn.Query(ctx, stmt.Name)
	if err != nil {
		log.Println("[ERROR] Не удалось получить пользователей:", err)
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user := models.User{}
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.CreatedAt); err != nil {
			log.Println("[ERROR] Ошибка при чтении пользователей:", err)
			return nil, err
		}
		users = append(users, user)
	}
	log.Println("[SUCCESS] Получено пользователей:", len(users))
	return users, nil
}

func (s *Storage) UpdateUser(ctx context.Context, id string, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	stmt, err := s.conn.Prepare(ctx, "update_user", s.prepUpdateUser)
	if err != nil {
		log.Println("[ERROR] Не удалось подготовить запрос на обновление пользователя:", err)
		return err
	}
	ct, err := s.conn.Exec(ctx, stmt.Name, user.Name, user.Password, id)
	if err != nil {
		log.Println("[ERROR] Не удалось обновить пользователя:", err)
		return err
	}
	if ct.RowsAffected() == 0 {
		return errors.ErrUserNotFound
	}
	log.Println("[SUCCESS] Пользователь успешно обновлен:", id)
	return nil
}

// Каскадное удаление категорий, задач и сессий выполняют внешние ключи.
func (s *Storage) DeleteUser(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	stmt, err := s.conn.Prepare(ctx, "delete_user", s.prepDeleteUser)
	if err != nil {
		log.Println("[ERROR] Не удалось подготовить запрос на удаление пользователя:", err)
		return err
	}
	ct, err := s.conn.Exec(ctx, stmt.Name, id)
	if err != nil {
		log.Println("[ERROR] Не удалось удалить пользователя:", err)
		return err
	}
	if ct.RowsAffected() == 0 {
		return errors.ErrUserNotFound
	}
	log.Println("[SUCCESS] Пользователь успешно удален:", id)
	return nil
}

func (s *Storage) CreateCategory(ctx context.Context, category *models.Category) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	category.ID = uuid.New().String()
	category.CreatedAt = time.Now().UTC()
	stmt, err := s.conn.Prepare(ctx, "create_category", s.prepCreateCategory)
	if err != nil {
		log.Println("[ERROR] Не удалось подготовить запрос на создание категории:", err)
		return err
	}
	if _, err := s.conn.Exec(ctx, stmt.Name, category.ID, category.Name, category.CreatedBy, category.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return errors.ErrCategoryExists
		}
		log.Println("[ERROR] Не удалось создать категорию:", err)
		return err
	}
	log.Println("[SUCCESS] Категория успешно создана:", category.ID)
	return nil
}

func (s *Storage) GetCategoryByID(ctx context.Context, id, ownerID string) (*models.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	stmt, err := s.conn.Prepare(ctx, "get_category", s.prepGetCategory)
	if err != nil {
		log.Println("[ERROR] Не удалось подготовить запрос на получение категории:", err)
		return nil, err
	}
	row := s.conn.QueryRow(ctx, stmt.Name, id, ownerID)
	category := &models.Category{}
	if err := row.Scan(&category.ID, &category.Name, &category.CreatedBy, &category.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.ErrCategoryNotFound
		}
		log.Println("[ERROR] Ошибка при получении категории:", err)
		return nil, err
	}
	return category, nil
}

func (s *Storage) GetCategories(ctx context.Context, ownerID string) ([]models.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	stmt, err := s.conn.Prepare(ctx, "get_categories", s.prepGetCategories)
	if err != nil {
		log.Println("[ERROR] Не удалось подготовить запрос на получение категорий:", err)
		return nil, err
	}
	rows, err := s.conn.Query(ctx, stmt.Name, ownerID)
	if err != nil {
		log.Println("[ERROR] Не удалось получить категории:", err)
		return nil, err
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		category := models.Category{}
		if err := rows.Scan(&category.ID, &category.Name, &category.CreatedBy, &category.CreatedAt); err != nil {
			log.Println("[ERROR] Ошибка при чтении категорий:", err)
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, nil
}

func (s *Storage) UpdateCategory(ctx context.Context, id, ownerID, name string) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	stmt, err := s.conn.Prepare(ctx, "update_category", s.prepUpdateCategory)
	if err != nil {
		log.Println("[ERROR] Не удалось подготовить запрос на обновление категории:", err)
		return err
	}
	ct, err := s.conn.Exec(ctx, stmt.Name, name, id, ownerID)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.ErrCategoryExists
		}
		log.Println("[ERROR] Не удалось обновить категорию:", err)
		return err
	}
	if ct.RowsAffected() == 0 {
		return errors.ErrCategoryNotFound
	}
	log.Println("[SUCCESS] Категория успешно обновлена:", id)
	return nil
}

// Задачи удалённой категории удаляет внешний ключ с каскадом.
func (s *Storage) DeleteCategory(ctx context.Context, id, ownerID string) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	stmt, err := s.conn.Prepare(ctx, "delete_category", s.prepDeleteCategory)
	if err != nil {
		log.Println("[ERROR] Не удалось подготовить запрос на удаление категории:", err)
		return err
	}
	ct, err := s.conn.Exec(ctx, stmt.Name, id, ownerID)
	if err != nil {
		log.Println("[ERROR] Не удалось удалить категорию:", err)
		return err
	}
	if ct.RowsAffected() == 0 {
		return errors.ErrCategoryNotFound
	}
	log.Println("[SUCCESS] Категория успешно удалена:", id)
	return nil
}

func (s *Storage) CreateTask(ctx context.Context, task *models.Task) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	date, err := models.ParseDate(task.Date)
	if err != nil {
		return err
	}
	task.ID = uuid.New().String()
	stmt, err := s.conn.Prepare(ctx, "create_task", s.prepCreateTask)
	if err != nil {
		log.Println("[ERROR] Не удалось подготовить запрос на создание задачи:", err)
		return err
	}
	if _, err := s.conn.Exec(ctx, stmt.Name, task.ID, task.Task, date, task.Time, task.CategoryID, task.IsComplete, task.UserID); err != nil {
		log.Println("[ERROR] Не удалось создать задачу:", err)
		return err
	}
	log.Println("[SUCCESS] Задача успешно создана:", task.ID)
	return nil
}

func (s *Storage) GetTaskByID(ctx context.Context, id, ownerID string) (*models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	stmt, err := s.conn.Prepare(ctx, "get_task", s.prepGetTask)
	if err != nil {
		log.Println("[ERROR] Не удалось подготовить запрос на получение задачи:", err)
		return nil, err
	}
	row := s.conn.QueryRow(ctx, stmt.Name, id, ownerID)
	task := &models.Task{}
	var date time.Time
	if err := row.Scan(&task.ID, &task.Task, &date, &task.Time, &task.CategoryID, &task.IsComplete, &task.UserID); err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.ErrTaskNotFound
		}
		log.Println("[ERROR] Ошибка при получении задачи:", err)
		return nil, err
	}
	task.Date = date.Format(models.DateLayout)
	return task, nil
}

func (s *Storage) GetTasks(ctx context.Context, ownerID string) ([]models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	stmt, err := s.conn.Prepare(ctx, "get_tasks", s.prepGetTasks)
	if err != nil {
		log.Println("[ERROR] Не удалось подготовить запрос на получение задач:", err)
		return nil, err
	}
	rows, err := s.conn.Query(ctx, stmt.Name, ownerID)
	if err != nil {
		log.Println("[ERROR] Не удалось получить задачи:", err)
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		task := models.Task{}
		var date time.Time
		if err := rows.Scan(&task.ID, &task.Task, &date, &task.Time, &task.CategoryID, &task.IsComplete, &task.UserID); err != nil {
			log.Println("[ERROR] Ошибка при чтении задач:", err)
			return nil, err
		}
		task.Date = date.Format(models.DateLayout)
		tasks = append(tasks, task)
	}
	log.Println("[SUCCESS] Получено задач:", len(tasks))
	return tasks, nil
}

func (s *Storage) UpdateTask(ctx context.Context, id, ownerID string, task *models.Task) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	date, err := models.ParseDate(task.Date)
	if err != nil {
		return err
	}
	stmt, err := s.conn.Prepare(ctx, "update_task", s.prepUpdateTask)
	if err != nil {
		log.Println("[ERROR] Не удалось подготовить запрос на обновление задачи:", err)
		return err
	}
	ct, err := s.conn.Exec(ctx, stmt.Name, task.Task, date, task.Time, task.CategoryID, task.IsComplete, id, ownerID)
	if err != nil {
		log.Println("[ERROR] Не удалось обновить задачу:", err)
		return err
	}
	if ct.RowsAffected() == 0 {
		return errors.ErrTaskNotFound
	}
	log.Println("[SUCCESS] Задача успешно обновлена:", id)
	return nil
}

func (s *Storage) DeleteTask(ctx context.Context, id, ownerID string) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	stmt, err := s.conn.Prepare(ctx, "delete_task", s.prepDeleteTask)
	if err != nil {
		log.Println("[ERROR] Не удалось подготовить запрос на удаление задачи:", err)
		return err
	}
	ct, err := s.conn.Exec(ctx, stmt.Name, id, ownerID)
	if err != nil {
		log.Println("[ERROR] Не удалось удалить задачу:", err)
		return err
	}
	if ct.RowsAffected() == 0 {
		return errors.ErrTaskNotFound
	}
	log.Println("[SUCCESS] Задача успешно удалена:", id)
	return nil
}

func (s *Storage) CreateSession(ctx context.Context, session *models.Session) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	stmt, err := s.conn.Prepare(ctx, "create_session", s.prepCreateSession)
	if err != nil {
		log.Println("[ERROR] Не удалось подготовить запрос на создание сессии:", err)
		return err
	}
	if _, err := s.conn.Exec(ctx, stmt.Name, session.ID, session.UserID, session.CreatedAt, session.ExpiresAt); err != nil {
		log.Println("[ERROR] Не удалось создать сессию:", err)
		return err
	}
	return nil
}

func (s *Storage) GetSession(ctx context.Context, id string) (*models.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	stmt, err := s.conn.Prepare(ctx, "get_session", s.prepGetSession)
	if err != nil {
		log.Println("[ERROR] Не удалось подготовить запрос на получение сессии:", err)
		return nil, err
	}
	row := s.conn.QueryRow(ctx, stmt.Name, id)
	session := &models.Session{}
	if err := row.Scan(&session.ID, &session.UserID, &session.CreatedAt, &session.ExpiresAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.ErrSessionNotFound
		}
		log.Println("[ERROR] Ошибка при получении сессии:", err)
		return nil, err
	}
	return session, nil
}

// DeleteSession идемпотентен: удаление отсутствующей сессии не ошибка.
func (s *Storage) DeleteSession(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	stmt, err := s.conn.Prepare(ctx, "delete_session", s.prepDeleteSession)
	if err != nil {
		log.Println("[ERROR] Не удалось подготовить запрос на удаление сессии:", err)
		return err
	}
	if _, err := s.conn.Exec(ctx, stmt.Name, id); err != nil {
		log.Println("[ERROR] Не удалось удалить сессию:", err)
		return err
	}
	return nil
}

func (s *Storage) Close(ctx context.Context) error {
	return s.conn.Close(ctx)
}
