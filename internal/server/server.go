package server

import (
	"context"
	"fmt"
	"net/http"

	"taskhub/internal/domain/errors"
	"taskhub/internal/domain/models"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator"
	"go.uber.org/zap"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, id string, user *models.User) error
	DeleteUser(ctx context.Context, id string) error
}

type CategoryRepository interface {
	CreateCategory(ctx context.Context, category *models.Category) error
	GetCategoryByID(ctx context.Context, id, ownerID string) (*models.Category, error)
	GetCategories(ctx context.Context, ownerID string) ([]models.Category, error)
	UpdateCategory(ctx context.Context, id, ownerID, name string) error
	DeleteCategory(ctx context.Context, id, ownerID string) error
}

type TaskRepository interface {
	CreateTask(ctx context.Context, task *models.Task) error
	GetTaskByID(ctx context.Context, id, ownerID string) (*models.Task, error)
	GetTasks(ctx context.Context, ownerID string) ([]models.Task, error)
	UpdateTask(ctx context.Context, id, ownerID string, task *models.Task) error
	DeleteTask(ctx context.Context, id, ownerID string) error
}

type Repository interface {
	UserRepository
	CategoryRepository
	TaskRepository
}

// SessionRepository — явное хранилище сессий (токен -> пользователь со
// сроком действия), внедряется в API вместо глобального состояния.
type SessionRepository interface {
	CreateSession(ctx context.Context, session *models.Session) error
	GetSession(ctx context.Context, id string) (*models.Session, error)
	DeleteSession(ctx context.Context, id string) error
}

type TaskHubAPI struct {
	httpSrv  *http.Server
	repo     Repository
	sessions SessionRepository
	cfg      *Config
	logger   *zap.Logger
}

func NewTaskHubAPI(repo Repository, sessions SessionRepository, cfg *Config) *TaskHubAPI {
	if repo == nil || sessions == nil {
		return nil
	}

	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}
	if cfg.SecretKey == "" {
		cfg.SecretKey = defaultSecretKey
	}

	logger, err := zap.NewProduction()
	if err != nil {
		logger = zap.NewNop()
	}

	httpSrv := http.Server{
		Addr: fmt.Sprintf("%s:%d", cfg.Addr, cfg.Port),
	}

	api := TaskHubAPI{
		httpSrv:  &httpSrv,
		repo:     repo,
		sessions: sessions,
		cfg:      cfg,
		logger:   logger,
	}

	api.configRoutes()

	return &api
}

func (api *TaskHubAPI) Start() error {
	if api.httpSrv == nil {
		return errors.ErrInternalServer
	}
	return api.httpSrv.ListenAndServe()
}

func (api *TaskHubAPI) Shutdown(ctx context.Context) error {
	if api.httpSrv == nil {
		return nil
	}
	return api.httpSrv.Shutdown(ctx)
}

func (api *TaskHubAPI) configRoutes() {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(GinZapLogger(api.logger))
	router.Use(GzipRequestDecompress())
	router.Use(GzipResponseCompress())

	router.HandleMethodNotAllowed = true
	router.NoMethod(func(ctx *gin.Context) {
		ctx.JSON(http.StatusMethodNotAllowed, gin.H{"error": "использован некорректный HTTP-метод"})
	})
	router.NoRoute(func(ctx *gin.Context) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": errors.ErrNotFound.Error()})
	})

	router.POST("/login", api.login)
	router.GET("/check_session", api.checkSession)
	router.DELETE("/logout", api.logout)

	users := router.Group("/users")
	{
		users.POST("", api.register)
		users.GET("", api.requireSession(), api.getUsers)
	}

	user := router.Group("/user")
	{
		user.GET("/:userID", api.getUser)
		user.PATCH("/:userID", api.requireSession(), api.updateUser)
		user.DELETE("/:userID", api.requireSession(), api.deleteUser)
	}

	categories := router.Group("/categories", api.requireSession())
	{
		categories.POST("", api.createCategory)
		categories.GET("", api.getCategories)
	}

	category := router.Group("/category", api.requireSession())
	{
		category.GET("/:categoryID", api.getCategory)
		category.PATCH("/:categoryID", api.updateCategory)
		category.DELETE("/:categoryID", api.deleteCategory)
	}

	tasks := router.Group("/tasks", api.requireSession())
	{
		tasks.POST("", api.createTask)
		tasks.GET("", api.getTasks)
	}

	task := router.Group("/task", api.requireSession())
	{
		task.GET("/:taskID", api.getTask)
		task.PATCH("/:taskID", api.updateTask)
		task.DELETE("/:taskID", api.deleteTask)
	}

	api.httpSrv.Handler = router
}

func (api *TaskHubAPI) register(ctx *gin.Context) {
	var req models.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "некорректные данные пользователя"})
		return
	}

	req.Email = models.SanitizeEmail(req.Email)

	valid := validator.New()
	if err := valid.Struct(req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": validationErrorToErrorResponse(err).Error()})
		return
	}

	hash, err := models.HashPassword(req.Password)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: hash,
	}

	// Категории по умолчанию создаются в той же транзакции хранилища.
	if err := api.repo.CreateUser(ctx, &user); err != nil {
		if err == errors.ErrUserAlreadyExists {
			ctx.JSON(http.StatusConflict, gin.H{"error": errors.ErrUserAlreadyExists.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "пользователь успешно создан",
		"user":    user,
	})
}

func (api *TaskHubAPI) getUser(ctx *gin.Context) {
	userID := ctx.Param("userID")

	user, err := api.repo.GetUserByID(ctx, userID)
	if err != nil {
		if err == errors.ErrUserNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{"error": errors.ErrUserNotFound.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"name":  user.Name,
		"email": user.Email,
	})
}

func (api *TaskHubAPI) getUsers(ctx *gin.Context) {
	users, err := api.repo.GetUsers(ctx)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"users": users})
}

func (api *TaskHubAPI) updateUser(ctx *gin.Context) {
	userID := ctx.Param("userID")

	var req models.UpdateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "некорректные данные запроса"})
		return
	}

	valid := validator.New()
	if err := valid.Struct(req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": validationErrorToErrorResponse(err).Error()})
		return
	}

	user, err := api.repo.GetUserByID(ctx, userID)
	if err != nil {
		if err == errors.ErrUserNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{"error": errors.ErrUserNotFound.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
		return
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Password != nil {
		hash, err := models.HashPassword(*req.Password)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		user.Password = hash
	}

	if err := api.repo.UpdateUser(ctx, userID, user); err != nil {
		if err == errors.ErrUserNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{"error": errors.ErrUserNotFound.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "пользователь успешно обновлен"})
}

func (api *TaskHubAPI) deleteUser(ctx *gin.Context) {
	userID := ctx.Param("userID")

	if err := api.repo.DeleteUser(ctx, userID); err != nil {
		if err == errors.ErrUserNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{"error": errors.ErrUserNotFound.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "пользователь успешно удален"})
}

func (api *TaskHubAPI) createCategory(ctx *gin.Context) {
	owner := currentUser(ctx)

	var req models.CreateCategoryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": errors.ErrBadRequest.Error()})
		return
	}

	valid := validator.New()
	if err := valid.Struct(req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": validationErrorToErrorResponse(err).Error()})
		return
	}

	category := models.Category{
		Name:      req.Name,
		CreatedBy: owner.ID,
	}

	if err := api.repo.CreateCategory(ctx, &category); err != nil {
		if err == errors.ErrCategoryExists {
			ctx.JSON(http.StatusConflict, gin.H{"error": errors.ErrCategoryExists.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message":  "категория успешно создана",
		"category": category,
	})
}

func (api *TaskHubAPI) getCategories(ctx *gin.Context) {
	owner := currentUser(ctx)

	categories, err := api.repo.GetCategories(ctx, owner.ID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (api *TaskHubAPI) getCategory(ctx *gin.Context) {
	owner := currentUser(ctx)
	id := ctx.Param("categoryID")

	category, err := api.repo.GetCategoryByID(ctx, id, owner.ID)
	if err != nil {
		if err == errors.ErrCategoryNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{"error": errors.ErrCategoryNotFound.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"category": category})
}

func (api *TaskHubAPI) updateCategory(ctx *gin.Context) {
	owner := currentUser(ctx)
	id := ctx.Param("categoryID")

	var req models.UpdateCategoryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": errors.ErrBadRequest.Error()})
		return
	}

	valid := validator.New()
	if err := valid.Struct(req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": validationErrorToErrorResponse(err).Error()})
		return
	}

	if err := api.repo.UpdateCategory(ctx, id, owner.ID, req.Name); err != nil {
		switch err {
		case errors.ErrCategoryNotFound:
			ctx.JSON(http.StatusNotFound, gin.H{"error": errors.ErrCategoryNotFound.Error()})
		case errors.ErrCategoryExists:
			ctx.JSON(http.StatusConflict, gin.H{"error": errors.ErrCategoryExists.Error()})
		default:
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "категория успешно обновлена",
		"id":      id,
		"name":    req.Name,
	})
}

func (api *TaskHubAPI) deleteCategory(ctx *gin.Context) {
	owner := currentUser(ctx)
	id := ctx.Param("categoryID")

	if err := api.repo.DeleteCategory(ctx, id, owner.ID); err != nil {
		if err == errors.ErrCategoryNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{"error": errors.ErrCategoryNotFound.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "категория успешно удалена"})
}

func (api *TaskHubAPI) createTask(ctx *gin.Context) {
	owner := currentUser(ctx)

	var req models.CreateTaskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": errors.ErrBadRequest.Error()})
		return
	}

	valid := validator.New()
	if err := valid.Struct(req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": validationErrorToErrorResponse(err).Error()})
		return
	}

	if _, err := models.ParseDate(req.Date); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": errors.ErrInvalidDate.Error()})
		return
	}

	// Категория задачи обязана принадлежать владельцу задачи.
	if _, err := api.repo.GetCategoryByID(ctx, req.CategoryID, owner.ID); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": errors.ErrCategoryNotFound.Error()})
		return
	}

	task := models.Task{
		Task:       req.Task,
		Date:       req.Date,
		Time:       req.Time,
		CategoryID: req.CategoryID,
		IsComplete: false,
		UserID:     owner.ID,
	}

	if err := api.repo.CreateTask(ctx, &task); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"task": task})
}

func (api *TaskHubAPI) getTasks(ctx *gin.Context) {
	owner := currentUser(ctx)

	tasks, err := api.repo.GetTasks(ctx, owner.ID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (api *TaskHubAPI) getTask(ctx *gin.Context) {
	owner := currentUser(ctx)
	id := ctx.Param("taskID")

	task, err := api.repo.GetTaskByID(ctx, id, owner.ID)
	if err != nil {
		if err == errors.ErrTaskNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{"error": errors.ErrTaskNotFound.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"task": task})
}

func (api *TaskHubAPI) updateTask(ctx *gin.Context) {
	owner := currentUser(ctx)
	id := ctx.Param("taskID")

	var req models.UpdateTaskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": errors.ErrBadRequest.Error()})
		return
	}

	valid := validator.New()
	if err := valid.Struct(req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": validationErrorToErrorResponse(err).Error()})
		return
	}

	task, err := api.repo.GetTaskByID(ctx, id, owner.ID)
	if err != nil {
		if err == errors.ErrTaskNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{"error": errors.ErrTaskNotFound.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
		return
	}

	if req.Task != nil {
		task.Task = *req.Task
	}
	if req.Date != nil {
		if _, err := models.ParseDate(*req.Date); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": errors.ErrInvalidDate.Error()})
			return
		}
		task.Date = *req.Date
	}
	if req.Time != nil {
		task.Time = *req.Time
	}
	if req.CategoryID != nil {
		if _, err := api.repo.GetCategoryByID(ctx, *req.CategoryID, owner.ID); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": errors.ErrCategoryNotFound.Error()})
			return
		}
		task.CategoryID = *req.CategoryID
	}
	// Указатель отличает явное false от отсутствующего поля.
	if req.IsComplete != nil {
		task.IsComplete = *req.IsComplete
	}

	if err := api.repo.UpdateTask(ctx, id, owner.ID, task); err != nil {
		if err == errors.ErrTaskNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{"error": errors.ErrTaskNotFound.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"task": task})
}

func (api *TaskHubAPI) deleteTask(ctx *gin.Context) {
	owner := currentUser(ctx)
	id := ctx.Param("taskID")

	if err := api.repo.DeleteTask(ctx, id, owner.ID); err != nil {
		if err == errors.ErrTaskNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{"error": errors.ErrTaskNotFound.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "задача успешно удалена"})
}

func validationErrorToErrorResponse(err error) error {
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, verr := range verrs {
			switch verr.Field() {
			case "Name":
				return errors.ErrInvalidName
			case "Email":
				return errors.ErrInvalidEmail
			case "Password":
				return errors.ErrInvalidPassword
			case "Task":
				return errors.ErrInvalidDescription
			case "Date":
				return errors.ErrInvalidDate
			case "CategoryID":
				return errors.ErrInvalidCategory
			}
		}
	}
	return errors.ErrValidationFailed
}
