package server

import (
	"fmt"
	"net/http"
	"time"

	"taskhub/internal/domain/errors"
	"taskhub/internal/domain/models"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	sessionCookie  = "jwt_token"
	sessionTTL     = 7 * 24 * time.Hour
	tokenIssuer    = "taskhub-api"
	contextUserKey = "currentUser"
)

type sessionClaims struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	jwt.RegisteredClaims
}

func (api *TaskHubAPI) signSessionToken(session *models.Session) (string, error) {
	claims := sessionClaims{
		SessionID: session.ID,
		UserID:    session.UserID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.UserID,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(api.cfg.SecretKey))
}

func (api *TaskHubAPI) parseSessionToken(tokenString string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method == nil || token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("неожиданный метод подписи: %v", token.Header["alg"])
		}
		return []byte(api.cfg.SecretKey), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.ErrUnauthorized
	}
	if claims.SessionID == "" || claims.UserID == "" {
		return nil, errors.ErrUnauthorized
	}
	return claims, nil
}

// resolveSession превращает cookie в живого пользователя. Подпись токена
// проверяется первой, но источником истины остаётся строка сессии в
// хранилище: после logout токен мёртв независимо от срока действия.
func (api *TaskHubAPI) resolveSession(ctx *gin.Context) (*models.User, error) {
	tokenString, err := ctx.Cookie(sessionCookie)
	if err != nil {
		return nil, errors.ErrUnauthorized
	}
	claims, err := api.parseSessionToken(tokenString)
	if err != nil {
		return nil, errors.ErrUnauthorized
	}
	session, err := api.sessions.GetSession(ctx, claims.SessionID)
	if err != nil {
		return nil, errors.ErrUnauthorized
	}
	user, err := api.repo.GetUserByID(ctx, session.UserID)
	if err != nil {
		return nil, errors.ErrUnauthorized
	}
	return user, nil
}

// requireSession закрывает все операции с категориями, задачами и
// профилем: при невалидной сессии обработчик не выполняется вовсе.
func (api *TaskHubAPI) requireSession() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, err := api.resolveSession(ctx)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errors.ErrUnauthorized.Error()})
			return
		}
		ctx.Set(contextUserKey, user)
		ctx.Next()
	}
}

func currentUser(ctx *gin.Context) *models.User {
	value, exists := ctx.Get(contextUserKey)
	if !exists {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}

func (api *TaskHubAPI) login(ctx *gin.Context) {
	var req models.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "некорректные данные запроса"})
		return
	}

	valid := validator.New()
	if err := valid.Struct(req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": errors.ErrValidationFailed.Error()})
		return
	}

	// Единый ответ для неизвестного email и неверного пароля.
	user, err := api.repo.GetUserByEmail(ctx, models.SanitizeEmail(req.Email))
	if err != nil || !models.CheckPassword(user.Password, req.Password) {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": errors.ErrInvalidCredentials.Error()})
		return
	}

	now := time.Now().UTC()
	session := &models.Session{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(sessionTTL),
	}
	if err := api.sessions.CreateSession(ctx, session); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
		return
	}

	tokenString, err := api.signSessionToken(session)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrInternalServer.Error()})
		return
	}

	ctx.SetCookie(sessionCookie, tokenString, int(sessionTTL.Seconds()), "/", "", false, true)
	ctx.JSON(http.StatusOK, gin.H{
		"message": "вход выполнен успешно",
		"user":    user,
	})
}

func (api *TaskHubAPI) checkSession(ctx *gin.Context) {
	user, err := api.resolveSession(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": errors.ErrUnauthorized.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"user": user})
}

// logout идемпотентен: без cookie, с чужим или уже погашенным токеном
// ответ одинаковый.
func (api *TaskHubAPI) logout(ctx *gin.Context) {
	tokenString, err := ctx.Cookie(sessionCookie)
	if err == nil {
		if claims, err := api.parseSessionToken(tokenString); err == nil {
			_ = api.sessions.DeleteSession(ctx, claims.SessionID)
		}
	}
	ctx.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	ctx.Status(http.StatusNoContent)
}
