package errors

import "errors"

var (
	ErrUserNotFound       = errors.New("пользователь не найден")
	ErrCategoryNotFound   = errors.New("категория не найдена или принадлежит другому пользователю")
	ErrTaskNotFound       = errors.New("задача не найдена или принадлежит другому пользователю")
	ErrSessionNotFound    = errors.New("сессия не найдена")
	ErrInvalidCredentials = errors.New("неверные учетные данные")
	ErrUserAlreadyExists  = errors.New("пользователь с таким email уже существует")
	ErrCategoryExists     = errors.New("у вас уже есть категория с таким именем")
	ErrInvalidInput       = errors.New("некорректные входные данные")
	ErrValidationFailed   = errors.New("ошибка валидации")
	ErrUnauthorized       = errors.New("нет доступа")
	ErrInternalServer     = errors.New("внутренняя ошибка сервера")
	ErrBadRequest         = errors.New("неверный запрос")
	ErrNotFound           = errors.New("ресурс не найден")
	ErrConflict           = errors.New("конфликт ресурса")

	ErrInvalidName        = errors.New("имя должно содержать не менее 3 символов")
	ErrInvalidEmail       = errors.New("некорректный email: адрес должен содержать символ @")
	ErrInvalidPassword    = errors.New("пароль должен содержать не менее 8 символов")
	ErrInvalidDate        = errors.New("некорректная дата: ожидается формат YYYY-MM-DD")
	ErrInvalidDescription = errors.New("некорректное описание задачи")
	ErrInvalidCategory    = errors.New("некорректное имя категории")

	ErrConfigFileReadFailed = errors.New("не удалось прочитать файл конфигурации")
	ErrConfigParseFailed    = errors.New("не удалось разобрать файл конфигурации")
	ErrConfigInvalidFormat  = errors.New("некорректное значение конфигурации")

	ErrInvalidGzipRequest    = errors.New("некорректное gzip-тело запроса")
	ErrGzipCompressionFailed = errors.New("ошибка сжатия ответа")
)
