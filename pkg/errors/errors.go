package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// JWT и токены
	ErrInvalidSigningMethod = errors.New("неверный метод подписи токена")
	ErrInvalidToken         = errors.New("недопустимый токен")
	ErrTokenExpired         = errors.New("срок действия токена истёк")

	// Аутентификация и доступ
	ErrEmptyAuthHeader    = errors.New("заголовок авторизации отсутствует")
	ErrInvalidAuthHeader  = errors.New("неверный формат заголовка авторизации")
	ErrInvalidCredentials = errors.New("неверные учётные данные")
	ErrUnauthorized       = errors.New("требуется аутентификация")
	ErrForbidden          = errors.New("доступ запрещён")

	// Общие
	ErrNotFound       = errors.New("запись не найдена")
	ErrValidation     = errors.New("ошибка валидации")
	ErrConflict       = errors.New("запись используется другими записями")
	ErrInternalServer = errors.New("внутренняя ошибка сервера")

	// ErrResourceAbsent возникает только при отложенном подборе и наружу не отдаётся.
	ErrResourceAbsent = errors.New("ресурс не найден при подборе")
)

// HttpError несёт код ответа, сообщение для клиента и исходную ошибку для лога.
type HttpError struct {
	Code    int
	Message string
	Err     error
	Details map[string]string
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HttpError) Unwrap() error { return e.Err }

func NewHttpError(code int, message string, err error, details map[string]string) *HttpError {
	return &HttpError{Code: code, Message: message, Err: err, Details: details}
}

// NewValidationError возвращает ошибку валидации с деталями по полям.
func NewValidationError(details map[string]string) *HttpError {
	return &HttpError{
		Code:    http.StatusBadRequest,
		Message: "Ошибка валидации",
		Err:     ErrValidation,
		Details: details,
	}
}

// NewFieldError - ошибка валидации одного поля.
func NewFieldError(field, message string) *HttpError {
	return NewValidationError(map[string]string{field: message})
}

// StatusCode сопоставляет ошибку с HTTP-кодом по таксономии.
func StatusCode(err error) int {
	var httpErr *HttpError
	if errors.As(err, &httpErr) {
		return httpErr.Code
	}
	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrEmptyAuthHeader),
		errors.Is(err, ErrInvalidAuthHeader),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrInvalidSigningMethod),
		errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
