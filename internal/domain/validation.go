package domain

import "strings"

// ValidationError описывает одно замечание валидации: поле и сообщение.
type ValidationError struct {
	Field   string
	Message string
}

// ValidationResult накапливает замечания по агрегату и его позициям.
type ValidationResult struct {
	Errors []ValidationError
}

// IsValid сообщает, прошла ли проверка без замечаний.
func (r ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// Join склеивает все сообщения в одну строку для логов и ошибок.
func (r ValidationResult) Join() string {
	parts := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		parts = append(parts, e.Field+": "+e.Message)
	}
	return strings.Join(parts, "; ")
}

func (r *ValidationResult) add(field, message string) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Message: message})
}

func (r *ValidationResult) merge(other ValidationResult) {
	r.Errors = append(r.Errors, other.Errors...)
}
