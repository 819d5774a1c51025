package checkout

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classe une erreur métier pour le mapping HTTP et la propagation.
type Kind int

const (
	KindNotFound Kind = iota
	KindValidation
	KindConflict
	KindForbidden
	KindUnauthorized
	KindUpstream
)

// Error est le type d'erreur métier partagé par tout le backend.
// Les erreurs non reconnues à la frontière des handlers sont traitées
// comme des erreurs de validation (comportement historique).
type Error struct {
	Kind    Kind
	Message string
	Fields  []string // messages par champ pour les erreurs de validation
}

func (e *Error) Error() string {
	return e.Message
}

// E construit une erreur métier d'un kind donné.
func E(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Ef construit une erreur métier avec formatage.
func Ef(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf retourne le kind d'une erreur, KindValidation par défaut.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindValidation
}

// FieldsOf retourne les erreurs par champ si présentes.
func FieldsOf(err error) []string {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}

// HTTPStatus mappe un kind vers un code HTTP.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}
