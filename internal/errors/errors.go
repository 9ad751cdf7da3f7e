package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserAlreadyExists is returned when registering an already used email.
	ErrUserAlreadyExists = errors.New("user with this email already exists")
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrCardNotFound is returned when a card is absent or not visible to the requester.
	ErrCardNotFound = errors.New("card not found")
	// ErrShopNotFound is returned when a shop is not found.
	ErrShopNotFound = errors.New("shop not found")
	// ErrGroupNotFound is returned when a group is not found.
	ErrGroupNotFound = errors.New("group not found")
	// ErrNotCardOwner is returned when a mutation requires card ownership.
	ErrNotCardOwner = errors.New("only the card owner may do this")
	// ErrShopImmutable is returned when mutating a verified shop or a shop the
	// requester holds no owned card for.
	ErrShopImmutable = errors.New("shop is not editable by this user")
	// ErrStatusAsRequested is returned when a favourite toggle would not change state.
	ErrStatusAsRequested = errors.New("card status already as requested")
	// ErrUsageCounterDecrease is returned when a statistics update does not increase the counter.
	ErrUsageCounterDecrease = errors.New("usage counter can only increase")
	// ErrShareWithSelf is returned when sharing a card with one's own email.
	ErrShareWithSelf = errors.New("cannot share a card with yourself")
	// ErrAlreadyShared is returned when the target already holds the card.
	ErrAlreadyShared = errors.New("user already has this card")
	// ErrAlreadyActivated is returned when re-activating a confirmed email.
	ErrAlreadyActivated = errors.New("email already confirmed")
	// ErrInvalidActivationToken is returned when an activation or reset token fails verification.
	ErrInvalidActivationToken = errors.New("invalid or expired token")
	// ErrInvalidUID is returned when an activation uid is malformed or not the requester's.
	ErrInvalidUID = errors.New("invalid uid")
	// ErrPhoneDigitsMismatch is returned when reset-password phone digits do not match.
	ErrPhoneDigitsMismatch = errors.New("phone digits do not match")
)

// statusMessages maps response status codes to human status summaries.
var statusMessages = map[int]string{
	http.StatusBadRequest:                  "invalid input",
	http.StatusUnauthorized:                "authorization error",
	http.StatusForbidden:                   "authorization error",
	http.StatusNotFound:                    "no data",
	http.StatusMethodNotAllowed:            "action forbidden",
	http.StatusConflict:                    "invalid input",
	http.StatusRequestTimeout:              "timeout",
	http.StatusRequestEntityTooLarge:       "request too large",
	http.StatusRequestURITooLong:           "URI too long",
	http.StatusUnsupportedMediaType:        "unsupported media type",
	http.StatusTooManyRequests:             "too many requests",
	http.StatusRequestHeaderFieldsTooLarge: "header too large",
}

// StatusMessage returns the fixed human summary for a status code.
func StatusMessage(status int) string {
	if msg, ok := statusMessages[status]; ok {
		return msg
	}
	if status >= 500 && status <= 599 {
		return "server error"
	}
	return "something went wrong"
}

// Envelope is the uniform error body: field-keyed details plus a status summary.
type Envelope struct {
	Detail  map[string][]string `json:"detail"`
	Message string              `json:"message"`
}

// NewEnvelope builds an Envelope for the given status.
func NewEnvelope(status int, detail map[string][]string) Envelope {
	if detail == nil {
		detail = map[string][]string{}
	}
	return Envelope{Detail: detail, Message: StatusMessage(status)}
}

// FieldErrors is a validation failure keyed by field name. It is always
// produced before any mutation is applied.
type FieldErrors map[string][]string

// Error implements the error interface.
func (fe FieldErrors) Error() string {
	for field, msgs := range fe {
		if len(msgs) > 0 {
			return field + ": " + msgs[0]
		}
	}
	return "validation error"
}

// Add appends a message for a field.
func (fe FieldErrors) Add(field, message string) {
	fe[field] = append(fe[field], message)
}

// Merge folds other into fe, joining nested keys to the parent with an underscore.
func (fe FieldErrors) Merge(parent string, other FieldErrors) {
	for field, msgs := range other {
		key := field
		if parent != "" {
			key = parent + "_" + field
		}
		fe[key] = append(fe[key], msgs...)
	}
}

// Empty reports whether no field has errors.
func (fe FieldErrors) Empty() bool {
	return len(fe) == 0
}

// HTTPError represents an HTTP error with status code and field details.
type HTTPError struct {
	StatusCode int
	Message    string
	Detail     map[string][]string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message string) *HTTPError {
	return &HTTPError{StatusCode: statusCode, Message: message}
}

// ToEnvelope converts an HTTPError to the response envelope.
func (e *HTTPError) ToEnvelope() Envelope {
	detail := e.Detail
	if detail == nil {
		detail = map[string][]string{}
		if e.Message != "" {
			detail["non_field_errors"] = []string{e.Message}
		}
	}
	return NewEnvelope(e.StatusCode, detail)
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var fieldErrs FieldErrors
	if errors.As(err, &fieldErrs) {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    fieldErrs.Error(),
			Detail:     fieldErrs,
		}
	}

	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrUserAlreadyExists):
		return NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrCardNotFound),
		errors.Is(err, ErrShopNotFound),
		errors.Is(err, ErrGroupNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrNotCardOwner),
		errors.Is(err, ErrShopImmutable),
		errors.Is(err, ErrInvalidUID),
		errors.Is(err, ErrInvalidActivationToken):
		return NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, ErrStatusAsRequested),
		errors.Is(err, ErrUsageCounterDecrease),
		errors.Is(err, ErrShareWithSelf),
		errors.Is(err, ErrAlreadyShared):
		return NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrAlreadyActivated),
		errors.Is(err, ErrPhoneDigitsMismatch):
		return NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
