package server

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	authdomain "github.com/lancekit/lancekit/internal/auth/domain"
	clientdomain "github.com/lancekit/lancekit/internal/client/domain"
	invoicedomain "github.com/lancekit/lancekit/internal/invoice/domain"
	"github.com/lancekit/lancekit/internal/invoice/draft"
	notificationdomain "github.com/lancekit/lancekit/internal/notification/domain"
	onboardingdomain "github.com/lancekit/lancekit/internal/onboarding/domain"
	paymentdomain "github.com/lancekit/lancekit/internal/payment/domain"
	projectdomain "github.com/lancekit/lancekit/internal/project/domain"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	// The persistence boundary returns a discriminated error; branch on its
	// kind rather than inspecting messages.
	var portErr *invoicedomain.PortError
	if errors.As(err, &portErr) {
		switch portErr.Kind {
		case invoicedomain.PortUnauthorized:
			return http.StatusUnauthorized, errorPayload{
				Type:    "unauthorized",
				Message: "unauthorized",
			}
		case invoicedomain.PortValidation:
			return http.StatusBadRequest, errorPayload{
				Type:    "validation_error",
				Message: "validation error",
				Errors:  portFieldErrors(portErr),
			}
		case invoicedomain.PortNotFound:
			return http.StatusNotFound, errorPayload{
				Type:    "not_found",
				Message: "not found",
			}
		default:
			return http.StatusInternalServerError, errorPayload{
				Type:    "internal_error",
				Message: "internal server error",
			}
		}
	}

	var draftErr *draft.ValidationError
	if errors.As(err, &draftErr) {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{Field: "draft", Code: "invalid_draft", Message: draftErr.Message},
			},
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := err.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: "invalid value",
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrUnauthenticated),
		errors.Is(err, authdomain.ErrTokenExpired),
		errors.Is(err, clientdomain.ErrInvalidUser),
		errors.Is(err, projectdomain.ErrInvalidUser),
		errors.Is(err, invoicedomain.ErrInvalidUser),
		errors.Is(err, notificationdomain.ErrInvalidUser),
		errors.Is(err, onboardingdomain.ErrInvalidUser),
		errors.Is(err, paymentdomain.ErrInvalidUser),
		errors.Is(err, paymentdomain.ErrInvalidSignature):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, authdomain.ErrUserExists):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func portFieldErrors(portErr *invoicedomain.PortError) []ValidationError {
	fields := make([]string, 0, len(portErr.Fields))
	for field := range portErr.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	out := make([]ValidationError, 0, len(fields))
	for _, field := range fields {
		out = append(out, ValidationError{
			Field:   field,
			Code:    "invalid_" + field,
			Message: portErr.Fields[field],
		})
	}
	if len(out) == 0 {
		out = append(out, ValidationError{
			Field:   "request",
			Code:    "invalid_request",
			Message: "invalid request",
		})
	}
	return out
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, authdomain.ErrInvalidName),
		errors.Is(err, authdomain.ErrInvalidEmail),
		errors.Is(err, authdomain.ErrWeakPassword),
		errors.Is(err, clientdomain.ErrInvalidName),
		errors.Is(err, clientdomain.ErrInvalidEmail),
		errors.Is(err, clientdomain.ErrInvalidID),
		errors.Is(err, projectdomain.ErrInvalidName),
		errors.Is(err, projectdomain.ErrInvalidClient),
		errors.Is(err, projectdomain.ErrInvalidID),
		errors.Is(err, projectdomain.ErrInvalidRate),
		errors.Is(err, projectdomain.ErrInvalidStatus),
		errors.Is(err, projectdomain.ErrInvalidTaskName),
		errors.Is(err, invoicedomain.ErrInvalidID),
		errors.Is(err, invoicedomain.ErrInvalidStatus),
		errors.Is(err, invoicedomain.ErrInvalidProject),
		errors.Is(err, notificationdomain.ErrInvalidID),
		errors.Is(err, onboardingdomain.ErrInvalidName),
		errors.Is(err, onboardingdomain.ErrInvalidRate),
		errors.Is(err, onboardingdomain.ErrStepOrder),
		errors.Is(err, paymentdomain.ErrInvalidID),
		errors.Is(err, paymentdomain.ErrUnknownProvider):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, authdomain.ErrNotFound),
		errors.Is(err, clientdomain.ErrNotFound),
		errors.Is(err, projectdomain.ErrNotFound),
		errors.Is(err, projectdomain.ErrTaskNotFound),
		errors.Is(err, invoicedomain.ErrNotFound),
		errors.Is(err, notificationdomain.ErrNotFound),
		errors.Is(err, paymentdomain.ErrInvoiceNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorField(code string) string {
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	if code == "step_out_of_order" {
		return "step"
	}
	return ""
}
