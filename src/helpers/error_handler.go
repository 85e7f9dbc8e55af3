package helpers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"biometric-insights/src/logger"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

// ErrInsufficientData is returned when none of readiness, sleep or activity
// could be loaded.
var ErrInsufficientData = errors.New("insufficient data for analysis")

type BiometricError struct {
	Message string
	Cause   error
}

func (e *BiometricError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *BiometricError) Unwrap() error {
	return e.Cause
}

// Helper to define distinct error types for type assertions if needed
type ConfigurationError struct{ BiometricError }
type DataSourceError struct{ BiometricError }
type DatabaseError struct{ BiometricError }
type ValidationError struct{ BiometricError }

// InsufficientDataError always unwraps to ErrInsufficientData.
type InsufficientDataError struct {
	ProfileDir string
}

func (e *InsufficientDataError) Error() string {
	if e.ProfileDir == "" {
		return ErrInsufficientData.Error()
	}
	return fmt.Sprintf("%s (%s)", ErrInsufficientData.Error(), e.ProfileDir)
}

func (e *InsufficientDataError) Unwrap() error {
	return ErrInsufficientData
}

func NewDataSourceError(message string, cause error) error {
	return &DataSourceError{BiometricError{Message: message, Cause: cause}}
}

func NewDatabaseError(message string, cause error) error {
	return &DatabaseError{BiometricError{Message: message, Cause: cause}}
}

func NewConfigurationError(message string, cause error) error {
	return &ConfigurationError{BiometricError{Message: message, Cause: cause}}
}

func NewValidationError(message string) error {
	return &ValidationError{BiometricError{Message: message}}
}

// -----------------------------------------------------------------------------
// Retry Logic
// -----------------------------------------------------------------------------

// RetryWithBackoff attempts to execute the operation up to maxRetries times with exponential backoff.
func RetryWithBackoff[T any](log *logger.Logger, operation string, maxRetries int, baseDelay time.Duration, fn func() (T, error)) (T, error) {
	var (
		zero    T
		lastErr error
	)

	for attempt := 0; attempt < maxRetries; attempt++ {
		res, err := fn()
		if err == nil {
			return res, nil
		}

		lastErr = err
		if attempt == maxRetries-1 {
			break
		}

		delay := baseDelay * (1 << attempt)
		if log != nil {
			log.Warning("Attempt %d/%d failed for %s: %v. Retrying in %v", attempt+1, maxRetries, operation, err, delay)
		}
		time.Sleep(delay)
	}

	return zero, lastErr
}

// -----------------------------------------------------------------------------
// Error Handler
// -----------------------------------------------------------------------------

type ErrorHandler struct {
	Logger     *logger.Logger
	ErrorCount int
}

func NewErrorHandler(log *logger.Logger) *ErrorHandler {
	if log == nil {
		log = logger.NewLogger(nil, "ErrorHandler")
	}
	return &ErrorHandler{Logger: log}
}

// -----------------------------------------------------------------------------

func (e *ErrorHandler) ResetErrorCount() {
	e.ErrorCount = 0
}

// -----------------------------------------------------------------------------

// Wrap categorizes a failed operation by its name.
func (e *ErrorHandler) Wrap(operation string, err error) error {
	if err == nil {
		return nil
	}
	var insufficient *InsufficientDataError
	if errors.As(err, &insufficient) || errors.Is(err, ErrInsufficientData) {
		return err
	}

	message := fmt.Sprintf("%s failed", operation)
	lowerOp := strings.ToLower(operation)
	switch {
	case strings.Contains(lowerOp, "load") || strings.Contains(lowerOp, "read"):
		return NewDataSourceError(message, err)
	case strings.Contains(lowerOp, "database") || strings.Contains(lowerOp, "save"):
		return NewDatabaseError(message, err)
	case strings.Contains(lowerOp, "config"):
		return NewConfigurationError(message, err)
	default:
		return &BiometricError{Message: message, Cause: err}
	}
}

// -----------------------------------------------------------------------------

func (e *ErrorHandler) Handle(err error, context string) {
	if err != nil {
		e.ErrorCount++
		e.Logger.Error("Error in %s: %v", context, err)
	}
}
