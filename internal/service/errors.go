package service

import (
	"errors"
	"fmt"

	"indrhi-inventory/pkg/logger"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Error kinds returned by every service. Callers test them with errors.Is.
var (
	ErrNotFound            = errors.New("not found")
	ErrDuplicateSubmission = errors.New("request already submitted")
	ErrInvalidQuantity     = errors.New("invalid quantity")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrUpstreamFailure     = errors.New("storage failure")
	ErrInvalidTransition   = errors.New("invalid stage transition")
	ErrForbidden           = errors.New("forbidden")
	ErrValidation          = errors.New("validation failed")
)

var kinds = []error{
	ErrNotFound, ErrDuplicateSubmission, ErrInvalidQuantity, ErrConstraintViolation,
	ErrUpstreamFailure, ErrInvalidTransition, ErrForbidden, ErrValidation,
	ErrInvalidCredentials, ErrUserInactive, ErrWrongPassword, ErrSessionExpired,
}

func classified(err error) bool {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return true
		}
	}
	return false
}

// storageErr maps a persistence error onto an error kind. Already classified errors pass through.
func storageErr(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case classified(err):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	case errors.Is(err, gorm.ErrDuplicatedKey), errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %s: %v", ErrConstraintViolation, what, err)
	default:
		return fmt.Errorf("%w: %s: %v", ErrUpstreamFailure, what, err)
	}
}

func notFound(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func conflict(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConstraintViolation, fmt.Sprintf(format, args...))
}

// logFailure logs err and returns it unchanged. Storage failures are errors, rule violations debug.
func logFailure(log *logrus.Logger, module, funcName, context string, data interface{}, err error) error {
	if errors.Is(err, ErrUpstreamFailure) {
		logger.LogError(log, module, funcName, context, data, err)
		return err
	}
	log.WithFields(logrus.Fields{
		"module":   module,
		"funcName": funcName,
		"context":  context,
	}).Debug(err.Error())
	return err
}
