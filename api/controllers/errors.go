package controllers

import (
	"errors"

	"gorm.io/gorm"

	pkgerrors "github.com/brewlinehq/brewline-backend/pkg/errors"
)

// mapStoreError converts raw repository errors into typed API errors.
// Already-typed errors pass through untouched.
func mapStoreError(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	if typed := pkgerrors.As(err); typed != nil {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFoundMsg)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storage error")
}
