package service

import (
	"context"
	"errors"
	"strings"

	"github.com/AmrAnter44/sys-body-sub000/internal/models"
	appErrors "github.com/AmrAnter44/sys-body-sub000/pkg/errors"
)

// internalError wraps a storage failure, keeping deadline expiry distinguishable so
// operators know the outcome is unknown rather than failed.
func internalError(err error, message string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return appErrors.Wrap(err, appErrors.ErrTimeout.Code, appErrors.ErrTimeout.Status, message+": timed out")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func paginate(page, size, total int) *models.Pagination {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return &models.Pagination{Page: page, PageSize: size, TotalCount: total}
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func optionalString(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
