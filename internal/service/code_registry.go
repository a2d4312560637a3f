package service

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/AmrAnter44/sys-body-sub000/internal/models"
	"github.com/AmrAnter44/sys-body-sub000/pkg/codes"
	appErrors "github.com/AmrAnter44/sys-body-sub000/pkg/errors"
)

const defaultCodeImageSize = 256

type codeSource interface {
	Next() (string, error)
}

type accessCodeReader interface {
	FindByCode(ctx context.Context, code string) (*models.AccessCode, error)
}

// CodeRegistry mints, renders and resolves access codes.
type CodeRegistry struct {
	source    codeSource
	store     accessCodeReader
	imageSize int
	logger    *zap.Logger
}

// NewCodeRegistry constructs a CodeRegistry. A nil source uses crypto/rand.
func NewCodeRegistry(source codeSource, store accessCodeReader, logger *zap.Logger) *CodeRegistry {
	if source == nil {
		source = codes.NewGenerator(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CodeRegistry{source: source, store: store, imageSize: defaultCodeImageSize, logger: logger}
}

// Next returns a fresh candidate code. Uniqueness is enforced when the code is reserved.
func (r *CodeRegistry) Next() (string, error) {
	code, err := r.source.Next()
	if err != nil {
		return "", err
	}
	if err := codes.ValidateStrength(code); err != nil {
		return "", fmt.Errorf("generated code rejected: %w", err)
	}
	return code, nil
}

// Display groups a code for printing.
func (r *CodeRegistry) Display(code string) string {
	return codes.FormatForDisplay(code)
}

// Image renders code as a PNG QR data URL.
func (r *CodeRegistry) Image(code string) (string, error) {
	png, err := qrcode.Encode(code, qrcode.Medium, r.imageSize)
	if err != nil {
		return "", fmt.Errorf("encode qr: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// ResolveScan classifies raw scanner input as a staff badge or a client code.
func (r *CodeRegistry) ResolveScan(raw string) (codes.Scan, error) {
	scan, err := codes.ResolveScan(raw)
	if err != nil {
		return codes.Scan{}, appErrors.Wrap(err, appErrors.ErrMalformedCode.Code, appErrors.ErrMalformedCode.Status, "scanned code is empty")
	}
	return scan, nil
}

// Lookup finds a minted code. Display dashes are ignored.
func (r *CodeRegistry) Lookup(ctx context.Context, raw string) (*models.AccessCode, error) {
	code := codes.StripDisplayFormat(raw)
	if code == "" {
		return nil, appErrors.Clone(appErrors.ErrMalformedCode, "scanned code is empty")
	}
	ac, err := r.store.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrCodeNotFound, "code not recognised")
		}
		return nil, internalError(err, "failed to look up code")
	}
	return ac, nil
}

// render returns the display form and image of code. A failed image is logged and
// left empty so the registration still succeeds.
func (r *CodeRegistry) render(code string) (string, string) {
	image, err := r.Image(code)
	if err != nil {
		r.logger.Warn("render code image", zap.Error(err))
	}
	return r.Display(code), image
}
