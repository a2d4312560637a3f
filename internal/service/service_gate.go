package service

import (
	"fmt"

	"github.com/AmrAnter44/sys-body-sub000/internal/models"
	"github.com/AmrAnter44/sys-body-sub000/pkg/config"
	appErrors "github.com/AmrAnter44/sys-body-sub000/pkg/errors"
)

// ServiceGate rejects operations on service types switched off in configuration.
type ServiceGate struct {
	cfg config.ServicesConfig
}

// NewServiceGate constructs a ServiceGate.
func NewServiceGate(cfg config.ServicesConfig) *ServiceGate {
	return &ServiceGate{cfg: cfg}
}

// Enabled reports whether serviceType accepts operations. Personal training is always on.
func (g *ServiceGate) Enabled(serviceType models.ServiceType) bool {
	if g == nil {
		return serviceType.Valid()
	}
	switch serviceType {
	case models.ServicePT:
		return true
	case models.ServiceNutrition:
		return g.cfg.NutritionEnabled
	case models.ServicePhysiotherapy:
		return g.cfg.PhysiotherapyEnabled
	case models.ServiceGroupClass:
		return g.cfg.GroupClassEnabled
	default:
		return false
	}
}

// Check returns SERVICE_DISABLED for a disabled type and a validation error for an
// unknown one.
func (g *ServiceGate) Check(serviceType models.ServiceType) error {
	if !serviceType.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown service type %q", serviceType))
	}
	if !g.Enabled(serviceType) {
		return appErrors.Clone(appErrors.ErrServiceDisabled, fmt.Sprintf("%s is disabled", serviceType.DisplayName()))
	}
	return nil
}

// EnabledTypes lists the service types currently accepting operations.
func (g *ServiceGate) EnabledTypes() []models.ServiceType {
	out := make([]models.ServiceType, 0, len(models.ServiceTypes))
	for _, st := range models.ServiceTypes {
		if g.Enabled(st) {
			out = append(out, st)
		}
	}
	return out
}
