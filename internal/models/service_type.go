package models

import (
	"fmt"
	"strings"
)

// ServiceType tags a subscription with the service it sells sessions for.
type ServiceType string

const (
	ServicePT            ServiceType = "pt"
	ServiceNutrition     ServiceType = "nutrition"
	ServicePhysiotherapy ServiceType = "physiotherapy"
	ServiceGroupClass    ServiceType = "group_class"
)

// ServiceTypes lists every supported service type.
var ServiceTypes = []ServiceType{ServicePT, ServiceNutrition, ServicePhysiotherapy, ServiceGroupClass}

// ParseServiceType accepts the canonical values plus the path spellings used by the
// front desk ("group-classes", "physio", "personal-training").
func ParseServiceType(raw string) (ServiceType, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	switch normalized {
	case "pt", "personal_training":
		return ServicePT, nil
	case "nutrition":
		return ServiceNutrition, nil
	case "physiotherapy", "physio":
		return ServicePhysiotherapy, nil
	case "group_class", "group_classes", "groupclass":
		return ServiceGroupClass, nil
	default:
		return "", fmt.Errorf("unknown service type %q", raw)
	}
}

// Valid reports whether s is a supported service type.
func (s ServiceType) Valid() bool {
	switch s {
	case ServicePT, ServiceNutrition, ServicePhysiotherapy, ServiceGroupClass:
		return true
	default:
		return false
	}
}

// ProviderLabel names the staff role that delivers the service.
func (s ServiceType) ProviderLabel() string {
	switch s {
	case ServiceNutrition:
		return "nutritionist"
	case ServicePhysiotherapy:
		return "therapist"
	case ServiceGroupClass:
		return "instructor"
	default:
		return "coach"
	}
}

// DisplayName is used in report titles.
func (s ServiceType) DisplayName() string {
	switch s {
	case ServicePT:
		return "Personal Training"
	case ServiceNutrition:
		return "Nutrition"
	case ServicePhysiotherapy:
		return "Physiotherapy"
	case ServiceGroupClass:
		return "Group Classes"
	default:
		return string(s)
	}
}
