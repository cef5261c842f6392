package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type AddonCategory string

const (
	AddonCategoryBaggage AddonCategory = "baggage"
	AddonCategoryMeal    AddonCategory = "meal"
	AddonCategorySeat    AddonCategory = "seat"
	AddonCategoryService AddonCategory = "service"
)

func (c AddonCategory) Valid() bool {
	switch c {
	case AddonCategoryBaggage, AddonCategoryMeal, AddonCategorySeat, AddonCategoryService:
		return true
	}
	return false
}

type AddonOption struct {
	ID          int64
	Name        string
	Category    AddonCategory
	Description string
	PriceCents  int64
	Active      bool
	Metadata    *AddonMetadata
}

// AddonMetadata carries exactly one category-specific part, the one matching Category.
type AddonMetadata struct {
	Category AddonCategory
	Baggage  *BaggageMetadata
	Meal     *MealMetadata
	Seat     *SeatMetadata
	Service  *ServiceMetadata
}

type BaggageMetadata struct {
	WeightKg int `json:"weight_kg" validate:"gt=0,lte=100"`
}

type MealMetadata struct {
	MealType string   `json:"meal_type" validate:"required"`
	Dietary  []string `json:"dietary,omitempty" validate:"omitempty,dive,required"`
}

type SeatMetadata struct {
	Position     string `json:"position" validate:"required,oneof=window aisle middle exit_row"`
	ExtraLegroom bool   `json:"extra_legroom"`
}

type ServiceMetadata struct {
	ServiceType string            `json:"service_type" validate:"required"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}

var metadataValidator = validator.New()

func BaggageAddonMetadata(weightKg int) *AddonMetadata {
	return &AddonMetadata{Category: AddonCategoryBaggage, Baggage: &BaggageMetadata{WeightKg: weightKg}}
}

func MealAddonMetadata(mealType string, dietary ...string) *AddonMetadata {
	return &AddonMetadata{Category: AddonCategoryMeal, Meal: &MealMetadata{MealType: mealType, Dietary: dietary}}
}

func SeatAddonMetadata(position string, extraLegroom bool) *AddonMetadata {
	return &AddonMetadata{Category: AddonCategorySeat, Seat: &SeatMetadata{Position: position, ExtraLegroom: extraLegroom}}
}

func ServiceAddonMetadata(serviceType string, attrs map[string]string) *AddonMetadata {
	return &AddonMetadata{Category: AddonCategoryService, Service: &ServiceMetadata{ServiceType: serviceType, Attributes: attrs}}
}

// variant returns the part selected by Category and how many parts are set.
func (m *AddonMetadata) variant() (any, int) {
	set := 0
	var selected any
	if m.Baggage != nil {
		set++
		if m.Category == AddonCategoryBaggage {
			selected = m.Baggage
		}
	}
	if m.Meal != nil {
		set++
		if m.Category == AddonCategoryMeal {
			selected = m.Meal
		}
	}
	if m.Seat != nil {
		set++
		if m.Category == AddonCategorySeat {
			selected = m.Seat
		}
	}
	if m.Service != nil {
		set++
		if m.Category == AddonCategoryService {
			selected = m.Service
		}
	}
	return selected, set
}

func (m *AddonMetadata) Validate() error {
	if m == nil {
		return nil
	}
	if !m.Category.Valid() {
		return fmt.Errorf("%w: unknown add-on category %q", ErrInvalidInput, m.Category)
	}
	part, set := m.variant()
	if part == nil || set != 1 {
		return fmt.Errorf("%w: add-on metadata must carry exactly the %s part", ErrInvalidInput, m.Category)
	}
	if err := metadataValidator.Struct(part); err != nil {
		return fmt.Errorf("%w: %s metadata: %v", ErrInvalidInput, m.Category, err)
	}
	return nil
}

// Encode returns the JSON stored in addon_options.metadata, e.g. {"weight_kg":15}.
func (m *AddonMetadata) Encode() ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	part, _ := m.variant()
	if part == nil {
		return nil, fmt.Errorf("%w: add-on metadata has no %s part", ErrInvalidInput, m.Category)
	}
	return json.Marshal(part)
}

// DecodeAddonMetadata parses stored metadata for the given category.
// Empty input yields nil metadata.
func DecodeAddonMetadata(category AddonCategory, raw []byte) (*AddonMetadata, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" || trimmed == "{}" {
		return nil, nil
	}

	m := &AddonMetadata{Category: category}
	var target any
	switch category {
	case AddonCategoryBaggage:
		m.Baggage = &BaggageMetadata{}
		target = m.Baggage
	case AddonCategoryMeal:
		m.Meal = &MealMetadata{}
		target = m.Meal
	case AddonCategorySeat:
		m.Seat = &SeatMetadata{}
		target = m.Seat
	case AddonCategoryService:
		m.Service = &ServiceMetadata{}
		target = m.Service
	default:
		return nil, fmt.Errorf("%w: unknown add-on category %q", ErrInvalidInput, category)
	}

	if err := json.Unmarshal(raw, target); err != nil {
		return nil, fmt.Errorf("decode %s metadata: %w", category, err)
	}
	return m, nil
}

// NewAddonOption builds an active add-on and validates it for storage.
func NewAddonOption(name string, category AddonCategory, priceCents int64, metadata *AddonMetadata) (AddonOption, error) {
	addon := AddonOption{
		Name:       strings.TrimSpace(name),
		Category:   category,
		PriceCents: priceCents,
		Active:     true,
		Metadata:   metadata,
	}
	if err := addon.Validate(); err != nil {
		return AddonOption{}, err
	}
	return addon, nil
}

func (a AddonOption) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("%w: add-on name is required", ErrInvalidInput)
	}
	if !a.Category.Valid() {
		return fmt.Errorf("%w: unknown add-on category %q", ErrInvalidInput, a.Category)
	}
	if a.PriceCents < 0 {
		return fmt.Errorf("%w: add-on price must not be negative", ErrInvalidInput)
	}
	if a.Metadata == nil {
		return nil
	}
	if a.Metadata.Category != a.Category {
		return fmt.Errorf("%w: metadata category %q does not match add-on category %q", ErrInvalidInput, a.Metadata.Category, a.Category)
	}
	return a.Metadata.Validate()
}
