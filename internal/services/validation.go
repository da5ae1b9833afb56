package services

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"hazard-admin/internal/catalog"
	"hazard-admin/internal/models"

	"github.com/go-playground/validator/v10"
)

// zoneFields is the shape validated for both drafts and stored records.
type zoneFields struct {
	Name     string         `json:"name" validate:"required"`
	Type     string         `json:"type" validate:"required,hazard_type"`
	Severity string         `json:"severity" validate:"required,severity"`
	Center   *models.LatLng `json:"center" validate:"required"`
	Radius   float64        `json:"radius" validate:"radius"`
}

// ZoneValidator checks drafts and records against the catalog and the minimum radius.
type ZoneValidator struct {
	validate  *validator.Validate
	catalog   *catalog.Catalog
	minRadius float64
}

func NewZoneValidator(cat *catalog.Catalog, minRadius float64) *ZoneValidator {
	v := &ZoneValidator{
		validate:  validator.New(),
		catalog:   cat,
		minRadius: minRadius,
	}

	v.validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	_ = v.validate.RegisterValidation("lat", func(fl validator.FieldLevel) bool {
		lat := fl.Field().Float()
		return lat >= -90 && lat <= 90
	})
	_ = v.validate.RegisterValidation("lng", func(fl validator.FieldLevel) bool {
		lng := fl.Field().Float()
		return lng >= -180 && lng <= 180
	})
	_ = v.validate.RegisterValidation("radius", func(fl validator.FieldLevel) bool {
		r := fl.Field().Float()
		return r >= v.minRadius && !math.IsInf(r, 0)
	})
	_ = v.validate.RegisterValidation("severity", func(fl validator.FieldLevel) bool {
		return v.catalog.HasSeverity(fl.Field().String())
	})
	_ = v.validate.RegisterValidation("hazard_type", func(fl validator.FieldLevel) bool {
		return v.catalog.HasType(fl.Field().String())
	})

	return v
}

// MinRadius is the smallest radius in meters a zone may have.
func (v *ZoneValidator) MinRadius() float64 {
	return v.minRadius
}

// Draft returns the problems with d, or nil when it can be saved.
func (v *ZoneValidator) Draft(d models.Draft) []string {
	var center *models.LatLng
	if d.Center != nil {
		center = placed(*d.Center)
	}
	return v.check(zoneFields{
		Name:     strings.TrimSpace(d.Name),
		Type:     d.Type,
		Severity: d.Severity,
		Center:   center,
		Radius:   d.Radius,
	})
}

// Record validates a complete zone, as found in an import document.
func (v *ZoneValidator) Record(z models.HazardZone) []string {
	problems := v.check(zoneFields{
		Name:     strings.TrimSpace(z.Name),
		Type:     z.Type,
		Severity: z.Severity,
		Center:   placed(z.Center),
		Radius:   z.Radius,
	})
	if strings.TrimSpace(z.ID) == "" {
		problems = append(problems, "id: is required")
	}
	if z.CreatedAt.IsZero() {
		problems = append(problems, "createdAt: is required")
	}
	return problems
}

// placed returns nil for a center missing a component so that "required"
// reports it.
func placed(c models.LatLng) *models.LatLng {
	if !c.Placed() {
		return nil
	}
	return &c
}

func (v *ZoneValidator) check(f zoneFields) []string {
	err := v.validate.Struct(f)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}

	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, fmt.Sprintf("%s: %s", fieldPath(fe), v.message(fe)))
	}
	return problems
}

// fieldPath drops the root struct name: "zoneFields.center.lat" -> "center.lat".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func (v *ZoneValidator) message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		if fe.Field() == "center" {
			return "place the zone on the map first"
		}
		return "is required"
	case "lat":
		return "must be a latitude between -90 and 90"
	case "lng":
		return "must be a longitude between -180 and 180"
	case "radius":
		return fmt.Sprintf("must be at least %g meters", v.minRadius)
	case "severity":
		return fmt.Sprintf("must be one of %s", strings.Join(v.catalog.SeverityNames(), ", "))
	case "hazard_type":
		return fmt.Sprintf("unknown hazard type %q", fe.Value())
	default:
		return fe.Error()
	}
}
