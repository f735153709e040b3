package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"campus-food-api/apperr"
	"campus-food-api/models"

	"github.com/go-playground/validator/v10"
)

// Validate checks request structs against their `validate` tags
var Validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// check validates s and reports the first offending field as a validation error
func check(s any) error {
	err := Validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperr.Validation("%s: %s", fieldPath(fe), describe(fe))
	}
	return apperr.Validation("%v", err)
}

// fieldPath drops the root struct name from the namespace
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	case "datetime":
		return "must be a time in HH:MM form"
	case "alphanum":
		return "must contain only letters and digits"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// Principal is the authenticated caller of an operation
type Principal struct {
	ID   string
	Role models.UserRole
}

func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

// CanManage reports whether p may modify restaurant r
func (p Principal) CanManage(r *models.Restaurant) bool {
	return p.IsAdmin() || (p.ID != "" && r.OwnerID == p.ID)
}
