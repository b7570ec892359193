package validator

import (
	"sync"

	v10 "github.com/go-playground/validator/v10"
)

// Singleton validator dari go-playground
var (
	once sync.Once
	v    *v10.Validate
)

// New mengembalikan instance validator yang sama (thread-safe).
func New() *v10.Validate {
	once.Do(func() {
		v = v10.New()
	})
	return v
}

// ValidateStruct memvalidasi struct dan merapikan error menjadi map[field]message.
func ValidateStruct(s any) (map[string]string, error) {
	err := New().Struct(s)
	if err == nil {
		return nil, nil
	}
	ve, ok := err.(v10.ValidationErrors)
	if !ok {
		// bukan error validasi terstruktur
		return map[string]string{"_": err.Error()}, err
	}
	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[fe.Namespace()] = msgForTag(fe)
	}
	return fields, err
}

// msgForTag bikin pesan ringkas per rule
func msgForTag(fe v10.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "email":
		return "must be a valid email"
	case "url":
		return "must be a valid URL"
	case "numeric":
		return "must be numeric"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	default:
		return fe.Error()
	}
}
