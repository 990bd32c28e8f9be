package domain

import (
	"fmt"
	"sort"
	"strings"
)

// CheckoutForm is what the shopper types on the checkout page.
type CheckoutForm struct {
	Name                string `json:"name"`
	Email               string `json:"email"`
	Phone               string `json:"phone"`
	Address             string `json:"address"`
	SpecialInstructions string `json:"special_instructions"`
}

// ValidationError lists the offending form fields with a message per field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("invalid checkout form: %s", strings.Join(names, ", "))
}

func (f CheckoutForm) Validate() error {
	fields := map[string]string{}
	required := []struct{ name, value string }{
		{"name", f.Name},
		{"email", f.Email},
		{"phone", f.Phone},
		{"address", f.Address},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			fields[r.name] = "required"
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Trimmed returns the form with surrounding whitespace removed from every field.
func (f CheckoutForm) Trimmed() CheckoutForm {
	return CheckoutForm{
		Name:                strings.TrimSpace(f.Name),
		Email:               strings.TrimSpace(f.Email),
		Phone:               strings.TrimSpace(f.Phone),
		Address:             strings.TrimSpace(f.Address),
		SpecialInstructions: strings.TrimSpace(f.SpecialInstructions),
	}
}
