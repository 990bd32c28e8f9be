package domain

import (
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"time"
)

const EventDateLayout = "2006-01-02"

type Status string

const (
	StatusNew       Status = "new"
	StatusContacted Status = "contacted"
	StatusConfirmed Status = "confirmed"
	StatusDeclined  Status = "declined"
)

// Request is what a shopper submits from the custom cake form.
type Request struct {
	Name                string `json:"name"`
	Email               string `json:"email"`
	Phone               string `json:"phone"`
	EventType           string `json:"eventType"`
	EventDate           string `json:"eventDate"`
	Servings            int    `json:"numberOfServings"`
	Flavor              string `json:"flavor"`
	DesignDescription   string `json:"designDescription"`
	SpecialRequirements string `json:"specialRequirements"`
	Budget              string `json:"budget"`
}

type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("invalid custom order: %s", strings.Join(names, ", "))
}

// Validate checks required fields. An event date earlier than today's
// calendar day is rejected.
func (r Request) Validate(today time.Time) error {
	fields := make(map[string]string)

	required := map[string]string{
		"name":              r.Name,
		"email":             r.Email,
		"phone":             r.Phone,
		"eventType":         r.EventType,
		"eventDate":         r.EventDate,
		"designDescription": r.DesignDescription,
	}
	for name, value := range required {
		if strings.TrimSpace(value) == "" {
			fields[name] = "is required"
		}
	}

	if _, ok := fields["email"]; !ok {
		if _, err := mail.ParseAddress(strings.TrimSpace(r.Email)); err != nil {
			fields["email"] = "is not a valid email address"
		}
	}

	if _, ok := fields["eventDate"]; !ok {
		date, err := time.Parse(EventDateLayout, strings.TrimSpace(r.EventDate))
		switch {
		case err != nil:
			fields["eventDate"] = "must be a date (YYYY-MM-DD)"
		case date.Before(truncateDay(today)):
			fields["eventDate"] = "must not be in the past"
		}
	}

	if r.Servings < 1 {
		fields["numberOfServings"] = "must be at least 1"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// CustomOrder is a stored custom cake request.
type CustomOrder struct {
	ID                  string    `json:"id" bson:"_id"`
	Name                string    `json:"name" bson:"name"`
	Email               string    `json:"email" bson:"email"`
	Phone               string    `json:"phone" bson:"phone"`
	EventType           string    `json:"eventType" bson:"event_type"`
	EventDate           time.Time `json:"eventDate" bson:"event_date"`
	Servings            int       `json:"numberOfServings" bson:"servings"`
	Flavor              string    `json:"flavor,omitempty" bson:"flavor,omitempty"`
	DesignDescription   string    `json:"designDescription" bson:"design_description"`
	SpecialRequirements string    `json:"specialRequirements,omitempty" bson:"special_requirements,omitempty"`
	Budget              string    `json:"budget,omitempty" bson:"budget,omitempty"`
	Status              Status    `json:"status" bson:"status"`
	CreatedAt           time.Time `json:"createdAt" bson:"created_at"`
}

// NewCustomOrder builds a stored order from a request that passed Validate.
func NewCustomOrder(id string, r Request, now time.Time) (*CustomOrder, error) {
	date, err := time.Parse(EventDateLayout, strings.TrimSpace(r.EventDate))
	if err != nil {
		return nil, fmt.Errorf("parse event date: %w", err)
	}

	return &CustomOrder{
		ID:                  id,
		Name:                strings.TrimSpace(r.Name),
		Email:               strings.TrimSpace(r.Email),
		Phone:               strings.TrimSpace(r.Phone),
		EventType:           strings.TrimSpace(r.EventType),
		EventDate:           date,
		Servings:            r.Servings,
		Flavor:              strings.TrimSpace(r.Flavor),
		DesignDescription:   strings.TrimSpace(r.DesignDescription),
		SpecialRequirements: strings.TrimSpace(r.SpecialRequirements),
		Budget:              strings.TrimSpace(r.Budget),
		Status:              StatusNew,
		CreatedAt:           now.UTC(),
	}, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
