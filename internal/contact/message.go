package contact

import (
	"fmt"
	"strings"
	"time"
)

// Message is a contact form submission. Email is optional. Received is set by
// the Notifier and is not part of the request body.
type Message struct {
	Name     string    `json:"name"`
	Phone    string    `json:"phone"`
	Email    string    `json:"email,omitempty"`
	Message  string    `json:"message"`
	Received time.Time `json:"-"`
}

// MissingFieldError reports a blank required field.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string { return e.Field + " is required" }

// Normalize trims every field and checks name, phone and message are set.
func (m Message) Normalize() (Message, error) {
	out := Message{
		Name:     strings.TrimSpace(m.Name),
		Phone:    strings.TrimSpace(m.Phone),
		Email:    strings.TrimSpace(m.Email),
		Message:  strings.TrimSpace(m.Message),
		Received: m.Received,
	}
	switch {
	case out.Name == "":
		return out, &MissingFieldError{Field: "name"}
	case out.Phone == "":
		return out, &MissingFieldError{Field: "phone"}
	case out.Message == "":
		return out, &MissingFieldError{Field: "message"}
	}
	return out, nil
}

// Subject is the subject line used for the operator notification.
func (m Message) Subject() string {
	return "New contact message from " + m.Name
}

// Body renders the plain-text notification.
func (m Message) Body() string {
	email := m.Email
	if email == "" {
		email = "not provided"
	}
	return fmt.Sprintf("A new message was submitted through the contact form:\n\nName: %s\nPhone: %s\nEmail: %s\n\nMessage:\n%s\n",
		m.Name, m.Phone, email, m.Message)
}
