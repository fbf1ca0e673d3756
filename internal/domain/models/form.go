package models

import (
	"time"
)

// Field is one input definition within a generated form.
type Field struct {
	Label       string   `json:"label"`
	Name        string   `json:"name"`
	Placeholder string   `json:"placeholder"`
	InputTypes  []string `json:"inputTypes"`
}

// HasInputType reports whether the field accepts the given input type.
func (f Field) HasInputType(t string) bool {
	for _, it := range f.InputTypes {
		if it == t {
			return true
		}
	}
	return false
}

// FormContent is the validated structure produced by generation. The JSON
// keys match the generation contract and are persisted as-is (JSONB).
type FormContent struct {
	FormTitle  string  `json:"formTitle"`
	FormFields []Field `json:"formFields"`
}

// FieldByName returns the field with the given machine key.
func (c FormContent) FieldByName(name string) (Field, bool) {
	for _, f := range c.FormFields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

type Form struct {
	ID          int64       `json:"id" db:"id"`
	OwnerID     string      `json:"owner_id" db:"owner_id"`
	Content     FormContent `json:"content" db:"content"`
	Published   bool        `json:"published" db:"published"`
	Submissions int         `json:"submissions" db:"submissions"`
	ShareToken  *string     `json:"share_token,omitempty" db:"share_token"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
}

// Title returns the generated form title.
func (f *Form) Title() string {
	return f.Content.FormTitle
}

// Status returns "published" or "draft".
func (f *Form) Status() string {
	if f.Published {
		return "published"
	}
	return "draft"
}

// OwnedBy reports whether userID owns the form.
func (f *Form) OwnedBy(userID string) bool {
	return userID != "" && f.OwnerID == userID
}

// PublicForm is the view of a form served to anonymous respondents.
type PublicForm struct {
	ID      int64       `json:"id"`
	Content FormContent `json:"content"`
}

// Public strips owner-only data.
func (f *Form) Public() *PublicForm {
	return &PublicForm{ID: f.ID, Content: f.Content}
}
