package forms

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"formzen/internal/domain"
	"formzen/internal/domain/models"

	"github.com/tidwall/gjson"
)

var fencePattern = regexp.MustCompile("```(?:json|JSON)?")

// StripFences removes markdown code fences and surrounding whitespace
func StripFences(raw string) string {
	return strings.TrimSpace(fencePattern.ReplaceAllString(raw, ""))
}

// ParseFormContent turns untrusted model output into validated form content.
// Non-JSON text yields *domain.ParseError; JSON of the wrong structure, or
// content breaking the form invariants, yields *domain.ShapeError.
func ParseFormContent(raw string) (*models.FormContent, error) {
	text := StripFences(raw)
	if text == "" || !gjson.Valid(text) {
		return nil, &domain.ParseError{Raw: raw, Err: errors.New("invalid JSON")}
	}

	text, err := lastKeyWins(text)
	if err != nil {
		return nil, &domain.ParseError{Raw: raw, Err: err}
	}

	doc := gjson.Parse(text)
	if !doc.IsObject() {
		return nil, &domain.ShapeError{Reason: "top-level value must be an object"}
	}

	title := doc.Get("formTitle")
	if title.Type != gjson.String {
		return nil, &domain.ShapeError{Path: "formTitle", Reason: "must be a string"}
	}

	fields := doc.Get("formFields")
	if !fields.IsArray() {
		return nil, &domain.ShapeError{Path: "formFields", Reason: "must be an array"}
	}

	content := &models.FormContent{
		FormTitle:  title.String(),
		FormFields: []models.Field{},
	}

	for i, el := range fields.Array() {
		field, err := parseField(i, el)
		if err != nil {
			return nil, err
		}
		content.FormFields = append(content.FormFields, field)
	}

	if err := ValidateContent(content); err != nil {
		return nil, err
	}

	return content, nil
}

// lastKeyWins re-encodes a document so a key repeated within one object keeps
// its final value. gjson alone resolves to the first.
func lastKeyWins(text string) (string, error) {
	var doc any
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return "", err
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func parseField(i int, el gjson.Result) (models.Field, error) {
	path := fmt.Sprintf("formFields[%d]", i)
	if !el.IsObject() {
		return models.Field{}, &domain.ShapeError{Path: path, Reason: "must be an object"}
	}

	strs := make(map[string]string, 3)
	for _, key := range []string{"label", "name", "placeholder"} {
		v := el.Get(key)
		if v.Type != gjson.String {
			return models.Field{}, &domain.ShapeError{Path: path + "." + key, Reason: "must be a string"}
		}
		strs[key] = v.String()
	}

	types := el.Get("inputTypes")
	if !types.IsArray() {
		return models.Field{}, &domain.ShapeError{Path: path + ".inputTypes", Reason: "must be an array"}
	}

	inputTypes := []string{}
	for j, t := range types.Array() {
		if t.Type != gjson.String {
			return models.Field{}, &domain.ShapeError{
				Path:   fmt.Sprintf("%s.inputTypes[%d]", path, j),
				Reason: "must be a string",
			}
		}
		inputTypes = append(inputTypes, strings.ToLower(strings.TrimSpace(t.String())))
	}

	return models.Field{
		Label:       strs["label"],
		Name:        strings.TrimSpace(strs["name"]),
		Placeholder: strs["placeholder"],
		InputTypes:  inputTypes,
	}, nil
}

// ValidateContent checks the invariants every stored form satisfies: at
// least one field, unique non-empty names, and a non-empty input type list
// drawn from InputTypes.
func ValidateContent(content *models.FormContent) error {
	if len(content.FormFields) == 0 {
		return &domain.ShapeError{Path: "formFields", Reason: "must contain at least one field"}
	}

	seen := make(map[string]struct{}, len(content.FormFields))
	for i, f := range content.FormFields {
		path := fmt.Sprintf("formFields[%d]", i)

		if strings.TrimSpace(f.Name) == "" {
			return &domain.ShapeError{Path: path + ".name", Reason: "must not be empty"}
		}
		if _, dup := seen[f.Name]; dup {
			return &domain.ShapeError{Path: path + ".name", Reason: fmt.Sprintf("duplicate field name %q", f.Name)}
		}
		seen[f.Name] = struct{}{}

		if len(f.InputTypes) == 0 {
			return &domain.ShapeError{Path: path + ".inputTypes", Reason: "must contain at least one input type"}
		}
		for _, t := range f.InputTypes {
			if !slices.Contains(InputTypes, t) {
				return &domain.ShapeError{Path: path + ".inputTypes", Reason: fmt.Sprintf("unsupported input type %q", t)}
			}
		}
	}

	return nil
}
