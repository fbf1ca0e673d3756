package forms

import (
	"strings"

	"formzen/internal/config"
	"formzen/internal/domain"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// InputTypes is the closed vocabulary of field input types: the standard
// HTML input types that make sense in a generated form, plus "textarea".
var InputTypes = []string{
	"text", "email", "password", "number", "tel", "url",
	"date", "datetime-local", "time", "month", "week",
	"color", "range", "file", "checkbox", "radio", "search",
	"textarea",
}

// MinGeneratedFields is the field count the model is asked for
const MinGeneratedFields = 3

const promptInstructions = `Generate a JSON response for a form with the following structure. Ensure the keys and format remain constant in every response.

{
  "formTitle": "string",
  "formFields": [
    {
      "label": "string",
      "name": "string",
      "placeholder": "string",
      "inputTypes": ["string"]
    }
  ]
}

Requirements:
- Use only the given keys: "formTitle", "formFields", "label", "name", "placeholder", "inputTypes".
- Always include at least 3 fields in the "formFields" array.
- "name" must be a unique machine-friendly key within the form (e.g. "full_name").
- "inputTypes" must always be an array of one or more of these input types: ` + inputTypeList + `.
- If a field label clearly suggests multiple input options (e.g., "Upload passport or NID number"), include all relevant input types in the "inputTypes" array.
- Do not invent new input types.
- Match inputTypes logically with the label (e.g., "Email Address" -> ["email"], "Upload Resume" -> ["file"], "Upload passport or NID number" -> ["file","text"]).
- Never return multiple keys for the same purpose (e.g., don't mix "inputType" and "inputTypes"). Always use "inputTypes".
- Ensure the response is valid JSON without extra commentary or Markdown formatting.`

const inputTypeList = `"text", "email", "password", "number", "tel", "url", "date", "datetime-local", "time", "month", "week", "color", "range", "file", "checkbox", "radio", "search", "textarea"`

// BuildPrompt composes the generation prompt: the trimmed description
// followed by the fixed instruction block.
func BuildPrompt(description string) (string, error) {
	description = strings.TrimSpace(description)

	err := validation.Validate(description,
		validation.Required.Error("description is required"),
		validation.RuneLength(1, config.MaxDescriptionLength),
	)
	if err != nil {
		return "", &domain.ValidationError{
			Message: "Invalid form description",
			Fields:  map[string]string{"description": err.Error()},
		}
	}

	return description + "\n\n" + promptInstructions, nil
}
