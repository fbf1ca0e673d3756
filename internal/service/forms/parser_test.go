package forms

import (
	"encoding/json"
	"testing"

	"formzen/internal/domain"
	"formzen/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormContent_Fences(t *testing.T) {
	var want models.FormContent
	require.NoError(t, json.Unmarshal([]byte(contactJSON), &want))

	inputs := map[string]string{
		"bare":          contactJSON,
		"json fence":    "```json\n" + contactJSON + "\n```",
		"JSON fence":    "```JSON\n" + contactJSON + "\n```",
		"untagged":      "```\n" + contactJSON + "\n```",
		"padded":        "\n\n   ```json" + contactJSON + "```   \n",
		"leading space": "   " + contactJSON,
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			got, err := ParseFormContent(input)
			require.NoError(t, err)
			assert.Equal(t, want, *got)
		})
	}
}

func TestParseFormContent_NormalizesInputTypes(t *testing.T) {
	got, err := ParseFormContent(`{"formTitle":"T","formFields":[` +
		`{"label":"Resume","name":" resume ","placeholder":"","inputTypes":[" File ","TEXT"]}]}`)
	require.NoError(t, err)
	assert.Equal(t, "resume", got.FormFields[0].Name)
	assert.Equal(t, []string{"file", "text"}, got.FormFields[0].InputTypes)
}

func TestParseFormContent_RepeatedKeysKeepLast(t *testing.T) {
	got, err := ParseFormContent(`{"formTitle":1,"formTitle":"Signup & <More>","formFields":[` +
		`{"label":"Old","label":"Email","name":"email","placeholder":"","inputTypes":["email"],"inputTypes":["email","text"]}]}`)
	require.NoError(t, err)
	assert.Equal(t, "Signup & <More>", got.FormTitle)
	assert.Equal(t, "Email", got.FormFields[0].Label)
	assert.Equal(t, []string{"email", "text"}, got.FormFields[0].InputTypes)

	_, err = ParseFormContent(`{"formTitle":"T","formTitle":2,"formFields":[` +
		`{"label":"Email","name":"email","placeholder":"","inputTypes":["email"]}]}`)
	var shapeErr *domain.ShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, "formTitle", shapeErr.Path)
}

func TestParseFormContent_ParseErrors(t *testing.T) {
	inputs := map[string]string{
		"empty":   "",
		"fence":   "```json\n```",
		"prose":   "Sure! Here is your form.",
		"partial": `{"formTitle":"Contact","formFields":[`,
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			_, err := ParseFormContent(input)
			require.ErrorIs(t, err, domain.ErrParse)
			// the raw text never reaches the message
			if input != "" {
				assert.NotContains(t, err.Error(), input)
			}

			var pErr *domain.ParseError
			require.ErrorAs(t, err, &pErr)
			assert.Equal(t, input, pErr.Raw)
		})
	}
}

func TestParseFormContent_ShapeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		path  string
	}{
		{"array", `[{"formTitle":"x"}]`, ""},
		{"null", `null`, ""},
		{"string", `"form"`, ""},
		{"missing formFields", `{"formTitle":"Contact"}`, "formFields"},
		{"missing title", `{"formFields":[]}`, "formTitle"},
		{"numeric title", `{"formTitle":3,"formFields":[]}`, "formTitle"},
		{"fields object", `{"formTitle":"x","formFields":{}}`, "formFields"},
		{"empty fields", `{"formTitle":"x","formFields":[]}`, "formFields"},
		{"null field", `{"formTitle":"x","formFields":[null]}`, "formFields[0]"},
		{
			"missing inputTypes",
			`{"formTitle":"x","formFields":[{"label":"a","name":"a","placeholder":""}]}`,
			"formFields[0].inputTypes",
		},
		{
			"inputType singular",
			`{"formTitle":"x","formFields":[{"label":"a","name":"a","placeholder":"","inputType":"text"}]}`,
			"formFields[0].inputTypes",
		},
		{
			"non-string input type",
			`{"formTitle":"x","formFields":[{"label":"a","name":"a","placeholder":"","inputTypes":[1]}]}`,
			"formFields[0].inputTypes[0]",
		},
		{
			"missing placeholder",
			`{"formTitle":"x","formFields":[{"label":"a","name":"a","inputTypes":["text"]}]}`,
			"formFields[0].placeholder",
		},
		{
			"empty inputTypes",
			`{"formTitle":"x","formFields":[{"label":"a","name":"a","placeholder":"","inputTypes":[]}]}`,
			"formFields[0].inputTypes",
		},
		{
			"unknown input type",
			`{"formTitle":"x","formFields":[{"label":"a","name":"a","placeholder":"","inputTypes":["signature"]}]}`,
			"formFields[0].inputTypes",
		},
		{
			"duplicate names",
			`{"formTitle":"x","formFields":[` +
				`{"label":"a","name":"a","placeholder":"","inputTypes":["text"]},` +
				`{"label":"b","name":"a","placeholder":"","inputTypes":["text"]}]}`,
			"formFields[1].name",
		},
		{
			"blank name",
			`{"formTitle":"x","formFields":[{"label":"a","name":"  ","placeholder":"","inputTypes":["text"]}]}`,
			"formFields[0].name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFormContent(tt.input)
			require.ErrorIs(t, err, domain.ErrShape)

			var sErr *domain.ShapeError
			require.ErrorAs(t, err, &sErr)
			assert.Equal(t, tt.path, sErr.Path)
		})
	}
}
