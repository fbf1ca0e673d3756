package postgres

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTableNames(t *testing.T) {
	tests := []struct {
		prefix string
		want   TableNames
	}{
		{"dev_", TableNames{Users: "dev_users", Forms: "dev_forms", Submissions: "dev_submissions"}},
		{"", TableNames{Users: "users", Forms: "forms", Submissions: "submissions"}},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			assert.Equal(t, tt.want, *NewTableNames(tt.prefix))
		})
	}
}

func TestSchema_UsesPrefixedTables(t *testing.T) {
	stmts := Schema(NewTableNames("test_"))
	joined := strings.Join(stmts, "\n")

	assert.Contains(t, joined, "CREATE TABLE IF NOT EXISTS test_users")
	assert.Contains(t, joined, "CREATE TABLE IF NOT EXISTS test_forms")
	assert.Contains(t, joined, "REFERENCES test_users(id)")
	assert.Contains(t, joined, "REFERENCES test_forms(id)")
	assert.NotContains(t, joined, "dev_")
}
