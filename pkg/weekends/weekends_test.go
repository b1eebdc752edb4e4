package weekends

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	data := []byte(`{
		"year": 2026,
		"months": [
			{"month": 11, "days": "20,2+, 15"},
			{"month": 10, "days": "12,30*"}
		]
	}`)

	holidays, err := Parse(data)
	require.NoError(t, err)

	var keys []string
	for _, h := range holidays {
		keys = append(keys, h.Date.Format("2006-01-02"))
	}
	assert.Equal(t, []string{"2026-10-12", "2026-11-02", "2026-11-15", "2026-11-20"}, keys)
	assert.Equal(t, 2026, holidays[0].Year)
	assert.Equal(t, 10, holidays[0].Month)
	assert.Equal(t, 12, holidays[0].Day)
}

func TestParseRejectsInvalidInput(t *testing.T) {
	cases := map[string]string{
		"bad json":    `{`,
		"no year":     `{"months": [{"month": 1, "days": "1"}]}`,
		"bad month":   `{"year": 2026, "months": [{"month": 13, "days": "1"}]}`,
		"bad day":     `{"year": 2026, "months": [{"month": 1, "days": "x"}]}`,
		"no such day": `{"year": 2026, "months": [{"month": 2, "days": "30"}]}`,
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(input))
			assert.Error(t, err)
		})
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calendar.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"year": 2026, "months": [{"month": 1, "days": "1"}]}`), 0o600))

	holidays, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, holidays, 1)

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
