package csv

import (
	"os"
	"path/filepath"
	"testing"

	"biometric-insights/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSniffDelimiter(t *testing.T) {
	tests := []struct {
		header string
		want   rune
	}{
		{"id,day,score", ','},
		{"id;day;score", ';'},
		{"id\tday\tscore", '\t'},
		{`"a;b",c,d`, ','},
		{"single", ','},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SniffDelimiter(tt.header), tt.header)
	}
}

func TestParse_SemicolonWithBOM(t *testing.T) {
	data := []byte("\xEF\xBB\xBFid;day;score\n1;2024-01-01;80\n2;2024-01-02;\n3;2024-01-03\n")
	table, err := NewCSVReader(nil).Parse(models.SourceReadiness, "x.csv", data)
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "day", "score"}, table.Columns)
	require.Equal(t, 3, table.Len())

	v, ok := table.Value(0, "score")
	assert.True(t, ok)
	assert.Equal(t, "80", v)

	v, ok = table.Value(1, "score")
	assert.True(t, ok)
	assert.Empty(t, v)

	// short record padded to header width
	v, ok = table.Value(2, "score")
	assert.True(t, ok)
	assert.Empty(t, v)

	_, ok = table.Value(0, "missing")
	assert.False(t, ok)
}

func TestParse_QuotedFields(t *testing.T) {
	data := []byte("day,contributors,score\n2024-01-01,\"{\"\"a\"\": 1}\",70\n")
	table, err := NewCSVReader(nil).Parse(models.SourceSleep, "x.csv", data)
	require.NoError(t, err)

	v, _ := table.Value(0, "contributors")
	assert.Equal(t, `{"a": 1}`, v)
	v, _ = table.Value(0, "score")
	assert.Equal(t, "70", v)
}

func TestParse_HeaderOnlyAndEmpty(t *testing.T) {
	r := NewCSVReader(nil)

	table, err := r.Parse(models.SourceSpO2, "x.csv", []byte("day,spo2_percentage\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())
	assert.True(t, table.HasColumn("spo2_percentage"))

	_, err = r.Parse(models.SourceSpO2, "x.csv", nil)
	assert.Error(t, err)
}

func TestReadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oura_daily-spo2_2024-01-01T00-00-00.csv")
	require.NoError(t, os.WriteFile(path, []byte("day\tspo2_percentage\n2024-01-01\t97.5\n"), 0o644))

	table, err := NewCSVReader(nil).ReadTable(models.SourceSpO2, path)
	require.NoError(t, err)
	assert.Equal(t, path, table.Path)
	v, _ := table.Value(0, "spo2_percentage")
	assert.Equal(t, "97.5", v)

	_, err = NewCSVReader(nil).ReadTable(models.SourceSpO2, filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}
