package ingestion

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTraffic_Basic(t *testing.T) {
	path := writeTempCSV(t, "traffic.csv",
		"URL,Sessions\n"+
			"https://a.com/x,1500\n"+
			"https://a.com/y,0\n")

	records, err := LoadTraffic(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "https://a.com/x", records[0].URL)
	assert.Equal(t, 1500.0, records[0].Sessions)
}

func TestLoadTraffic_MissingSessionsColumn(t *testing.T) {
	path := writeTempCSV(t, "traffic.csv", "URL,Bounce Rate\nhttps://a.com,0.4\n")

	_, err := LoadTraffic(path)
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "sessions", schemaErr.Column)
}

func TestLoadAdobe_SkipsPreamble(t *testing.T) {
	var b strings.Builder
	// Workspace exports lead with a metadata block before the header.
	for i := 0; i < 13; i++ {
		b.WriteString("# report metadata\n")
	}
	b.WriteString("Filtros internos,Instancias\n")
	b.WriteString("16 gb ram,40328\n")
	b.WriteString("apple,25600\n")

	path := writeTempCSV(t, "adobe.csv", b.String())

	records, err := LoadAdobe(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "16 gb ram", records[0].Label)
	assert.Equal(t, 40328.0, records[0].Value)
}

func TestLoadAdobe_HeaderOnFirstRow(t *testing.T) {
	path := writeTempCSV(t, "adobe.csv", "Filter,Instances\ndual sim,900\n")

	records, err := LoadAdobe(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "dual sim", records[0].Label)
}

func TestLoadSemrush_Basic(t *testing.T) {
	path := writeTempCSV(t, "semrush.csv",
		"Keyword,Volume\n"+
			"movil 16 gb ram,5000\n"+
			"movil nfc,800\n")

	records, err := LoadSemrush(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "movil 16 gb ram", records[0].Label)
	assert.Equal(t, 5000.0, records[0].Value)
}

func TestLoadSemrush_SpanishHeaders(t *testing.T) {
	path := writeTempCSV(t, "semrush.csv",
		"Palabra clave;Volumen\n"+
			"movil 5g;12000\n")

	records, err := LoadSemrush(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 12000.0, records[0].Value)
}

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"40328", 40328},
		{"1,234.56", 1234.56},
		{"1.234,56", 1234.56},
		{"1.234", 1234},
		{"12,5", 12.5},
		{"1.234.567", 1234567},
		{"0.5", 0.5},
		{"", 0},
		{"n/a", 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, parseNumber(tc.in), "parseNumber(%q)", tc.in)
	}
}
