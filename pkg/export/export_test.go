package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Title:   "Colleges",
		Headers: []string{"Name", "Location"},
		Rows: []map[string]string{
			{"Name": "Acme Tech", "Location": "NY"},
			{"Name": "Beta, Coll", "Location": "LA"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, "Name,Location\nAcme Tech,NY\n\"Beta, Coll\",LA\n", string(out))
}

func TestCSVExporterEscapesFormulaCells(t *testing.T) {
	data := Dataset{
		Headers: []string{"College", "Fee"},
		Rows: []map[string]string{
			{"College": "=HYPERLINK(\"http://x\")", "Fee": "-10.50"},
			{"College": "@Acme", "Fee": "+5"},
			{"College": "Beta"},
		},
	}
	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)
	assert.Equal(t, "College,Fee\n\"'=HYPERLINK(\"\"http://x\"\")\",-10.50\n'@Acme,+5\nBeta,\n", string(out))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestFormatFromPath(t *testing.T) {
	f, err := FormatFromPath("out/Colleges.CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = FormatFromPath("listing.pdf")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)

	_, err = FormatFromPath("listing.xlsx")
	require.Error(t, err)

	_, err = RendererFor(Format("xml"))
	require.Error(t, err)
}
