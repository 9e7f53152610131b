package infra

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"sprockets/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderReportPDF(t *testing.T) {
	report := dto.LowStockReport{
		Title:     "Low Stock Report",
		Date:      time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		Threshold: 2,
		Parts: []dto.LowStockEntry{
			{ID: "p1", Name: "Gear", Stock: 2, Min: 1, Max: 10, Headroom: 1},
		},
	}

	out, err := RenderReportPDF(report.Table())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestRenderReportPDF_ManyRowsPaginates(t *testing.T) {
	rows := make([][]string, 200)
	for i := range rows {
		rows[i] = []string{strings.Repeat("x", 80), "short"}
	}
	out, err := RenderReportPDF(dto.Table{
		Title:    "Large",
		Date:     time.Now(),
		Sections: []dto.TableSection{{Columns: []string{"A", "B"}, Rows: rows}},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
