package htmlutil

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func TestCellText(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`
		<table><tr>
			<td>  Anaa
				Airport </td>
			<td><b>Nested</b> text</td>
		</tr></table>
	`))
	require.NoError(t, err)

	cells := doc.Find("td")
	require.Equal(t, 2, cells.Length())
	require.Equal(t, "Anaa Airport", CellText(cells.Eq(0)))
	require.Equal(t, "Nested text", CellText(cells.Eq(1)))
}

func TestCleanText(t *testing.T) {
	require.Equal(t, "a b c", CleanText(" a\n\tb   c "))
	require.Equal(t, "", CleanText(" \n\t "))
	require.Equal(t, "x", CleanText("x\x00 "))
}
