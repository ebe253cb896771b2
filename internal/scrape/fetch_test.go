package scrape

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func doc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return d
}

func TestParseTableRows(t *testing.T) {
	d := doc(t, `<html><body><table>
		<tr><th>Општина</th><th>Време</th><th>Улице</th></tr>
		<tr><td> Палилула </td><td>08:00</td><td>САВЕ МРКАЉА 12, остале улице</td></tr>
		<tr><td>Звездара</td><td>09:00</td><td>Мирна 1-3</td></tr>
	</table></body></html>`)

	rows := parseTableRows(d)
	require.Equal(t, [][]string{
		{"Палилула", "08:00", "САВЕ МРКАЉА 12, остале улице"},
		{"Звездара", "09:00", "Мирна 1-3"},
	}, rows)
}

func TestParseBlocks(t *testing.T) {
	d := doc(t, `<html><body>
		<div class="toggle_content">Радови у Палилули, у улици Саве Мркаља.</div>
		<div class="toggle_content invers-color ">Радови на Звездари.</div>
		<div class="other">ignored</div>
	</body></html>`)

	blocks := parseBlocks(d)
	require.Len(t, blocks, 2)
	require.Contains(t, blocks[0], "Палилули")
	require.Contains(t, blocks[1], "Звездари")
}

func TestParseListItems(t *testing.T) {
	d := doc(t, `<html><body>
		<div class="toggle_content invers-color " itemprop="text">
			<ul><li>Палилула, САВЕ МРКАЉА</li><li>Звездара, Мирна</li></ul>
		</div>
		<div class="toggle_content"><ul><li>no itemprop, ignored</li></ul></div>
	</body></html>`)

	items := parseListItems(d)
	require.Len(t, items, 2)
	require.Contains(t, items[0], "САВЕ МРКАЉА")
}

func TestMissingStructureYieldsEmpty(t *testing.T) {
	d := doc(t, `<html><body><p>nothing here</p></body></html>`)
	require.Empty(t, parseTableRows(d))
	require.Empty(t, parseBlocks(d))
	require.Empty(t, parseListItems(d))
}
