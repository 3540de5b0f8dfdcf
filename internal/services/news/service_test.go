package news

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resultsFixture = `<html><body>
<div id="search">
	<div class="SoaBEf">
		<div role="heading">Ecopetrol reporta resultados récord en el trimestre</div>
		<span class="NUnG9d">El Tiempo</span>
		<div class="OSrXXb">hace 2 días</div>
	</div>
	<div class="SoaBEf">
		<div role="heading">Bancolombia anuncia nueva emisión de bonos</div>
		<span class="NUnG9d">La República</span>
	</div>
	<div class="MjjYud">
		<h3>Mercados emergentes atraen capital extranjero</h3>
		<div class="GI74Re">Los fondos de inversión aumentaron su exposición a la región.</div>
	</div>
	<div class="MjjYud">
		<div class="sin-titulo">bloque sin encabezado</div>
	</div>
</div>
</body></html>`

func TestParseResults(t *testing.T) {
	items := parseResults(resultsFixture, 5)

	require.Len(t, items, 3)
	assert.Equal(t, "Ecopetrol reporta resultados récord en el trimestre", items[0].Title)
	assert.Equal(t, "El Tiempo", items[0].Source)
	assert.Equal(t, "Bancolombia anuncia nueva emisión de bonos", items[1].Title)
	assert.Equal(t, "Mercados emergentes atraen capital extranjero", items[2].Title)
	assert.Equal(t, "Los fondos de inversión aumentaron su exposición a la región.", items[2].Snippet)
}

func TestParseResultsRespectsMax(t *testing.T) {
	items := parseResults(resultsFixture, 2)
	assert.Len(t, items, 2)
}

func TestParseResultsEmptyPage(t *testing.T) {
	items := parseResults("<html><body><div id='search'></div></body></html>", 5)
	assert.Empty(t, items)
}

func TestParseResultsInvalidHTML(t *testing.T) {
	// goquery tolerates malformed markup, so this parses to no cards
	items := parseResults("<<<not html", 5)
	assert.Empty(t, items)
}

func TestFormatResults(t *testing.T) {
	out := formatResults([]newsItem{
		{Title: "Titular uno", Source: "Fuente", Age: "hace 1 día", Snippet: "Resumen breve."},
		{Title: "Titular dos"},
	})

	assert.Contains(t, out, "- Titular uno (Fuente, hace 1 día): Resumen breve.")
	assert.Contains(t, out, "- Titular dos")
	assert.NotContains(t, out, "()")
}
