package validation

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// PlainText quita etiquetas HTML y devuelve el texto tal como lo ve el usuario:
// bluemonday escapa entidades (& -> &amp;), así que se revierten antes de
// guardar y de medir longitudes. El escape corresponde a quien renderiza.
func PlainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}
