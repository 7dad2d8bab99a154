package ingestion

import (
	"strings"
)

// columnSpec declares one canonical column and the export headers that map to
// it. Alias matching is case-insensitive and ignores surrounding whitespace.
type columnSpec struct {
	canonical string
	aliases   []string
	required  bool
}

// Alias tables per source. English and Spanish export headers both appear in
// the wild; extend here rather than special-casing call sites.
var (
	crawlColumns = []columnSpec{
		{canonical: "url", aliases: []string{"address", "url", "dirección", "direccion"}, required: true},
		{canonical: "status", aliases: []string{"status code", "código de respuesta", "codigo de respuesta", "status", "response code"}, required: true},
		{canonical: "indexability", aliases: []string{"indexability", "indexabilidad"}},
	}

	trafficColumns = []columnSpec{
		{canonical: "url", aliases: []string{"url", "page", "página", "pagina", "landing page", "address"}, required: true},
		{canonical: "sessions", aliases: []string{"traffic", "sessions", "sesiones", "clicks", "organic traffic", "traffic_seo", "entrances"}, required: true},
	}

	adobeColumns = []columnSpec{
		{canonical: "label", aliases: []string{"filtros internos", "internal filters", "filtros", "filter", "item"}, required: true},
		{canonical: "value", aliases: []string{"instancias", "instances", "occurrences", "visits", "visitas"}, required: true},
	}

	semrushColumns = []columnSpec{
		{canonical: "keyword", aliases: []string{"keyword", "palabra clave"}, required: true},
		{canonical: "volume", aliases: []string{"volume", "volumen", "search volume", "volumen de búsqueda", "volumen de busqueda"}, required: true},
	}
)

// wrapperColumnPrefix identifies the crawl export's custom-extraction columns
// holding the hrefs found inside the page's seoFilterWrapper container
// ("seoFilterWrapper_hrefs 1" .. "seoFilterWrapper_hrefs 83").
const wrapperColumnPrefix = "seofilterwrapper"

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// resolveColumns maps canonical column names to header indexes. The first
// header matching any alias wins. A missing required column rejects the file
// with a SchemaError naming everything that was tried.
func resolveColumns(file string, header []string, specs []columnSpec) (map[string]int, error) {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = normalizeHeader(h)
	}

	resolved := make(map[string]int, len(specs))
	for _, spec := range specs {
		found := false
		for _, alias := range spec.aliases {
			for i, h := range normalized {
				if h == alias {
					resolved[spec.canonical] = i
					found = true
					break
				}
			}
			if found {
				break
			}
		}
		if !found && spec.required {
			return nil, &SchemaError{File: file, Column: spec.canonical, Aliases: spec.aliases}
		}
	}
	return resolved, nil
}

// wrapperColumns returns the indexes of all seoFilterWrapper href columns.
func wrapperColumns(header []string) []int {
	var cols []int
	for i, h := range header {
		if strings.HasPrefix(normalizeHeader(h), wrapperColumnPrefix) {
			cols = append(cols, i)
		}
	}
	return cols
}
