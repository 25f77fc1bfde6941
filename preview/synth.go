// Package preview synthesizes the static HTML document shown in the preview
// iframe in place of running generated code. The file contents are only
// scanned for keywords; nothing is parsed or executed.
package preview

import (
	"bytes"
	"embed"
	"html/template"
	"path"
	"regexp"
	"strings"

	"github.com/yaguaretech/builder/log"
	"github.com/yaguaretech/builder/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Fallback is the classification of a file set no rule matched
const Fallback = "fallback"

// keyword is one rule predicate. Word keywords run against the text split
// into identifier parts so "CarList" counts as "Car List".
type keyword struct {
	re    *regexp.Regexp
	words bool
}

// rule pairs keyword predicates with the fragment template it selects
type rule struct {
	name     string
	keywords []keyword
}

func (r rule) matches(raw, split string) bool {
	for _, kw := range r.keywords {
		text := raw
		if kw.words {
			text = split
		}
		if kw.re.MatchString(text) {
			return true
		}
	}
	return false
}

// substr matches a keyword anywhere, ignoring case
func substr(kw string) keyword {
	return keyword{re: regexp.MustCompile(`(?i)` + regexp.QuoteMeta(kw))}
}

// word matches a short keyword only as a whole identifier part (plural
// allowed), so "car" fires on "CarList" and "carRental" but not on "card"
func word(kw string) keyword {
	return keyword{re: regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(kw) + `s?\b`), words: true}
}

var (
	camelBoundary  = regexp.MustCompile(`(\p{Ll})(\p{Lu})`)
	letterBoundary = regexp.MustCompile(`(\pL)(\pN)`)
	digitBoundary  = regexp.MustCompile(`(\pN)(\pL)`)
)

// splitIdentifiers inserts a space at camelCase and letter/digit boundaries
func splitIdentifiers(text string) string {
	text = camelBoundary.ReplaceAllString(text, "$1 $2")
	text = letterBoundary.ReplaceAllString(text, "$1 $2")
	return digitBoundary.ReplaceAllString(text, "$1 $2")
}

// rules are evaluated top to bottom; the first match wins
var rules = []rule{
	{name: "students", keywords: []keyword{substr("student"), substr("alumno"), substr("estudiante")}},
	{name: "login", keywords: []keyword{substr("login"), substr("password"), substr("contraseña")}},
	{name: "products", keywords: []keyword{substr("product"), substr("catalog"), substr("producto"), substr("catálogo")}},
	{name: "cars", keywords: []keyword{word("car"), word("auto"), substr("vehicle"), substr("vehiculo"), substr("vehículo")}},
	{name: "dashboard", keywords: []keyword{substr("dashboard")}},
}

// mainFileMarkers identify the entry file of a generated project
var mainFileMarkers = []string{"App", "index"}

// MainFile picks the file a preview is built from: the first file whose
// path mentions an entry marker, else the first file. ok is false for an
// empty list.
func MainFile(files []models.FileChange) (models.FileChange, bool) {
	if len(files) == 0 {
		return models.FileChange{}, false
	}
	for _, f := range files {
		for _, marker := range mainFileMarkers {
			if strings.Contains(f.Path, marker) {
				return f, true
			}
		}
	}
	return files[0], true
}

// Classify returns the name of the first rule matching the main file's
// path and content, or Fallback
func Classify(files []models.FileChange) string {
	main, ok := MainFile(files)
	if !ok {
		return ""
	}
	text := main.Path + "\n" + main.Content
	split := splitIdentifiers(text)
	for _, r := range rules {
		if r.matches(text, split) {
			return r.name
		}
	}
	return Fallback
}

type fragmentData struct {
	Component string
	Path      string
}

type layoutData struct {
	Fragment template.HTML
}

// Synthesize returns the preview document for files, or "" when there is
// nothing to preview. The result depends only on the input.
func Synthesize(files []models.FileChange) string {
	main, ok := MainFile(files)
	if !ok {
		return ""
	}

	kind := Classify(files)

	var fragment bytes.Buffer
	data := fragmentData{Component: componentName(main.Path), Path: main.Path}
	if err := templates.ExecuteTemplate(&fragment, kind, data); err != nil {
		// Templates are embedded and parsed at init; this only fires on a broken build
		log.Error().Err(err).Str("template", kind).Msg("failed to render preview fragment")
		return ""
	}

	var doc bytes.Buffer
	// Fragment output comes from our own escaped templates
	if err := templates.ExecuteTemplate(&doc, "layout.html", layoutData{Fragment: template.HTML(fragment.String())}); err != nil {
		log.Error().Err(err).Msg("failed to render preview document")
		return ""
	}
	return doc.String()
}

// componentName derives a display name from a file path: the base name
// without its extension
func componentName(p string) string {
	base := path.Base(strings.ReplaceAll(p, "\\", "/"))
	if ext := path.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}
