package filetree

import (
	"path"
	"strings"
)

var languages = map[string]string{
	"js":   "javascript",
	"jsx":  "javascript",
	"ts":   "typescript",
	"tsx":  "typescript",
	"json": "json",
	"html": "html",
	"css":  "css",
	"scss": "scss",
	"md":   "markdown",
	"yaml": "yaml",
	"yml":  "yaml",
	"py":   "python",
}

// LanguageFor returns the code viewer language for a file name
func LanguageFor(filename string) string {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(filename)), ".")
	if lang, ok := languages[ext]; ok {
		return lang
	}
	return "plaintext"
}
