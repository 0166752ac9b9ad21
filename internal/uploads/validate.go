package uploads

import (
	"path/filepath"
	"strings"
)

// Structured-data allow-lists. Either signal passing is sufficient:
// content-type headers from clients are unreliable, so the filename
// extension acts as a parallel accept path.
var allowedContentTypes = map[string]struct{}{
	"text/csv":         {},
	"application/json": {},
	"text/plain":       {},
	"application/vnd.ms-excel": {},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": {},
	"application/xml": {},
	"text/xml":        {},
}

var allowedExtensions = map[string]struct{}{
	".csv":  {},
	".json": {},
	".txt":  {},
	".xlsx": {},
	".xls":  {},
	".xml":  {},
}

// TypeAllowed reports whether the declared content type or the
// filename extension is on an allow-list.
func TypeAllowed(contentType, filename string) bool {
	if _, ok := allowedContentTypes[contentType]; ok {
		return true
	}
	ext := strings.ToLower(filepath.Ext(filename))
	_, ok := allowedExtensions[ext]
	return ok
}
