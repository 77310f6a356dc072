package session

import (
	"path/filepath"
	"strings"
	"time"
)

// ContentType is the media type of every exported file.
const ContentType = "application/pdf"

const timestampLayout = "20060102_150405"

// EditedFilename names an exported edited document:
// edited_<stem>_<YYYYMMDD_HHMMSS>.pdf.
func EditedFilename(name string, t time.Time) string {
	base := filepath.Base(name)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" || stem == "." || stem == string(filepath.Separator) {
		stem = "document"
	}
	return "edited_" + stem + "_" + t.Format(timestampLayout) + ".pdf"
}

// OriginalFilename names an exported copy of the uploaded document.
func OriginalFilename(name string) string {
	base := filepath.Base(name)
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "document.pdf"
	}
	return "original_" + base
}
