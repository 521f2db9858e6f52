// Copyright (c) 2025-2026 Vihara Santidharma
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides general-purpose helpers: URL slug generation
// and upload filename sanitization with Unicode normalization.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// slugRegex matches non-alphanumeric characters (except hyphens)
	slugRegex = regexp.MustCompile(`[^a-z0-9-]+`)
	// multipleHyphens matches multiple consecutive hyphens
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// Slugify converts a string to a URL-friendly slug. Non-Latin input is
// transliterated to ASCII first, then accents are stripped, spaces
// become hyphens and everything outside [a-z0-9-] is dropped.
func Slugify(s string) string {
	s = unidecode.Unidecode(s)

	// Strip any remaining combining marks
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)

	result = strings.ToLower(result)
	result = strings.ReplaceAll(result, " ", "-")
	result = slugRegex.ReplaceAllString(result, "")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")

	return result
}

// SafeFilename sanitizes an upload filename: the base name is slugged,
// the extension is kept lower-case, and path separators can never
// survive. Returns "file" with the original extension when nothing of
// the base name remains.
func SafeFilename(name string) string {
	// Drop any directory components, whichever separator the client used
	if i := strings.LastIndexAny(name, "/\\"); i >= 0 {
		name = name[i+1:]
	}

	ext := ""
	base := name
	if i := strings.LastIndex(name, "."); i > 0 {
		base = name[:i]
		ext = strings.ToLower(name[i:])
	}

	base = Slugify(base)
	if base == "" {
		base = "file"
	}

	ext = slugExt(ext)
	return base + ext
}

// slugExt keeps only [a-z0-9] in an extension, including the dot.
func slugExt(ext string) string {
	if ext == "" {
		return ""
	}
	cleaned := slugRegex.ReplaceAllString(strings.ToLower(ext[1:]), "")
	if cleaned == "" {
		return ""
	}
	return "." + cleaned
}
