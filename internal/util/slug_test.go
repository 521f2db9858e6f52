// Copyright (c) 2025-2026 Vihara Santidharma
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "Hello World", "hello-world"},
		{"accents", "Café au Lait", "cafe-au-lait"},
		{"indonesian", "Perayaan Waisak 2569", "perayaan-waisak-2569"},
		{"cjk transliterated", "佛陀", "fo-tuo"},
		{"punctuation stripped", "a,b.c!d?e", "abcde"},
		{"collapsed hyphens", "a -- b", "a-b"},
		{"trimmed hyphens", "-abc-", "abc"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.input); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSafeFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "poster.png", "poster.png"},
		{"spaces and case", "My Photo.JPG", "my-photo.jpg"},
		{"accents", "Vesākha Pūjā.jpeg", "vesakha-puja.jpeg"},
		{"path traversal stripped", "../../etc/passwd", "passwd"},
		{"windows path stripped", `C:\uploads\img.png`, "img.png"},
		{"no extension", "README", "readme"},
		{"only symbols", "!!!.png", "file.png"},
		{"dotfile keeps name", ".gitignore", "gitignore"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SafeFilename(tt.input); got != tt.want {
				t.Errorf("SafeFilename(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
