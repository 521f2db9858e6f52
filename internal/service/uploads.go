// Copyright (c) 2025-2026 Vihara Santidharma
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"github.com/viharasite/vihara-go/internal/model"
	"github.com/viharasite/vihara-go/internal/store"
	"github.com/viharasite/vihara-go/internal/util"
)

// MaxUploadSize bounds the decoded upload payload (10 MB).
const MaxUploadSize = 10 << 20

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
}

// UploadResult describes a stored file.
type UploadResult struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}

// Uploads stores files as new objects in the content repository and
// hands back their public raw-content URL.
type Uploads struct {
	repo *store.Client
	dir  string
	now  func() time.Time
}

// NewUploads creates the uploads service. dir is the repository
// directory uploads are written under.
func NewUploads(repo *store.Client, dir string) *Uploads {
	return &Uploads{
		repo: repo,
		dir:  strings.Trim(dir, "/"),
		now:  time.Now,
	}
}

// Save validates and stores an upload. The stored name is the
// sanitized original filename prefixed with a timestamp for collision
// resistance. Image payloads must decode cleanly; their dimensions are
// reported back.
func (s *Uploads) Save(ctx context.Context, actor model.AuthUser, filename string, content []byte) (UploadResult, error) {
	fieldErrs := FieldErrors{}
	if strings.TrimSpace(filename) == "" {
		fieldErrs["filename"] = "Filename is required"
	}
	if len(content) == 0 {
		fieldErrs["content"] = "Content is required"
	}
	if len(content) > MaxUploadSize {
		fieldErrs["content"] = fmt.Sprintf("Content exceeds the %d byte limit", MaxUploadSize)
	}
	if len(fieldErrs) > 0 {
		return UploadResult{}, fieldErrs
	}

	ext := strings.ToLower(path.Ext(filename))
	result := UploadResult{}
	if imageExtensions[ext] {
		img, err := imaging.Decode(bytes.NewReader(content))
		if err != nil {
			return UploadResult{}, FieldErrors{"content": "Content is not a decodable image"}
		}
		bounds := img.Bounds()
		result.Width = bounds.Dx()
		result.Height = bounds.Dy()
	}

	stored := fmt.Sprintf("%d-%s", s.now().UnixMilli(), util.SafeFilename(filename))
	repoPath := s.dir + "/" + stored

	message := fmt.Sprintf("chore(uploads): add %s by %s", stored, actor.Email)
	if err := s.repo.WriteFile(ctx, repoPath, content, "", message); err != nil {
		return UploadResult{}, err
	}

	result.URL = s.repo.RawURL(repoPath)
	result.Filename = stored
	return result, nil
}
