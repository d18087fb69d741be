// relocator.go
//
// DD Property listing API
// Copyright (c) 2026 DD Property Co., Ltd.
//
// This file is part of ddproperty-api.
// ddproperty-api is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// ddproperty-api is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with ddproperty-api.
// If not, see <https://www.gnu.org/licenses/>.

// Package media places uploaded property media on disk. Uploads land in a
// shared staging directory; once the owning property exists the files are
// moved under a directory scoped to its id and the stored URLs rewritten.
package media

import (
	"context"
	"errors"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/ddproperty/ddproperty-api/internal/metrics"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StagingDir is the upload staging directory, relative to the upload root
// and to the media URL prefix.
const StagingDir = "properties/temp"

const stagingMarker = "/" + StagingDir + "/"

// Kind selects the per-property subdirectory for a media collection.
type Kind string

const (
	KindImages     Kind = "images"
	KindFloorPlans Kind = "floor-plans"
	KindUnitPlans  Kind = "unit-plans"
)

func (k Kind) subdir() string {
	if k == KindImages {
		return ""
	}
	return string(k)
}

// Asset is a stored media row whose file may need relocating.
type Asset interface {
	AssetURL() string
	SetAssetURL(url string)
}

// Relocator moves staged files into per-property directories.
type Relocator struct {
	root   string
	prefix string
	logger *zap.Logger
}

// NewRelocator serves files under root at URL prefix (e.g. "/images").
func NewRelocator(root, prefix string, logger *zap.Logger) *Relocator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Relocator{
		root:   root,
		prefix: "/" + strings.Trim(prefix, "/"),
		logger: logger,
	}
}

// Root is the upload root directory.
func (r *Relocator) Root() string { return r.root }

// Prefix is the URL prefix files are served under.
func (r *Relocator) Prefix() string { return r.prefix }

// StagingURL is the URL a freshly staged file is served at.
func (r *Relocator) StagingURL(name string) string {
	return path.Join(r.prefix, StagingDir, name)
}

// PropertyDir is the directory holding a property's media.
func (r *Relocator) PropertyDir(propertyID uint) string {
	return filepath.Join(r.root, "properties", strconv.FormatUint(uint64(propertyID), 10))
}

// IsStaged reports whether url points into the staging directory.
func IsStaged(url string) bool {
	return strings.Contains(url, stagingMarker)
}

// Relocate moves every staged asset into the property directory for kind and
// rewrites its URL in place. Assets that are not staged are left alone and a
// missing source file is skipped. Individual failures are logged and counted;
// the call never fails. The assets whose URL changed are returned.
func (r *Relocator) Relocate(propertyID uint, kind Kind, assets []Asset) []Asset {
	var moved []Asset
	if len(assets) == 0 {
		return nil
	}

	destDir := r.PropertyDir(propertyID)
	urlDir := path.Join("properties", strconv.FormatUint(uint64(propertyID), 10))
	if sub := kind.subdir(); sub != "" {
		destDir = filepath.Join(destDir, sub)
		urlDir = path.Join(urlDir, sub)
	}

	dirReady := false
	for _, asset := range assets {
		url := asset.AssetURL()
		if !IsStaged(url) {
			continue
		}
		idx := strings.Index(url, stagingMarker)
		name := path.Base(url[idx+len(stagingMarker):])
		if name == "." || name == "/" || name == "" {
			continue
		}

		src := filepath.Join(r.root, filepath.FromSlash(StagingDir), name)
		dst := filepath.Join(destDir, name)
		newURL := url[:idx] + "/" + path.Join(urlDir, name)

		if _, err := os.Stat(src); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				r.fail(propertyID, kind, url, err)
				continue
			}
			// Already placed by an earlier run whose URL update was lost.
			if _, err := os.Stat(dst); err == nil {
				asset.SetAssetURL(newURL)
				moved = append(moved, asset)
				metrics.MediaRelocations.WithLabelValues(string(kind), "reconciled").Inc()
				continue
			}
			r.logger.Debug("staged media missing, skipping",
				zap.Uint("property_id", propertyID), zap.String("kind", string(kind)), zap.String("url", url))
			metrics.MediaRelocations.WithLabelValues(string(kind), "missing").Inc()
			continue
		}

		if !dirReady {
			if err := os.MkdirAll(destDir, 0o755); err != nil {
				r.fail(propertyID, kind, url, err)
				continue
			}
			dirReady = true
		}

		if err := moveFile(src, dst); err != nil {
			r.fail(propertyID, kind, url, err)
			continue
		}
		asset.SetAssetURL(newURL)
		moved = append(moved, asset)
		metrics.MediaRelocations.WithLabelValues(string(kind), "moved").Inc()
	}
	return moved
}

// Place relocates assets and persists the rewritten URLs. The assets must be
// pointers to stored model rows. It returns how many rows were updated.
func (r *Relocator) Place(ctx context.Context, db *gorm.DB, propertyID uint, kind Kind, assets []Asset) int {
	updated := 0
	for _, asset := range r.Relocate(propertyID, kind, assets) {
		err := db.WithContext(ctx).Model(asset).Update("url", asset.AssetURL()).Error
		if err != nil {
			r.fail(propertyID, kind, asset.AssetURL(), err)
			continue
		}
		updated++
	}
	return updated
}

func (r *Relocator) fail(propertyID uint, kind Kind, url string, err error) {
	r.logger.Warn("media relocation failed",
		zap.Uint("property_id", propertyID),
		zap.String("kind", string(kind)),
		zap.String("url", url),
		zap.Error(err))
	metrics.MediaRelocations.WithLabelValues(string(kind), "failed").Inc()
}

// moveFile renames src to dst, copying when they sit on different devices.
func moveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) || !errors.Is(linkErr.Err, syscall.EXDEV) {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return err
	}
	return os.Remove(src)
}
