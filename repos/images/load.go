/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package images

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"chainguard.dev/ghagent/agents/toolcall/callbacks"
	"github.com/chainguard-dev/clog"
	"github.com/dustin/go-humanize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Load decodes the header of the image at path. Only the header is read,
// so large images are cheap to inspect.
func Load(ctx context.Context, path string) (callbacks.ImageInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return callbacks.ImageInfo{}, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return callbacks.ImageInfo{}, err
	}
	if st.IsDir() {
		return callbacks.ImageInfo{}, fmt.Errorf("%s is a directory", path)
	}

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return callbacks.ImageInfo{}, fmt.Errorf("decoding %s: %w", path, err)
	}

	info := callbacks.ImageInfo{
		Path:   path,
		Format: format,
		Width:  cfg.Width,
		Height: cfg.Height,
		Bytes:  st.Size(),
		Size:   humanize.Bytes(uint64(st.Size())),
	}
	clog.FromContext(ctx).With("path", path, "format", format, "width", cfg.Width, "height", cfg.Height).Debug("Loaded image")
	return info, nil
}
