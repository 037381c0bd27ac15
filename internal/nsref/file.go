package nsref

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cambridge-collection/cudl-pack/internal/namespace"
)

// FileResolver reads namespace documents from the filesystem. Relative
// references are resolved against Dir.
type FileResolver struct {
	Dir string
}

func (r *FileResolver) Resolve(ctx context.Context, ref string) (namespace.Map, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := strings.TrimPrefix(ref, "file://")
	if !filepath.IsAbs(path) && r.Dir != "" {
		path = filepath.Join(r.Dir, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to load @namespace reference %s: %w", ref, err)
	}
	return decodeMap(ref, data)
}
