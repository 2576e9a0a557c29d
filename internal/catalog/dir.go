package catalog

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gregcmartin/doppel/internal/models"
	"github.com/gregcmartin/doppel/internal/parser"
	"github.com/sirupsen/logrus"
)

// Spec file extensions recognized during directory scans
var specExtensions = map[string]bool{
	".json":    true,
	".yaml":    true,
	".yml":     true,
	".graphql": true,
}

var _ Catalog = (*Dir)(nil)

// Dir is a Catalog backed by a directory of specification files. Each
// file is parsed on access; files that fail to parse are logged and
// skipped rather than failing the listing.
type Dir struct {
	logger *logrus.Logger
	parser *parser.Parser
	root   string
}

// NewDir creates a directory-backed catalog rooted at the given path
func NewDir(logger *logrus.Logger, p *parser.Parser, root string) *Dir {
	return &Dir{
		logger: logger,
		parser: p,
		root:   root,
	}
}

// GetAPI resolves one API by name, returning nil when no spec file in the
// catalog matches
func (d *Dir) GetAPI(ctx context.Context, ref string) (*models.ApiModel, error) {
	apis, err := d.GetAllAPIs(ctx)
	if err != nil {
		return nil, err
	}
	for _, api := range apis {
		if api.Identity.Name == ref || api.Identity.String() == ref {
			return api, nil
		}
	}
	return nil, nil
}

// GetAllAPIs parses every recognized specification file under the
// catalog root
func (d *Dir) GetAllAPIs(ctx context.Context) ([]*models.ApiModel, error) {
	var paths []string
	err := filepath.WalkDir(d.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		if specExtensions[strings.ToLower(filepath.Ext(path))] {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan catalog directory: %w", err)
	}
	sort.Strings(paths)

	apis := make([]*models.ApiModel, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		api, err := d.parser.ParseFile(path)
		if err != nil {
			// One bad catalog entry never fails the listing.
			d.logger.WithError(err).Warnf("Skipping unparseable catalog entry: %s", path)
			continue
		}
		apis = append(apis, api)
	}

	d.logger.Debugf("Loaded %d APIs from catalog directory %s", len(apis), d.root)
	return apis, nil
}
