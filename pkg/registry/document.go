package registry

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/depviz-io/depviz/pkg/errors"
)

// Document is a metadata source backed by a static local JSON file keyed
// by package name. Each entry uses the same schema as a live registry
// document, so fixtures can be copied straight from registry responses:
//
//	{
//	  "a": {
//	    "dist-tags": {"latest": "1.0.0"},
//	    "versions": {"1.0.0": {"dependencies": {"b": "^1.0.0"}}}
//	  }
//	}
type Document struct {
	path     string
	packages map[string]packageDocument
}

// OpenDocument loads and parses the document at path.
// The file is read once; subsequent Fetch calls are in-memory lookups.
func OpenDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read registry document %s", path)
	}
	var packages map[string]packageDocument
	if err := json.Unmarshal(data, &packages); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse registry document %s", path)
	}
	return &Document{path: path, packages: packages}, nil
}

// Name returns the source identifier.
func (d *Document) Name() string { return "file" }

// Fetch looks up pkg in the document and resolves selector against it.
// Unknown packages are reported as PACKAGE_NOT_FOUND, same as the live
// registry's 404.
func (d *Document) Fetch(ctx context.Context, pkg, selector string) (*VersionMetadata, error) {
	pkg = strings.TrimSpace(pkg)
	if err := errors.ValidatePackageName(pkg); err != nil {
		return nil, err
	}

	doc, ok := d.packages[pkg]
	if !ok {
		return nil, errors.New(errors.ErrCodePackageNotFound, "package %s not in document %s", pkg, d.path)
	}
	return resolveVersion(pkg, &doc, selector)
}
