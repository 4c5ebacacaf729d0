// Package registry provides package metadata sources for dependency resolution.
//
// Two implementations exist behind the [Source] interface:
//   - [Client]: the live npm registry (registry.npmjs.org)
//   - [Document]: a static local JSON document keyed by package name
//
// Both resolve a version selector (a concrete version or a symbolic
// dist-tag like "latest") against the same document schema and return the
// dependency declarations of the resolved version. The graph builder is
// agnostic to which implementation it talks to.
package registry

import (
	"context"
	"maps"
	"slices"

	"github.com/depviz-io/depviz/pkg/errors"
)

// Source retrieves one package version's dependency declarations.
type Source interface {
	// Fetch resolves selector against the package's published versions and
	// returns that version's metadata. Failures are reported with the
	// error codes PACKAGE_NOT_FOUND, MALFORMED_METADATA, or
	// REGISTRY_UNAVAILABLE from pkg/errors.
	Fetch(ctx context.Context, name, selector string) (*VersionMetadata, error)

	// Name returns the source's identifier (e.g., "npm", "file").
	Name() string
}

// VersionMetadata holds one resolved version's dependency declarations,
// split by the four npm dependency categories. Each map goes from
// dependency name to version-range string.
type VersionMetadata struct {
	Name    string // Package name
	Version string // Concrete resolved version

	Dependencies         map[string]string // Runtime dependencies
	DevDependencies      map[string]string // Development dependencies
	PeerDependencies     map[string]string // Peer dependencies
	OptionalDependencies map[string]string // Optional dependencies
}

// packageDocument is the registry document schema shared by the live
// client and the local document source. It mirrors the npm registry's
// per-package response.
type packageDocument struct {
	Name     string                    `json:"name"`
	DistTags map[string]string         `json:"dist-tags"`
	Versions map[string]versionDetails `json:"versions"`
}

type versionDetails struct {
	Dependencies         map[string]string `json:"dependencies"`
	DevDependencies      map[string]string `json:"devDependencies"`
	PeerDependencies     map[string]string `json:"peerDependencies"`
	OptionalDependencies map[string]string `json:"optionalDependencies"`
}

// resolveVersion resolves selector against doc and returns the matching
// version's metadata.
//
// Resolution order:
//  1. selector names a published version directly
//  2. selector is a symbolic dist-tag (e.g., "latest") mapping to a version
//  3. fallback: the lexically first published version
//
// A symbolic selector with no dist-tag mapping, a dist-tag pointing at an
// unpublished version, or a package with no versions at all is reported as
// MALFORMED_METADATA.
func resolveVersion(name string, doc *packageDocument, selector string) (*VersionMetadata, error) {
	if len(doc.Versions) == 0 {
		return nil, errors.New(errors.ErrCodeMalformedMetadata, "package %s has no published versions", name)
	}

	version := selector
	v, ok := doc.Versions[version]
	if !ok {
		if tagged, tagOK := doc.DistTags[selector]; tagOK {
			version = tagged
			v, ok = doc.Versions[version]
			if !ok {
				return nil, errors.New(errors.ErrCodeMalformedMetadata,
					"package %s: dist-tag %q points at unpublished version %s", name, selector, tagged)
			}
		} else if !looksLikeVersion(selector) {
			// A symbolic selector needs a dist-tag mapping to resolve.
			return nil, errors.New(errors.ErrCodeMalformedMetadata,
				"package %s has no dist-tag mapping for %q", name, selector)
		} else {
			// Concrete version not published; fall back to the first
			// available version rather than failing the whole branch.
			version = slices.Min(slices.Collect(maps.Keys(doc.Versions)))
			v = doc.Versions[version]
		}
	}

	return &VersionMetadata{
		Name:                 firstNonEmpty(doc.Name, name),
		Version:              version,
		Dependencies:         v.Dependencies,
		DevDependencies:      v.DevDependencies,
		PeerDependencies:     v.PeerDependencies,
		OptionalDependencies: v.OptionalDependencies,
	}, nil
}

// looksLikeVersion distinguishes concrete versions ("1.2.3") from symbolic
// dist-tags ("latest", "next"). Published versions always start with a digit.
func looksLikeVersion(selector string) bool {
	return selector != "" && selector[0] >= '0' && selector[0] <= '9'
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
