// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package content

import (
	"os"

	"github.com/Masterminds/semver/v3"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

// SupportedVersions is the range of content file versions this build reads.
const SupportedVersions = ">= 1.0.0, < 2.0.0"

// Load reads, validates and indexes the content file at path.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return nil, oops.Code("CONTENT_READ_FAILED").With("path", path).Wrap(err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, oops.With("path", path).Wrap(err)
	}
	return s, nil
}

// Parse validates data against the content schema, checks its version, and
// indexes it.
func Parse(data []byte) (*Store, error) {
	f, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return New(f)
}

// Decode validates and decodes a content document without indexing it.
func Decode(data []byte) (*File, error) {
	if err := ValidateSchema(data); err != nil {
		return nil, oops.Code("CONTENT_SCHEMA_INVALID").Wrap(err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, oops.Code("CONTENT_PARSE_FAILED").Wrap(err)
	}
	if err := CheckVersion(f.Version); err != nil {
		return nil, err
	}
	return &f, nil
}

// CheckVersion reports whether a content file version can be read.
func CheckVersion(version string) error {
	v, err := semver.NewVersion(version)
	if err != nil {
		return oops.Code("CONTENT_VERSION_INVALID").With("version", version).Wrap(err)
	}
	c, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return oops.Code("CONTENT_VERSION_INVALID").Wrap(err)
	}
	if !c.Check(v) {
		return oops.Code("CONTENT_VERSION_UNSUPPORTED").
			With("version", version).
			With("supported", SupportedVersions).
			Errorf("content version %s is not supported", v)
	}
	return nil
}
