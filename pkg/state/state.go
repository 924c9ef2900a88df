/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

package state

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hostplan/hostplan/pkg/errors"
	"github.com/hostplan/hostplan/pkg/header"
)

const (
	// APIVersion is the schema version for persisted state documents.
	APIVersion = "hostplan.dev/v1alpha1"
)

// BootstrapMarker records that a one-time bootstrap action completed.
// Markers are never implicitly deleted.
type BootstrapMarker struct {
	// CompletedAt is when the action was marked complete.
	CompletedAt time.Time `json:"completedAt" yaml:"completedAt"`

	// PassID identifies the provisioning pass that marked completion.
	PassID string `json:"passId,omitempty" yaml:"passId,omitempty"`

	// Adopted is true when completion was detected by the external probe
	// rather than by running the effect in this process.
	Adopted bool `json:"adopted,omitempty" yaml:"adopted,omitempty"`
}

// ArtifactRecord remembers the last materialized content of an artifact,
// for restart-trigger comparison on the next pass.
type ArtifactRecord struct {
	// Path is the target location the artifact was written to.
	Path string `json:"path" yaml:"path"`

	// Hash is the hex sha256 of the last written content.
	Hash string `json:"hash" yaml:"hash"`

	// WrittenAt is when the artifact was last materialized.
	WrittenAt time.Time `json:"writtenAt" yaml:"writtenAt"`
}

// Document is the persisted state layout: one durable marker per bootstrap
// action plus the set of materialized artifacts with their content hashes.
type Document struct {
	header.Header `json:",inline" yaml:",inline"`

	// Bootstrap maps bootstrap action IDs to completion markers.
	Bootstrap map[string]BootstrapMarker `json:"bootstrap" yaml:"bootstrap"`

	// Artifacts maps artifact names to their last materialized state.
	Artifacts map[string]ArtifactRecord `json:"artifacts" yaml:"artifacts"`
}

// Store owns the durable state file. It is the only cross-process shared
// resource of the engine; the model assumes at most one provisioning pass
// runs against it at a time. Within a pass, parallel plan branches share
// the store, so all document access is serialized by a mutex.
type Store struct {
	path string

	mu  sync.Mutex
	doc *Document
}

// Load opens the state file at path. A missing file yields an empty store;
// the file is created on first save.
func Load(path string) (*Store, error) {
	s := &Store{
		path: path,
		doc:  newDocument(),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to read state file", err)
	}

	if err := yaml.Unmarshal(data, s.doc); err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeInternal,
			"failed to parse state file", err, map[string]any{"path": path})
	}
	if s.doc.Bootstrap == nil {
		s.doc.Bootstrap = make(map[string]BootstrapMarker)
	}
	if s.doc.Artifacts == nil {
		s.doc.Artifacts = make(map[string]ArtifactRecord)
	}
	return s, nil
}

func newDocument() *Document {
	d := &Document{
		Bootstrap: make(map[string]BootstrapMarker),
		Artifacts: make(map[string]ArtifactRecord),
	}
	d.Init(header.KindState, APIVersion, "")
	return d
}

// Path returns the state file location.
func (s *Store) Path() string {
	return s.path
}

// BootstrapDone reports whether the given bootstrap action is marked
// complete.
func (s *Store) BootstrapDone(actionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.doc.Bootstrap[actionID]
	return ok
}

// MarkBootstrap durably marks a bootstrap action complete. The write is
// atomic: either the marker is fully persisted or the state is unchanged.
func (s *Store) MarkBootstrap(actionID, passID string, adopted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc.Bootstrap[actionID] = BootstrapMarker{
		CompletedAt: time.Now().UTC(),
		PassID:      passID,
		Adopted:     adopted,
	}
	if err := s.save(); err != nil {
		// Roll back the in-memory marker so a retry is not skipped.
		delete(s.doc.Bootstrap, actionID)
		return err
	}
	return nil
}

// ArtifactHash returns the last materialized content hash for an artifact.
func (s *Store) ArtifactHash(name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.doc.Artifacts[name]
	if !ok {
		return "", false
	}
	return rec.Hash, true
}

// RecordArtifact durably records an artifact's materialized content hash.
func (s *Store) RecordArtifact(name, path, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.doc.Artifacts[name]
	s.doc.Artifacts[name] = ArtifactRecord{
		Path:      path,
		Hash:      hash,
		WrittenAt: time.Now().UTC(),
	}
	if err := s.save(); err != nil {
		if had {
			s.doc.Artifacts[name] = prev
		} else {
			delete(s.doc.Artifacts, name)
		}
		return err
	}
	return nil
}

// Save writes the state document atomically: a temp file in the same
// directory followed by a rename, so a crash never leaves a half-written
// state file.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// save assumes s.mu is held.
func (s *Store) save() error {
	data, err := yaml.Marshal(s.doc)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to marshal state", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to create state directory", err)
	}

	tmp, err := os.CreateTemp(dir, fmt.Sprintf(".%s.tmp-*", filepath.Base(s.path)))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to create temp state file", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(errors.ErrCodeInternal, "failed to write state", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(errors.ErrCodeInternal, "failed to close temp state file", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(errors.ErrCodeInternal, "failed to replace state file", err)
	}
	return nil
}
