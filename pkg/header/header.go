/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

package header

import (
	"time"

	"github.com/google/uuid"
)

// Kind represents the type of an emitted engine document.
type Kind string

// Valid Kind constants for all document types the engine emits.
const (
	KindResolvedConfig   Kind = "ResolvedConfig"
	KindPlan             Kind = "Plan"
	KindValidationResult Kind = "ValidationResult"
	KindExecutionResult  Kind = "ExecutionResult"
	KindState            Kind = "State"
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	return string(k)
}

// IsValid checks if the Kind is one of the recognized kinds.
func (k *Kind) IsValid() bool {
	switch *k {
	case KindResolvedConfig, KindPlan, KindValidationResult, KindExecutionResult, KindState:
		return true
	default:
		return false
	}
}

// Header contains metadata and versioning information for engine documents.
// It follows Kubernetes-style resource conventions with Kind, APIVersion,
// and Metadata fields.
type Header struct {
	// Kind is the type of the document.
	Kind Kind `json:"kind,omitempty" yaml:"kind,omitempty"`

	// APIVersion is the schema version of the document.
	APIVersion string `json:"apiVersion,omitempty" yaml:"apiVersion,omitempty"`

	// Metadata contains key-value pairs with metadata about the document.
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Option is a functional option for configuring Header instances.
type Option func(*Header)

// WithMetadata returns an Option that adds a metadata key-value pair to the
// Header. If the Metadata map is nil, it will be initialized.
func WithMetadata(key, value string) Option {
	return func(h *Header) {
		if h.Metadata == nil {
			h.Metadata = make(map[string]string)
		}
		h.Metadata[key] = value
	}
}

// WithKind returns an Option that sets the Kind field of the Header.
func WithKind(kind Kind) Option {
	return func(h *Header) {
		h.Kind = kind
	}
}

// WithAPIVersion returns an Option that sets the APIVersion field of the Header.
func WithAPIVersion(version string) Option {
	return func(h *Header) {
		h.APIVersion = version
	}
}

// New creates a new Header instance with the provided functional options.
// The Metadata map is initialized automatically.
func New(opts ...Option) *Header {
	h := &Header{
		Metadata: make(map[string]string),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Init initializes the Header with the specified kind, apiVersion, and tool
// version, and stamps it with a creation timestamp and a unique pass ID.
func (h *Header) Init(kind Kind, apiVersion string, version string) {
	h.Kind = kind
	h.APIVersion = apiVersion
	h.Metadata = make(map[string]string)

	h.Metadata["timestamp"] = time.Now().UTC().Format(time.RFC3339)
	h.Metadata["passId"] = uuid.NewString()
	if version != "" {
		h.Metadata["version"] = version
	}
}

// PassID returns the unique pass identifier stamped by Init, or an empty
// string if the header was not initialized.
func (h *Header) PassID() string {
	if h.Metadata == nil {
		return ""
	}
	return h.Metadata["passId"]
}
