package unit

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Wire-level bounds shared across the protocol.
const (
	// MaxIDLength bounds every protocol identifier.
	MaxIDLength = 255

	// MaxChecksumLength bounds state checksum strings.
	MaxChecksumLength = 256

	// MaxFileSize bounds declared download sizes to the largest integer
	// exactly representable in a JSON number.
	MaxFileSize = uint64(1)<<53 - 1

	// MaxInstancePriority is the exclusive upper bound for instance
	// priorities.
	MaxInstancePriority = 1000000
)

// LayerDigestPrefix is the fixed content-address scheme for layer digests.
const LayerDigestPrefix = "sha256:"

const hexDigits = "0123456789abcdefABCDEF"

// ID is a bounded protocol identifier: service, subject, provider, layer,
// component, node and system ids all share this shape. An ID is non-empty,
// at most MaxIDLength characters, and drawn from the identifier alphabet
// (letters, digits, '_', '.', ':' and '-').
type ID string

// NewID validates raw as a protocol identifier.
func NewID(raw string) (ID, error) {
	id := ID(raw)
	if err := id.Validate(); err != nil {
		return "", err
	}
	return id, nil
}

// Validate checks the identifier constraints.
func (id ID) Validate() error {
	if id == "" {
		return fmt.Errorf("must not be empty")
	}
	if len(id) > MaxIDLength {
		return fmt.Errorf("must not exceed %d characters, got %d", MaxIDLength, len(id))
	}
	for _, r := range string(id) {
		if !isIDRune(r) {
			return fmt.Errorf("contains character %q outside the identifier alphabet", r)
		}
	}
	return nil
}

// String returns the identifier as a plain string.
func (id ID) String() string {
	return string(id)
}

func isIDRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_' || r == '.' || r == ':' || r == '-':
		return true
	default:
		return false
	}
}

// Sha256 is a content digest: exactly 64 hexadecimal characters.
type Sha256 string

// NewSha256 validates raw as a SHA-256 digest string.
func NewSha256(raw string) (Sha256, error) {
	s := Sha256(raw)
	if err := s.Validate(); err != nil {
		return "", err
	}
	return s, nil
}

// Validate checks the digest shape.
func (s Sha256) Validate() error {
	if len(s) != 64 {
		return fmt.Errorf("must be exactly 64 hexadecimal characters, got %d", len(s))
	}
	if !isHex(string(s)) {
		return fmt.Errorf("must contain only hexadecimal characters")
	}
	return nil
}

// LayerDigest is a content-addressed layer digest: the fixed "sha256:"
// prefix followed by 64 hexadecimal characters.
type LayerDigest string

// NewLayerDigest validates raw as a layer digest string.
func NewLayerDigest(raw string) (LayerDigest, error) {
	d := LayerDigest(raw)
	if err := d.Validate(); err != nil {
		return "", err
	}
	return d, nil
}

// Validate checks the digest scheme and shape.
func (d LayerDigest) Validate() error {
	if !strings.HasPrefix(string(d), LayerDigestPrefix) {
		return fmt.Errorf("must start with %q", LayerDigestPrefix)
	}
	hexPart := strings.TrimPrefix(string(d), LayerDigestPrefix)
	if len(hexPart) != 64 || !isHex(hexPart) {
		return fmt.Errorf("must carry exactly 64 hexadecimal characters after %q", LayerDigestPrefix)
	}
	return nil
}

func isHex(s string) bool {
	for _, r := range s {
		if !strings.ContainsRune(hexDigits, r) {
			return false
		}
	}
	return true
}

// FileSize is a non-negative download size bounded by MaxFileSize.
type FileSize uint64

// NewFileSize validates raw as a file size.
func NewFileSize(raw uint64) (FileSize, error) {
	s := FileSize(raw)
	if err := s.Validate(); err != nil {
		return 0, err
	}
	return s, nil
}

// Validate checks the size bound.
func (s FileSize) Validate() error {
	if uint64(s) > MaxFileSize {
		return fmt.Errorf("must not exceed %d bytes, got %d", MaxFileSize, uint64(s))
	}
	return nil
}

// URLList is an ordered list of download URLs. A URLList is non-empty and
// every member is a well-formed absolute URL.
type URLList []string

// NewURLList validates raw as a URL list.
func NewURLList(raw []string) (URLList, error) {
	l := URLList(raw)
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

// Validate checks list presence and member well-formedness.
func (l URLList) Validate() error {
	if len(l) == 0 {
		return fmt.Errorf("must contain at least one URL")
	}
	for i, raw := range l {
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("entry %d is not a well-formed URL: %q", i, raw)
		}
		if u.Scheme == "" {
			return fmt.Errorf("entry %d must be an absolute URL, got %q", i, raw)
		}
	}
	return nil
}

// Version is a semantic-version-shaped string.
type Version string

// NewVersion validates raw as a version string.
func NewVersion(raw string) (Version, error) {
	v := Version(raw)
	if err := v.Validate(); err != nil {
		return "", err
	}
	return v, nil
}

// Validate checks the semantic version shape.
func (v Version) Validate() error {
	if v == "" {
		return fmt.Errorf("must not be empty")
	}
	if _, err := semver.NewVersion(string(v)); err != nil {
		return fmt.Errorf("must be a semantic version, got %q", string(v))
	}
	return nil
}

// String returns the version as a plain string.
func (v Version) String() string {
	return string(v)
}

// NodeStatus is the desired lifecycle state of a node.
type NodeStatus string

// Node desired status values. Any other value is a decode failure, never a
// silent default.
const (
	NodeStatusProvisioned NodeStatus = "provisioned"
	NodeStatusPaused      NodeStatus = "paused"
	NodeStatusActive      NodeStatus = "active"
)

// Validate checks membership in the closed node status set.
func (s NodeStatus) Validate() error {
	return validateEnum(string(s), string(NodeStatusProvisioned), string(NodeStatusPaused), string(NodeStatusActive))
}

// validateEnum checks v against a closed set of literal members.
func validateEnum(v string, allowed ...string) error {
	for _, member := range allowed {
		if v == member {
			return nil
		}
	}
	return fmt.Errorf("must be one of %q, got %q", allowed, v)
}

// indexField renders a list element path like "fingerprints[2]".
func indexField(field string, i int) string {
	return fmt.Sprintf("%s[%d]", field, i)
}

// validateBoundedString checks a plain string length constraint.
func validateBoundedString(v string, minLen, maxLen int) error {
	if len(v) < minLen {
		if minLen == 1 {
			return fmt.Errorf("must not be empty")
		}
		return fmt.Errorf("must be at least %d characters, got %d", minLen, len(v))
	}
	if len(v) > maxLen {
		return fmt.Errorf("must not exceed %d characters, got %d", maxLen, len(v))
	}
	return nil
}
