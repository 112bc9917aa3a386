package unit

import (
	"encoding/json"
	"time"

	"github.com/aoscloud/aos-protocols/errors"
)

// SignAlg is a signing algorithm identifier in the form alg/hash.
type SignAlg string

// Supported signing algorithms.
const (
	SignAlgRSASHA256 SignAlg = "RSA/SHA256"
	SignAlgECSHA256  SignAlg = "EC/SHA256"
)

// Validate checks membership in the closed signing algorithm set.
func (a SignAlg) Validate() error {
	return validateEnum(string(a), string(SignAlgRSASHA256), string(SignAlgECSHA256))
}

// CertificateInfo carries one certificate: DER bytes (base64 on the wire)
// plus its fingerprint, which acts as the certificate's unique id.
type CertificateInfo struct {
	Certificate []byte `json:"certificate"`
	Fingerprint string `json:"fingerprint"`
}

// Validate checks presence of both fields. Cryptographic validity of the
// DER bytes is out of scope for the schema layer.
func (c CertificateInfo) Validate() error {
	var ve errors.ValidationErrors
	if len(c.Certificate) == 0 {
		ve.Add("certificate", "must not be empty")
	}
	if c.Fingerprint == "" {
		ve.Add("fingerprint", "must not be empty")
	}
	return ve.ErrOrNil()
}

// CertificateChainInfo names a certificate chain and lists the fingerprints
// of its members in order.
//
// Whether every fingerprint refers to a certificate present in the same
// message's certificate list is a cross-message invariant the caller owns;
// see DesiredStatus.UnknownChainFingerprints.
type CertificateChainInfo struct {
	Name         string   `json:"name"`
	Fingerprints []string `json:"fingerprints"`
}

// Validate checks chain name and member presence.
func (c CertificateChainInfo) Validate() error {
	var ve errors.ValidationErrors
	if c.Name == "" {
		ve.Add("name", "must not be empty")
	}
	if len(c.Fingerprints) == 0 {
		ve.Add("fingerprints", "must contain at least one fingerprint")
	}
	for i, fp := range c.Fingerprints {
		if fp == "" {
			ve.Add(indexField("fingerprints", i), "must not be empty")
		}
	}
	return ve.ErrOrNil()
}

// Sign is the structural representation of a signature: which chain signed,
// with which algorithm, the signature value, the trusted timestamp, and an
// optional OCSP response. Verification itself happens elsewhere.
type Sign struct {
	ChainName        string    `json:"chainName"`
	Alg              SignAlg   `json:"alg"`
	Value            []byte    `json:"value"`
	TrustedTimestamp time.Time `json:"trustedTimestamp"`
	OCSPValues       []byte    `json:"ocspValues,omitempty"`
}

// Validate checks signature field constraints.
func (s Sign) Validate() error {
	var ve errors.ValidationErrors
	if s.ChainName == "" {
		ve.Add("chainName", "must not be empty")
	}
	ve.Collect("alg", s.Alg.Validate())
	if len(s.Value) == 0 {
		ve.Add("value", "must not be empty")
	}
	if s.TrustedTimestamp.IsZero() {
		ve.Add("trustedTimestamp", "must be a valid RFC3339 timestamp")
	}
	return ve.ErrOrNil()
}

// MarshalJSON implements json.Marshaler.
func (s Sign) MarshalJSON() ([]byte, error) {
	type Alias Sign
	return json.Marshal(Alias(s))
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Sign) UnmarshalJSON(data []byte) error {
	type Alias Sign
	var alias Alias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	*s = Sign(alias)
	return nil
}
