package unit

import (
	"encoding/base64"
	"encoding/json"

	"github.com/aoscloud/aos-protocols/errors"
)

// BlockAlg is a block cipher identifier in the form cipher/mode/padding.
type BlockAlg string

// Supported block cipher algorithms.
const (
	// BlockAlgAES256CBC is the only supported block algorithm and the
	// default when the field is absent.
	BlockAlgAES256CBC BlockAlg = "AES256/CBC/pkcs7"
)

// Validate checks membership in the closed block algorithm set.
func (a BlockAlg) Validate() error {
	return validateEnum(string(a), string(BlockAlgAES256CBC))
}

// AsymAlg is an asymmetric cipher identifier in the form cipher/padding.
type AsymAlg string

// Supported asymmetric algorithms.
const (
	// AsymAlgRSAPKCS1v15 is the default when the field is absent.
	AsymAlgRSAPKCS1v15 AsymAlg = "RSA/PKCS1v1_5"
	AsymAlgRSAPSS      AsymAlg = "RSA/PSS"
)

// Validate checks membership in the closed asymmetric algorithm set.
func (a AsymAlg) Validate() error {
	return validateEnum(string(a), string(AsymAlgRSAPKCS1v15), string(AsymAlgRSAPSS))
}

// ReceiverInfo identifies the receiver certificate used to wrap the
// symmetric key: serial number plus the raw Issuer DN bytes.
type ReceiverInfo struct {
	Serial string `json:"serial"`
	Issuer []byte `json:"issuer"`
}

// Validate checks presence of both receiver fields.
func (r ReceiverInfo) Validate() error {
	var ve errors.ValidationErrors
	if r.Serial == "" {
		ve.Add("serial", "must not be empty")
	}
	if len(r.Issuer) == 0 {
		ve.Add("issuer", "must not be empty")
	}
	return ve.ErrOrNil()
}

// DecryptionInfo carries everything a unit needs to decrypt a downloaded
// artifact: block cipher parameters, the wrapped symmetric key material,
// and the receiver certificate reference.
//
// Whether the IV and key lengths match the declared block algorithm is a
// consumer-side check; the schema layer validates shape only.
type DecryptionInfo struct {
	BlockAlg     BlockAlg
	BlockIv      SensitiveBytes
	BlockKey     SensitiveBytes
	AsymAlg      AsymAlg
	ReceiverInfo ReceiverInfo
}

// NewDecryptionInfo builds a DecryptionInfo with the default algorithms.
func NewDecryptionInfo(iv, key []byte, receiver ReceiverInfo) DecryptionInfo {
	return DecryptionInfo{
		BlockAlg:     BlockAlgAES256CBC,
		BlockIv:      NewSensitiveBytes(iv),
		BlockKey:     NewSensitiveBytes(key),
		AsymAlg:      AsymAlgRSAPKCS1v15,
		ReceiverInfo: receiver,
	}
}

// Validate checks algorithm membership and key material presence, including
// key material whose wire text failed to decode as base64.
func (d DecryptionInfo) Validate() error {
	var ve errors.ValidationErrors
	ve.Collect("blockAlg", d.BlockAlg.Validate())
	ve.Collect("asymAlg", d.AsymAlg.Validate())
	switch {
	case d.BlockIv.invalid:
		ve.Add("blockIv", "must be base64 encoded")
	case d.BlockIv.Len() == 0 && !d.BlockIv.IsRedacted():
		ve.Add("blockIv", "must not be empty")
	}
	switch {
	case d.BlockKey.invalid:
		ve.Add("blockKey", "must be base64 encoded")
	case d.BlockKey.Len() == 0 && !d.BlockKey.IsRedacted():
		ve.Add("blockKey", "must not be empty")
	}
	ve.Collect("receiverInfo", d.ReceiverInfo.Validate())
	return ve.ErrOrNil()
}

// decryptionInfoWire is the aliased wire form. Secrets travel as text so
// the encode mode decides between base64 and the redaction placeholder.
type decryptionInfoWire struct {
	BlockAlg     *string       `json:"blockAlg,omitempty"`
	BlockIv      *string       `json:"blockIv,omitempty"`
	BlockKey     *string       `json:"blockKey,omitempty"`
	AsymAlg      *string       `json:"asymAlg,omitempty"`
	ReceiverInfo *ReceiverInfo `json:"receiverInfo,omitempty"`
}

// marshalMode renders the fragment for the given encode mode.
func (d DecryptionInfo) marshalMode(mode EncodeMode) ([]byte, error) {
	iv, err := d.BlockIv.encode(mode)
	if err != nil {
		return nil, errors.Wrap(err, "DecryptionInfo", "marshalMode", "blockIv encoding")
	}
	key, err := d.BlockKey.encode(mode)
	if err != nil {
		return nil, errors.Wrap(err, "DecryptionInfo", "marshalMode", "blockKey encoding")
	}

	blockAlg := string(d.BlockAlg)
	asymAlg := string(d.AsymAlg)
	receiver := d.ReceiverInfo
	return json.Marshal(decryptionInfoWire{
		BlockAlg:     &blockAlg,
		BlockIv:      &iv,
		BlockKey:     &key,
		AsymAlg:      &asymAlg,
		ReceiverInfo: &receiver,
	})
}

// MarshalJSON implements json.Marshaler in wire mode.
func (d DecryptionInfo) MarshalJSON() ([]byte, error) {
	return d.marshalMode(EncodeWire)
}

// UnmarshalJSON implements json.Unmarshaler, applying the documented
// algorithm defaults and decoding the base64 secret fields. Base64 failures
// never abort the decode here: they are deferred to Validate, which reports
// them with their full field paths alongside every other violation.
func (d *DecryptionInfo) UnmarshalJSON(data []byte) error {
	var wire decryptionInfoWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	out := DecryptionInfo{
		BlockAlg: BlockAlgAES256CBC,
		AsymAlg:  AsymAlgRSAPKCS1v15,
	}
	if wire.BlockAlg != nil {
		out.BlockAlg = BlockAlg(*wire.BlockAlg)
	}
	if wire.AsymAlg != nil {
		out.AsymAlg = AsymAlg(*wire.AsymAlg)
	}
	if wire.ReceiverInfo != nil {
		out.ReceiverInfo = *wire.ReceiverInfo
	}
	out.BlockIv = parseSecret(wire.BlockIv)
	out.BlockKey = parseSecret(wire.BlockKey)

	*d = out
	return nil
}

// parseSecret decodes one wire secret field: base64 text or the redaction
// placeholder. A missing field yields the zero secret and malformed base64
// an invalid one; Validate reports both as field violations.
func parseSecret(text *string) SensitiveBytes {
	if text == nil {
		return SensitiveBytes{}
	}
	if *text == Redacted {
		return SensitiveBytes{redacted: true}
	}
	value, err := base64.StdEncoding.DecodeString(*text)
	if err != nil {
		return SensitiveBytes{invalid: true}
	}
	return SensitiveBytes{value: value}
}
