// Package serder implements versioned KERI/ACDC event serialization: the
// version-string codec, the SAID fixed-point derivation algorithm, and the
// Serder wrapper that ties a parsed event to its raw serialization.
package serder

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/cvsouth/kericore/codec"
	"github.com/cvsouth/kericore/digest"
	"github.com/cvsouth/kericore/kerierr"
	"github.com/cvsouth/kericore/sad"
)

// Protocol identifies the message family a Serder carries.
type Protocol string

const (
	ProtoKERI Protocol = "KERI"
	ProtoACDC Protocol = "ACDC"
)

// Ilk identifies a KERI event type.
type Ilk string

const (
	IlkIcp Ilk = "icp"
	IlkRot Ilk = "rot"
	IlkIxn Ilk = "ixn"
	IlkDip Ilk = "dip"
	IlkDrt Ilk = "drt"
	IlkRct Ilk = "rct"
	IlkVrc Ilk = "vrc"
)

// Kind identifies the wire serialization format.
type Kind string

const (
	KindJSON Kind = "JSON"
	KindCBOR Kind = "CBOR"
	KindMGPK Kind = "MGPK"
)

// Version is the KERI/ACDC protocol version, {major, minor}.
type Version struct {
	Major byte
	Minor byte
}

// Vrsn1_0 is protocol version 1.0, the only version this module emits.
var Vrsn1_0 = Version{Major: 1, Minor: 0}

// Versify renders a version string: "{proto}{major}{minor}{kind}{size:06x}_".
func Versify(proto Protocol, version *Version, kind Kind, size int) string {
	v := Vrsn1_0
	if version != nil {
		v = *version
	}
	if kind == "" {
		kind = KindJSON
	}
	return fmt.Sprintf("%s%d%d%s%06x_", proto, v.Major, v.Minor, kind, size)
}

// Deversify parses a version string into its four fields.
func Deversify(vs string) (Protocol, Version, Kind, int, error) {
	if len(vs) < 17 {
		return "", Version{}, "", 0, kerierr.ErrInvalidEvent
	}
	var proto Protocol
	switch vs[0:4] {
	case "KERI":
		proto = ProtoKERI
	case "ACDC":
		proto = ProtoACDC
	default:
		return "", Version{}, "", 0, kerierr.ErrInvalidEvent
	}

	major, err := strconv.Atoi(vs[4:5])
	if err != nil {
		return "", Version{}, "", 0, kerierr.ErrInvalidEvent
	}
	minor, err := strconv.Atoi(vs[5:6])
	if err != nil {
		return "", Version{}, "", 0, kerierr.ErrInvalidEvent
	}
	version := Version{Major: byte(major), Minor: byte(minor)}

	var kind Kind
	switch vs[6:10] {
	case "JSON":
		kind = KindJSON
	case "CBOR":
		kind = KindCBOR
	case "MGPK":
		kind = KindMGPK
	default:
		return "", Version{}, "", 0, kerierr.ErrInvalidEvent
	}

	size64, err := strconv.ParseInt(vs[10:16], 16, 64)
	if err != nil {
		return "", Version{}, "", 0, kerierr.ErrInvalidEvent
	}

	return proto, version, kind, int(size64), nil
}

// Serder ties a parsed event (sad) to its exact raw serialization, and
// carries the metadata (protocol, kind, size, version, digest code) the
// version string and SAID encode.
type Serder struct {
	raw     string
	sad     *sad.Map
	proto   Protocol
	kind    Kind
	size    int
	version Version
	code    string
}

// New builds a Serder from a sad, sizing it (computing its serialized byte
// length and writing that into the version string) as it goes. code
// defaults to BLAKE3_256 and selects the digest algorithm Said will use.
func New(s *sad.Map, kind Kind, code string) (*Serder, error) {
	if kind == "" {
		kind = KindJSON
	}
	if code == "" {
		code = codec.CodeBlake3_256
	}
	raw, proto, kind, sized, version, err := sizeify(s, kind)
	if err != nil {
		return nil, err
	}
	return &Serder{raw: raw, sad: sized, proto: proto, kind: kind, size: len(raw), version: version, code: code}, nil
}

// FromRaw parses a previously serialized event.
func FromRaw(raw string) (*Serder, error) {
	m := &sad.Map{}
	if err := json.Unmarshal([]byte(raw), m); err != nil {
		return nil, kerierr.ErrInvalidEvent
	}

	vs, err := m.GetString("v")
	if err != nil {
		return nil, kerierr.ErrInvalidEvent
	}
	proto, version, kind, size, err := Deversify(vs)
	if err != nil {
		return nil, err
	}

	code := codec.CodeBlake3_256
	if d, err := m.GetString("d"); err == nil && d != "" {
		code = d[0:1]
	}

	return &Serder{raw: raw, sad: m, proto: proto, kind: kind, size: size, version: version, code: code}, nil
}

// Said computes the event's SAID under code (defaulting to the Serder's
// stored digest code).
func (s *Serder) Said(code string) (string, error) {
	if code == "" {
		code = s.code
	}
	raw, _, err := DeriveSaid(s.sad, code, s.kind)
	if err != nil {
		return "", err
	}
	d, err := digest.FromRaw(raw, code)
	if err != nil {
		return "", err
	}
	return d.Qb64(), nil
}

// DeriveSaid implements the SAID fixed-point algorithm: clone the sad,
// overwrite its 'd' field with '#' repeated to the digest code's full qb64
// size, re-size (which rewrites 'v' to the dummied serialization's exact
// byte length), serialize, and hash. It returns the raw digest bytes and the
// dummied-and-resized sad (the same one that was hashed).
func DeriveSaid(s *sad.Map, code string, kind Kind) ([]byte, *sad.Map, error) {
	if kind == "" {
		kind = KindJSON
	}
	sz, err := codec.SizageOf(code)
	if err != nil {
		return nil, nil, err
	}

	clone := s.Clone()
	clone.Set("d", strings.Repeat("#", sz.FS))

	raw, _, _, resized, _, err := sizeify(clone, kind)
	if err != nil {
		return nil, nil, err
	}

	d, err := digest.New(code, []byte(raw))
	if err != nil {
		return nil, nil, err
	}
	return d.Raw(), resized, nil
}

// sizeify serializes s, measures its byte length, rewrites its 'v' field
// with that length, and re-serializes.
func sizeify(s *sad.Map, kind Kind) (string, Protocol, Kind, *sad.Map, Version, error) {
	vs, err := s.GetString("v")
	if err != nil {
		return "", "", "", nil, Version{}, kerierr.ErrInvalidEvent
	}
	proto, version, _, _, err := Deversify(vs)
	if err != nil {
		return "", "", "", nil, Version{}, err
	}

	raw, err := dumps(s, kind)
	if err != nil {
		return "", "", "", nil, Version{}, err
	}

	s.Set("v", Versify(proto, &version, kind, len(raw)))

	raw, err = dumps(s, kind)
	if err != nil {
		return "", "", "", nil, Version{}, err
	}

	return raw, proto, kind, s, version, nil
}

func dumps(s *sad.Map, kind Kind) (string, error) {
	if kind != KindJSON {
		return "", kerierr.ErrInvalidArgument
	}
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Raw returns the exact serialization bytes.
func (s *Serder) Raw() string { return s.raw }

// Sad returns the parsed event.
func (s *Serder) Sad() *sad.Map { return s.sad }

// Proto returns the message protocol.
func (s *Serder) Proto() Protocol { return s.proto }

// Kind returns the wire serialization kind.
func (s *Serder) Kind() Kind { return s.kind }

// Size returns the serialization's byte length.
func (s *Serder) Size() int { return s.size }

// Version returns the protocol version.
func (s *Serder) Version() Version { return s.version }

// Code returns the digest code Said will use by default.
func (s *Serder) Code() string { return s.code }

// Pre returns the 'i' (identifier prefix) field, if present.
func (s *Serder) Pre() (string, bool) {
	v, ok := s.sad.Get("i")
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	return str, ok
}

// SaidField returns the 'd' (SAID) field, if present.
func (s *Serder) SaidField() (string, bool) {
	v, ok := s.sad.Get("d")
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	return str, ok
}

// Sn returns the 's' (sequence number) field, parsed from hex.
func (s *Serder) Sn() (uint64, bool) {
	v, ok := s.sad.Get("s")
	if !ok {
		return 0, false
	}
	str, ok := v.(string)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseUint(str, 16, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Ilk returns the 't' (event type) field, if present.
func (s *Serder) Ilk() (Ilk, bool) {
	v, ok := s.sad.Get("t")
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	return Ilk(str), ok
}

// Pretty renders the sad as indented JSON.
func (s *Serder) Pretty() (string, error) {
	b, err := json.MarshalIndent(s.sad, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
