// Package acdc implements Authentic Chained Data Container credential
// construction: building a credential's self-addressing data (SAD),
// SAID-deriving it, and wrapping it as a Serder under the ACDC protocol.
// Issuing a credential against a registry (TEL) and anchoring it in the
// issuer's key event log are out of scope, per spec.md's Non-goals; only
// the credential and its bare issuance event are built here.
package acdc

import (
	"sort"
	"time"

	"github.com/cvsouth/kericore/codec"
	"github.com/cvsouth/kericore/kerierr"
	"github.com/cvsouth/kericore/sad"
	"github.com/cvsouth/kericore/serder"
)

// CredentialSubject is an ACDC's attribute section ("a"): who the
// credential is about, when it was issued, an optional privacy salt, and
// whatever schema-defined attributes the caller adds via Data.
type CredentialSubject struct {
	Issuee   string
	IssuedAt string // RFC3339; left empty, Build fills it from the timestamp it's given
	Salt     string
	Data     map[string]any
}

// NewCredentialSubject builds an empty CredentialSubject.
func NewCredentialSubject() *CredentialSubject {
	return &CredentialSubject{Data: make(map[string]any)}
}

func (s *CredentialSubject) WithIssuee(issuee string) *CredentialSubject {
	s.Issuee = issuee
	return s
}

func (s *CredentialSubject) WithIssuedAt(dt string) *CredentialSubject {
	s.IssuedAt = dt
	return s
}

func (s *CredentialSubject) WithSalt(salt string) *CredentialSubject {
	s.Salt = salt
	return s
}

func (s *CredentialSubject) WithData(key string, val any) *CredentialSubject {
	if s.Data == nil {
		s.Data = make(map[string]any)
	}
	s.Data[key] = val
	return s
}

// sadMap renders the subject as an ordered object: i, dt, u (each omitted
// if empty), then the caller's attributes in the order CredentialBuilder
// records them (sorted by key).
func (s *CredentialSubject) sadMap(dataOrder []string) *sad.Map {
	m := sad.New()
	if s.Issuee != "" {
		m.Set("i", s.Issuee)
	}
	if s.IssuedAt != "" {
		m.Set("dt", s.IssuedAt)
	}
	if s.Salt != "" {
		m.Set("u", s.Salt)
	}
	for _, k := range dataOrder {
		if v, ok := s.Data[k]; ok {
			m.Set(k, v)
		}
	}
	return m
}

// CredentialData holds every field of a credential's SAD other than the
// version string and SAID, which Build computes.
type CredentialData struct {
	RegistryID string
	SchemaID   string
	Issuer     string
	Salt       string
	Subject    *CredentialSubject
	Evidence   *sad.Map
	Rules      *sad.Map
}

// CredentialBuilder accumulates a credential's fields before building its
// SAD and SAID-deriving it.
type CredentialBuilder struct {
	data      CredentialData
	dataOrder []string
}

// NewCredentialBuilder starts a builder for a credential issued against
// registryID under schemaID, over subject.
func NewCredentialBuilder(registryID, schemaID string, subject *CredentialSubject) *CredentialBuilder {
	var order []string
	if subject != nil {
		for k := range subject.Data {
			order = append(order, k)
		}
		sort.Strings(order)
	}
	return &CredentialBuilder{
		data: CredentialData{
			RegistryID: registryID,
			SchemaID:   schemaID,
			Subject:    subject,
		},
		dataOrder: order,
	}
}

func (b *CredentialBuilder) Issuer(issuer string) *CredentialBuilder {
	b.data.Issuer = issuer
	return b
}

func (b *CredentialBuilder) Salt(salt string) *CredentialBuilder {
	b.data.Salt = salt
	return b
}

func (b *CredentialBuilder) Evidence(evidence *sad.Map) *CredentialBuilder {
	b.data.Evidence = evidence
	return b
}

func (b *CredentialBuilder) Rules(rules *sad.Map) *CredentialBuilder {
	b.data.Rules = rules
	return b
}

// Build constructs the credential's SAD, SAID-derives its "d" field, and
// wraps it as a Serder under the ACDC protocol. If the subject carries no
// IssuedAt, now fills it (RFC3339) — Build never calls a wall-clock
// function itself, so a test can pass a fixed time and get a reproducible
// SAID.
func (b *CredentialBuilder) Build(now time.Time) (*serder.Serder, error) {
	if b.data.Subject == nil {
		return nil, kerierr.ErrInvalidArgument
	}
	if b.data.Subject.IssuedAt == "" {
		b.data.Subject.IssuedAt = now.UTC().Format(time.RFC3339)
	}

	vs := serder.Versify(serder.ProtoACDC, &serder.Vrsn1_0, serder.KindJSON, 0)
	sd := sad.New(
		sad.Field{Key: "v", Val: vs},
		sad.Field{Key: "d", Val: ""},
		sad.Field{Key: "i", Val: b.data.Issuer},
		sad.Field{Key: "ri", Val: b.data.RegistryID},
		sad.Field{Key: "s", Val: b.data.SchemaID},
		sad.Field{Key: "a", Val: b.data.Subject.sadMap(b.dataOrder)},
	)
	if b.data.Salt != "" {
		sd.Set("u", b.data.Salt)
	}
	if b.data.Evidence != nil {
		sd.Set("e", b.data.Evidence)
	}
	if b.data.Rules != nil {
		sd.Set("r", b.data.Rules)
	}

	raw, resized, err := serder.DeriveSaid(sd, codec.CodeBlake3_256, serder.KindJSON)
	if err != nil {
		return nil, err
	}
	said, err := saidQb64(raw)
	if err != nil {
		return nil, err
	}
	resized.Set("d", said)

	return serder.New(resized, serder.KindJSON, "")
}

// CreateIssuanceEvent builds an "iss" issuance event for credentialSAID
// against registryID, SAID-derived the same way as the credential itself.
// timestamp is caller-supplied (RFC3339), for the same reason Build's now
// parameter is.
func CreateIssuanceEvent(credentialSAID, registryID, timestamp string) (*serder.Serder, error) {
	vs := serder.Versify(serder.ProtoKERI, &serder.Vrsn1_0, serder.KindJSON, 0)
	sd := sad.New(
		sad.Field{Key: "v", Val: vs},
		sad.Field{Key: "t", Val: "iss"},
		sad.Field{Key: "d", Val: ""},
		sad.Field{Key: "i", Val: credentialSAID},
		sad.Field{Key: "s", Val: "0"},
		sad.Field{Key: "ri", Val: registryID},
		sad.Field{Key: "dt", Val: timestamp},
	)

	raw, resized, err := serder.DeriveSaid(sd, codec.CodeBlake3_256, serder.KindJSON)
	if err != nil {
		return nil, err
	}
	said, err := saidQb64(raw)
	if err != nil {
		return nil, err
	}
	resized.Set("d", said)

	return serder.New(resized, serder.KindJSON, "")
}

// IssueCredentialResult bundles the outputs of issuing a credential. Anc is
// always nil: this package does not construct or anchor an interaction
// event (spec.md §9's second open question resolves against building one
// without a reference to verify its exact seal shape against).
type IssueCredentialResult struct {
	ACDC *serder.Serder
	Anc  *serder.Serder
	Iss  *serder.Serder
}

// IssueCredential builds the credential and its issuance event together.
func IssueCredential(b *CredentialBuilder, now time.Time) (*IssueCredentialResult, error) {
	cred, err := b.Build(now)
	if err != nil {
		return nil, err
	}
	said, err := cred.Said("")
	if err != nil {
		return nil, err
	}
	iss, err := CreateIssuanceEvent(said, b.data.RegistryID, now.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	return &IssueCredentialResult{ACDC: cred, Iss: iss}, nil
}

func saidQb64(raw []byte) (string, error) {
	m, err := codec.FromRaw(raw, codec.CodeBlake3_256)
	if err != nil {
		return "", err
	}
	return m.Qb64(), nil
}
