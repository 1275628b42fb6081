package eventing

import (
	"fmt"

	"github.com/cvsouth/kericore/codec"
	"github.com/cvsouth/kericore/kerierr"
	"github.com/cvsouth/kericore/sad"
	"github.com/cvsouth/kericore/serder"
)

// InceptOpts configures Incept. Keys is the only required field; every
// other field has the same default-when-empty behavior as the reference
// implementation.
type InceptOpts struct {
	Keys    []string // signing verfer qb64 strings
	Isith   string   // initial signing threshold, hex; "" derives ceil(len(Keys)/2)
	Ndigs   []string // next-key digest qb64 strings
	Nsith   string   // next signing threshold, hex; "" derives ceil(len(Ndigs)/2)
	Toad    *int     // witness threshold; nil derives ample(len(Wits)) if Wits non-empty, else 0
	Wits    []string // witness identifier qb64 strings
	Cnfg    []string // configuration traits
	Data    []any    // anchored seal data
	Version *serder.Version
	Kind    serder.Kind
	Code    string // identifier derivation code; "" defaults per single/multi-key rule below
	Intive  bool   // render kt/nt/bt as decimal integers instead of hex strings
	Delpre  string // delegator prefix; non-empty makes this a delegated inception (dip)
}

func ample(n int) int {
	if n == 0 {
		return 0
	}
	return n/2 + 1
}

// Incept builds a KERI inception (icp) or delegated inception (dip) event.
//
// With exactly one signing key, no delegator, and no explicit Code, the key
// itself becomes the prefix (basic derivation). Otherwise the prefix is
// derived per Code, defaulting to BLAKE3-256: ED25519 or ED25519N give a
// basic prefix from the single key, and BLAKE3-256 gives a self-addressing
// digest of the event. No other digest code is supported for derivation;
// one is rejected with ErrInvalidCode. Delegated inceptions require a
// digestive code.
func Incept(opts InceptOpts) (*serder.Serder, error) {
	if len(opts.Keys) == 0 {
		return nil, kerierr.ErrInvalidArgument
	}

	ilk := serder.IlkIcp
	if opts.Delpre != "" {
		ilk = serder.IlkDip
	}

	isith, err := parseThreshold(opts.Isith, func() int { return max(1, (len(opts.Keys)+1)/2) })
	if err != nil {
		return nil, err
	}
	if isith < 1 || isith > len(opts.Keys) {
		return nil, kerierr.ErrInvalidThreshold
	}

	nsith, err := parseThreshold(opts.Nsith, func() int { return max(0, (len(opts.Ndigs)+1)/2) })
	if err != nil {
		return nil, err
	}
	if nsith > len(opts.Ndigs) {
		return nil, kerierr.ErrInvalidThreshold
	}

	ndigs := nonNil(opts.Ndigs)
	wits := nonNil(opts.Wits)
	seen := make(map[string]bool, len(wits))
	for _, w := range wits {
		if seen[w] {
			return nil, kerierr.ErrInvalidArgument
		}
		seen[w] = true
	}

	toad := 0
	if opts.Toad != nil {
		toad = *opts.Toad
	} else if len(wits) > 0 {
		toad = ample(len(wits))
	}
	if len(wits) > 0 {
		if toad < 1 || toad > len(wits) {
			return nil, kerierr.ErrInvalidThreshold
		}
	} else if toad != 0 {
		return nil, kerierr.ErrInvalidThreshold
	}

	cnfg := nonNil(opts.Cnfg)
	data := nonNilAny(opts.Data)

	vs := serder.Versify(serder.ProtoKERI, opts.Version, orJSON(opts.Kind), 0)

	sd := sad.New(
		sad.Field{Key: "v", Val: vs},
		sad.Field{Key: "t", Val: string(ilk)},
		sad.Field{Key: "d", Val: ""},
		sad.Field{Key: "i", Val: ""},
		sad.Field{Key: "s", Val: "0"},
		sad.Field{Key: "kt", Val: thresholdString(isith, opts.Intive)},
		sad.Field{Key: "k", Val: opts.Keys},
		sad.Field{Key: "nt", Val: thresholdString(nsith, opts.Intive)},
		sad.Field{Key: "n", Val: ndigs},
		sad.Field{Key: "bt", Val: thresholdString(toad, opts.Intive)},
		sad.Field{Key: "b", Val: wits},
		sad.Field{Key: "c", Val: cnfg},
		sad.Field{Key: "a", Val: data},
	)
	if opts.Delpre != "" {
		sd.Set("di", opts.Delpre)
	}

	prefixer, err := deriveInceptionPrefix(sd, opts)
	if err != nil {
		return nil, err
	}

	sd.Set("i", prefixer.Qb64())
	if isDigestiveCode(prefixer.Code()) {
		sd.Set("d", prefixer.Qb64())
	} else {
		raw, resized, err := serder.DeriveSaid(sd, codec.CodeBlake3_256, orJSON(opts.Kind))
		if err != nil {
			return nil, err
		}
		d, err := digestQb64(raw)
		if err != nil {
			return nil, err
		}
		sd = resized
		sd.Set("d", d)
	}

	return serder.New(sd, orJSON(opts.Kind), "")
}

func deriveInceptionPrefix(sd *sad.Map, opts InceptOpts) (*Prefixer, error) {
	if opts.Delpre == "" && opts.Code == "" && len(opts.Keys) == 1 {
		pref, err := PrefixerFromQb64(opts.Keys[0])
		if err != nil {
			return nil, err
		}
		if isDigestiveCode(pref.Code()) {
			return nil, kerierr.ErrInvalidArgument
		}
		return pref, nil
	}

	deriveCode := opts.Code
	if deriveCode == "" {
		deriveCode = codec.CodeBlake3_256
	}

	temp, err := serder.New(sd.Clone(), orJSON(opts.Kind), "")
	if err != nil {
		return nil, err
	}
	pref, err := PrefixerFromEvent(temp, deriveCode)
	if err != nil {
		return nil, err
	}

	if opts.Delpre != "" && !isDigestiveCode(pref.Code()) {
		return nil, kerierr.ErrInvalidArgument
	}
	return pref, nil
}

func parseThreshold(s string, defaultFn func() int) (int, error) {
	if s == "" {
		return defaultFn(), nil
	}
	var n int
	if _, err := fmt.Sscanf(s, "%x", &n); err != nil {
		return 0, kerierr.ErrInvalidArgument
	}
	return n, nil
}

func thresholdString(n int, intive bool) string {
	if intive {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%x", n)
}

func orJSON(k serder.Kind) serder.Kind {
	if k == "" {
		return serder.KindJSON
	}
	return k
}

func digestQb64(raw []byte) (string, error) {
	m, err := codec.FromRaw(raw, codec.CodeBlake3_256)
	if err != nil {
		return "", err
	}
	return m.Qb64(), nil
}

// nonNil returns s, or an empty (non-nil) slice if s is nil, so that the
// field marshals as JSON "[]" rather than "null".
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilAny(s []any) []any {
	if s == nil {
		return []any{}
	}
	return s
}
