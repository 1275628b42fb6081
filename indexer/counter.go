package indexer

import "github.com/cvsouth/kericore/kerierr"

// CounterCodex enumerates the CESR group-count attachment codes: framing
// markers that precede a group of attachments (indexed signatures, receipt
// couples, SAD path signatures, ...) and record how many follow.
const (
	CodeControllerIdxSigs     = "-A"
	CodeWitnessIdxSigs        = "-B"
	CodeNonTransRct           = "-C"
	CodeTransRct              = "-D"
	CodeFirstSeenRpy          = "-E"
	CodeTransIdxSigGroups     = "-F"
	CodeSealSourceCouples     = "-G"
	CodeTransLastIdxSigGroups = "-H"
	CodeSealSourceTriples     = "-I"
	CodeSadPathSig            = "-J"
	CodeSadPathSigGroup       = "-K"
	CodePathedMaterialQuads   = "-L"
	CodeAttachedMaterialQuads = "-V"
	CodeBigAttachedMatQuads   = "-0V"
	CodeKeriProtocolStack     = "--AAA"
)

type counterSizage struct{ hs, ss, fs int }

var counterSizes = map[string]counterSizage{
	CodeControllerIdxSigs:     {2, 2, 4},
	CodeWitnessIdxSigs:        {2, 2, 4},
	CodeNonTransRct:           {2, 2, 4},
	CodeTransRct:              {2, 2, 4},
	CodeFirstSeenRpy:          {2, 2, 4},
	CodeTransIdxSigGroups:     {2, 2, 4},
	CodeSealSourceCouples:     {2, 2, 4},
	CodeTransLastIdxSigGroups: {2, 2, 4},
	CodeSealSourceTriples:     {2, 2, 4},
	CodeSadPathSig:            {2, 2, 4},
	CodeSadPathSigGroup:       {2, 2, 4},
	CodePathedMaterialQuads:   {2, 2, 4},
	CodeAttachedMaterialQuads: {2, 2, 4},
	CodeBigAttachedMatQuads:   {3, 5, 8},
	CodeKeriProtocolStack:     {5, 3, 8},
}

// CounterCodeValid reports whether code is a recognized counter code.
func CounterCodeValid(code string) bool {
	_, ok := counterSizes[code]
	return ok
}

// Counter is a CESR group-count framing code: a code identifying the kind of
// attachment group followed by a base64url count of how many items follow.
type Counter struct {
	code  string
	count uint64
}

func maxCount(ss int) uint64 {
	max := uint64(1)
	for i := 0; i < ss; i++ {
		max *= 64
	}
	return max - 1
}

// NewCounter builds a Counter for code with the given count.
func NewCounter(code string, count uint64) (*Counter, error) {
	sz, ok := counterSizes[code]
	if !ok {
		return nil, kerierr.ErrInvalidCode
	}
	if count > maxCount(sz.ss) {
		return nil, kerierr.ErrInvalidIndex
	}
	return &Counter{code: code, count: count}, nil
}

// CounterFromQb64 parses a counter's qb64 representation.
func CounterFromQb64(qb64 string) (*Counter, error) {
	if qb64 == "" {
		return nil, kerierr.ErrEmptyMaterial
	}
	if qb64[0] != '-' {
		return nil, kerierr.ErrInvalidCode
	}

	var code string
	switch {
	case len(qb64) >= 2 && qb64[1] == '-':
		if len(qb64) < 5 {
			return nil, kerierr.ErrInvalidCesr
		}
		code = qb64[:5]
	case len(qb64) >= 2 && qb64[1] == '0':
		if len(qb64) < 3 {
			return nil, kerierr.ErrInvalidCesr
		}
		code = qb64[:3]
	default:
		if len(qb64) < 2 {
			return nil, kerierr.ErrInvalidCesr
		}
		code = qb64[:2]
	}

	sz, ok := counterSizes[code]
	if !ok {
		return nil, kerierr.ErrInvalidCode
	}
	if len(qb64) < sz.fs {
		return nil, kerierr.ErrInvalidCesr
	}

	count, err := b64ToInt(qb64[sz.hs:sz.fs])
	if err != nil {
		return nil, err
	}
	return &Counter{code: code, count: count}, nil
}

// Qb64 renders the qb64 encoding.
func (c *Counter) Qb64() string {
	sz := counterSizes[c.code]
	return c.code + intToB64(c.count, sz.ss)
}

// Qb64b renders the qb64 encoding as bytes.
func (c *Counter) Qb64b() []byte { return []byte(c.Qb64()) }

// Code returns the Counter's CESR code.
func (c *Counter) Code() string { return c.code }

// Count returns the attachment count.
func (c *Counter) Count() uint64 { return c.count }
