package manager

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/cvsouth/kericore/codec"
	"github.com/cvsouth/kericore/crypt"
	"github.com/cvsouth/kericore/digest"
	"github.com/cvsouth/kericore/indexer"
	"github.com/cvsouth/kericore/kerierr"
	"github.com/cvsouth/kericore/keys"
	"github.com/cvsouth/kericore/salter"
)

// Manager owns a KeyStore and the optional encrypter/decrypter pair that
// seals private key material at rest, and drives key inception, rotation
// and signing for every identifier prefix the KeyStore knows about.
type Manager struct {
	mu        sync.Mutex
	ks        KeyStore
	encrypter *crypt.Encrypter
	decrypter *crypt.Decrypter
}

// NewOpts configures New. KeyStore defaults to a fresh Keeper. Seed and
// Aeid, given together, derive an Encrypter (from Aeid, an Ed25519 Verfer
// qb64) and Decrypter (from Seed, an Ed25519 signing seed qb64) pair used
// to seal private keys at rest; Aeid must be the qb64 public counterpart
// of Seed, or New fails with ErrInvalidKey. Pidx defaults to 0, Algo to
// Salty, Tier to Low.
type NewOpts struct {
	KeyStore KeyStore
	Seed     string
	Aeid     string
	Pidx     *uint64
	Algo     *Algos
	Salter   *salter.Salter
	Tier     salter.Tier
}

// New builds a Manager, lazily seeding its KeyStore's global settings
// (pidx/algo/salt/tier/aeid) only where they are not already present, so
// that reopening a KeyStore from a prior session never overwrites its
// recorded configuration.
func New(opts NewOpts) (*Manager, error) {
	ks := opts.KeyStore
	if ks == nil {
		ks = NewKeeper()
	}

	var enc *crypt.Encrypter
	var dec *crypt.Decrypter
	if opts.Seed != "" && opts.Aeid != "" {
		verfer, err := keys.VerferFromQb64(opts.Aeid)
		if err != nil {
			return nil, err
		}
		enc, err = crypt.NewEncrypterFromVerfer(verfer)
		if err != nil {
			return nil, err
		}
		ok, err := enc.VerifySeed(opts.Seed)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: seed does not match provided aeid", kerierr.ErrInvalidKey)
		}
		dec, err = crypt.NewDecrypterFromSeed(opts.Seed)
		if err != nil {
			return nil, err
		}
	}

	pidx := uint64(0)
	if opts.Pidx != nil {
		pidx = *opts.Pidx
	}
	algo := Salty
	if opts.Algo != nil {
		algo = *opts.Algo
	}
	tier := opts.Tier

	if _, ok := ks.GetGbls("pidx"); !ok {
		ks.PinGbls("pidx", fmt.Sprintf("%x", pidx))
	}
	if _, ok := ks.GetGbls("algo"); !ok {
		ks.PinGbls("algo", algo.String())
	}
	if opts.Salter != nil {
		if _, ok := ks.GetGbls("salt"); !ok {
			saltVal := opts.Salter.Qb64()
			if enc != nil {
				cipher, err := enc.Encrypt(opts.Salter.Matter())
				if err != nil {
					return nil, err
				}
				saltVal = cipher.Qb64()
			}
			ks.PinGbls("salt", saltVal)
		}
	}
	if _, ok := ks.GetGbls("tier"); !ok {
		ks.PinGbls("tier", tier.String())
	}
	if opts.Aeid != "" {
		if _, ok := ks.GetGbls("aeid"); !ok {
			ks.PinGbls("aeid", opts.Aeid)
		}
	}

	return &Manager{ks: ks, encrypter: enc, decrypter: dec}, nil
}

// KeyStore returns the Manager's backing KeyStore.
func (m *Manager) KeyStore() KeyStore { return m.ks }

// Encrypter returns the Manager's Encrypter, or nil if none is configured.
func (m *Manager) Encrypter() *crypt.Encrypter { return m.encrypter }

// Decrypter returns the Manager's Decrypter, or nil if none is configured.
func (m *Manager) Decrypter() *crypt.Decrypter { return m.decrypter }

// Aeid returns the auth-encrypt-id the Manager was configured with.
func (m *Manager) Aeid() (string, bool) { return m.ks.GetGbls("aeid") }

// Pidx returns the next unused prefix index.
func (m *Manager) Pidx() uint64 {
	s, ok := m.ks.GetGbls("pidx")
	if !ok {
		return 0
	}
	n, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0
	}
	return n
}

// SetPidx overwrites the next unused prefix index.
func (m *Manager) SetPidx(pidx uint64) {
	m.ks.PinGbls("pidx", fmt.Sprintf("%x", pidx))
}

// Salt returns the Manager's root salt, decrypted if an encrypter/
// decrypter pair is configured.
func (m *Manager) Salt() (string, error) {
	s, ok := m.ks.GetGbls("salt")
	if !ok {
		return "", kerierr.ErrNotFound
	}
	if m.decrypter == nil {
		return s, nil
	}
	cipher, err := crypt.CipherFromQb64(s)
	if err != nil {
		return "", err
	}
	dm, err := m.decrypter.Decrypt(cipher, false)
	if err != nil || dm.Salter == nil {
		return "", kerierr.ErrDecryption
	}
	return dm.Salter.Qb64(), nil
}

// Tier returns the Manager's default security tier.
func (m *Manager) Tier() (salter.Tier, error) {
	s, ok := m.ks.GetGbls("tier")
	if !ok {
		return 0, kerierr.ErrNotFound
	}
	return salter.ParseTier(s)
}

// Algo returns the Manager's default key-creation algorithm.
func (m *Manager) Algo() (Algos, error) {
	s, ok := m.ks.GetGbls("algo")
	if !ok {
		return 0, kerierr.ErrNotFound
	}
	return ParseAlgos(s)
}

// InceptOpts configures Incept. Every field is optional; Rooted selects
// whether an absent Algo/Salt/Tier falls back to the Manager's own
// configuration (true, the common case) or to the algorithm's bare
// defaults (false, for inception of an identifier under settings that
// intentionally diverge from the Manager's root).
type InceptOpts struct {
	ICodes       []string
	ICount       int
	ICode        string
	NCodes       []string
	NCount       int
	NCode        string
	DCode        string
	Algo         *Algos
	Salt         string
	Stem         string
	Tier         *salter.Tier
	Rooted       bool
	Transferable bool
	Temp         bool
}

// Incept generates an identifier's inception (current) and next key sets,
// persists them, and returns the inception Verfers and the digests of the
// next keys (for embedding in an eventing.InceptOpts.Ndigs).
func (m *Manager) Incept(opts InceptOpts) ([]*keys.Verfer, []*digest.Diger, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	algo := Salty
	if opts.Algo != nil {
		algo = *opts.Algo
	} else if opts.Rooted {
		if a, err := m.Algo(); err == nil {
			algo = a
		}
	}

	saltQb64 := opts.Salt
	if saltQb64 == "" && opts.Rooted {
		if s, err := m.Salt(); err == nil {
			saltQb64 = s
		}
	}

	tier := salter.Low
	if opts.Tier != nil {
		tier = *opts.Tier
	} else if opts.Rooted {
		if t, err := m.Tier(); err == nil {
			tier = t
		}
	}

	pidx := m.Pidx()
	const ridx0, kidx0 = uint64(0), uint64(0)

	creator, err := NewCreator(algo, saltQb64, tier, opts.Stem)
	if err != nil {
		return nil, nil, err
	}

	icode := opts.ICode
	if icode == "" {
		icode = codec.CodeED25519Seed
	}
	icodes := opts.ICodes
	if len(icodes) == 0 {
		icodes = repeatCode(icode, opts.ICount)
	}
	ikeys, err := creator.Create(icodes, 0, codec.CodeED25519Seed, opts.Transferable, pidx, ridx0, kidx0, opts.Temp)
	if err != nil {
		return nil, nil, err
	}
	verfers := make([]*keys.Verfer, len(ikeys.Signers))
	for i, s := range ikeys.Signers {
		verfers[i] = s.Verfer()
	}

	ncode := opts.NCode
	if ncode == "" {
		ncode = codec.CodeED25519Seed
	}
	ncodes := opts.NCodes
	if len(ncodes) == 0 {
		ncodes = repeatCode(ncode, opts.NCount)
	}
	nkidx := kidx0 + uint64(len(icodes))
	nkeys, err := creator.Create(ncodes, 0, codec.CodeED25519Seed, opts.Transferable, pidx, ridx0+1, nkidx, opts.Temp)
	if err != nil {
		return nil, nil, err
	}

	dcode := opts.DCode
	if dcode == "" {
		dcode = codec.CodeBlake3_256
	}
	digers, err := digestVerfers(nkeys.Signers, dcode)
	if err != nil {
		return nil, nil, err
	}

	pp, err := m.buildPrePrm(pidx, algo, creator, tier)
	if err != nil {
		return nil, nil, err
	}

	dt := time.Now().UTC().Format(time.RFC3339)
	newLot := PubLot{Pubs: verferQb64s(verfers), Ridx: ridx0, Kidx: kidx0, Dt: dt}
	nxtLot := PubLot{Pubs: signerQb64s(nkeys.Signers), Ridx: ridx0 + 1, Kidx: nkidx, Dt: dt}
	ps := PreSit{
		Old: PubLot{Pubs: []string{}},
		New: newLot,
		Nxt: nxtLot,
	}

	pre := verfers[0].Qb64()

	if !m.ks.PutPres(pre, pre) {
		return nil, nil, fmt.Errorf("%w: already incepted pre=%s", kerierr.ErrInvalidState, pre)
	}
	if !m.ks.PutPrms(pre, pp) {
		return nil, nil, fmt.Errorf("%w: already incepted prm for pre=%s", kerierr.ErrInvalidState, pre)
	}
	m.SetPidx(pidx + 1)
	if !m.ks.PutSits(pre, ps) {
		return nil, nil, fmt.Errorf("%w: already incepted sit for pre=%s", kerierr.ErrInvalidState, pre)
	}

	if err := m.storeNewKeys(ikeys, icodes, tier, opts.Temp); err != nil {
		return nil, nil, err
	}
	if err := m.storeNewKeys(nkeys, ncodes, tier, opts.Temp); err != nil {
		return nil, nil, err
	}

	m.ks.PutPubs(RiKey(pre, ridx0), PubSet{Pubs: newLot.Pubs})
	m.ks.PutPubs(RiKey(pre, ridx0+1), PubSet{Pubs: nxtLot.Pubs})

	return verfers, digers, nil
}

// RotateOpts configures Rotate.
type RotateOpts struct {
	NCodes       []string
	NCount       int
	NCode        string
	DCode        string
	Transferable bool
	Temp         bool
}

// Rotate shifts pre's key-rotation state (new becomes old, nxt becomes
// new) and generates a fresh nxt key set, returning the now-current
// Verfers and the new next keys' digests. The superseded old keys'
// private material is erased from the KeyStore afterward.
func (m *Manager) Rotate(pre string, opts RotateOpts) ([]*keys.Verfer, []*digest.Diger, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pp, ok := m.ks.GetPrms(pre)
	if !ok {
		return nil, nil, fmt.Errorf("%w: attempt to rotate nonexistent pre=%s", kerierr.ErrNotFound, pre)
	}
	ps, ok := m.ks.GetSits(pre)
	if !ok {
		return nil, nil, fmt.Errorf("%w: attempt to rotate nonexistent pre=%s", kerierr.ErrNotFound, pre)
	}
	if len(ps.Nxt.Pubs) == 0 {
		return nil, nil, fmt.Errorf("%w: attempt to rotate nontransferable pre=%s", kerierr.ErrInvalidState, pre)
	}

	oldLot := ps.Old
	ps.Old = ps.New
	ps.New = ps.Nxt

	verfers, err := m.resolveVerfers(ps.New.Pubs)
	if err != nil {
		return nil, nil, err
	}

	saltQb64, err := m.resolveSalt(pp)
	if err != nil {
		return nil, nil, err
	}

	creator, err := NewCreator(pp.Algo, saltQb64, pp.Tier, pp.Stem)
	if err != nil {
		return nil, nil, err
	}

	ncode := opts.NCode
	if ncode == "" {
		ncode = codec.CodeED25519Seed
	}
	ncodes := opts.NCodes
	if len(ncodes) == 0 {
		ncodes = repeatCode(ncode, opts.NCount)
	}

	ridx := ps.New.Ridx + 1
	kidx := ps.Nxt.Kidx + uint64(len(ps.New.Pubs))

	nkeys, err := creator.Create(ncodes, 0, codec.CodeED25519Seed, opts.Transferable, pp.Pidx, ridx, kidx, opts.Temp)
	if err != nil {
		return nil, nil, err
	}

	dcode := opts.DCode
	if dcode == "" {
		dcode = codec.CodeBlake3_256
	}
	digers, err := digestVerfers(nkeys.Signers, dcode)
	if err != nil {
		return nil, nil, err
	}

	dt := time.Now().UTC().Format(time.RFC3339)
	ps.Nxt = PubLot{Pubs: signerQb64s(nkeys.Signers), Ridx: ridx, Kidx: kidx, Dt: dt}

	m.ks.PinSits(pre, ps)

	if err := m.storeNewKeys(nkeys, ncodes, pp.Tier, opts.Temp); err != nil {
		return nil, nil, err
	}

	m.ks.PutPubs(RiKey(pre, ps.Nxt.Ridx), PubSet{Pubs: ps.Nxt.Pubs})

	for _, pub := range oldLot.Pubs {
		m.ks.RemPris(pub)
	}

	return verfers, digers, nil
}

// Sign signs ser with the private keys behind pubs (or, alternatively,
// verfers). At least one of pubs/verfers must be given; pubs is used when
// both are. Non-indexed
// signatures (Cigar) are returned when indexed is false; indexed
// signatures (Siger), tagged with each signer's position, are returned
// when it is true. indices overrides the default 0..n-1 index assignment;
// when given it must have one entry per resolved signer.
func (m *Manager) Sign(ser []byte, pubs []string, verfers []*keys.Verfer, indexed bool, indices []uint64) ([]*keys.Cigar, []*keys.Siger, error) {
	if len(pubs) == 0 && len(verfers) == 0 {
		return nil, nil, fmt.Errorf("%w: pubs or verfers required for signing", kerierr.ErrInvalidArgument)
	}

	var pubKeys []string
	if len(pubs) > 0 {
		pubKeys = pubs
	} else {
		pubKeys = verferQb64s(verfers)
	}

	signers := make([]*keys.Signer, len(pubKeys))
	for i, pub := range pubKeys {
		s, err := m.resolveSigner(pub)
		if err != nil {
			return nil, nil, err
		}
		signers[i] = s
	}

	if indices != nil && len(indices) != len(signers) {
		return nil, nil, fmt.Errorf("%w: mismatch indices length=%d and signers length=%d", kerierr.ErrInvalidArgument, len(indices), len(signers))
	}

	if indexed {
		sigers := make([]*keys.Siger, len(signers))
		for i, s := range signers {
			idx := uint64(i)
			if indices != nil {
				idx = indices[i]
			}
			sig := s.Sign(ser)
			siger, err := keys.NewSiger(sig, indexer.IdxED25519Sig, idx, nil, s.Verfer())
			if err != nil {
				return nil, nil, err
			}
			sigers[i] = siger
		}
		return nil, sigers, nil
	}

	cigars := make([]*keys.Cigar, len(signers))
	for i, s := range signers {
		sig := s.Sign(ser)
		cigar, err := keys.NewCigar(sig, codec.CodeED25519Sig, s.Verfer())
		if err != nil {
			return nil, nil, err
		}
		cigars[i] = cigar
	}
	return cigars, nil, nil
}

// resolveSigner reconstructs the Signer behind pub, either by decrypting
// its sealed private key from the KeyStore, or by regenerating it from a
// recorded Salty derivation path.
func (m *Manager) resolveSigner(pub string) (*keys.Signer, error) {
	if m.decrypter != nil {
		s, ok := m.ks.GetPris(pub, m.decrypter)
		if !ok {
			return nil, fmt.Errorf("%w: missing prikey for pubkey=%s", kerierr.ErrNotFound, pub)
		}
		return s, nil
	}

	verfer, err := keys.VerferFromQb64(pub)
	if err != nil {
		return nil, err
	}
	ppt, ok := m.ks.GetPths(pub)
	if !ok {
		return nil, fmt.Errorf("%w: missing prikey for pubkey=%s", kerierr.ErrNotFound, pub)
	}
	saltQb64, err := m.Salt()
	if err != nil {
		return nil, fmt.Errorf("%w: missing salt for key regeneration", kerierr.ErrNotFound)
	}
	s, err := salter.FromQb64(saltQb64, ppt.Tier)
	if err != nil {
		return nil, err
	}
	return s.Signer(ppt.Code, verfer.Transferable(), ppt.Path, &ppt.Tier, ppt.Temp)
}

func (m *Manager) resolveVerfers(pubs []string) ([]*keys.Verfer, error) {
	verfers := make([]*keys.Verfer, len(pubs))
	for i, pub := range pubs {
		if m.decrypter != nil {
			s, ok := m.ks.GetPris(pub, m.decrypter)
			if !ok {
				return nil, fmt.Errorf("%w: missing prikey for pubkey=%s", kerierr.ErrNotFound, pub)
			}
			verfers[i] = s.Verfer()
			continue
		}
		v, err := keys.VerferFromQb64(pub)
		if err != nil {
			return nil, err
		}
		verfers[i] = v
	}
	return verfers, nil
}

func (m *Manager) resolveSalt(pp PrePrm) (string, error) {
	if pp.Salt == "" {
		s, err := m.Salt()
		if err != nil {
			return "", nil
		}
		return s, nil
	}
	if m.decrypter == nil {
		return pp.Salt, nil
	}
	cipher, err := crypt.CipherFromQb64(pp.Salt)
	if err != nil {
		return "", err
	}
	dm, err := m.decrypter.Decrypt(cipher, false)
	if err != nil || dm.Salter == nil {
		return "", fmt.Errorf("%w: failed to decrypt salt for rotation", kerierr.ErrDecryption)
	}
	return dm.Salter.Qb64(), nil
}

func (m *Manager) buildPrePrm(pidx uint64, algo Algos, creator Creator, tier salter.Tier) (PrePrm, error) {
	saltVal := creator.Salt()
	if m.encrypter != nil && saltVal != "" {
		saltMatter, err := codec.FromQb64(saltVal)
		if err != nil {
			return PrePrm{}, err
		}
		cipher, err := m.encrypter.Encrypt(saltMatter)
		if err != nil {
			return PrePrm{}, err
		}
		saltVal = cipher.Qb64()
	}
	return PrePrm{Pidx: pidx, Algo: algo, Salt: saltVal, Stem: creator.Stem(), Tier: tier}, nil
}

// storeNewKeys persists generated.Signers, either sealed (if the Manager
// has an encrypter) or as regenerable Salty paths. A Randy key set
// without an encrypter cannot be stored at all, since it has neither a
// sealed form nor a derivation path to fall back to.
func (m *Manager) storeNewKeys(generated *Keys, codes []string, tier salter.Tier, temp bool) error {
	if m.encrypter != nil {
		for _, s := range generated.Signers {
			m.ks.PutPris(s.Verfer().Qb64(), s, m.encrypter)
		}
		return nil
	}
	if generated.Paths != nil {
		for i, path := range generated.Paths {
			code := codec.CodeED25519Seed
			if i < len(codes) {
				code = codes[i]
			}
			m.ks.PutPths(generated.Signers[i].Verfer().Qb64(), PubPath{Path: path, Code: code, Tier: tier, Temp: temp})
		}
		return nil
	}
	return fmt.Errorf("%w: randy keys without encryption", kerierr.ErrInvalidArgument)
}

func digestVerfers(signers []*keys.Signer, dcode string) ([]*digest.Diger, error) {
	digers := make([]*digest.Diger, len(signers))
	for i, s := range signers {
		d, err := digest.New(dcode, s.Verfer().Qb64b())
		if err != nil {
			return nil, err
		}
		digers[i] = d
	}
	return digers, nil
}

func verferQb64s(vs []*keys.Verfer) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.Qb64()
	}
	return out
}

func signerQb64s(ss []*keys.Signer) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = s.Verfer().Qb64()
	}
	return out
}
