package manager

import (
	"fmt"
	"sync"

	"github.com/cvsouth/kericore/crypt"
	"github.com/cvsouth/kericore/keys"
	"github.com/cvsouth/kericore/salter"
)

// PubPath locates a Salty key pair that was stored unencrypted: the
// derivation path, code and tier needed to regenerate its Signer on
// demand, rather than persisting the private key itself.
type PubPath struct {
	Path string
	Code string
	Tier salter.Tier
	Temp bool
}

// PrePrm holds the parameters an identifier prefix was incepted with:
// everything Incept/Rotate needs to reconstruct the same Creator later.
// Salt holds the Creator's qb64 salt, sealed in a Cipher's qb64 if a
// Manager encrypter is configured, plaintext otherwise; it is empty for
// Randy, which has no salt.
type PrePrm struct {
	Pidx uint64
	Algo Algos
	Salt string
	Stem string
	Tier salter.Tier
}

// PubLot is one ordered set of public keys: the rotation and starting key
// index it was created at, and its creation time.
type PubLot struct {
	Pubs []string
	Ridx uint64
	Kidx uint64
	Dt   string
}

// PreSit is an identifier prefix's key-rotation state machine: the prior
// (old), current (new) and pre-committed (nxt) public key sets. Rotate
// shifts new->old, nxt->new and generates a fresh nxt.
type PreSit struct {
	Old PubLot
	New PubLot
	Nxt PubLot
}

// PubSet is the public key set active as of one rotation index, keyed by
// RiKey for lookup independent of the live PreSit.
type PubSet struct {
	Pubs []string
}

// RiKey builds the lookup key for a PubSet at rotation index ridx of pre.
func RiKey(pre string, ridx uint64) string {
	return fmt.Sprintf("%s.%032x", pre, ridx)
}

// KeyStore persists everything a Manager needs across process restarts:
// global settings, per-prefix parameters and rotation state, and private
// keys (either sealed, or as regenerable Salty paths).
type KeyStore interface {
	GetGbls(key string) (string, bool)
	PinGbls(key, val string)

	GetPrms(pre string) (PrePrm, bool)
	PutPrms(pre string, prm PrePrm) bool
	PinPrms(pre string, prm PrePrm)

	GetPris(pub string, decrypter *crypt.Decrypter) (*keys.Signer, bool)
	PutPris(pub string, signer *keys.Signer, encrypter *crypt.Encrypter) bool
	PinPris(pub string, signer *keys.Signer, encrypter *crypt.Encrypter)
	RemPris(pub string)

	GetPths(pub string) (PubPath, bool)
	PutPths(pub string, p PubPath) bool

	GetPres(pre string) (string, bool)
	PutPres(pre string, val string) bool
	PinPres(pre string, val string)

	GetSits(pre string) (PreSit, bool)
	PutSits(pre string, sit PreSit) bool
	PinSits(pre string, sit PreSit)

	GetPubs(riKey string) (PubSet, bool)
	PutPubs(riKey string, ps PubSet) bool
}

// Keeper is an in-memory KeyStore, the reference implementation used by
// default and for tests. Production deployments persisting across
// restarts should use keystore/filestore instead.
type Keeper struct {
	mu   sync.Mutex
	gbls map[string]string
	pris map[string]string // pubkey -> sealed Cipher qb64
	pths map[string]PubPath
	pres map[string]string
	prms map[string]PrePrm
	sits map[string]PreSit
	pubs map[string]PubSet
}

// NewKeeper builds an empty in-memory Keeper.
func NewKeeper() *Keeper {
	return &Keeper{
		gbls: make(map[string]string),
		pris: make(map[string]string),
		pths: make(map[string]PubPath),
		pres: make(map[string]string),
		prms: make(map[string]PrePrm),
		sits: make(map[string]PreSit),
		pubs: make(map[string]PubSet),
	}
}

func (k *Keeper) GetGbls(key string) (string, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	v, ok := k.gbls[key]
	return v, ok
}

func (k *Keeper) PinGbls(key, val string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.gbls[key] = val
}

func (k *Keeper) GetPrms(pre string) (PrePrm, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	v, ok := k.prms[pre]
	return v, ok
}

func (k *Keeper) PutPrms(pre string, prm PrePrm) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	if _, ok := k.prms[pre]; ok {
		return false
	}
	k.prms[pre] = prm
	return true
}

func (k *Keeper) PinPrms(pre string, prm PrePrm) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.prms[pre] = prm
}

func (k *Keeper) GetPris(pub string, decrypter *crypt.Decrypter) (*keys.Signer, bool) {
	k.mu.Lock()
	cipherQb64, ok := k.pris[pub]
	k.mu.Unlock()
	if !ok || decrypter == nil {
		return nil, false
	}
	verfer, err := keys.VerferFromQb64(pub)
	if err != nil {
		return nil, false
	}
	cipher, err := crypt.CipherFromQb64(cipherQb64)
	if err != nil {
		return nil, false
	}
	dm, err := decrypter.Decrypt(cipher, verfer.Transferable())
	if err != nil || dm.Signer == nil {
		return nil, false
	}
	return dm.Signer, true
}

func (k *Keeper) PutPris(pub string, signer *keys.Signer, encrypter *crypt.Encrypter) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	if _, ok := k.pris[pub]; ok {
		return false
	}
	cipher, err := encrypter.Encrypt(signer.Matter())
	if err != nil {
		return false
	}
	k.pris[pub] = cipher.Qb64()
	return true
}

func (k *Keeper) PinPris(pub string, signer *keys.Signer, encrypter *crypt.Encrypter) {
	k.mu.Lock()
	defer k.mu.Unlock()
	cipher, err := encrypter.Encrypt(signer.Matter())
	if err != nil {
		return
	}
	k.pris[pub] = cipher.Qb64()
}

func (k *Keeper) RemPris(pub string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.pris, pub)
}

func (k *Keeper) GetPths(pub string) (PubPath, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	v, ok := k.pths[pub]
	return v, ok
}

func (k *Keeper) PutPths(pub string, p PubPath) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	if _, ok := k.pths[pub]; ok {
		return false
	}
	k.pths[pub] = p
	return true
}

func (k *Keeper) GetPres(pre string) (string, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	v, ok := k.pres[pre]
	return v, ok
}

func (k *Keeper) PutPres(pre string, val string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	if _, ok := k.pres[pre]; ok {
		return false
	}
	k.pres[pre] = val
	return true
}

func (k *Keeper) PinPres(pre string, val string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.pres[pre] = val
}

func (k *Keeper) GetSits(pre string) (PreSit, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	v, ok := k.sits[pre]
	return v, ok
}

func (k *Keeper) PutSits(pre string, sit PreSit) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	if _, ok := k.sits[pre]; ok {
		return false
	}
	k.sits[pre] = sit
	return true
}

func (k *Keeper) PinSits(pre string, sit PreSit) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.sits[pre] = sit
}

func (k *Keeper) GetPubs(riKey string) (PubSet, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	v, ok := k.pubs[riKey]
	return v, ok
}

func (k *Keeper) PutPubs(riKey string, ps PubSet) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	if _, ok := k.pubs[riKey]; ok {
		return false
	}
	k.pubs[riKey] = ps
	return true
}
