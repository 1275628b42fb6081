// Package filestore provides a JSON-file-backed manager.KeyStore, persisting
// key lifecycle state across process restarts. Each bucket (globals,
// per-prefix parameters, sealed or path-only private keys, rotation state,
// per-rotation-index public key sets) is its own file under a directory,
// read and rewritten whole on every access — the same pattern as the Tor
// client's on-disk consensus and microdescriptor cache.
package filestore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/cvsouth/kericore/crypt"
	"github.com/cvsouth/kericore/keys"
	"github.com/cvsouth/kericore/manager"
)

// FileStore is a manager.KeyStore backed by one JSON file per bucket under
// Dir. A single mutex guards every access; key management is low-throughput
// and correctness matters far more than concurrency here.
type FileStore struct {
	mu  sync.Mutex
	dir string
}

// New builds a FileStore rooted at dir. dir is created, along with any
// missing parent directories, on first write.
func New(dir string) *FileStore {
	return &FileStore{dir: dir}
}

var _ manager.KeyStore = (*FileStore)(nil)

func (f *FileStore) path(bucket string) string {
	return filepath.Join(f.dir, bucket+".json")
}

// load reads bucket into out (a pointer to a map), leaving out empty if the
// file does not yet exist.
func (f *FileStore) load(bucket string, out interface{}) error {
	data, err := os.ReadFile(f.path(bucket))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", bucket, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshal %s: %w", bucket, err)
	}
	return nil
}

// save rewrites bucket's file with in, creating Dir if necessary.
func (f *FileStore) save(bucket string, in interface{}) error {
	if err := os.MkdirAll(f.dir, 0700); err != nil {
		return fmt.Errorf("create keystore dir: %w", err)
	}
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", bucket, err)
	}
	return os.WriteFile(f.path(bucket), data, 0600)
}

func (f *FileStore) GetGbls(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := map[string]string{}
	if err := f.load("gbls", &m); err != nil {
		return "", false
	}
	v, ok := m[key]
	return v, ok
}

func (f *FileStore) PinGbls(key, val string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := map[string]string{}
	_ = f.load("gbls", &m)
	m[key] = val
	_ = f.save("gbls", m)
}

func (f *FileStore) GetPrms(pre string) (manager.PrePrm, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := map[string]manager.PrePrm{}
	if err := f.load("prms", &m); err != nil {
		return manager.PrePrm{}, false
	}
	v, ok := m[pre]
	return v, ok
}

func (f *FileStore) PutPrms(pre string, prm manager.PrePrm) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := map[string]manager.PrePrm{}
	_ = f.load("prms", &m)
	if _, ok := m[pre]; ok {
		return false
	}
	m[pre] = prm
	return f.save("prms", m) == nil
}

func (f *FileStore) PinPrms(pre string, prm manager.PrePrm) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := map[string]manager.PrePrm{}
	_ = f.load("prms", &m)
	m[pre] = prm
	_ = f.save("prms", m)
}

func (f *FileStore) GetPris(pub string, decrypter *crypt.Decrypter) (*keys.Signer, bool) {
	f.mu.Lock()
	m := map[string]string{}
	_ = f.load("pris", &m)
	cipherQb64, ok := m[pub]
	f.mu.Unlock()
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

func (f *FileStore) PutPris(pub string, signer *keys.Signer, encrypter *crypt.Encrypter) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := map[string]string{}
	_ = f.load("pris", &m)
	if _, ok := m[pub]; ok {
		return false
	}
	cipher, err := encrypter.Encrypt(signer.Matter())
	if err != nil {
		return false
	}
	m[pub] = cipher.Qb64()
	return f.save("pris", m) == nil
}

func (f *FileStore) PinPris(pub string, signer *keys.Signer, encrypter *crypt.Encrypter) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := map[string]string{}
	_ = f.load("pris", &m)
	cipher, err := encrypter.Encrypt(signer.Matter())
	if err != nil {
		return
	}
	m[pub] = cipher.Qb64()
	_ = f.save("pris", m)
}

func (f *FileStore) RemPris(pub string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := map[string]string{}
	_ = f.load("pris", &m)
	if _, ok := m[pub]; !ok {
		return
	}
	delete(m, pub)
	_ = f.save("pris", m)
}

func (f *FileStore) GetPths(pub string) (manager.PubPath, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := map[string]manager.PubPath{}
	if err := f.load("pths", &m); err != nil {
		return manager.PubPath{}, false
	}
	v, ok := m[pub]
	return v, ok
}

func (f *FileStore) PutPths(pub string, p manager.PubPath) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := map[string]manager.PubPath{}
	_ = f.load("pths", &m)
	if _, ok := m[pub]; ok {
		return false
	}
	m[pub] = p
	return f.save("pths", m) == nil
}

func (f *FileStore) GetPres(pre string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := map[string]string{}
	if err := f.load("pres", &m); err != nil {
		return "", false
	}
	v, ok := m[pre]
	return v, ok
}

func (f *FileStore) PutPres(pre string, val string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := map[string]string{}
	_ = f.load("pres", &m)
	if _, ok := m[pre]; ok {
		return false
	}
	m[pre] = val
	return f.save("pres", m) == nil
}

func (f *FileStore) PinPres(pre string, val string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := map[string]string{}
	_ = f.load("pres", &m)
	m[pre] = val
	_ = f.save("pres", m)
}

func (f *FileStore) GetSits(pre string) (manager.PreSit, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := map[string]manager.PreSit{}
	if err := f.load("sits", &m); err != nil {
		return manager.PreSit{}, false
	}
	v, ok := m[pre]
	return v, ok
}

func (f *FileStore) PutSits(pre string, sit manager.PreSit) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := map[string]manager.PreSit{}
	_ = f.load("sits", &m)
	if _, ok := m[pre]; ok {
		return false
	}
	m[pre] = sit
	return f.save("sits", m) == nil
}

// PinSits unconditionally rewrites the rotation state for pre. Used as the
// atomic commit point of a rotation: the in-memory PreSit's old/new/nxt
// shift has already happened by the time this is called, so the file is
// the single point at which a crash mid-rotation can be observed (either
// the pre-rotation or post-rotation state is on disk, never a partial one).
func (f *FileStore) PinSits(pre string, sit manager.PreSit) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := map[string]manager.PreSit{}
	_ = f.load("sits", &m)
	m[pre] = sit
	_ = f.save("sits", m)
}

func (f *FileStore) GetPubs(riKey string) (manager.PubSet, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := map[string]manager.PubSet{}
	if err := f.load("pubs", &m); err != nil {
		return manager.PubSet{}, false
	}
	v, ok := m[riKey]
	return v, ok
}

func (f *FileStore) PutPubs(riKey string, ps manager.PubSet) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := map[string]manager.PubSet{}
	_ = f.load("pubs", &m)
	if _, ok := m[riKey]; ok {
		return false
	}
	m[riKey] = ps
	return f.save("pubs", m) == nil
}
