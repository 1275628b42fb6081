// Package habery provides Habery, the user-facing layer over Manager that
// creates and names KERI identifiers (Habs): turning a passcode or salt
// into a key-management setup, then building each identifier's inception
// event from freshly generated keys.
package habery

import (
	"fmt"

	"github.com/cvsouth/kericore/codec"
	"github.com/cvsouth/kericore/eventing"
	"github.com/cvsouth/kericore/kerierr"
	"github.com/cvsouth/kericore/manager"
	"github.com/cvsouth/kericore/salter"
	"github.com/cvsouth/kericore/serder"
)

// TraitCodex names the configuration traits an inception event's "c" field
// can carry.
const (
	TraitEstOnly       = "EO"
	TraitDoNotDelegate = "DND"
	TraitNoBackers     = "NB"
)

// HaberyArgs configures a new Habery.
type HaberyArgs struct {
	Name     string
	Passcode string // "bran": derives Seed/Aeid when non-empty and Seed is empty
	Seed     string
	Aeid     string
	Pidx     *uint64
	Salt     string
	Tier     *salter.Tier
	// KeyStore backs the underlying Manager. nil defaults to an in-memory
	// manager.Keeper; pass a keystore/filestore.FileStore for state that
	// survives process restarts.
	KeyStore manager.KeyStore
}

// MakeHabArgs configures a new identifier. Zero values take the same
// defaults MakeHab applies explicitly.
type MakeHabArgs struct {
	Code         string // identifier derivation code; "" defaults to BLAKE3_256
	Transferable *bool  // nil defaults to true
	Isith        string
	ICount       *int // nil defaults to 1
	Nsith        string
	NCount       *int // nil defaults to ICount
	Toad         *int
	Wits         []string
	Delpre       string
	EstOnly      bool
	Dnd          bool
	Data         []any
}

// Hab is one named KERI identifier: its inception event.
type Hab struct {
	Name   string
	Serder *serder.Serder
}

// Pre returns the identifier prefix (the inception event's "i" field).
func (h *Hab) Pre() (string, error) {
	return h.Serder.Sad().GetString("i")
}

// Habery manages a named group of identifiers backed by one Manager.
type Habery struct {
	name string
	mgr  *manager.Manager
	habs map[string]*Hab
}

// New builds a Habery. A Passcode (bran, >=21 chars) derives a low-tier
// seed/aeid pair deterministically, the same way Controller derives its
// own signing key from a bran, so that re-running with the same passcode
// reconstructs the same encryption boundary for stored private keys.
func New(args HaberyArgs) (*Habery, error) {
	seed := args.Seed
	aeid := args.Aeid

	if args.Passcode != "" && seed == "" {
		if len(args.Passcode) < 21 {
			return nil, fmt.Errorf("%w: passcode (bran) too short, must be at least 21 characters", kerierr.ErrInvalidArgument)
		}
		saltQb64 := codec.CodeSalt128 + "A" + args.Passcode[:21]
		s, err := salter.FromQb64(saltQb64, salter.Low)
		if err != nil {
			return nil, err
		}
		signer, err := s.Signer(codec.CodeED25519Seed, false, "00", nil, false)
		if err != nil {
			return nil, err
		}
		seed = signer.Qb64()
		if aeid == "" {
			aeid = signer.Verfer().Qb64()
		}
	}

	algo := manager.Randy
	if args.Salt != "" {
		algo = manager.Salty
	}

	var slt *salter.Salter
	tier := salter.Low
	if args.Tier != nil {
		tier = *args.Tier
	}
	if args.Salt != "" {
		var err error
		slt, err = salter.FromQb64(args.Salt, tier)
		if err != nil {
			return nil, err
		}
	}

	mgr, err := manager.New(manager.NewOpts{
		KeyStore: args.KeyStore,
		Seed:     seed,
		Aeid:     aeid,
		Pidx:     args.Pidx,
		Algo:     &algo,
		Salter:   slt,
		Tier:     tier,
	})
	if err != nil {
		return nil, err
	}

	return &Habery{name: args.Name, mgr: mgr, habs: make(map[string]*Hab)}, nil
}

// Mgr returns the underlying Manager.
func (h *Habery) Mgr() *manager.Manager { return h.mgr }

// Name returns the Habery's name.
func (h *Habery) Name() string { return h.name }

// Habs returns every Hab created so far, in no particular order.
func (h *Habery) Habs() []*Hab {
	out := make([]*Hab, 0, len(h.habs))
	for _, hab := range h.habs {
		out = append(out, hab)
	}
	return out
}

// HabByName looks up a previously created Hab.
func (h *Habery) HabByName(name string) (*Hab, bool) {
	hab, ok := h.habs[name]
	return hab, ok
}

// MakeHab generates a fresh key set rooted at this Habery's Manager and
// builds the named identifier's inception event from it.
func (h *Habery) MakeHab(name string, args MakeHabArgs) (*Hab, error) {
	code := args.Code
	if code == "" {
		code = codec.CodeBlake3_256
	}
	transferable := true
	if args.Transferable != nil {
		transferable = *args.Transferable
	}
	icount := 1
	if args.ICount != nil {
		icount = *args.ICount
	}
	ncount := icount
	if args.NCount != nil {
		ncount = *args.NCount
	}
	isith := args.Isith
	nsith := args.Nsith
	if nsith == "" {
		nsith = isith
	}

	if !transferable {
		ncount = 0
		nsith = "0"
	}

	verfers, digers, err := h.mgr.Incept(manager.InceptOpts{
		ICount:       icount,
		ICode:        codec.CodeED25519Seed,
		NCount:       ncount,
		NCode:        codec.CodeED25519Seed,
		DCode:        codec.CodeBlake3_256,
		Stem:         h.name,
		Rooted:       true,
		Transferable: transferable,
		Temp:         false,
	})
	if err != nil {
		return nil, err
	}

	if isith == "" {
		isith = fmt.Sprintf("%x", max(1, (len(verfers)+1)/2))
	}
	if nsith == "" && len(digers) > 0 {
		nsith = fmt.Sprintf("%x", max(1, (len(digers)+1)/2))
	}

	var cnfg []string
	if args.EstOnly {
		cnfg = append(cnfg, TraitEstOnly)
	}
	if args.Dnd {
		cnfg = append(cnfg, TraitDoNotDelegate)
	}

	keys := make([]string, len(verfers))
	for i, v := range verfers {
		keys[i] = v.Qb64()
	}
	ndigs := make([]string, len(digers))
	for i, d := range digers {
		ndigs[i] = d.Qb64()
	}

	icp, err := eventing.Incept(eventing.InceptOpts{
		Keys:   keys,
		Isith:  isith,
		Ndigs:  ndigs,
		Nsith:  nsith,
		Toad:   args.Toad,
		Wits:   args.Wits,
		Cnfg:   cnfg,
		Data:   args.Data,
		Code:   code,
		Delpre: args.Delpre,
	})
	if err != nil {
		return nil, err
	}

	hab := &Hab{Name: name, Serder: icp}
	h.habs[name] = hab
	return hab, nil
}
