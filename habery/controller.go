package habery

import (
	"fmt"

	"github.com/cvsouth/kericore/codec"
	"github.com/cvsouth/kericore/keys"
	"github.com/cvsouth/kericore/kerierr"
	"github.com/cvsouth/kericore/salter"
	"github.com/cvsouth/kericore/serder"
)

// controllerStem is the fixed derivation path stem for a Controller's own
// signing key, distinct from any Habery-managed identifier's stem.
const controllerStem = "signify:controller"

// Controller is the local client AID a SignifyClient authenticates its
// requests with: one Ed25519 key pair, deterministically derived from a
// passcode, plus the inception event naming it.
type Controller struct {
	salter *salter.Salter
	signer *keys.Signer
	serder *serder.Serder
	pre    string
	stem   string
	ridx   int
	tier   salter.Tier
}

// NewController builds a Controller from a passcode (bran, >=21 chars). tier
// defaults to Low.
func NewController(bran string, tier *salter.Tier) (*Controller, error) {
	if len(bran) < 21 {
		return nil, fmt.Errorf("%w: bran must be at least 21 characters", kerierr.ErrInvalidArgument)
	}
	t := salter.Low
	if tier != nil {
		t = *tier
	}

	saltQb64 := codec.CodeSalt128 + "A" + bran[:21]
	s, err := salter.FromQb64(saltQb64, t)
	if err != nil {
		return nil, err
	}

	path := controllerStem + ":00"
	signer, err := s.Signer(codec.CodeED25519Seed, true, path, nil, true)
	if err != nil {
		return nil, err
	}

	hby, err := New(HaberyArgs{Name: "controller", Passcode: bran, Tier: &t})
	if err != nil {
		return nil, err
	}
	hab, err := hby.MakeHab("controller", MakeHabArgs{})
	if err != nil {
		return nil, err
	}
	pre, err := hab.Pre()
	if err != nil {
		return nil, err
	}

	return &Controller{
		salter: s,
		signer: signer,
		serder: hab.Serder,
		pre:    pre,
		stem:   controllerStem,
		tier:   t,
	}, nil
}

// Pre returns the controller's prefix (AID).
func (c *Controller) Pre() string { return c.pre }

// Signer returns the controller's own signing key.
func (c *Controller) Signer() *keys.Signer { return c.signer }

// Serder returns the controller's inception event.
func (c *Controller) Serder() *serder.Serder { return c.serder }

// Stem returns the controller's key derivation path stem.
func (c *Controller) Stem() string { return c.stem }

// Ridx returns the controller's current rotation index.
func (c *Controller) Ridx() int { return c.ridx }

// SetRidx updates the controller's rotation index, tracking state the
// KERIA agent reports back after a connect/rotation round trip.
func (c *Controller) SetRidx(ridx int) { c.ridx = ridx }

// Tier returns the controller's Argon2id cost tier.
func (c *Controller) Tier() salter.Tier { return c.tier }

// Event returns the inception event and a Cigar signing it, for a client
// bootstrapping its connection to a KERIA agent.
func (c *Controller) Event() (*serder.Serder, *keys.Cigar, error) {
	sig := c.signer.Sign([]byte(c.serder.Raw()))
	cigar, err := keys.NewCigar(sig, codec.CodeED25519Sig, nil)
	if err != nil {
		return nil, nil, err
	}
	return c.serder, cigar, nil
}
