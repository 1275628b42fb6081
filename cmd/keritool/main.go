// Command keritool manages KERI identifiers from the command line: incept
// a new one, rotate its keys, sign a message with its current keys, or
// show its rotation state. Key material persists under -store-dir between
// invocations via keystore/filestore.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/cvsouth/kericore/habery"
	"github.com/cvsouth/kericore/keystore/filestore"
	"github.com/cvsouth/kericore/manager"
	"github.com/cvsouth/kericore/salter"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "incept":
		err = runIncept(os.Args[2:], logger)
	case "rotate":
		err = runRotate(os.Args[2:], logger)
	case "sign":
		err = runSign(os.Args[2:], logger)
	case "show":
		err = runShow(os.Args[2:], logger)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "keritool: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: keritool <incept|rotate|sign|show> [flags]")
}

// openHabery builds a Habery over a filestore.FileStore rooted at
// storeDir, deriving its Manager's encryption boundary from passcode the
// same way on every invocation.
func openHabery(storeDir, name, passcode string, tier salter.Tier) (*habery.Habery, error) {
	return habery.New(habery.HaberyArgs{
		Name:     name,
		Passcode: passcode,
		Tier:     &tier,
		KeyStore: filestore.New(storeDir),
	})
}

func parseTier(s string) (salter.Tier, error) {
	if s == "" {
		return salter.Low, nil
	}
	return salter.ParseTier(s)
}

func runIncept(args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("incept", flag.ExitOnError)
	storeDir := fs.String("store-dir", "./keristore", "key store directory")
	passcode := fs.String("passcode", "", "passcode (bran), at least 21 characters")
	tierFlag := fs.String("tier", "low", "Argon2id cost tier: low, med, high")
	name := fs.String("name", "default", "habery name, used as the key derivation stem")
	icount := fs.Int("icount", 1, "initial signing key count")
	ncount := fs.Int("ncount", 1, "next signing key count")
	transferable := fs.Bool("transferable", true, "whether the identifier's keys are transferable")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *passcode == "" {
		return fmt.Errorf("-passcode is required")
	}
	tier, err := parseTier(*tierFlag)
	if err != nil {
		return err
	}

	hby, err := openHabery(*storeDir, *name, *passcode, tier)
	if err != nil {
		return err
	}
	hab, err := hby.MakeHab(*name, habery.MakeHabArgs{
		ICount:       icount,
		NCount:       ncount,
		Transferable: transferable,
	})
	if err != nil {
		return err
	}
	pre, err := hab.Pre()
	if err != nil {
		return err
	}

	logger.Info("incepted identifier", "pre", pre, "name", *name)
	fmt.Println(pre)
	fmt.Println(hab.Serder.Raw())
	return nil
}

func runRotate(args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("rotate", flag.ExitOnError)
	storeDir := fs.String("store-dir", "./keristore", "key store directory")
	passcode := fs.String("passcode", "", "passcode (bran), at least 21 characters")
	tierFlag := fs.String("tier", "low", "Argon2id cost tier: low, med, high")
	name := fs.String("name", "default", "habery name the identifier was incepted under")
	pre := fs.String("pre", "", "identifier prefix to rotate")
	ncount := fs.Int("ncount", 1, "next signing key count")
	transferable := fs.Bool("transferable", true, "whether the rotated keys are transferable")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *passcode == "" || *pre == "" {
		return fmt.Errorf("-passcode and -pre are required")
	}
	tier, err := parseTier(*tierFlag)
	if err != nil {
		return err
	}

	hby, err := openHabery(*storeDir, *name, *passcode, tier)
	if err != nil {
		return err
	}
	verfers, digers, err := hby.Mgr().Rotate(*pre, manager.RotateOpts{
		NCount:       *ncount,
		Transferable: *transferable,
	})
	if err != nil {
		return err
	}

	logger.Info("rotated identifier", "pre", *pre, "new_key_count", len(verfers))
	for _, v := range verfers {
		fmt.Println(v.Qb64())
	}
	for _, d := range digers {
		fmt.Println(d.Qb64())
	}
	return nil
}

func runSign(args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("sign", flag.ExitOnError)
	storeDir := fs.String("store-dir", "./keristore", "key store directory")
	passcode := fs.String("passcode", "", "passcode (bran), at least 21 characters")
	tierFlag := fs.String("tier", "low", "Argon2id cost tier: low, med, high")
	name := fs.String("name", "default", "habery name the identifier was incepted under")
	pre := fs.String("pre", "", "identifier prefix to sign with")
	message := fs.String("message", "", "message to sign")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *passcode == "" || *pre == "" || *message == "" {
		return fmt.Errorf("-passcode, -pre and -message are required")
	}
	tier, err := parseTier(*tierFlag)
	if err != nil {
		return err
	}

	hby, err := openHabery(*storeDir, *name, *passcode, tier)
	if err != nil {
		return err
	}
	sit, ok := filestore.New(*storeDir).GetSits(*pre)
	if !ok {
		return fmt.Errorf("no rotation state found for pre=%s", *pre)
	}

	cigars, sigers, err := hby.Mgr().Sign([]byte(*message), sit.New.Pubs, nil, true, nil)
	if err != nil {
		return err
	}

	logger.Info("signed message", "pre", *pre, "signature_count", len(sigers)+len(cigars))
	for _, s := range sigers {
		fmt.Println(s.Qb64())
	}
	for _, c := range cigars {
		fmt.Println(c.Qb64())
	}
	return nil
}

func runShow(args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	storeDir := fs.String("store-dir", "./keristore", "key store directory")
	pre := fs.String("pre", "", "identifier prefix to show")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *pre == "" {
		return fmt.Errorf("-pre is required")
	}

	store := filestore.New(*storeDir)
	prm, ok := store.GetPrms(*pre)
	if !ok {
		return fmt.Errorf("no parameters found for pre=%s", *pre)
	}
	sit, ok := store.GetSits(*pre)
	if !ok {
		return fmt.Errorf("no rotation state found for pre=%s", *pre)
	}

	logger.Info("showing identifier", "pre", *pre)
	fmt.Printf("pre:  %s\n", *pre)
	fmt.Printf("algo: %s\n", prm.Algo)
	fmt.Printf("tier: %s\n", prm.Tier)
	fmt.Printf("current keys (ridx=%d):\n", sit.New.Ridx)
	for _, p := range sit.New.Pubs {
		fmt.Printf("  %s\n", p)
	}
	fmt.Printf("next keys pre-committed (ridx=%d):\n", sit.Nxt.Ridx)
	for _, p := range sit.Nxt.Pubs {
		fmt.Printf("  %s\n", p)
	}
	return nil
}
