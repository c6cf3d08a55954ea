// Command ledgerdiff compares two month snapshots stored as JSON files and
// prints the per-category change records.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"finledger/internal/archive"
	"finledger/internal/core"
	"finledger/internal/reconcile"

	"github.com/alecthomas/kong"
)

// globals are shared by every command.
type globals struct{}

var out io.Writer = os.Stdout

var cli struct {
	Globals globals `embed:""`

	Diff diffCmd `cmd:"" help:"Diff two snapshots and print the change records."`
	Key  keyCmd  `cmd:"" help:"Print the archive key for a point in time."`
}

type diffCmd struct {
	Previous      string `required:"" help:"Snapshot before the edit ('-' reads stdin)."`
	Current       string `required:"" help:"Snapshot after the edit ('-' reads stdin)."`
	IdentityField string `name:"identity-field" default:"remarks" help:"Field matching rows across snapshots."`
	AmountField   string `name:"amount-field" default:"amount" help:"Field compared to detect updates."`
	Strict        bool   `help:"Fail on missing or duplicate identities instead of keeping the last row."`
}

func (c *diffCmd) Run(_ *globals) error {
	if c.Previous == "-" && c.Current == "-" {
		return fmt.Errorf("only one snapshot can be read from stdin")
	}
	previous, err := readSnapshot(c.Previous)
	if err != nil {
		return err
	}
	current, err := readSnapshot(c.Current)
	if err != nil {
		return err
	}

	opts := []reconcile.Option{
		reconcile.WithIdentityField(c.IdentityField),
		reconcile.WithAmountField(c.AmountField),
	}
	if c.Strict {
		if err := reconcile.CheckIdentities(previous, opts...); err != nil {
			return fmt.Errorf("previous: %w", err)
		}
		if err := reconcile.CheckIdentities(current, opts...); err != nil {
			return fmt.Errorf("current: %w", err)
		}
	}

	return writeJSON(out, reconcile.Reconcile(previous, current, opts...))
}

type keyCmd struct {
	At   string `help:"RFC 3339 time to format; defaults to now."`
	Zone string `name:"tz" default:"Local" help:"IANA time zone of the key."`
}

func (c *keyCmd) Run(_ *globals) error {
	keyer, err := archive.NewKeyer(c.Zone)
	if err != nil {
		return err
	}
	at := time.Now()
	if c.At != "" {
		if at, err = time.Parse(time.RFC3339, c.At); err != nil {
			return fmt.Errorf("parse --at: %w", err)
		}
	}
	_, err = fmt.Fprintln(out, keyer.Key(at))
	return err
}

func readSnapshot(path string) (core.Snapshot, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open snapshot: %w", err)
		}
		defer f.Close()
		r = f
	}

	var s core.Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	return s, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("ledgerdiff"),
		kong.Description("Reconcile ledger snapshots offline."),
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
