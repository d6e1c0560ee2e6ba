// Command anchorgo is the SDK's command line: it generates typed Go clients
// from Anchor IDL files, fetches IDLs from their on-chain accounts, and
// validates IDL documents.
//
// Usage:
//
//	anchorgo client-gen --idl target/idl/counter.json --out ./counter
//	anchorgo idl fetch --program-id <address> --cluster devnet
//	anchorgo idl parse --idl target/idl/counter.json
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	anchorgo "github.com/anchorgo/sdk-go"
	"github.com/anchorgo/sdk-go/generator"
	"github.com/anchorgo/sdk-go/idl"
	"github.com/anchorgo/sdk-go/program"
	"github.com/anchorgo/sdk-go/provider"
)

var log = logrus.WithField("component", "cli")

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "client-gen":
		err = runClientGen(os.Args[2:])
	case "idl":
		if len(os.Args) < 3 {
			usage()
			os.Exit(2)
		}
		switch os.Args[2] {
		case "fetch":
			err = runIdlFetch(os.Args[3:])
		case "parse":
			err = runIdlParse(os.Args[3:])
		default:
			usage()
			os.Exit(2)
		}
	case "-h", "--help", "help":
		usage()
		return
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		log.WithError(err).Error("command failed")
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `anchorgo - Anchor client tooling for Go

Commands:
  client-gen   generate a typed Go client package from an IDL file
  idl fetch    fetch a program's IDL from its on-chain account
  idl parse    validate an IDL file and print a summary

Run "anchorgo <command> --help" for flags.
`)
}

// newFlagSet builds a flag set wired to viper so every flag can also be set
// through the environment (ANCHORGO_ prefix).
func newFlagSet(name string) (*pflag.FlagSet, *viper.Viper) {
	fs := pflag.NewFlagSet(name, pflag.ExitOnError)
	v := viper.New()
	v.SetEnvPrefix("ANCHORGO")
	v.AutomaticEnv()
	return fs, v
}

func runClientGen(args []string) error {
	fs, v := newFlagSet("client-gen")
	fs.String("idl", "", "path to the IDL JSON file")
	fs.String("out", "", "output directory for the generated package")
	fs.String("package", "", "package name (default: derived from the IDL name)")
	fs.String("program-id", "", "program address baked into the generated client")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := v.BindPFlags(fs); err != nil {
		return err
	}

	idlPath := v.GetString("idl")
	outDir := v.GetString("out")
	if idlPath == "" || outDir == "" {
		return fmt.Errorf("client-gen requires --idl and --out")
	}

	data, err := os.ReadFile(idlPath)
	if err != nil {
		return err
	}
	def, err := idl.Parse(data)
	if err != nil {
		return err
	}

	gen := generator.New(def, generator.Options{
		PackageName: v.GetString("package"),
		ProgramID:   v.GetString("program-id"),
	})
	if err := gen.WriteFiles(outDir); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"program": def.Name,
		"out":     outDir,
	}).Info("client generated")
	return nil
}

func runIdlFetch(args []string) error {
	fs, v := newFlagSet("idl-fetch")
	fs.String("program-id", "", "address of the deployed program")
	fs.String("cluster", "mainnet-beta", "cluster moniker or RPC URL")
	fs.String("out", "", "write the IDL JSON to this file instead of stdout")
	fs.Duration("timeout", 30*time.Second, "RPC timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := v.BindPFlags(fs); err != nil {
		return err
	}

	raw := v.GetString("program-id")
	if raw == "" {
		return fmt.Errorf("idl fetch requires --program-id")
	}
	programID, err := solana.PublicKeyFromBase58(raw)
	if err != nil {
		return fmt.Errorf("invalid program id %q: %w", raw, err)
	}

	// Fetching is read-only, so the provider carries no wallet.
	prov := provider.New(anchorgo.ClusterByName(v.GetString("cluster")), nil)

	ctx, cancel := context.WithTimeout(context.Background(), v.GetDuration("timeout"))
	defer cancel()

	_, rawJSON, err := program.FetchIDL(ctx, programID, prov)
	if err != nil {
		return err
	}

	if out := v.GetString("out"); out != "" {
		if err := os.WriteFile(out, rawJSON, 0o644); err != nil {
			return err
		}
		log.WithField("out", out).Info("IDL written")
		return nil
	}
	_, err = os.Stdout.Write(append(rawJSON, '\n'))
	return err
}

func runIdlParse(args []string) error {
	fs, v := newFlagSet("idl-parse")
	fs.String("idl", "", "path to the IDL JSON file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := v.BindPFlags(fs); err != nil {
		return err
	}

	idlPath := v.GetString("idl")
	if idlPath == "" {
		return fmt.Errorf("idl parse requires --idl")
	}
	data, err := os.ReadFile(idlPath)
	if err != nil {
		return err
	}
	def, err := idl.Parse(data)
	if err != nil {
		return err
	}

	fmt.Printf("name:         %s\n", def.Name)
	fmt.Printf("version:      %s\n", def.Version)
	fmt.Printf("instructions: %d\n", len(def.Instructions))
	fmt.Printf("accounts:     %d\n", len(def.Accounts))
	fmt.Printf("types:        %d\n", len(def.Types))
	fmt.Printf("events:       %d\n", len(def.Events))
	fmt.Printf("errors:       %d\n", len(def.Errors))
	if def.Metadata != nil && def.Metadata.Address != "" {
		fmt.Printf("address:      %s\n", def.Metadata.Address)
	}
	return nil
}
