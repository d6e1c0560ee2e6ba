// Package workspace loads an Anchor project directory the way the Anchor
// test harness does: it reads Anchor.toml for the provider cluster, wallet,
// and program addresses, parses the IDLs under target/idl/, and hands back
// ready-to-use program clients. It is the fixture layer for integration
// tests that run against a local validator.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/viper"

	anchorgo "github.com/anchorgo/sdk-go"
	"github.com/anchorgo/sdk-go/errors"
	"github.com/anchorgo/sdk-go/idl"
	"github.com/anchorgo/sdk-go/program"
	"github.com/anchorgo/sdk-go/provider"
	"github.com/anchorgo/sdk-go/signers"
)

// ConfigFile is the workspace configuration file name.
const ConfigFile = "Anchor.toml"

// Config is the subset of Anchor.toml the SDK consumes.
type Config struct {
	// Cluster is the provider cluster moniker or RPC URL.
	Cluster string

	// Wallet is the keypair file path ("~" expands to the home directory).
	Wallet string

	// Programs maps program names to deployed addresses for the
	// configured cluster.
	Programs map[string]string
}

// Workspace bundles the loaded configuration, the provider built from it,
// and a client per program found under target/idl/.
type Workspace struct {
	Config   *Config
	Provider *provider.Provider

	// Programs is keyed by the IDL's program name.
	Programs map[string]*program.Program
}

// Option configures workspace loading.
type Option func(*loadOptions)

type loadOptions struct {
	wallet       anchorgo.Wallet
	providerOpts []provider.Option
}

// WithWallet overrides the wallet from Anchor.toml, e.g. with a freshly
// funded test keypair.
func WithWallet(w anchorgo.Wallet) Option {
	return func(o *loadOptions) {
		o.wallet = w
	}
}

// WithProviderOptions passes extra options to the provider constructor.
func WithProviderOptions(opts ...provider.Option) Option {
	return func(o *loadOptions) {
		o.providerOpts = append(o.providerOpts, opts...)
	}
}

// ParseConfig reads Anchor.toml from a workspace directory.
func ParseConfig(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(filepath.Join(dir, ConfigFile))
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.NewProviderError(errors.CONFIG_INVALID,
			fmt.Sprintf("read %s", ConfigFile), err)
	}

	cfg := &Config{
		Cluster: v.GetString("provider.cluster"),
		Wallet:  v.GetString("provider.wallet"),
	}
	if cfg.Cluster == "" {
		return nil, errors.NewProviderError(errors.CONFIG_INVALID,
			"provider.cluster is not set in "+ConfigFile, nil)
	}
	cfg.Programs = v.GetStringMapString("programs." + cfg.Cluster)
	return cfg, nil
}

// Load builds a Workspace from an Anchor project directory.
func Load(dir string, opts ...Option) (*Workspace, error) {
	var lo loadOptions
	for _, opt := range opts {
		opt(&lo)
	}

	cfg, err := ParseConfig(dir)
	if err != nil {
		return nil, err
	}

	wallet := lo.wallet
	if wallet == nil {
		if cfg.Wallet == "" {
			return nil, errors.NewProviderError(errors.CONFIG_INVALID,
				"provider.wallet is not set in "+ConfigFile, nil)
		}
		path, err := expandHome(cfg.Wallet)
		if err != nil {
			return nil, err
		}
		wallet, err = signers.FromKeypairFile(path)
		if err != nil {
			return nil, errors.NewProviderError(errors.CONFIG_INVALID, "load workspace wallet", err)
		}
	}

	prov := provider.New(anchorgo.ClusterByName(cfg.Cluster), wallet, lo.providerOpts...)

	ws := &Workspace{
		Config:   cfg,
		Provider: prov,
		Programs: make(map[string]*program.Program),
	}

	idlDir := filepath.Join(dir, "target", "idl")
	matches, err := filepath.Glob(filepath.Join(idlDir, "*.json"))
	if err != nil {
		return nil, errors.NewProviderError(errors.CONFIG_INVALID, "glob target/idl", err)
	}
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.NewProviderError(errors.CONFIG_INVALID,
				fmt.Sprintf("read %s", path), err)
		}
		def, err := idl.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}

		programID, err := ws.resolveAddress(def)
		if err != nil {
			return nil, err
		}
		ws.Programs[def.Name] = program.New(def, programID, prov)
	}

	return ws, nil
}

// resolveAddress finds a program's deployed address: the Anchor.toml
// programs table wins, the IDL's embedded metadata address is the fallback.
func (ws *Workspace) resolveAddress(def *idl.Idl) (solana.PublicKey, error) {
	if addr, ok := ws.Config.Programs[def.Name]; ok {
		pk, err := solana.PublicKeyFromBase58(addr)
		if err != nil {
			return solana.PublicKey{}, errors.NewProviderError(errors.CONFIG_INVALID,
				fmt.Sprintf("invalid address for program %q in %s", def.Name, ConfigFile), err)
		}
		return pk, nil
	}
	if def.Metadata != nil && def.Metadata.Address != "" {
		pk, err := solana.PublicKeyFromBase58(def.Metadata.Address)
		if err != nil {
			return solana.PublicKey{}, errors.NewProviderError(errors.CONFIG_INVALID,
				fmt.Sprintf("invalid metadata address in IDL %q", def.Name), err)
		}
		return pk, nil
	}
	return solana.PublicKey{}, errors.NewProviderError(errors.CONFIG_INVALID,
		fmt.Sprintf("no address configured for program %q", def.Name), nil)
}

// Close releases the workspace provider's network resources.
func (ws *Workspace) Close() error {
	return ws.Provider.Close()
}

func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.NewProviderError(errors.CONFIG_INVALID, "resolve home directory", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
