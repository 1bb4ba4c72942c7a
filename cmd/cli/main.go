package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ninja0404/curve-launchpad/pkg/config"
	"github.com/ninja0404/curve-launchpad/pkg/engine"
	"github.com/ninja0404/curve-launchpad/pkg/ledger"
	"github.com/ninja0404/curve-launchpad/pkg/store"
	"github.com/ninja0404/curve-launchpad/pkg/wallet"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type globalOpts struct {
	configPath  string
	storePath   string
	keypairPath string
	privateKey  string
	logLevel    string
}

func newRootCmd() *cobra.Command {
	opts := &globalOpts{}

	root := &cobra.Command{
		Use:   "launchcli",
		Short: "Bonding-curve token launch engine CLI",
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to engine config file")
	root.PersistentFlags().StringVar(&opts.storePath, "store", "launchpad.db", "leveldb store path (empty for in-memory)")
	root.PersistentFlags().StringVar(&opts.keypairPath, "keypair", "", "path to solana-keygen json for the caller identity")
	root.PersistentFlags().StringVar(&opts.privateKey, "private-key", "", "base58 private key for the caller identity (alternative to --keypair)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level (debug|info|warn|error)")

	root.AddCommand(
		newConfigCmd(),
		newInitCmd(opts),
		newSetParamsCmd(opts),
		newCreateCmd(opts),
		newBuyCmd(opts),
		newSellCmd(opts),
		newWithdrawCmd(opts),
		newCurveCmd(opts),
		newGlobalCmd(opts),
		newQuoteCmd(opts),
		newAccountCmd(opts),
	)

	return root
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show default engine config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultEngineConfig()
			fmt.Fprintf(cmd.OutOrStdout(),
				"virtual_token=%d\nvirtual_sol=%d\nreal_token=%d\nsupply=%d\nfee_bps=%d\n",
				cfg.Launch.InitialVirtualTokenReserves,
				cfg.Launch.InitialVirtualSolReserves,
				cfg.Launch.InitialRealTokenReserves,
				cfg.Launch.InitialTokenSupply,
				cfg.Launch.FeeBasisPoints,
			)
			return nil
		},
	}
}

type runtimeDeps struct {
	svc    *engine.Service
	ledger ledger.Ledger
	caller wallet.Identity
	store  store.Store
}

func (d *runtimeDeps) close() {
	if d.store != nil {
		_ = d.store.Close()
	}
}

func newDeps(cmd *cobra.Command, opts *globalOpts) (*runtimeDeps, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.storePath != "" {
		cfg.StorePath = opts.storePath
	}
	cfg.Logger = zerolog.New(cmd.ErrOrStderr()).Level(parseLogLevel(opts.logLevel)).With().Timestamp().Logger()

	var st store.Store
	if cfg.StorePath != "" {
		st, err = store.OpenLevel(cfg.StorePath)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
	} else {
		st = store.NewMemory()
	}

	led := ledger.NewStored(st)
	eng, err := engine.New(st, led,
		engine.WithLogger(cfg.Logger),
		engine.WithLaunchParams(cfg.Launch),
	)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	svc := engine.NewService(eng, engine.ServiceConfig{
		RPS:     cfg.Service.RPS,
		Burst:   cfg.Service.Burst,
		Timeout: cfg.Service.Timeout,
		Logger:  cfg.Logger,
	})

	var caller wallet.Identity
	switch {
	case opts.keypairPath != "":
		local, err := wallet.NewLocalFromKeygen(opts.keypairPath)
		if err != nil {
			_ = st.Close()
			return nil, err
		}
		caller = local
	case opts.privateKey != "":
		local, err := wallet.NewLocalFromBase58(opts.privateKey)
		if err != nil {
			_ = st.Close()
			return nil, err
		}
		caller = local
	}

	return &runtimeDeps{svc: svc, ledger: led, caller: caller, store: st}, nil
}

func requireCaller(d *runtimeDeps) error {
	if d.caller == nil {
		return fmt.Errorf("caller identity is required (use --keypair or --private-key)")
	}
	return nil
}

func parseLogLevel(lvl string) zerolog.Level {
	switch strings.ToLower(lvl) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
