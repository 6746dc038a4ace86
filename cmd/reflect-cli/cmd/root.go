// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ava-labs/reflectvm/codec"
	"github.com/ava-labs/reflectvm/config"
	"github.com/ava-labs/reflectvm/event"
	"github.com/ava-labs/reflectvm/genesis"
	"github.com/ava-labs/reflectvm/pebble"
	"github.com/ava-labs/reflectvm/reflection"
	"github.com/ava-labs/reflectvm/state"
	"github.com/ava-labs/reflectvm/token"

	reflecttrace "github.com/ava-labs/reflectvm/trace"
)

const defaultConfigPath = ".reflect/config.yaml"

var ErrMissingGenesis = errors.New("genesis file not found, run `genesis generate` first")

type cli struct {
	configPath  string
	logLevel    string
	database    string
	genesisPath string
	yes         bool

	cfg        *config.Config
	logFactory *logFactory
	log        logging.Logger
	tracer     trace.Tracer

	db        state.Database
	gatherers prometheus.Gatherers
	genesis   *genesis.Genesis
	token     *token.Token
	cleanup   []func() error

	// serve echoes logs to stderr and streams transfers
	serveLogs     bool
	subscriptions []event.Subscription[*reflection.Transfer]
}

func NewRootCmd() *cobra.Command {
	c := &cli{}
	cmd := &cobra.Command{
		Use:   "reflect-cli",
		Short: "Manage a reflection token ledger",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.loadConfig(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cobra.EnablePrefixMatching = true
	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.DisableAutoGenTag = true
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.PersistentFlags().StringVar(&c.configPath, "config", defaultConfigPath, "path to the yaml config")
	cmd.PersistentFlags().StringVar(&c.logLevel, "log-level", "info", "log level")
	cmd.PersistentFlags().StringVar(&c.database, "database", "", "pebble directory or "+config.MemoryDatabase)
	cmd.PersistentFlags().StringVar(&c.genesisPath, "genesis", "", "path to the genesis file")
	cmd.PersistentFlags().BoolVar(&c.yes, "yes", false, "skip confirmation prompts")

	cmd.AddCommand(
		newGenesisCmd(c),
		newInitCmd(c),
		newInfoCmd(c),
		newBalanceCmd(c),
		newTransferCmd(c),
		newFeeCmd(c),
		newMintCmd(c),
		newBurnCmd(c),
		newReflectionCmd(c),
		newServeCmd(c),
	)

	cobra.OnFinalize(func() {
		if err := c.close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close token: %s\n", err)
		}
	})
	return cmd
}

// loadConfig reads the config file and applies any flags set on the command
// line on top of it.
func (c *cli) loadConfig(cmd *cobra.Command) error {
	cfg, err := config.LoadFile(c.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = c.logLevel
	}
	if flags.Changed("database") {
		cfg.Database = c.database
	}
	if flags.Changed("genesis") {
		cfg.Genesis = c.genesisPath
	}
	c.cfg = cfg
	return cfg.Verify()
}

func (c *cli) loadGenesis() (*genesis.Genesis, error) {
	b, err := os.ReadFile(c.cfg.Genesis)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingGenesis, c.cfg.Genesis)
	}
	if err != nil {
		return nil, err
	}
	return genesis.Load(b)
}

// openToken builds the logger, tracer and database from the config and
// opens the token. Everything it opens is released by [cli.close].
func (c *cli) openToken(ctx context.Context) (*token.Token, error) {
	if c.token != nil {
		return c.token, nil
	}
	g, err := c.loadGenesis()
	if err != nil {
		return nil, err
	}
	c.genesis = g

	if err := c.initLogger(); err != nil {
		return nil, err
	}

	if c.tracer, err = reflecttrace.New(&c.cfg.Trace); err != nil {
		return nil, err
	}
	c.cleanup = append(c.cleanup, c.tracer.Close)

	registry := prometheus.NewRegistry()
	c.gatherers = prometheus.Gatherers{registry}
	if c.cfg.InMemory() {
		c.db = memdb.New()
	} else {
		db, dbRegistry, err := pebble.New(c.cfg.Database, c.cfg.Pebble)
		if err != nil {
			return nil, err
		}
		c.db = db
		c.gatherers = append(c.gatherers, dbRegistry)
	}
	c.cleanup = append(c.cleanup, c.db.Close)

	log := c.log
	logTransfers := event.SubscriptionFunc[*reflection.Transfer]{
		AcceptF: func(_ context.Context, tr *reflection.Transfer) error {
			log.Info("transfer",
				zap.Stringer("from", tr.From),
				zap.Stringer("to", tr.To),
				zap.String("amount", tr.Amount.Dec()),
				zap.String("credited", tr.Credited.Dec()),
			)
			return nil
		},
	}
	c.token, err = token.New(ctx, c.db, g,
		token.WithLogger(c.log),
		token.WithTracer(c.tracer),
		token.WithRegisterer(prometheus.WrapRegistererWithPrefix(c.cfg.MetricsNamespace+"_", registry)),
		token.WithSubscriptions(logTransfers),
		token.WithSubscriptions(c.subscriptions...),
	)
	if err != nil {
		return nil, err
	}
	c.cleanup = append(c.cleanup, c.token.Close)
	return c.token, nil
}

func (c *cli) initLogger() error {
	if c.log != nil {
		return nil
	}
	level, err := c.cfg.GetLogLevel()
	if err != nil {
		return err
	}
	loggingConfig := logging.Config{}
	loggingConfig.LogLevel = level
	loggingConfig.DisplayLevel = level
	loggingConfig.Directory = c.cfg.LogDir
	loggingConfig.LogFormat = logging.JSON
	loggingConfig.DisableWriterDisplaying = !c.serveLogs
	c.logFactory = newLogFactory(loggingConfig)
	c.cleanup = append(c.cleanup, func() error {
		c.logFactory.Close()
		return nil
	})
	c.log, err = c.logFactory.Make("reflect")
	return err
}

// caller resolves the --caller flag, defaulting to the genesis owner.
func (c *cli) caller(s string) (codec.Address, error) {
	if len(s) == 0 {
		return c.genesis.Owner, nil
	}
	return codec.StringToAddress(s)
}

func (c *cli) close() error {
	var errs []error
	for i := len(c.cleanup) - 1; i >= 0; i-- {
		if err := c.cleanup[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.cleanup = nil
	return errors.Join(errs...)
}
