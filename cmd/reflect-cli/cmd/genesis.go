// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/ava-labs/reflectvm/codec"
	"github.com/ava-labs/reflectvm/genesis"
	"github.com/ava-labs/reflectvm/utils"
)

func newGenesisCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "genesis",
		Short: "Manage the token genesis",
	}
	cmd.AddCommand(newGenesisGenerateCmd(c))
	return cmd
}

func newGenesisGenerateCmd(c *cli) *cobra.Command {
	var (
		name     string
		symbol   string
		decimals uint8
		supply   string
		feeBps   uint16
		standard bool
	)
	cmd := &cobra.Command{
		Use:   "generate [owner]",
		Short: "Write a genesis file granting the initial supply to [owner]",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			owner, err := codec.StringToAddress(args[0])
			if err != nil {
				return err
			}
			initialSupply, err := utils.ParseBalance(supply, decimals)
			if err != nil {
				return err
			}
			g := &genesis.Genesis{
				Name:          name,
				Symbol:        symbol,
				Decimals:      decimals,
				InitialSupply: initialSupply.Dec(),
				Owner:         owner,
				FeeBps:        feeBps,
				Reflective:    !standard,
			}
			if err := g.Verify(); err != nil {
				return err
			}
			b, err := json.MarshalIndent(g, "", "  ")
			if err != nil {
				return err
			}
			if err := os.WriteFile(c.cfg.Genesis, b, 0o600); err != nil {
				return err
			}
			utils.Outf("{{green}}created genesis:{{/}} %s\n", c.cfg.Genesis)
			return nil
		},
	}
	defaults := genesis.Default(codec.EmptyAddress)
	cmd.Flags().StringVar(&name, "name", defaults.Name, "token name")
	cmd.Flags().StringVar(&symbol, "symbol", defaults.Symbol, "token symbol")
	cmd.Flags().Uint8Var(&decimals, "decimals", defaults.Decimals, "number of fractional digits")
	cmd.Flags().StringVar(&supply, "supply", "1000000", "initial supply in whole tokens")
	cmd.Flags().Uint16Var(&feeBps, "fee-bps", defaults.FeeBps, "fee charged on transfers in basis points")
	cmd.Flags().BoolVar(&standard, "standard", false, "keep plain balances without reflection")
	return cmd
}

func newInitCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the token state from the genesis file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tk, err := c.openToken(cmd.Context())
			if err != nil {
				return err
			}
			utils.Outf("{{green}}initialized:{{/}} %s (%s) at %s\n", tk.Name(), tk.Symbol(), c.cfg.Database)
			return nil
		},
	}
}
