// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/holiman/uint256"
	"github.com/spf13/cobra"

	"github.com/ava-labs/reflectvm/codec"
	"github.com/ava-labs/reflectvm/reflection"
	"github.com/ava-labs/reflectvm/token"
	"github.com/ava-labs/reflectvm/utils"
)

func newInfoCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print the token metadata, supply and fee",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			tk, err := c.openToken(ctx)
			if err != nil {
				return err
			}
			supply, err := tk.TotalSupply(ctx)
			if err != nil {
				return err
			}
			mode := "standard"
			if tk.Reflective() {
				mode = "reflective"
			}
			utils.Outf("{{yellow}}name:{{/}} %s\n", tk.Name())
			utils.Outf("{{yellow}}symbol:{{/}} %s\n", tk.Symbol())
			utils.Outf("{{yellow}}decimals:{{/}} %d\n", tk.Decimals())
			utils.Outf("{{yellow}}mode:{{/}} %s\n", mode)
			utils.Outf("{{yellow}}supply:{{/}} %s\n", utils.FormatBalance(supply, tk.Decimals()))
			utils.Outf("{{yellow}}fee:{{/}} %d bps\n", tk.CurrentFeeBps())
			return nil
		},
	}
}

func newBalanceCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "balance [address]",
		Short: "Print the balance of [address]",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			addr, err := codec.StringToAddress(args[0])
			if err != nil {
				return err
			}
			tk, err := c.openToken(ctx)
			if err != nil {
				return err
			}
			bal, err := tk.BalanceOf(ctx, addr)
			if err != nil {
				return err
			}
			utils.Outf("{{yellow}}balance:{{/}} %s %s\n", utils.FormatBalance(bal, tk.Decimals()), tk.Symbol())
			return nil
		},
	}
}

func newTransferCmd(c *cli) *cobra.Command {
	var exempt, dryRun bool
	cmd := &cobra.Command{
		Use:   "transfer [from] [to] [amount]",
		Short: "Move [amount] whole tokens from [from] to [to]",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			from, err := codec.StringToAddress(args[0])
			if err != nil {
				return err
			}
			to, err := codec.StringToAddress(args[1])
			if err != nil {
				return err
			}
			tk, err := c.openToken(ctx)
			if err != nil {
				return err
			}
			amount, err := utils.ParseBalance(args[2], tk.Decimals())
			if err != nil {
				return err
			}

			if dryRun {
				q, err := tk.Quote(ctx, from, to, amount)
				if err != nil {
					return err
				}
				printTransfer(tk, q.Transfer)
				utils.Outf("{{yellow}}sender balance after:{{/}} %s\n", utils.FormatBalance(q.FromBalance, tk.Decimals()))
				utils.Outf("{{yellow}}recipient balance after:{{/}} %s\n", utils.FormatBalance(q.ToBalance, tk.Decimals()))
				return nil
			}

			var tr *reflection.Transfer
			if exempt {
				tr, err = tk.TransferWithoutReflection(ctx, from, to, amount)
			} else {
				tr, err = tk.Transfer(ctx, from, to, amount)
			}
			if err != nil {
				return err
			}
			printTransfer(tk, tr)
			return nil
		},
	}
	cmd.Flags().BoolVar(&exempt, "exempt", false, "skip the fee")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report the outcome of a fee-charging transfer without applying it")
	return cmd
}

func printTransfer(tk *token.Token, tr *reflection.Transfer) {
	if tr == nil {
		utils.Outf("{{yellow}}nothing to transfer{{/}}\n")
		return
	}
	decimals := tk.Decimals()
	utils.Outf(
		"{{green}}transferred:{{/}} %s %s {{yellow}}credited:{{/}} %s {{yellow}}fee:{{/}} %s\n",
		utils.FormatBalance(tr.Amount, decimals),
		tk.Symbol(),
		utils.FormatBalance(tr.Credited, decimals),
		utils.FormatBalance(tr.Fee, decimals),
	)
}

func newFeeCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fee",
		Short: "Read or change the transfer fee",
	}
	get := &cobra.Command{
		Use:   "get",
		Short: "Print the current fee in basis points",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tk, err := c.openToken(cmd.Context())
			if err != nil {
				return err
			}
			utils.Outf("{{yellow}}fee:{{/}} %d bps\n", tk.CurrentFeeBps())
			return nil
		},
	}

	var caller string
	set := &cobra.Command{
		Use:   "set [bps]",
		Short: "Change the fee charged on transfers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			bps, err := strconv.ParseUint(args[0], 10, 16)
			if err != nil {
				return err
			}
			tk, err := c.openToken(ctx)
			if err != nil {
				return err
			}
			from, err := c.caller(caller)
			if err != nil {
				return err
			}
			if err := c.confirm(fmt.Sprintf("set the transfer fee to %d bps", bps)); err != nil {
				return err
			}
			if err := tk.SetFeeBps(ctx, from, uint16(bps)); err != nil {
				return err
			}
			utils.Outf("{{green}}fee set:{{/}} %d bps\n", bps)
			return nil
		},
	}
	set.Flags().StringVar(&caller, "caller", "", "address changing the fee (defaults to the genesis owner)")

	cmd.AddCommand(get, set)
	return cmd
}

func newMintCmd(c *cli) *cobra.Command {
	var caller string
	cmd := &cobra.Command{
		Use:   "mint [to] [amount]",
		Short: "Create [amount] whole tokens for [to]",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.changeSupply(cmd, caller, args, (*token.Token).Mint)
		},
	}
	cmd.Flags().StringVar(&caller, "caller", "", "address minting (defaults to the genesis owner)")
	return cmd
}

func newBurnCmd(c *cli) *cobra.Command {
	var caller string
	cmd := &cobra.Command{
		Use:   "burn [from] [amount]",
		Short: "Destroy [amount] whole tokens held by [from]",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.changeSupply(cmd, caller, args, (*token.Token).Burn)
		},
	}
	cmd.Flags().StringVar(&caller, "caller", "", "address burning (defaults to the genesis owner)")
	return cmd
}

type supplyChange func(*token.Token, context.Context, codec.Address, codec.Address, *uint256.Int) (*reflection.Transfer, error)

func (c *cli) changeSupply(cmd *cobra.Command, callerFlag string, args []string, f supplyChange) error {
	ctx := cmd.Context()
	account, err := codec.StringToAddress(args[0])
	if err != nil {
		return err
	}
	tk, err := c.openToken(ctx)
	if err != nil {
		return err
	}
	caller, err := c.caller(callerFlag)
	if err != nil {
		return err
	}
	amount, err := utils.ParseBalance(args[1], tk.Decimals())
	if err != nil {
		return err
	}
	if cmd.Name() == "burn" {
		if err := c.confirm(fmt.Sprintf("burn %s %s from %s", utils.FormatBalance(amount, tk.Decimals()), tk.Symbol(), account)); err != nil {
			return err
		}
	}
	if _, err := f(tk, ctx, caller, account, amount); err != nil {
		return err
	}
	supply, err := tk.TotalSupply(ctx)
	if err != nil {
		return err
	}
	utils.Outf("{{green}}%s:{{/}} %s %s {{yellow}}supply:{{/}} %s\n",
		cmd.Name(),
		utils.FormatBalance(amount, tk.Decimals()),
		tk.Symbol(),
		utils.FormatBalance(supply, tk.Decimals()),
	)
	return nil
}

func newReflectionCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "reflection [rAmount]",
		Short: "Print the reflected totals, or convert [rAmount] to tokens",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tk, err := c.openToken(ctx)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				rAmount, err := uint256.FromDecimal(args[0])
				if err != nil {
					return err
				}
				amount, err := tk.TokenFromReflection(ctx, rAmount)
				if err != nil {
					return err
				}
				utils.Outf("{{yellow}}tokens:{{/}} %s\n", utils.FormatBalance(amount, tk.Decimals()))
				return nil
			}
			info, err := tk.ReflectionInfo(ctx)
			if err != nil {
				return err
			}
			utils.Outf("{{yellow}}rTotal:{{/}} %s\n", info.RTotal.Dec())
			utils.Outf("{{yellow}}rate:{{/}} %s\n", info.Rate.Dec())
			utils.Outf("{{yellow}}fees reflected:{{/}} %s\n", utils.FormatBalance(info.TFeeTotal, tk.Decimals()))
			return nil
		},
	}
}
