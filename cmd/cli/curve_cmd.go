package main

import (
	"fmt"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/ninja0404/curve-launchpad/pkg/constants"
	"github.com/ninja0404/curve-launchpad/pkg/quote"
	"github.com/ninja0404/curve-launchpad/pkg/types"
)

func newInitCmd(opts *globalOpts) *cobra.Command {
	var feeRecipient, withdrawAuthority string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the global config",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := newDeps(cmd, opts)
			if err != nil {
				return err
			}
			defer deps.close()
			if err := requireCaller(deps); err != nil {
				return err
			}

			authority := deps.caller.PublicKey()
			fee := authority
			withdraw := authority
			if feeRecipient != "" {
				if fee, err = solana.PublicKeyFromBase58(feeRecipient); err != nil {
					return fmt.Errorf("parse fee recipient: %w", err)
				}
			}
			if withdrawAuthority != "" {
				if withdraw, err = solana.PublicKeyFromBase58(withdrawAuthority); err != nil {
					return fmt.Errorf("parse withdraw authority: %w", err)
				}
			}

			g, err := deps.svc.Initialize(cmd.Context(), authority, fee, withdraw)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "initialized: authority=%s fee_recipient=%s withdraw_authority=%s fee_bps=%d\n",
				g.Authority, g.FeeRecipient, g.WithdrawAuthority, g.FeeBasisPoints)
			return nil
		},
	}

	cmd.Flags().StringVar(&feeRecipient, "fee-recipient", "", "fee recipient (default: caller)")
	cmd.Flags().StringVar(&withdrawAuthority, "withdraw-authority", "", "withdraw authority (default: caller)")
	return cmd
}

func newSetParamsCmd(opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "set-params <virtual-token> <virtual-sol> <real-token> <supply> <fee-bps>",
		Short: "Replace the launch parameter template (authority only)",
		Args:  cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			vals := make([]uint64, 5)
			for i, a := range args {
				v, err := strconv.ParseUint(a, 10, 64)
				if err != nil {
					return fmt.Errorf("parse %q: %w", a, err)
				}
				vals[i] = v
			}

			deps, err := newDeps(cmd, opts)
			if err != nil {
				return err
			}
			defer deps.close()
			if err := requireCaller(deps); err != nil {
				return err
			}

			ev, err := deps.svc.SetParams(cmd.Context(), deps.caller.PublicKey(),
				vals[0], vals[1], vals[2], vals[3], vals[4])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "params set: virtual_token=%d virtual_sol=%d real_token=%d supply=%d fee_bps=%d\n",
				ev.InitialVirtualTokenReserves, ev.InitialVirtualSolReserves,
				ev.InitialRealTokenReserves, ev.InitialTokenSupply, ev.FeeBasisPoints)
			return nil
		},
	}
}

func newCreateCmd(opts *globalOpts) *cobra.Command {
	var name, symbol, uri string

	cmd := &cobra.Command{
		Use:   "create [mint]",
		Short: "Launch a new token (generates a mint if omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := newDeps(cmd, opts)
			if err != nil {
				return err
			}
			defer deps.close()
			if err := requireCaller(deps); err != nil {
				return err
			}

			var mint solana.PublicKey
			if len(args) == 1 {
				if mint, err = solana.PublicKeyFromBase58(args[0]); err != nil {
					return fmt.Errorf("parse mint: %w", err)
				}
			} else {
				mint = solana.NewWallet().PublicKey()
			}

			bc, ev, err := deps.svc.Create(cmd.Context(), deps.caller.PublicKey(), mint, name, symbol, uri)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s): mint=%s decimals=%d\n%s\n",
				ev.Name, ev.Symbol, ev.Mint, constants.DefaultDecimals, bc)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "token name (required)")
	cmd.Flags().StringVar(&symbol, "symbol", "", "token symbol (required)")
	cmd.Flags().StringVar(&uri, "uri", "", "metadata URI")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("symbol")
	return cmd
}

func newBuyCmd(opts *globalOpts) *cobra.Command {
	var maxSol uint64
	var slippageBps uint64

	cmd := &cobra.Command{
		Use:   "buy <mint> <token-amount>",
		Short: "Buy tokens from a bonding curve",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mint, err := solana.PublicKeyFromBase58(args[0])
			if err != nil {
				return fmt.Errorf("parse mint: %w", err)
			}
			amount, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("parse amount: %w", err)
			}

			deps, err := newDeps(cmd, opts)
			if err != nil {
				return err
			}
			defer deps.close()
			if err := requireCaller(deps); err != nil {
				return err
			}

			// Without an explicit bound, quote the cost and pad by slippage.
			if maxSol == 0 {
				bc, err := deps.svc.Engine().Curve(mint)
				if err != nil {
					return err
				}
				g, err := deps.svc.Engine().Global()
				if err != nil {
					return err
				}
				cost, err := quote.BuyCost(bc, amount, g.FeeBasisPoints)
				if err != nil {
					return err
				}
				maxSol = cost + cost*slippageBps/10000
			}
			if err := types.ValidateBuyParams(amount, maxSol); err != nil {
				return err
			}

			trade, completed, err := deps.svc.Buy(cmd.Context(), deps.caller.PublicKey(), mint, amount, maxSol)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "bought %d tokens for %d lamports (fee %d)\n",
				trade.TokenAmount, trade.SolAmount, trade.Fee)
			if completed != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "curve complete: %s\n", completed.Mint)
			}
			return nil
		},
	}

	cmd.Flags().Uint64Var(&maxSol, "max-sol", 0, "max lamports to spend incl. fee (0 = quote + slippage)")
	cmd.Flags().Uint64Var(&slippageBps, "slippage-bps", 500, "slippage padding when --max-sol is 0")
	return cmd
}

func newSellCmd(opts *globalOpts) *cobra.Command {
	var minSol uint64

	cmd := &cobra.Command{
		Use:   "sell <mint> <token-amount>",
		Short: "Sell tokens back to a bonding curve",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mint, err := solana.PublicKeyFromBase58(args[0])
			if err != nil {
				return fmt.Errorf("parse mint: %w", err)
			}
			amount, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("parse amount: %w", err)
			}
			if err := types.ValidateSellParams(amount); err != nil {
				return err
			}

			deps, err := newDeps(cmd, opts)
			if err != nil {
				return err
			}
			defer deps.close()
			if err := requireCaller(deps); err != nil {
				return err
			}

			trade, err := deps.svc.Sell(cmd.Context(), deps.caller.PublicKey(), mint, amount, minSol)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sold %d tokens for %d lamports (fee %d)\n",
				trade.TokenAmount, trade.SolAmount-trade.Fee, trade.Fee)
			return nil
		},
	}

	cmd.Flags().Uint64Var(&minSol, "min-sol", 0, "min lamports to receive after fee")
	return cmd
}

func newWithdrawCmd(opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "withdraw <mint>",
		Short: "Claim a completed curve's balances (withdraw authority only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mint, err := solana.PublicKeyFromBase58(args[0])
			if err != nil {
				return fmt.Errorf("parse mint: %w", err)
			}

			deps, err := newDeps(cmd, opts)
			if err != nil {
				return err
			}
			defer deps.close()
			if err := requireCaller(deps); err != nil {
				return err
			}

			ev, err := deps.svc.Withdraw(cmd.Context(), deps.caller.PublicKey(), mint)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "withdrew %d lamports and %d tokens to %s\n",
				ev.SolAmount, ev.TokenAmount, ev.Authority)
			return nil
		},
	}
}
