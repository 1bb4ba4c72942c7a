package main

import (
	"fmt"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/ninja0404/curve-launchpad/pkg/curve"
	"github.com/ninja0404/curve-launchpad/pkg/ledger"
	"github.com/ninja0404/curve-launchpad/pkg/quote"
)

func newCurveCmd(opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "curve <mint>",
		Short: "Show a bonding curve record",
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

			bc, err := deps.svc.Engine().Curve(mint)
			if err != nil {
				return err
			}
			spot, err := quote.SpotPrice(bc)
			if err != nil {
				spot = 0
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) %s\n%s\nspot_price=%d (lamports per token, 1e9 scale)\n",
				bc.Name, bc.Symbol, bc.URI, bc, spot)
			return nil
		},
	}
}

func newGlobalCmd(opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "global",
		Short: "Show the global config",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := newDeps(cmd, opts)
			if err != nil {
				return err
			}
			defer deps.close()

			g, err := deps.svc.Engine().Global()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(),
				"authority=%s\nfee_recipient=%s\nwithdraw_authority=%s\nvirtual_token=%d\nvirtual_sol=%d\nreal_token=%d\nsupply=%d\nfee_bps=%d\n",
				g.Authority, g.FeeRecipient, g.WithdrawAuthority,
				g.InitialVirtualTokenReserves, g.InitialVirtualSolReserves,
				g.InitialRealTokenReserves, g.InitialTokenSupply, g.FeeBasisPoints)
			return nil
		},
	}
}

func newQuoteCmd(opts *globalOpts) *cobra.Command {
	var slippageBps uint64

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Estimate trade outcomes without executing",
	}

	buyCmd := &cobra.Command{
		Use:   "buy <mint> <sol-lamports>",
		Short: "Estimate tokens received for an exact SOL input",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mint, err := solana.PublicKeyFromBase58(args[0])
			if err != nil {
				return fmt.Errorf("parse mint: %w", err)
			}
			lamports, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("parse lamports: %w", err)
			}

			deps, err := newDeps(cmd, opts)
			if err != nil {
				return err
			}
			defer deps.close()

			bc, err := deps.svc.Engine().Curve(mint)
			if err != nil {
				return err
			}
			res, err := quote.BuyQuote(bc, lamports, slippageBps)
			if err != nil {
				return err
			}
			printQuote(cmd, res)
			return nil
		},
	}

	sellCmd := &cobra.Command{
		Use:   "sell <mint> <token-amount>",
		Short: "Estimate SOL received for selling tokens",
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

			bc, err := deps.svc.Engine().Curve(mint)
			if err != nil {
				return err
			}
			g, err := deps.svc.Engine().Global()
			if err != nil {
				return err
			}
			res, err := quote.SellQuote(bc, amount, g.FeeBasisPoints, slippageBps)
			if err != nil {
				return err
			}
			printQuote(cmd, res)
			return nil
		},
	}

	quoteCmd.PersistentFlags().Uint64Var(&slippageBps, "slippage-bps", 0, "slippage for min-out calculation")
	quoteCmd.AddCommand(buyCmd, sellCmd)
	return quoteCmd
}

func printQuote(cmd *cobra.Command, res *quote.Result) {
	fmt.Fprintf(cmd.OutOrStdout(),
		"expected_out=%d\nmin_out=%d\nprice_impact_bps=%d\nspot_price=%d\nexecution_price=%d\n",
		res.ExpectedOut, res.MinOut, res.PriceImpactBps, res.SpotPrice, res.ExecutionPrice)
}

func newAccountCmd(opts *globalOpts) *cobra.Command {
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Inspect and fund ledger balances",
	}

	balanceCmd := &cobra.Command{
		Use:   "balance <owner> [mint]",
		Short: "Show an owner's native (or token) balance",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := solana.PublicKeyFromBase58(args[0])
			if err != nil {
				return fmt.Errorf("parse owner: %w", err)
			}
			asset := ledger.Native
			if len(args) == 2 {
				if asset, err = solana.PublicKeyFromBase58(args[1]); err != nil {
					return fmt.Errorf("parse mint: %w", err)
				}
			}

			deps, err := newDeps(cmd, opts)
			if err != nil {
				return err
			}
			defer deps.close()

			fmt.Fprintf(cmd.OutOrStdout(), "%d\n", deps.ledger.BalanceOf(asset, owner))
			return nil
		},
	}

	curveBalanceCmd := &cobra.Command{
		Use:   "curve-balance <mint>",
		Short: "Show the balances custodied by a curve",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mint, err := solana.PublicKeyFromBase58(args[0])
			if err != nil {
				return fmt.Errorf("parse mint: %w", err)
			}
			addr, err := curve.Address(mint)
			if err != nil {
				return err
			}

			deps, err := newDeps(cmd, opts)
			if err != nil {
				return err
			}
			defer deps.close()

			fmt.Fprintf(cmd.OutOrStdout(), "address=%s\nsol=%d\ntokens=%d\n",
				addr,
				deps.ledger.BalanceOf(ledger.Native, addr),
				deps.ledger.BalanceOf(mint, addr))
			return nil
		},
	}

	airdropCmd := &cobra.Command{
		Use:   "airdrop <owner> <lamports>",
		Short: "Credit native currency for local testing",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := solana.PublicKeyFromBase58(args[0])
			if err != nil {
				return fmt.Errorf("parse owner: %w", err)
			}
			lamports, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("parse lamports: %w", err)
			}

			deps, err := newDeps(cmd, opts)
			if err != nil {
				return err
			}
			defer deps.close()

			if err := deps.ledger.Mint(ledger.Native, owner, lamports); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "credited %d lamports to %s\n", lamports, owner)
			return nil
		},
	}

	accountCmd.AddCommand(balanceCmd, curveBalanceCmd, airdropCmd)
	return accountCmd
}
