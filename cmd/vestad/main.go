// vestad drives a governance engine instance from the command line: seed it
// from a genesis file, apply signed actions, inspect state.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"vesta_dao/config"
	"vesta_dao/contract"
	"vesta_dao/event"
	"vesta_dao/sdk"
	"vesta_dao/store"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

type app struct {
	cfg    *config.Config
	logger *slog.Logger
	st     *store.Store
	bus    *event.Bus
	engine *contract.Engine
}

func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg.LogLevel)
	st, err := store.New(cfg.DataDir, logger)
	if err != nil {
		return nil, err
	}
	bus := event.NewBus(prometheus.NewRegistry())
	a := &app{
		cfg:    cfg,
		logger: logger,
		st:     st,
		bus:    bus,
		engine: contract.New(st, contract.WithBus(bus)),
	}
	return a, nil
}

func (a *app) close() {
	a.bus.Stop()
	if err := a.st.Close(); err != nil {
		a.logger.Error("closing state db", "error", err)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "vestad",
		Short:         "tradeable-token DAO governance engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(initCmd(), execCmd(), showCmd())
	return root
}

func initCmd() *cobra.Command {
	var genesisPath string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "create the DAO from a genesis file",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := config.LoadGenesis(genesisPath)
			if err != nil {
				return err
			}
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			ts := g.Timestamp
			if ts == 0 {
				ts = time.Now().Unix()
			}
			env := sdk.Env{Sender: sdk.Address(g.Creator), Timestamp: ts, TxID: g.Tx}
			account, err := a.engine.CreateDAO(env, g.EngineConfig(), g.HolderAllocations())
			if err != nil {
				return err
			}
			for addr, amt := range g.NativeBalances {
				err := a.engine.Deposit(env, sdk.Address(addr), contract.NativeClass, contract.Amount(amt))
				if err != nil {
					return err
				}
			}
			a.logger.Info("dao created", "account", account, "holders", len(g.Holders))
			fmt.Println(account)
			return nil
		},
	}
	cmd.Flags().StringVar(&genesisPath, "genesis", "genesis.yaml", "path to the genesis file")
	return cmd
}

func execCmd() *cobra.Command {
	var (
		sender  string
		at      int64
		txID    string
		payload string
	)
	cmd := &cobra.Command{
		Use:   "exec <action>",
		Short: "apply one action with a JSON payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			if at == 0 {
				at = time.Now().Unix()
			}
			env := sdk.Env{Sender: sdk.Address(sender), Timestamp: at, TxID: txID}
			a.logger.Debug("applying action", "action", args[0], "sender", sender, "at", at)
			res, err := a.engine.Apply(env, args[0], []byte(payload))
			if err != nil {
				return err
			}
			fmt.Println(res)
			return nil
		},
	}
	cmd.Flags().StringVar(&sender, "sender", "", "signing address")
	cmd.Flags().Int64Var(&at, "at", 0, "unix timestamp of the call, defaults to now")
	cmd.Flags().StringVar(&txID, "tx", "", "transaction id")
	cmd.Flags().StringVar(&payload, "payload", "{}", "JSON payload")
	cmd.MarkFlagRequired("sender")
	return cmd
}

func showCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "inspect committed state",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "dao",
			Short: "print the DAO record",
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := openApp()
				if err != nil {
					return err
				}
				defer a.close()
				d, err := a.engine.GetDAO()
				if err != nil {
					return err
				}
				fmt.Printf("creator:   %s\n", d.Creator)
				fmt.Printf("account:   %s\n", d.Account)
				fmt.Printf("created:   %d\n", d.CreatedAt)
				fmt.Printf("threshold: %d bps\n", d.Config.SupportThresholdBps)
				fmt.Printf("quorum:    %d bps\n", d.Config.QuorumBps)
				fmt.Printf("vesting:   %ds\n", d.Config.VestingPeriod)
				fmt.Printf("proposals: %d\n", a.engine.ProposalCount())
				return nil
			},
		},
		&cobra.Command{
			Use:   "proposal <id>",
			Short: "print one proposal",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := strconv.ParseUint(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("bad proposal id %q", args[0])
				}
				a, err := openApp()
				if err != nil {
					return err
				}
				defer a.close()
				p, err := a.engine.GetProposal(id)
				if err != nil {
					return err
				}
				fmt.Printf("id:          %d\n", p.ID)
				fmt.Printf("kind:        %s\n", p.Kind)
				fmt.Printf("state:       %s\n", p.State)
				fmt.Printf("proposer:    %s\n", p.Proposer)
				fmt.Printf("description: %s\n", p.Description)
				fmt.Printf("support:     %d\n", p.SupportTotal)
				if p.State != contract.ProposalOpen {
					fmt.Printf("snapshot:    %d\n", p.SnapshotTotalVotes)
					fmt.Printf("yes addr:    %s\n", p.YesAddress)
					fmt.Printf("no addr:     %s\n", p.NoAddress)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "balance <address> <class>",
			Short: "print one balance",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				class, err := strconv.ParseUint(args[1], 10, 64)
				if err != nil {
					return fmt.Errorf("bad class id %q", args[1])
				}
				a, err := openApp()
				if err != nil {
					return err
				}
				defer a.close()
				fmt.Println(a.engine.BalanceOf(sdk.Address(args[0]), contract.ClassID(class)))
				return nil
			},
		},
	)
	return cmd
}
