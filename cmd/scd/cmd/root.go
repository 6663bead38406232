package cmd

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cometbft/cometbft/abci/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sessionclicker/internal/app"
	"sessionclicker/internal/commitment"
	"sessionclicker/internal/config"
)

// NewRootCmd creates the scd root command. It is called once in main.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "scd",
		Short:         "Session clicker ABCI application",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			cmd.SetOut(cmd.OutOrStdout())
			cmd.SetErr(cmd.ErrOrStderr())
		},
	}
	rootCmd.AddCommand(
		StartCmd(),
		CommitCmd(),
	)
	return rootCmd
}

// StartCmd runs the ABCI server until SIGINT/SIGTERM.
func StartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Run the ABCI application server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(viper.New(), cmd.Flags())
			if err != nil {
				return err
			}
			logger, err := cfg.NewLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			a, err := app.New(cfg.Home, cfg.Backend(), logger)
			if err != nil {
				return fmt.Errorf("init app: %w", err)
			}
			defer func() { _ = a.Close() }()

			srv, err := server.NewServer(cfg.Addr, cfg.Transport, a)
			if err != nil {
				return fmt.Errorf("start abci server: %w", err)
			}
			if err := srv.Start(); err != nil {
				return fmt.Errorf("abci server start: %w", err)
			}
			defer func() { _ = srv.Stop() }()
			logger.Info("abci server listening", "addr", cfg.Addr, "transport", cfg.Transport)

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			select {
			case sig := <-sigCh:
				logger.Info("shutting down", "signal", sig.String())
			case <-cmd.Context().Done():
			}
			return nil
		},
	}
	config.AddFlags(cmd.Flags())
	return cmd
}

const (
	flagPlayer = "player"
	flagClicks = "clicks"
	flagNonce  = "nonce"
)

type commitOutput struct {
	Player     string          `json:"player"`
	Clicks     uint32          `json:"clicks"`
	Nonce      uint64          `json:"nonce"`
	Commitment commitment.Hash `json:"commitment"`
}

// CommitCmd prints the commitment a player publishes with
// clicker/start_session. Without --nonce a random nonce is drawn; keep it,
// the reveal needs it.
func CommitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Compute a session commitment sha256(le32(clicks)||le64(nonce)||player)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			player, err := cmd.Flags().GetString(flagPlayer)
			if err != nil {
				return err
			}
			if player == "" {
				return fmt.Errorf("--%s is required", flagPlayer)
			}
			clicks, err := cmd.Flags().GetUint32(flagClicks)
			if err != nil {
				return err
			}
			nonce, err := cmd.Flags().GetUint64(flagNonce)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed(flagNonce) {
				var buf [8]byte
				if _, err := rand.Read(buf[:]); err != nil {
					return fmt.Errorf("draw nonce: %w", err)
				}
				nonce = binary.LittleEndian.Uint64(buf[:])
			}

			out := commitOutput{
				Player:     player,
				Clicks:     clicks,
				Nonce:      nonce,
				Commitment: commitment.Commit(clicks, nonce, []byte(player)),
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().String(flagPlayer, "", "player account address")
	cmd.Flags().Uint32(flagClicks, 0, "click count to commit to")
	cmd.Flags().Uint64(flagNonce, 0, "secret nonce (random when omitted)")
	return cmd
}
