package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hoshichaam/account_backend_go/internal/config"
	"github.com/hoshichaam/account_backend_go/internal/logger"
	"github.com/hoshichaam/account_backend_go/internal/services"
	"github.com/hoshichaam/account_backend_go/pkg/authutil"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		identityURL string
		timeout     time.Duration
	)

	cfg := config.Load()
	log := logger.New(cfg)

	root := &cobra.Command{
		Use:           "idpcheck",
		Short:         "Cek konektivitas identity provider yang dipakai endpoint ganti password",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(identityURL) == "" {
				return fmt.Errorf("IDENTITY_URL kosong: set di .env atau pakai --identity-url")
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&identityURL, "identity-url", cfg.IdentityURL, "Base URL identity provider")
	root.PersistentFlags().DurationVar(&timeout, "timeout", cfg.IdentityTimeout, "Timeout per request")

	client := func() *services.IdentityClient {
		return services.NewIdentityClient(identityURL, timeout)
	}

	root.AddCommand(&cobra.Command{
		Use:   "health",
		Short: "Panggil GET /health di identity provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			if err := client().Health(ctx); err != nil {
				log.WithError(err).Error("identity provider tidak sehat")
				return err
			}
			log.WithField("identity", identityURL).Info("identity provider ok")
			return nil
		},
	})

	var token string
	whoami := &cobra.Command{
		Use:   "whoami",
		Short: "Verifikasi token sesi ke identity provider (GET /user)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(token) == "" {
				return fmt.Errorf("--token wajib diisi")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			info, err := client().VerifySession(ctx, token)
			if err != nil {
				log.WithError(err).Error("verifikasi sesi gagal")
				return err
			}
			fields := logrus.Fields{"token": authutil.ShortToken(token), "ok": info.OK}
			if !info.OK {
				log.WithFields(fields).Warn("token sesi ditolak")
				return fmt.Errorf("session token rejected")
			}
			fields["email"] = authutil.MaskEmail(info.Email)
			fields["userId"] = info.UserID
			log.WithFields(fields).Info("token sesi valid")
			return nil
		},
	}
	whoami.Flags().StringVar(&token, "token", "", "Access token (JWT) dari identity provider")
	root.AddCommand(whoami)

	return root
}
