package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tbourn/go-storefront-gateway/internal/apierror"
	"github.com/tbourn/go-storefront-gateway/internal/config"
	"github.com/tbourn/go-storefront-gateway/internal/dispatch"
	"github.com/tbourn/go-storefront-gateway/internal/domain"
	"github.com/tbourn/go-storefront-gateway/internal/routes"
	"github.com/tbourn/go-storefront-gateway/internal/services"
	"github.com/tbourn/go-storefront-gateway/internal/sysutil"
)

func NewLoginCommand() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in against the auth backend and print the session token",
		Example: `  export STOREFRONT_TOKEN=$(storefront login -u alice --password "$PW")
  storefront call auth me`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newServices(cmd)
			if err != nil {
				return err
			}
			creds := domain.Credentials{
				Username: username,
				Password: sysutil.FirstNonEmpty(password, os.Getenv("STOREFRONT_PASSWORD")),
			}
			return login(cmd.Context(), cmd.OutOrStdout(), svc.Auth, creds)
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "account username")
	cmd.Flags().StringVar(&password, "password", "", "account password (defaults to $STOREFRONT_PASSWORD)")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func NewWhoamiCommand() *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Print the user behind a session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newServices(cmd)
			if err != nil {
				return err
			}
			ctx := dispatch.WithBearerToken(cmd.Context(), sysutil.FirstNonEmpty(token, os.Getenv("STOREFRONT_TOKEN")))
			return whoami(ctx, cmd.OutOrStdout(), svc.Auth)
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "bearer token (defaults to $STOREFRONT_TOKEN)")
	return cmd
}

// newServices builds the typed wrappers over a client configured from the
// environment.
func newServices(cmd *cobra.Command) (*services.Services, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	sysutil.ConfigureLogger(cmd.ErrOrStderr(), true, cfg.LogLevel)
	reg, err := routes.Load(cfg.Upstream.RoutesFile)
	if err != nil {
		return nil, err
	}
	client, err := newDispatchClient(cfg, reg)
	if err != nil {
		return nil, err
	}
	return services.New(client), nil
}

func login(ctx context.Context, w io.Writer, a *services.AuthService, creds domain.Credentials) error {
	if creds.Password == "" {
		return fmt.Errorf("password is required")
	}
	res, err := a.Login(ctx, creds)
	if err != nil {
		return fmt.Errorf("login: %s", apierror.UserMessage(err))
	}
	if res.Token == "" {
		return fmt.Errorf("login: backend returned no token")
	}
	_, err = fmt.Fprintln(w, res.Token)
	return err
}

func whoami(ctx context.Context, w io.Writer, a *services.AuthService) error {
	if dispatch.BearerToken(ctx) == "" {
		return fmt.Errorf("no token: pass --token or set $STOREFRONT_TOKEN")
	}
	u, err := a.Me(ctx)
	if err != nil {
		return fmt.Errorf("whoami: %s", apierror.UserMessage(err))
	}
	b, err := json.MarshalIndent(u, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", b)
	return err
}
