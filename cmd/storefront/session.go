package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tbourn/go-storefront-gateway/internal/auth"
	"github.com/tbourn/go-storefront-gateway/internal/domain"
	"github.com/tbourn/go-storefront-gateway/internal/sysutil"
)

func NewSessionCommand() *cobra.Command {
	var secret string
	cmd := &cobra.Command{
		Use:   "session <token>",
		Short: "Decode a session token and print its claims",
		Long:  "Decodes a bearer token. The HS256 signature is verified when --secret or $JWT_SECRET is set.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := sysutil.FirstNonEmpty(secret, os.Getenv("JWT_SECRET"))
			p, err := auth.Verify(args[0], key)
			if err != nil {
				return err
			}
			return printSession(cmd.OutOrStdout(), p, key != "", time.Now())
		},
	}
	cmd.Flags().StringVar(&secret, "secret", "", "HS256 secret used to verify the signature")
	return cmd
}

type sessionView struct {
	*domain.JwtPayload
	Verified bool `json:"verified"`
	Expired  bool `json:"expired"`
}

func printSession(w io.Writer, p *domain.JwtPayload, verified bool, now time.Time) error {
	b, err := json.MarshalIndent(sessionView{JwtPayload: p, Verified: verified, Expired: p.Expired(now)}, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", b)
	return err
}
