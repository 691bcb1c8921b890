// Command storefront runs the storefront API gateway and offers a few
// operator commands against the same route registry.
//
//	storefront serve                         # run the gateway
//	storefront routes                        # print the route table
//	storefront call reviews by_product -p id=p1 -q page=2
//	storefront session <token>               # decode a session token
//	storefront login -u alice                # print a session token
//
// Configuration comes from the environment; a .env file in the working
// directory is loaded first when present.
//
// @title                       Storefront Gateway API
// @version                     1.0
// @description                 API gateway in front of the storefront auth, catalog, inventory, orders, reviews and users services.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const appName = "storefront"

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	command := NewRootCommand()
	if err := command.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           fmt.Sprintf("%s [command]", appName),
		Short:         "Storefront API gateway",
		Long:          "Routes storefront operations to their backend services and exposes the gateway's route table and session tools.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// A missing .env is not an error.
			_ = godotenv.Load()
		},
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	cmd.AddCommand(NewServeCommand())
	cmd.AddCommand(NewRoutesCommand())
	cmd.AddCommand(NewCallCommand())
	cmd.AddCommand(NewSessionCommand())
	cmd.AddCommand(NewLoginCommand())
	cmd.AddCommand(NewWhoamiCommand())

	return cmd
}
