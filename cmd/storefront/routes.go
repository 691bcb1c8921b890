package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tbourn/go-storefront-gateway/internal/routes"
	"github.com/tbourn/go-storefront-gateway/internal/search"
)

func NewRoutesCommand() *cobra.Command {
	var file, domain, find string
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Print the route registry",
		Long:  "Prints every (domain, operation) with its backend service, method and path, after applying the routes file overrides.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("file") {
				file = os.Getenv("ROUTES_FILE")
			}
			reg, err := routes.Load(file)
			if err != nil {
				return err
			}
			if find != "" {
				return printMatches(cmd.OutOrStdout(), reg, find)
			}
			return printRoutes(cmd.OutOrStdout(), reg, domain)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML routes file with overrides (defaults to $ROUTES_FILE)")
	cmd.Flags().StringVar(&domain, "domain", "", "only print this domain")
	cmd.Flags().StringVar(&find, "find", "", "rank routes against a free-text query, e.g. \"reviews for a product\"")
	return cmd
}

// printRoutes writes one section per domain, titled "Order Items" style.
func printRoutes(w io.Writer, reg *routes.Registry, only string) error {
	title := cases.Title(language.English)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	byDomain := map[string][]routes.Route{}
	for _, r := range reg.All() {
		byDomain[r.Domain] = append(byDomain[r.Domain], r)
	}
	found := false
	for _, d := range reg.Domains() {
		if only != "" && d != only {
			continue
		}
		found = true
		fmt.Fprintf(tw, "%s\n", title.String(strings.ReplaceAll(d, "_", " ")))
		for _, r := range byDomain[d] {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", r.Operation, r.Service, r.Method, r.Path)
		}
	}
	if !found {
		return fmt.Errorf("no routes for domain %q", only)
	}
	return tw.Flush()
}

// printMatches prints the best registry matches for q with their scores.
func printMatches(w io.Writer, reg *routes.Registry, q string) error {
	hits := search.NewRouteIndex(reg).TopK(q, search.DefaultLimit)
	if len(hits) == 0 {
		return fmt.Errorf("no routes match %q", q)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, h := range hits {
		r := h.Route
		fmt.Fprintf(tw, "%.2f\t%s\t%s\t%s\n", h.Score, r.Key(), r.Method, r.Path)
	}
	return tw.Flush()
}
