package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tbourn/go-storefront-gateway/internal/apierror"
	"github.com/tbourn/go-storefront-gateway/internal/config"
	"github.com/tbourn/go-storefront-gateway/internal/dispatch"
	"github.com/tbourn/go-storefront-gateway/internal/routes"
	"github.com/tbourn/go-storefront-gateway/internal/sysutil"
)

func NewCallCommand() *cobra.Command {
	var (
		params []string
		query  []string
		data   string
		token  string
	)
	cmd := &cobra.Command{
		Use:   "call <domain> <operation>",
		Short: "Dispatch one registry operation to its backend and print the reply",
		Example: `  storefront call metadata colors
  storefront call reviews by_product -p id=p1 -q page=2 -q pageSize=10
  storefront call brand create -d '{"name":"Acme"}' --token "$TOKEN"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			sysutil.ConfigureLogger(cmd.ErrOrStderr(), true, cfg.LogLevel)

			reg, err := routes.Load(cfg.Upstream.RoutesFile)
			if err != nil {
				return err
			}
			client, err := newDispatchClient(cfg, reg)
			if err != nil {
				return err
			}

			p, err := parsePairs(params)
			if err != nil {
				return err
			}
			q := url.Values{}
			for _, kv := range query {
				one, err := parsePairs([]string{kv})
				if err != nil {
					return err
				}
				for k, v := range one {
					q.Add(k, v)
				}
			}

			ctx := dispatch.WithBearerToken(cmd.Context(), sysutil.FirstNonEmpty(token, os.Getenv("STOREFRONT_TOKEN")))
			return call(ctx, cmd.OutOrStdout(), client, routes.Key{Domain: args[0], Operation: args[1]}, p, q, data)
		},
	}
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "path parameter as name=value (repeatable)")
	cmd.Flags().StringArrayVarP(&query, "query", "q", nil, "query parameter as name=value (repeatable)")
	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON request body")
	cmd.Flags().StringVar(&token, "token", "", "bearer token forwarded to the backend (defaults to $STOREFRONT_TOKEN)")
	return cmd
}

// routeSender is the part of *dispatch.Client call needs.
type routeSender interface {
	Registry() *routes.Registry
	Send(ctx context.Context, req dispatch.Request) (*dispatch.Response, error)
}

func call(ctx context.Context, w io.Writer, c routeSender, key routes.Key, params map[string]string, q url.Values, data string) error {
	rt, err := c.Registry().Route(key)
	if err != nil {
		return err
	}
	path, err := rt.Expand(params)
	if err != nil {
		return err
	}

	var raw []byte
	if data = strings.TrimSpace(data); data != "" {
		if !json.Valid([]byte(data)) {
			return fmt.Errorf("--data is not valid JSON")
		}
		raw = []byte(data)
	}

	resp, err := c.Send(ctx, dispatch.Request{
		Service: rt.Service,
		Method:  rt.Method,
		Path:    path,
		Query:   q,
		RawBody: raw,
	})
	if err != nil {
		ae := apierror.Normalize(err)
		return fmt.Errorf("%s %s: %s (status %d)", rt.Method, path, apierror.UserMessage(ae), ae.Status())
	}

	if len(resp.Body) == 0 {
		_, err := fmt.Fprintf(w, "%d\n", resp.Status)
		return err
	}
	var out bytes.Buffer
	if json.Indent(&out, resp.Body, "", "  ") != nil {
		out.Reset()
		out.Write(resp.Body)
	}
	out.WriteByte('\n')
	_, err = w.Write(out.Bytes())
	return err
}

// parsePairs turns ["a=1", "b=2"] into a map. Empty names are rejected.
func parsePairs(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, kv := range pairs {
		k, v, ok := strings.Cut(kv, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("%q: want name=value", kv)
		}
		out[k] = v
	}
	return out, nil
}
