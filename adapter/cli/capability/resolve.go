package capability

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/folio/adapter/cli"
	"github.com/felixgeelhaar/folio/internal/capability/sdk"
	"github.com/felixgeelhaar/folio/pkg/observability"
)

var (
	resolveLocale string
	resolveParams []string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <key> [params-json]",
	Short: "Run a capability and print its result",
	Long: `Run a capability and print its result as JSON.

Parameters come from an optional JSON object argument and from repeated
--param flags, which win on conflict. Flag values are parsed as JSON when
possible and kept as strings otherwise. An unregistered key prints null.

Examples:
  folio capability resolve projects.visible.v1 --param limit=3
  folio capability resolve courses.visible.v1 '{"limit": 2}' --locale nl`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cli.RequireApp()
		if err != nil {
			return err
		}
		key, err := sdk.NewKey(args[0])
		if err != nil {
			return err
		}

		var raw string
		if len(args) == 2 {
			raw = args[1]
		}
		params, err := parseParams(raw, resolveParams)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if resolveLocale != "" {
			ctx = observability.WithLocale(ctx, resolveLocale)
		}

		result, err := a.Resolver.Resolve(ctx, key, params)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", key, err)
		}
		return cli.PrintJSON(cmd.OutOrStdout(), result)
	},
}

// parseParams merges a JSON object with key=value pairs.
func parseParams(raw string, pairs []string) (sdk.Parameters, error) {
	params := sdk.Parameters{}
	if strings.TrimSpace(raw) != "" {
		if err := json.Unmarshal([]byte(raw), &params); err != nil {
			return nil, fmt.Errorf("parameters must be a JSON object: %w", err)
		}
	}
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected name=value", pair)
		}
		var decoded any
		if err := json.Unmarshal([]byte(value), &decoded); err != nil {
			decoded = value
		}
		params[name] = decoded
	}
	return params, nil
}

func init() {
	resolveCmd.Flags().StringVar(&resolveLocale, "locale", "", "locale for the resolution")
	resolveCmd.Flags().StringArrayVarP(&resolveParams, "param", "p", nil, "parameter as name=value (repeatable)")
}
