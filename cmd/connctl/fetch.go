package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/samvad-hq/samvad-connection/pkg/connection"
	"github.com/samvad-hq/samvad-connection/pkg/parser"
)

type fetchOptions struct {
	method     string
	offlineKey string
	rowID      string
	cacheFirst bool
	payload    string
	path       string
	selector   string
}

func newFetchCmd(flags *globalFlags) *cobra.Command {
	opts := &fetchOptions{}
	cmd := &cobra.Command{
		Use:   "fetch <endpoint>",
		Short: "Execute one request against BASE_ENDPOINT + endpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			method, err := parseMethod(opts.method)
			if err != nil {
				return err
			}
			p, err := newFetchParser(opts.path, opts.selector)
			if err != nil {
				return err
			}

			s, err := openSession(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer s.close()

			conn := connection.New[any](s.rt.Deps()).
				Endpoint(args[0]).
				OfflineEndpoint(opts.offlineKey, opts.rowID).
				UseCacheFirst(opts.cacheFirst).
				Loader(false).
				Parser(p).
				Complete(printer[any](cmd.OutOrStdout()))
			if opts.payload != "" {
				var payload any
				if err := json.Unmarshal([]byte(opts.payload), &payload); err != nil {
					return fmt.Errorf("payload is not valid JSON: %w", err)
				}
				conn.Payload(payload)
			}

			if method == connection.MethodGet {
				err = conn.Get(cmd.Context())
			} else {
				err = conn.Post(cmd.Context())
			}
			if err != nil {
				return err
			}
			return s.rt.Await(cmd.Context(), conn.Done())
		},
	}

	cmd.Flags().StringVarP(&opts.method, "method", "X", "POST", "request method (GET or POST)")
	cmd.Flags().StringVar(&opts.offlineKey, "offline-key", "", "persist and replay the response under this key")
	cmd.Flags().StringVar(&opts.rowID, "row-id", "", "suffix appended to the offline key")
	cmd.Flags().BoolVar(&opts.cacheFirst, "cache-first", false, "deliver the cached response before the network result")
	cmd.Flags().StringVarP(&opts.payload, "data", "d", "", "JSON request payload")
	cmd.Flags().StringVar(&opts.path, "path", "", "gjson path extracted from a JSON response")
	cmd.Flags().StringVar(&opts.selector, "selector", "", "CSS selector extracted from an HTML response")
	return cmd
}

func parseMethod(raw string) (connection.Method, error) {
	switch connection.Method(strings.ToUpper(strings.TrimSpace(raw))) {
	case connection.MethodGet:
		return connection.MethodGet, nil
	case connection.MethodPost, "":
		return connection.MethodPost, nil
	default:
		return "", fmt.Errorf("unsupported method %q (expected GET or POST)", raw)
	}
}

// newFetchParser picks the response parser from the flags: a gjson path, a
// CSS selector, or the whole body decoded as JSON.
func newFetchParser(path, selector string) (parser.Parser[any], error) {
	path = strings.TrimSpace(path)
	selector = strings.TrimSpace(selector)
	switch {
	case path != "" && selector != "":
		return nil, fmt.Errorf("--path and --selector are mutually exclusive")
	case path != "":
		return parser.Path[any](path), nil
	case selector != "":
		sel := parser.Selector(selector)
		return parser.Func[any](func(raw string) (any, error) {
			texts, err := sel.Parse(raw)
			if err != nil {
				return nil, err
			}
			return texts, nil
		}), nil
	default:
		return parser.JSON[any](), nil
	}
}
