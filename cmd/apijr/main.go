// Command apijr issues one JSON request against a configured endpoint and
// prints the decoded response. It is a probe for backends spoken to through
// the client package.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/JonaRivera-RB/APIJR-NETWORK/client"
	"github.com/JonaRivera-RB/APIJR-NETWORK/internal/config"
)

func main() {
	cmd := NewRootCmd(deps{})
	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// deps are the collaborators tests replace.
type deps struct {
	httpClient *http.Client
	newBackOff func() backoff.BackOff
	dotenv     []string
}

type flags struct {
	queries      []string
	headers      []string
	data         string
	endpointFile string
	attempts     int
	timeout      time.Duration
	debug        bool
	lenient      bool
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd(d deps) *cobra.Command {
	if d.newBackOff == nil {
		d.newBackOff = func() backoff.BackOff { return backoff.NewExponentialBackOff() }
	}
	var f flags

	rootCmd := &cobra.Command{
		Use:           "apijr",
		Short:         "Send a JSON request to the configured endpoint",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.InitLogger(cmd.ErrOrStderr())
			if f.debug {
				config.SetLogLevel(zerolog.DebugLevel)
				log.Debug().Msg("debug logging enabled")
			} else {
				config.SetLogLevel(zerolog.InfoLevel)
			}
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringArrayVarP(&f.queries, "query", "q", nil, "Query item name=value (repeatable, order kept)")
	pf.StringArrayVarP(&f.headers, "header", "H", nil, "Extra header 'Name: value' (repeatable)")
	pf.StringVar(&f.endpointFile, "endpoint-file", "", "YAML endpoint file overriding APIJR_* settings")
	pf.IntVar(&f.attempts, "attempts", 0, "Total attempts for recoverable failures (default APIJR_ATTEMPTS)")
	pf.DurationVar(&f.timeout, "timeout", 0, "Per-attempt timeout (default APIJR_TIMEOUT)")
	pf.BoolVarP(&f.debug, "debug", "d", false, "Log raw requests and responses")
	pf.BoolVar(&f.lenient, "lenient", false, "Treat an undecodable success body as empty")

	rootCmd.AddCommand(newMethodCmd(client.MethodGet, &f, d))
	rootCmd.AddCommand(newMethodCmd(client.MethodPost, &f, d))
	rootCmd.AddCommand(newMethodCmd(client.MethodPut, &f, d))
	return rootCmd
}

func newMethodCmd(m client.Method, f *flags, d deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   strings.ToLower(string(m)) + " PATH",
		Short: fmt.Sprintf("Send a %s request to PATH", m),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, m, args[0], f, d)
		},
	}
	if m != client.MethodGet {
		cmd.Flags().StringVar(&f.data, "data", "", "JSON request body")
	}
	return cmd
}

func run(cmd *cobra.Command, m client.Method, path string, f *flags, d deps) error {
	cfg, err := config.Load(d.dotenv...)
	if err != nil {
		return err
	}
	if f.endpointFile != "" {
		ef, err := config.LoadEndpointFile(f.endpointFile)
		if err != nil {
			return err
		}
		cfg.Apply(ef)
	}
	if err := applyFlags(cmd, cfg, f); err != nil {
		return err
	}
	if cfg.Debug && !cmd.Flags().Changed("debug") {
		f.debug = true
	}
	if f.debug {
		config.SetLogLevel(zerolog.DebugLevel)
	} else {
		config.SetLogLevel(cfg.Level())
	}

	ep, err := cfg.Endpoint()
	if err != nil {
		return err
	}
	query, err := parseQuery(f.queries)
	if err != nil {
		return err
	}
	payload, err := parseData(m, f.data)
	if err != nil {
		return err
	}

	opts := []client.Option{
		client.WithMethod(m),
		client.WithQuery(query...),
		client.WithLogger(log.Logger),
	}
	if d.httpClient != nil {
		opts = append(opts, client.WithHTTPClient(d.httpClient))
	}
	opts = append(opts, client.WithHTTPTimeout(cfg.Timeout))
	if f.debug {
		opts = append(opts, client.WithDebugMode(true), client.WithDebugLogging(true))
	}
	if f.lenient {
		opts = append(opts, client.WithLenientDecoding())
	}

	eng, err := client.New[json.RawMessage](ep, path, opts...)
	if err != nil {
		return err
	}

	log.Debug().
		Str("endpoint", ep.String()).
		Str("method", string(m)).
		Str("path", path).
		Int("attempts", cfg.Attempts).
		Msg("sending request")

	start := time.Now()
	body, err := send(cmd.Context(), eng, payload, cfg.Attempts, d.newBackOff())
	elapsed := time.Since(start)
	if err != nil {
		log.Error().Err(err).Str("code", client.CodeOf(err)).Dur("elapsed", elapsed).Msg("request failed")
		return fmt.Errorf("%s: %w", client.CodeOf(err), err)
	}
	log.Debug().Dur("elapsed", elapsed).Msg("request completed")
	return printBody(cmd.OutOrStdout(), body)
}

// send issues the request, re-issuing recoverable failures up to attempts
// times in total.
func send(ctx context.Context, eng *client.Engine[json.RawMessage], payload any, attempts int, b backoff.BackOff) (*json.RawMessage, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx)

	op := func() (*json.RawMessage, error) {
		v, err := eng.Do(ctx, payload)
		if err != nil && !client.IsRecoverable(err) {
			return nil, backoff.Permanent(err)
		}
		return v, err
	}
	notify := func(err error, wait time.Duration) {
		log.Warn().Err(err).Dur("retry_in", wait).Msg("recoverable failure, retrying")
	}
	return backoff.RetryNotifyWithData(op, policy, notify)
}

func applyFlags(cmd *cobra.Command, cfg *config.Config, f *flags) error {
	if cmd.Flags().Changed("attempts") {
		cfg.Attempts = f.attempts
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Timeout = f.timeout
	}
	if len(f.headers) > 0 {
		merged := make(map[string]string, len(cfg.Headers)+len(f.headers))
		for k, v := range cfg.Headers {
			merged[k] = v
		}
		for _, h := range f.headers {
			name, value, ok := strings.Cut(h, ":")
			if !ok || strings.TrimSpace(name) == "" {
				return fmt.Errorf("invalid header %q, want 'Name: value'", h)
			}
			merged[strings.TrimSpace(name)] = strings.TrimSpace(value)
		}
		cfg.Headers = merged
	}
	return cfg.Validate()
}

func parseQuery(raw []string) ([]client.QueryItem, error) {
	items := make([]client.QueryItem, 0, len(raw))
	for _, q := range raw {
		name, value, ok := strings.Cut(q, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid query %q, want name=value", q)
		}
		items = append(items, client.QueryItem{Name: name, Value: value})
	}
	return items, nil
}

func parseData(m client.Method, data string) (any, error) {
	if data == "" {
		return nil, nil
	}
	if !m.CarriesBody() {
		return nil, nil
	}
	if !json.Valid([]byte(data)) {
		return nil, fmt.Errorf("--data is not valid JSON")
	}
	return json.RawMessage(data), nil
}

func printBody(w io.Writer, body *json.RawMessage) error {
	if body == nil {
		_, err := fmt.Fprintln(w, "(no content)")
		return err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, *body, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(w)
	return err
}
