// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sirseerhq/fda-relay/internal/config"
	relayerrors "github.com/sirseerhq/fda-relay/internal/errors"
	"github.com/sirseerhq/fda-relay/internal/logging"
	"github.com/sirseerhq/fda-relay/internal/metadata"
	"github.com/sirseerhq/fda-relay/internal/openfda"
	"github.com/sirseerhq/fda-relay/internal/output"
)

// fetchOptions collects the flag values for a single fetch invocation.
// Zero values mean "not set"; the loaded configuration fills those in.
type fetchOptions struct {
	limit          int
	pageSize       int
	format         string
	outputFile     string
	statsFile      string
	apiKey         string
	requestTimeout int
	configFile     string
	quiet          bool
	verbose        bool
}

// newFetchClient builds the client stack for a fetch run: a REST client with
// auth and rate-limit transports, wrapped in the retry decorator. Tests
// replace this to inject a mock.
var newFetchClient = func(cfg *config.Config, apiKey string, log zerolog.Logger) openfda.Client {
	rest := openfda.NewRESTClient(openfda.ClientConfig{
		Endpoint:          cfg.FDA.APIEndpoint,
		APIKey:            apiKey,
		Timeout:           cfg.RequestTimeout(),
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
		UserAgent:         "fda-relay/" + version,
		Logger:            log,
	})
	return openfda.NewRetryClient(rest, nil, log)
}

// fetchCmd represents the fetch command
func newFetchCommand() *cobra.Command {
	opts := &fetchOptions{}

	cmd := &cobra.Command{
		Use:   "fetch <product-code>",
		Short: "Fetch 510(k) clearance records for a product code",
		Long: `Fetch 510(k) device clearance records for a product code from openFDA.

The product code is the FDA's three-letter device classification code.
For example: LLZ, KJZ, OZO

All records matching the code are fetched page by page and written in the
requested output format. An API key raises the request quota but is not
required:
  - Use --api-key flag to provide a key directly
  - Or set the FDA_API_KEY environment variable`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFlags(cmd, opts); err != nil {
				return err
			}
			return runFetch(cmd.Context(), args[0], opts)
		},
	}

	// Define flags
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "Stop after N records (0 = fetch every match)")
	cmd.Flags().IntVar(&opts.pageSize, "page-size", 0, "Records per request, 1-100 (default from config)")
	cmd.Flags().StringVar(&opts.format, "format", "", "Output format: json or ndjson (default from config)")
	cmd.Flags().StringVar(&opts.outputFile, "output", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&opts.statsFile, "stats", "", "Write fetch statistics as JSON to this path")
	cmd.Flags().StringVar(&opts.apiKey, "api-key", "", "openFDA API key (overrides FDA_API_KEY env var)")
	cmd.Flags().IntVar(&opts.requestTimeout, "request-timeout", 0, "Per-request timeout in seconds (default from config)")
	cmd.Flags().StringVar(&opts.configFile, "config", "", "Config file path")
	cmd.Flags().BoolVar(&opts.quiet, "quiet", false, "Suppress progress output and the final summary")
	cmd.Flags().BoolVar(&opts.verbose, "verbose", false, "Enable debug logging")

	return cmd
}

// validateFlags rejects flag values that can never be valid. This runs
// before any network or filesystem work so usage errors stay cheap.
func validateFlags(cmd *cobra.Command, opts *fetchOptions) error {
	if opts.limit < 0 {
		return fmt.Errorf("--limit cannot be negative, got: %d", opts.limit)
	}
	if cmd.Flags().Changed("page-size") && (opts.pageSize < 1 || opts.pageSize > 100) {
		return fmt.Errorf("--page-size must be between 1 and 100, got: %d", opts.pageSize)
	}
	if cmd.Flags().Changed("request-timeout") && opts.requestTimeout < 1 {
		return fmt.Errorf("--request-timeout must be positive, got: %d", opts.requestTimeout)
	}
	if opts.format != "" && !output.ValidFormat(opts.format) {
		return fmt.Errorf("unknown output format %q (supported: %s, %s)", opts.format, output.FormatJSON, output.FormatNDJSON)
	}
	return nil
}

// runFetch executes the fetch command
func runFetch(ctx context.Context, productCodeArg string, opts *fetchOptions) error {
	productCode, err := normalizeProductCode(productCodeArg)
	if err != nil {
		return err
	}

	level := logging.LevelWarn
	if opts.verbose {
		level = logging.LevelDebug
	}
	logging.Setup(logging.Config{Level: level, Pretty: true})
	log := logging.NewLogger("fetch")

	cfg, err := config.LoadConfigForProduct(opts.configFile, productCode)
	if err != nil {
		return err
	}
	applyFlagOverrides(cfg, opts)
	if err := cfg.Validate(); err != nil {
		return err
	}

	apiKey := getAPIKey(opts.apiKey, cfg.FDA.APIKeyEnv)

	writer, err := openWriter(cfg.Defaults.OutputFormat, opts.outputFile)
	if err != nil {
		return err
	}
	defer writer.Close()

	f := &fetcher{
		client:   newFetchClient(cfg, apiKey, log),
		writer:   writer,
		tracker:  metadata.New(),
		progress: newProgressPrinter(!opts.quiet && cfg.RateLimit.ShowProgress),
		log:      log,
	}

	if err := f.fetchAll(ctx, productCode, cfg.Defaults.PageSize, opts.limit); err != nil {
		return err
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize output: %w", err)
	}

	meta := f.tracker.GenerateMetadata(version, metadata.FetchParams{
		ProductCode: productCode,
		Endpoint:    cfg.FDA.APIEndpoint,
		PageSize:    cfg.Defaults.PageSize,
		Limit:       opts.limit,
		Format:      cfg.Defaults.OutputFormat,
	})

	if opts.statsFile != "" {
		if err := metadata.SaveMetadata(meta, opts.statsFile); err != nil {
			return fmt.Errorf("failed to write fetch statistics: %w", err)
		}
	}

	if !opts.quiet {
		fmt.Fprintln(os.Stderr, meta.Summary())
	}

	return nil
}

// normalizeProductCode trims and uppercases the positional product code
// argument. openFDA stores product codes as uppercase letters.
func normalizeProductCode(arg string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(arg))
	if code == "" {
		return "", fmt.Errorf("product code cannot be empty")
	}
	return code, nil
}

// applyFlagOverrides layers flag values over the loaded configuration.
// Flags beat every other configuration source.
func applyFlagOverrides(cfg *config.Config, opts *fetchOptions) {
	if opts.pageSize > 0 {
		cfg.Defaults.PageSize = opts.pageSize
	}
	if opts.format != "" {
		cfg.Defaults.OutputFormat = opts.format
	}
	if opts.requestTimeout > 0 {
		cfg.Defaults.RequestTimeoutSeconds = opts.requestTimeout
	}
}

// getAPIKey returns the openFDA API key from the flag or the configured
// environment variable. An empty key is valid; openFDA serves anonymous
// requests at a lower quota.
func getAPIKey(flagKey, envVar string) string {
	if flagKey != "" {
		return flagKey
	}
	return os.Getenv(envVar)
}

// openWriter builds the record writer for the selected format, targeting
// stdout unless an output file was requested.
func openWriter(format, outputFile string) (output.OutputWriter, error) {
	if outputFile == "" {
		return output.NewWriter(format, os.Stdout)
	}
	return output.NewFileWriter(format, outputFile)
}

// fetcher drives the pagination loop for one product code.
type fetcher struct {
	client   openfda.Client
	writer   output.OutputWriter
	tracker  *metadata.Tracker
	progress *progressPrinter
	log      zerolog.Logger
}

// fetchAll pages through every record for productCode, streaming each one to
// the writer as it arrives. The offset advances by the number of records
// actually returned, so pages stay contiguous even if the service caps the
// page size below the requested value.
//
// The loop stops when a page comes back short, when the reported match total
// is reached, or when limit records have been written. A limit hit before
// the result set is exhausted marks the run as truncated.
func (f *fetcher) fetchAll(ctx context.Context, productCode string, pageSize, limit int) error {
	skip := 0
	written := 0

	for {
		page, err := f.client.FetchDevices(ctx, productCode, openfda.FetchOptions{
			PageSize: pageSize,
			Skip:     skip,
		})
		if err != nil {
			f.progress.clear()
			return err
		}

		f.tracker.IncrementAPICall()
		if page.Total > 0 {
			f.tracker.SetTotalAvailable(page.Total)
		}

		wroteFromPage := 0
		for _, record := range page.Records {
			if limit > 0 && written >= limit {
				break
			}
			if err := f.writer.Write(record); err != nil {
				f.progress.clear()
				return fmt.Errorf("failed to write record: %w", err)
			}
			f.tracker.RecordDevice(record.KNumber)
			written++
			wroteFromPage++

			f.progress.update(written, page.Total)
		}

		skip += len(page.Records)

		if limit > 0 && written >= limit {
			if wroteFromPage < len(page.Records) || page.HasMore {
				f.tracker.MarkTruncated()
			}
			break
		}

		if !page.HasMore {
			break
		}

		f.log.Debug().
			Str("product_code", productCode).
			Int("skip", skip).
			Int("fetched", written).
			Msg("advancing to next page")
	}

	f.progress.clear()
	return nil
}

// progressPrinter writes a single-line progress indicator to stderr. It
// stays silent unless progress is enabled and stderr is a terminal, so
// redirected runs and scripts never see control characters.
type progressPrinter struct {
	enabled   bool
	out       io.Writer
	startTime time.Time
}

func newProgressPrinter(enabled bool) *progressPrinter {
	return &progressPrinter{
		enabled:   enabled && term.IsTerminal(int(os.Stderr.Fd())),
		out:       os.Stderr,
		startTime: time.Now(),
	}
}

// update redraws the progress line with percentage and ETA when the match
// total is known, or a plain running count when it is not.
func (p *progressPrinter) update(current, total int) {
	if !p.enabled {
		return
	}

	if total <= 0 {
		fmt.Fprintf(p.out, "\rFetched %d records", current)
		return
	}

	percent := float64(current) * 100 / float64(total)
	elapsed := time.Since(p.startTime)

	// Calculate ETA
	var eta string
	if current > 0 {
		totalTime := elapsed.Seconds() * float64(total) / float64(current)
		remaining := time.Duration(totalTime-elapsed.Seconds()) * time.Second

		if remaining > 0 {
			eta = fmt.Sprintf(" | ETA: %s", remaining.Round(time.Second))
		}
	}

	fmt.Fprintf(p.out, "\rProgress: %d / %d records [%.1f%%]%s", current, total, percent, eta)
}

// clear erases the progress line so following stderr output starts clean.
func (p *progressPrinter) clear() {
	if !p.enabled {
		return
	}
	fmt.Fprintf(p.out, "\r\033[K")
}

// mapErrorToExitCode maps internal errors to appropriate exit codes
func mapErrorToExitCode(err error) int {
	if err == nil {
		return 0
	}

	// Check for specific error types
	if errors.Is(err, relayerrors.ErrInvalidAPIKey) ||
		errors.Is(err, relayerrors.ErrEndpointNotFound) ||
		errors.Is(err, relayerrors.ErrRateLimit) {
		return 2 // Authentication/authorization errors
	}

	if errors.Is(err, relayerrors.ErrNetworkFailure) {
		return 3 // Network errors
	}

	return 1 // General error
}
