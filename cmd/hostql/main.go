package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"regexp"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/google/uuid"
	"github.com/jessevdk/go-flags"
	"golang.org/x/term"

	"github.com/umputun/hostql/pkg/config"
	"github.com/umputun/hostql/pkg/hashcache"
	"github.com/umputun/hostql/pkg/output"
	"github.com/umputun/hostql/pkg/query"
	"github.com/umputun/hostql/pkg/registry"
	"github.com/umputun/hostql/pkg/table"
	"github.com/umputun/hostql/pkg/tables"
)

type options struct {
	PositionalArgs struct {
		Query string `positional-arg-name:"query" description:"sql query to run, interactive shell if not set"`
	} `positional-args:"yes" positional-optional:"yes"`

	ConfigFile  string        `short:"c" long:"config" env:"HOSTQL_CONFIG" description:"config file or url"`
	QueryName   string        `short:"n" long:"query-name" description:"run named query from config"`
	Mode        string        `short:"m" long:"mode" env:"HOSTQL_MODE" description:"output mode, table on terminal and json otherwise" choice:"table" choice:"json" choice:"csv" choice:"line"`
	NoHashCache bool          `long:"no-hash-cache" env:"HOSTQL_NO_HASH_CACHE" description:"disable hash result cache"`
	Concurrency int           `long:"concurrency" env:"HOSTQL_CONCURRENCY" description:"concurrent process probes" default:"8"`
	Disable     []string      `long:"disable" env:"HOSTQL_DISABLE" env-delim:"," description:"disable table"`
	Timeout     time.Duration `long:"timeout" env:"HOSTQL_TIMEOUT" description:"query timeout, no timeout if not set"`
	MaxConns    int           `long:"max-conns" env:"HOSTQL_MAX_CONNS" description:"max queries running at once" default:"2"`

	Version bool `long:"version" description:"show version"`
	Dbg     bool `long:"dbg" description:"debug mode"`
}

var revision = "latest"

func main() {
	var opts options
	p := flags.NewParser(&opts, flags.PrintErrors|flags.PassDoubleDash|flags.HelpFlag)
	if _, err := p.Parse(); err != nil {
		os.Exit(1)
	}
	if opts.Version {
		fmt.Printf("hostql %s\n", revision)
		os.Exit(0)
	}
	setupLog(opts.Dbg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, opts, os.Stdout); err != nil {
		if opts.Dbg {
			log.Panicf("[ERROR] %v", err)
		}
		fmt.Fprintf(os.Stderr, "failed, %v\n", formatErrorString(err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, out io.Writer) error {
	conf := &config.Config{}
	if opts.ConfigFile != "" {
		var err error
		if conf, err = config.Load(opts.ConfigFile); err != nil {
			return fmt.Errorf("can't load config %q: %w", opts.ConfigFile, err)
		}
	}

	eng, err := makeEngine(opts, conf)
	if err != nil {
		return err
	}
	defer eng.Close() // nolint

	mode, err := outputMode(opts.Mode, out)
	if err != nil {
		return err
	}

	sql := opts.PositionalArgs.Query
	if opts.QueryName != "" {
		if sql != "" {
			return errors.New("query and query name are mutually exclusive")
		}
		nq, e := conf.Query(opts.QueryName)
		if e != nil {
			return fmt.Errorf("can't get query: %w", e)
		}
		sql = nq.Query
	}

	if sql == "" {
		sh := &shell{engine: eng, conf: conf, mode: mode, out: out, timeout: opts.Timeout}
		return sh.Run(ctx)
	}
	return execute(ctx, eng, sql, mode, opts.Timeout, out)
}

// makeEngine builds the tables, with collectors, cache and instance info, and the engine serving them
func makeEngine(opts options, conf *config.Config) (*query.Engine, error) {
	concurrency := opts.Concurrency
	if conf.Concurrency > 0 {
		concurrency = conf.Concurrency
	}
	cacheEnabled := conf.HashCacheEnabled(true) && !opts.NoHashCache
	log.Printf("[DEBUG] hash cache enabled: %v, concurrency: %d, max connections: %d", cacheEnabled, concurrency, opts.MaxConns)

	plugins := tables.All(tables.Params{
		HashCache:   hashcache.New(cacheEnabled),
		Concurrency: concurrency,
		Disabled:    append(append([]string{}, conf.DisabledTables...), opts.Disable...),
		Instance: tables.Instance{
			ID:          uuid.NewString(),
			Version:     revision,
			ConfigHash:  conf.Hash(),
			ConfigValid: true,
			StartTime:   time.Now(),
		},
	})
	reg, err := registry.New(plugins...)
	if err != nil {
		return nil, fmt.Errorf("can't make tables registry: %w", err)
	}
	eng, err := query.New(reg, query.WithMaxConns(opts.MaxConns))
	if err != nil {
		return nil, fmt.Errorf("can't make query engine: %w", err)
	}
	return eng, nil
}

// execute runs a single query and prints the result. Table mode needs all rows to size columns,
// other modes print rows as the engine produces them.
func execute(ctx context.Context, eng *query.Engine, sql string, mode output.Mode, timeout time.Duration, out io.Writer) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	st := time.Now()

	if mode == output.ModeTable {
		res, err := eng.Execute(ctx, sql)
		if err != nil {
			return err
		}
		log.Printf("[INFO] %d rows in %v", len(res.Rows), time.Since(st).Truncate(time.Millisecond))
		if err := output.Print(out, mode, res.Columns, res.Rows); err != nil {
			return fmt.Errorf("can't print result: %w", err)
		}
		return nil
	}

	f := output.New(mode, out)
	count := 0
	err := eng.Query(ctx, sql, func(r table.Row) error {
		if count == 0 {
			f.SetColumns(r.Columns())
		}
		count++
		if err := f.Write(r); err != nil {
			return fmt.Errorf("can't print row: %w", err)
		}
		return nil
	})
	if err != nil {
		if count > 0 {
			_ = f.Close() // terminate the partial output
		}
		return err
	}
	log.Printf("[INFO] %d rows in %v", count, time.Since(st).Truncate(time.Millisecond))
	if err := f.Close(); err != nil {
		return fmt.Errorf("can't print result: %w", err)
	}
	return nil
}

// outputMode returns the mode set by user, or table for terminal and json for anything else
func outputMode(mode string, out io.Writer) (output.Mode, error) {
	if mode != "" {
		return output.ParseMode(mode)
	}
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return output.ModeTable, nil
	}
	return output.ModeJSON, nil
}

func formatErrorString(input string) string {
	headerRe := regexp.MustCompile(`(.*: \d+ errors? occurred:)`)
	headerMatch := headerRe.FindStringSubmatch(input)

	if len(headerMatch) == 0 {
		return input
	}

	errorsRe := regexp.MustCompile(`\t\* ([^\n]+)`)
	errorsMatches := errorsRe.FindAllStringSubmatch(input, -1)

	formattedErrors := make([]string, 0, len(errorsMatches))
	for _, match := range errorsMatches {
		formattedErrors = append(formattedErrors, strings.TrimSpace(match[1]))
	}

	formattedString := fmt.Sprintf("%s\n", strings.TrimSpace(headerMatch[1]))
	for i, err := range formattedErrors {
		formattedString += fmt.Sprintf("   [%d] %s\n", i, err)
	}

	return formattedString
}

func setupLog(dbg bool) {
	logOpts := []lgr.Option{lgr.Out(io.Discard), lgr.Err(io.Discard)} // default to discard
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError, lgr.Out(os.Stderr)}
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))

	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
