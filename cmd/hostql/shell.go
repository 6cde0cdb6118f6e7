package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/c-bata/go-prompt"
	"github.com/fatih/color"

	"github.com/umputun/hostql/pkg/config"
	"github.com/umputun/hostql/pkg/output"
	"github.com/umputun/hostql/pkg/query"
)

var errExit = errors.New("exit")

// shell is interactive prompt running queries and dot-commands
type shell struct {
	engine  *query.Engine
	conf    *config.Config
	mode    output.Mode
	out     io.Writer
	timeout time.Duration

	ctx    context.Context
	buffer strings.Builder // multi-line statement collected until ';'
	done   bool
}

var metaCommands = []prompt.Suggest{
	{Text: ".tables", Description: "list tables"},
	{Text: ".schema", Description: "show table declaration, .schema [table]"},
	{Text: ".mode", Description: "set output mode, .mode table|json|csv|line"},
	{Text: ".queries", Description: "list named queries"},
	{Text: ".run", Description: "run named query, .run <name>"},
	{Text: ".help", Description: "show help"},
	{Text: ".exit", Description: "exit shell"},
}

var sqlKeywords = []string{"select", "from", "where", "join", "left", "using", "on", "and", "or",
	"like", "in", "limit", "order", "by", "group", "count", "distinct", "as"}

// Run starts the prompt and blocks until ".exit", ctrl-d or ctx is done
func (s *shell) Run(ctx context.Context) error {
	s.ctx = ctx
	fmt.Fprintf(s.out, "hostql %s, enter .help for usage hints\n", revision)
	p := prompt.New(
		func(in string) {
			if err := s.Execute(in); err != nil && !errors.Is(err, errExit) {
				fmt.Fprintln(s.out, color.New(color.FgHiRed).Sprintf("error: %v", err))
			}
		},
		s.complete,
		prompt.OptionTitle("hostql"),
		prompt.OptionLivePrefix(s.prefix),
		prompt.OptionSetExitCheckerOnInput(func(string, bool) bool { return s.done || ctx.Err() != nil }),
	)
	p.Run()
	return nil
}

func (s *shell) prefix() (string, bool) {
	if s.buffer.Len() > 0 {
		return "    ...> ", true
	}
	return "hostql> ", true
}

// Execute handles a single input line. Dot-commands run at once, sql is collected until
// the line ending with ';'. Returns errExit for ".exit".
func (s *shell) Execute(in string) error {
	line := strings.TrimSpace(in)
	if line == "" {
		return nil
	}
	if s.buffer.Len() == 0 && strings.HasPrefix(line, ".") {
		return s.meta(line)
	}

	if s.buffer.Len() > 0 {
		s.buffer.WriteString(" ")
	}
	s.buffer.WriteString(line)
	if !strings.HasSuffix(line, ";") {
		return nil
	}
	sql := s.buffer.String()
	s.buffer.Reset()
	return s.query(sql)
}

func (s *shell) meta(line string) error {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]
	switch cmd {
	case ".exit", ".quit":
		s.done = true
		return errExit
	case ".help":
		for _, m := range metaCommands {
			fmt.Fprintf(s.out, "%-10s %s\n", m.Text, m.Description)
		}
		fmt.Fprintln(s.out, "sql statements end with ';' and may span lines")
		return nil
	case ".tables":
		for _, n := range s.engine.Registry().Names() {
			if len(args) == 0 || strings.Contains(n, args[0]) {
				fmt.Fprintf(s.out, "  => %s\n", n)
			}
		}
		return nil
	case ".schema":
		names := s.engine.Registry().Names()
		if len(args) > 0 {
			names = args
		}
		for _, n := range names {
			schema, err := s.engine.Registry().Schema(n)
			if err != nil {
				return err
			}
			fmt.Fprintf(s.out, "%s;\n", schema.Declaration(n))
		}
		return nil
	case ".mode":
		if len(args) == 0 {
			fmt.Fprintf(s.out, "current output mode: %s\n", s.mode)
			return nil
		}
		mode, err := output.ParseMode(args[0])
		if err != nil {
			return err
		}
		s.mode = mode
		return nil
	case ".queries":
		for _, q := range s.conf.Queries {
			if q.Description != "" {
				fmt.Fprintf(s.out, "%s - %s\n", q.Name, q.Description)
				continue
			}
			fmt.Fprintf(s.out, "%s\n", q.Name)
		}
		return nil
	case ".run":
		if len(args) == 0 {
			return errors.New("query name required")
		}
		nq, err := s.conf.Query(args[0])
		if err != nil {
			return err
		}
		return s.query(nq.Query)
	}
	return fmt.Errorf("unknown command %q, enter .help for usage hints", cmd)
}

func (s *shell) query(sql string) error {
	ctx := s.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return execute(ctx, s.engine, sql, s.mode, s.timeout, s.out)
}

func (s *shell) complete(d prompt.Document) []prompt.Suggest {
	word := d.GetWordBeforeCursor()
	if word == "" {
		return nil
	}
	before := strings.TrimSpace(d.TextBeforeCursor())
	if strings.HasPrefix(before, ".") && !strings.Contains(before, " ") {
		return prompt.FilterHasPrefix(metaCommands, word, true)
	}
	if strings.HasPrefix(before, ".run ") {
		var sg []prompt.Suggest
		for _, q := range s.conf.Queries {
			sg = append(sg, prompt.Suggest{Text: q.Name, Description: q.Description})
		}
		return prompt.FilterHasPrefix(sg, word, false)
	}
	return prompt.FilterHasPrefix(s.suggestions(), word, true)
}

// suggestions returns tables, their columns and keywords
func (s *shell) suggestions() []prompt.Suggest {
	reg := s.engine.Registry()
	seen := map[string]bool{}
	var res []prompt.Suggest
	for _, n := range reg.Names() {
		res = append(res, prompt.Suggest{Text: n, Description: "table"})
		schema, err := reg.Schema(n)
		if err != nil {
			continue
		}
		for _, c := range schema.Names() {
			if seen[c] {
				continue
			}
			seen[c] = true
			res = append(res, prompt.Suggest{Text: c, Description: "column"})
		}
	}
	for _, k := range sqlKeywords {
		res = append(res, prompt.Suggest{Text: k, Description: "keyword"})
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].Text < res[j].Text })
	return res
}
