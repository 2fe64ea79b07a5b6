package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/woxQAQ/agent-bridge/internal/bridge"
	"github.com/woxQAQ/agent-bridge/internal/completion"
	"github.com/woxQAQ/agent-bridge/internal/config"
	"github.com/woxQAQ/agent-bridge/internal/handler"
	"github.com/woxQAQ/agent-bridge/internal/textcodec"
	"github.com/woxQAQ/agent-bridge/internal/uri"
	"github.com/woxQAQ/agent-bridge/pkg/protocol"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usage = `usage: agent-bridge [flags] <command> [args]

commands:
  uri <path|uri>                   print the agent URI
  position <file> <offset>         print the position of an offset
  range <file> <start> <end>       print the range between two offsets
  request <file> <offset>          print an autocomplete request
  apply <file> <result.json> [n]   apply completion item n (default 0) and print the text
`

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "", "Path to configuration file")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	// Initialize logger
	var logger *zap.Logger
	if cfg.LogLevel == "debug" {
		logger, _ = zap.NewDevelopment()
	} else {
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Debug("Starting agent-bridge",
		zap.String("version", version),
		zap.String("commit", commit),
		zap.String("date", date),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, flag.Args(), os.Stdout); err != nil {
		logger.Error("Command failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger, args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("missing command")
	}

	b, err := bridge.New(cfg, logger)
	if err != nil {
		return err
	}

	switch cmd, rest := args[0], args[1:]; cmd {
	case "uri":
		if len(rest) != 1 {
			return fmt.Errorf("uri: expected 1 argument, got %d", len(rest))
		}
		if strings.Contains(rest[0], "://") {
			fmt.Fprintln(out, uri.Normalize(rest[0]))
		} else {
			fmt.Fprintln(out, b.DocumentURI(rest[0]))
		}
		return nil

	case "position":
		doc, offsets, err := loadWithOffsets(rest, 1)
		if err != nil {
			return fmt.Errorf("position: %w", err)
		}
		pos, err := textcodec.OffsetToPosition(doc, offsets[0])
		if err != nil {
			return err
		}
		return writeJSON(out, pos)

	case "range":
		doc, offsets, err := loadWithOffsets(rest, 2)
		if err != nil {
			return fmt.Errorf("range: %w", err)
		}
		r, err := textcodec.OffsetsToRange(doc, offsets[0], offsets[1])
		if err != nil {
			return err
		}
		return writeJSON(out, r)

	case "request":
		doc, offsets, err := loadWithOffsets(rest, 1)
		if err != nil {
			return fmt.Errorf("request: %w", err)
		}
		id, _, err := b.Open(rest[0], doc)
		if err != nil {
			return err
		}
		defer b.Close(id)

		params, err := b.Request(id, doc, offsets[0], protocol.TriggerKindInvoke)
		if err != nil {
			return err
		}
		return writeJSON(out, params)

	case "apply":
		return apply(ctx, b, rest, out)
	}

	return fmt.Errorf("unknown command %q", args[0])
}

func apply(ctx context.Context, b *bridge.Bridge, args []string, out io.Writer) error {
	if len(args) < 2 || len(args) > 3 {
		return fmt.Errorf("apply: expected 2 or 3 arguments, got %d", len(args))
	}

	doc, err := loadDocument(args[0])
	if err != nil {
		return err
	}
	payload, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("failed to read completion result: %w", err)
	}
	index := 0
	if len(args) == 3 {
		if index, err = strconv.Atoi(args[2]); err != nil {
			return fmt.Errorf("apply: invalid item index %q: %w", args[2], err)
		}
	}

	id, _, err := b.Open(args[0], doc)
	if err != nil {
		return err
	}
	defer b.Close(id)

	var result *completion.Result
	if err := b.Register(id, handler.HandlerFunc(func(_ context.Context, r *completion.Result) error {
		result = r
		return nil
	})); err != nil {
		return err
	}
	if _, err := b.Deliver(ctx, id, payload); err != nil {
		return err
	}

	next, _, err := b.Accept(doc, result, index)
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, next.Text())
	return err
}

func loadDocument(path string) (*textcodec.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return textcodec.NewDocument(string(data)), nil
}

func loadWithOffsets(args []string, n int) (*textcodec.Document, []int, error) {
	if len(args) != n+1 {
		return nil, nil, fmt.Errorf("expected %d arguments, got %d", n+1, len(args))
	}

	offsets := make([]int, n)
	for i, arg := range args[1:] {
		v, err := strconv.Atoi(arg)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid offset %q: %w", arg, err)
		}
		offsets[i] = v
	}

	doc, err := loadDocument(args[0])
	if err != nil {
		return nil, nil, err
	}
	return doc, offsets, nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
