package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"flux/internal/parser"
	"flux/internal/repl"
	"flux/internal/store"
	"flux/internal/transform"
	"flux/internal/util"
)

var (
	// Version is the current version of the flux binary.
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "unknown"
	help      bool
	version   bool
	// logging
	logLevel string
	logFile  string
	// config vars
	configFile string
	nCycles    float64
	runRepl    bool
	serveAddr  string
)

func init() {
	flag.BoolVar(&help, "help", false, "Display help information and exit")
	flag.BoolVar(&help, "h", false, "Display help information and exit")
	flag.BoolVar(&version, "version", false, "Display version information and exit")
	flag.BoolVar(&version, "v", false, "Display version information and exit")
	// evaluation config
	flag.Float64Var(&nCycles, "cycles", 0, "Phase position (fractional cycle count) for one-shot evaluation")
	flag.BoolVar(&runRepl, "repl", false, "Start an interactive session")
	flag.StringVar(&serveAddr, "serve", "", "Serve the websocket realizer and preset API on this address")
	flag.StringVar(&configFile, "config", "", "Path to a TOML or YAML config file")
	// log config
	flag.StringVar(&logLevel, "log-level", "error", "Log level: debug, info, warn, error")
	flag.StringVar(&logFile, "log-file", "", "Log file path (if not set, logs to stderr)")
}

func main() {

	flag.Parse()

	loggerOptions := &slog.HandlerOptions{
		AddSource: false,
		Level:     logLevelFromString(logLevel),
	}
	logWriter := configureLogWriter()
	defaultLogger := slog.New(slog.NewJSONHandler(logWriter, loggerOptions))
	slog.SetDefault(defaultLogger)

	if version {
		printVersion()
		return
	}

	if help {
		printHelp()
		return
	}

	config := util.DefaultConfiguration()
	if configFile != "" {
		var err error
		config, err = util.LoadConfiguration(configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "flux: %v\n", err)
			os.Exit(1)
		}
	}
	config.Version = Version
	config.BuildDate = BuildDate
	config.Commit = Commit

	cycles := resolveCycles(config)

	switch {
	case serveAddr != "":
		config.ListenAddr = serveAddr
		if err := serve(config); err != nil {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}

	case runRepl:
		repl.Start(os.Stdin, os.Stdout)

	case flag.NArg() > 0:
		if err := evalFile(flag.Arg(0), cycles); err != nil {
			fmt.Fprintf(os.Stderr, "flux: %v\n", err)
			os.Exit(1)
		}

	default:
		printHelp()
	}
}

// resolveCycles prefers an explicit -cycles flag over the configured default.
func resolveCycles(config util.Configuration) float64 {
	cycles := config.NCycles
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "cycles" {
			cycles = nCycles
		}
	})
	return cycles
}

// evalFile realizes a transformer file once and prints the mapping.
func evalFile(path string, nCycles float64) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	tf, errs := parser.Parse(string(src))
	if len(errs) != 0 {
		for _, msg := range errs {
			fmt.Fprintln(os.Stderr, msg)
		}
		return fmt.Errorf("%s does not parse", path)
	}

	m := transform.Realize(nCycles, nil, tf)

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("%s = %s\n", k, m[k].Inspect())
	}
	return nil
}

func openStore(config util.Configuration) (*store.Store, error) {
	return store.Open(config.StoreDriver, config.StoreDSN)
}

func configureLogWriter() *os.File {
	var logWriter *os.File
	var err error
	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "failed to create log directory for '%s': %v; falling back to stderr\n", logFile, err)
			return os.Stderr
		}
		logWriter, err = os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file '%s': %v; falling back to stderr\n", logFile, err)
			logWriter = os.Stderr
		}
	} else {
		logWriter = os.Stderr
	}
	return logWriter
}

func printVersion() {
	fmt.Printf("flux version 'v%s' %s %s\n", Version, BuildDate, Commit)
}

func printHelp() {
	fmt.Printf(`Usage: flux [options] [filename]

Options:
  -cycles <n>        Phase position for one-shot evaluation. Default is 0.
  -repl              Start an interactive session.
  -serve <addr>      Serve the websocket realizer and preset API.
  -config <path>     Load a TOML or YAML config file.
  -help              Display this help information and exit.
  -version           Display version information and exit.
  -log-level <level> Set the log level: debug, info, warn, error. Default is 'error'.
  -log-file <path>   Specify a log file to write logs. Default is stderr.

Details:
flux evaluates transformer programs: ordered sequences of named assignments
realized against a phase position and an optional environment.

Examples:
  flux -cycles 0.25 sweep.flux  Realize the file at a quarter cycle
  flux -repl                    Start an interactive session
  flux -serve :8080             Serve realizations over websocket

Version Information:
  Version:    %s
  Build Date: %s
  Commit:     %s
`, Version, BuildDate, Commit)
}

func logLevelFromString(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelError
	}
}
