package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/profile"
	log "github.com/sirupsen/logrus"

	"github.com/ironsheep/cube-lut-mcp/internal/engine"
	"github.com/ironsheep/cube-lut-mcp/internal/sample"
	"github.com/ironsheep/cube-lut-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("cube-lut-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("cube-lut-mcp - MCP server for 3D color LUTs")
			fmt.Println()
			fmt.Println("Usage: cube-lut-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  LUT_MCP_LOG_LEVEL=info       Log level (trace, debug, info, warn, error)")
			fmt.Println("  LUT_MCP_SAMPLER=auto         Sampling strategy (auto, parallel, serial)")
			fmt.Println("  LUT_MCP_TIMEOUT=60s          Per tool call timeout, 0 to disable")
			fmt.Println("  LUT_MCP_PROFILE=cpu|mem      Write a pprof profile on exit")
			fmt.Println("  LUT_MCP_PROFILE_DIR=.        Directory for profile output")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client.")
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(logLevel(os.Getenv("LUT_MCP_LOG_LEVEL")))

	if err := run(); err != nil {
		log.WithError(err).Fatal("server error")
	}
}

func run() error {
	log.WithFields(log.Fields{
		"version": Version,
		"built":   BuildTime,
		"commit":  GitCommit,
	}).Debug("starting cube-lut-mcp")

	if p := profiler(os.Getenv("LUT_MCP_PROFILE"), os.Getenv("LUT_MCP_PROFILE_DIR")); p != nil {
		defer p.Stop()
	}

	caps := sample.Detect()
	sampler := sample.New(caps)
	log.WithFields(log.Fields{
		"accelerator": caps.Accelerator,
		"workers":     caps.Workers,
		"sampler":     sampler.Name(),
	}).Info("sampler ready")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(
		server.WithEngine(engine.New(sampler)),
		server.WithTimeout(timeout(os.Getenv("LUT_MCP_TIMEOUT"))),
		server.WithVersion(Version),
	)
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func logLevel(s string) log.Level {
	if s == "" {
		return log.InfoLevel
	}
	level, err := log.ParseLevel(s)
	if err != nil {
		log.WithField("value", s).Warn("unknown LUT_MCP_LOG_LEVEL, using info")
		return log.InfoLevel
	}
	return level
}

func timeout(s string) time.Duration {
	if s == "" {
		return server.DefaultTimeout
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		log.WithField("value", s).Warnf("invalid LUT_MCP_TIMEOUT, using %s", server.DefaultTimeout)
		return server.DefaultTimeout
	}
	return d
}

// profiler starts a pprof profile of the requested kind, or returns nil.
func profiler(kind, dir string) interface{ Stop() } {
	if dir == "" {
		dir = "."
	}
	opts := []func(*profile.Profile){profile.ProfilePath(dir), profile.NoShutdownHook, profile.Quiet}

	switch strings.ToLower(kind) {
	case "":
		return nil
	case "cpu":
		opts = append(opts, profile.CPUProfile)
	case "mem":
		opts = append(opts, profile.MemProfile)
	default:
		log.WithField("value", kind).Warn("unknown LUT_MCP_PROFILE, profiling disabled")
		return nil
	}

	log.WithFields(log.Fields{"kind": kind, "dir": dir}).Info("profiling enabled")
	return profile.Start(opts...)
}
