// btpower powers the Bluetooth radio up or down, or reports its state.
//
//	btpower [flags] enable|disable|status
//
// enable and disable exit with 0 on success and 255 (-1) on failure. status
// prints the state and exits with 1 (enabled), 0 (disabled) or 255 (unknown).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/btpower"
	"github.com/xaionaro-go/btpower/config"
)

const exitUsage = 2

var (
	configPath = flag.String("config", "", "path to the YAML configuration (default $"+config.EnvConfigPath+")")
	logLevel   = flag.String("log-level", "", "log level: trace, debug, info, warning, error")
	logFile    = flag.String("log-file", "", "write logs to this file, rotated")
	watch      = flag.Bool("watch", false, "print the sequence transitions")
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] enable|disable|status\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(exitUsage)
	}
	os.Exit(exitCode(run(flag.Arg(0))))
}

// exitCode turns a -1 result into a valid exit status.
func exitCode(code int) int {
	if code < 0 {
		return 255
	}
	return code
}

func run(command string) int {
	switch command {
	case "enable", "disable", "status":
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", command)
		flag.Usage()
		return exitUsage
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *logFile != "" {
		cfg.Log.File = *logFile
	}

	l, closer, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}
	defer closer.Close()

	ctx := logger.CtxWithLogger(context.Background(), l)
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var opts []btpower.Option
	if *watch {
		events := btpower.NewEvents()
		done := printEvents(events.Subscribe())
		defer func() {
			events.Close()
			<-done
		}()
		opts = append(opts, btpower.WithEvents(events))
	}

	radio, cleanup, err := newRadio(ctx, cfg, opts...)
	defer cleanup()
	if err != nil {
		logger.Errorf(ctx, "%v", err)
		return -1
	}

	switch command {
	case "enable":
		err := radio.Enable(ctx)
		if err != nil {
			logger.Errorf(ctx, "enable: %v", err)
		}
		return btpower.ResultCode(err)
	case "disable":
		err := radio.Disable(ctx)
		if err != nil {
			logger.Errorf(ctx, "disable: %v", err)
		}
		return btpower.ResultCode(err)
	default:
		st := radio.IsEnabled(ctx)
		fmt.Println(st)
		return st.Int()
	}
}

func printEvents(ch chan btpower.Event) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range ch {
			line := fmt.Sprintf("%s %s[%s] %s", ev.Time.Format("15:04:05.000"), ev.Operation, ev.OpID, ev.State)
			if ev.Err != nil {
				line += ": " + ev.Err.Error()
			}
			fmt.Println(line)
		}
	}()
	return done
}
