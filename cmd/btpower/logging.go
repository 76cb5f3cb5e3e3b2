package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/facebookincubator/go-belt/tool/logger"
	xlogrus "github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/sirupsen/logrus"
	"github.com/xaionaro-go/btpower/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func parseLevel(s string) (logger.Level, error) {
	switch strings.ToLower(s) {
	case "trace":
		return logger.LevelTrace, nil
	case "debug":
		return logger.LevelDebug, nil
	case "", "info":
		return logger.LevelInfo, nil
	case "warn", "warning":
		return logger.LevelWarning, nil
	case "error":
		return logger.LevelError, nil
	case "panic":
		return logger.LevelPanic, nil
	case "fatal":
		return logger.LevelFatal, nil
	}
	return logger.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// newLogger returns a logrus-backed logger writing to stderr, or to a
// rotated file when cfg.File is set.
func newLogger(cfg config.LogConfig) (logger.Logger, io.Closer, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	ll := logrus.New()
	ll.SetLevel(logrus.TraceLevel)
	ll.SetOutput(os.Stderr)

	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    1, // megabytes
			MaxBackups: 3,
			Compress:   true,
		}
		ll.SetOutput(lj)
		closer = lj
	}

	return xlogrus.New(ll).WithLevel(level), closer, nil
}
