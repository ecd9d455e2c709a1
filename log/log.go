//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.
// All rights reserved.
//
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the  Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.
//
//

// Package log is the leveled logger used across trpc-rag-go. The
// package-level helpers write through Default, which callers may swap for
// any Logger implementation at startup.
package log

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level names accepted by SetLevel.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
	LevelFatal = "fatal"
)

// levelNames maps the accepted names onto zap levels.
var levelNames = map[string]zapcore.Level{
	LevelDebug: zapcore.DebugLevel,
	LevelInfo:  zapcore.InfoLevel,
	LevelWarn:  zapcore.WarnLevel,
	LevelError: zapcore.ErrorLevel,
	LevelFatal: zapcore.FatalLevel,
}

// zapLevel backs every logger built here, so SetLevel takes effect on all
// of them at once.
var zapLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)

// Default is the logger behind the package-level helpers. Replace it to
// redirect the module's output to another sink.
var Default Logger = newConsoleLogger()

// newConsoleLogger builds the standard console logger: colored level tags,
// RFC3339 timestamps and the call site of the package-level helper.
func newConsoleLogger() Logger {
	cfg := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalColorLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(cfg),
		zapcore.Lock(os.Stdout),
		zapLevel,
	)
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()
}

// SetLevel adjusts the least severe level that still gets logged. level is
// one of "debug", "info", "warn", "error" or "fatal"; unknown names reset
// to info.
func SetLevel(level string) {
	l, ok := levelNames[strings.ToLower(level)]
	if !ok {
		l = zapcore.InfoLevel
	}
	zapLevel.SetLevel(l)
}

// Logger is the logging interface the module writes against. The methods
// mirror zap's sugared logger, so a *zap.SugaredLogger satisfies it
// directly.
type Logger interface {
	// Debug logs at debug level, formatting like fmt.Print.
	Debug(args ...any)
	// Debugf logs at debug level, formatting like fmt.Printf.
	Debugf(format string, args ...any)
	// Info logs at info level, formatting like fmt.Print.
	Info(args ...any)
	// Infof logs at info level, formatting like fmt.Printf.
	Infof(format string, args ...any)
	// Warn logs at warn level, formatting like fmt.Print.
	Warn(args ...any)
	// Warnf logs at warn level, formatting like fmt.Printf.
	Warnf(format string, args ...any)
	// Error logs at error level, formatting like fmt.Print.
	Error(args ...any)
	// Errorf logs at error level, formatting like fmt.Printf.
	Errorf(format string, args ...any)
	// Fatal logs at fatal level and exits, formatting like fmt.Print.
	Fatal(args ...any)
	// Fatalf logs at fatal level and exits, formatting like fmt.Printf.
	Fatalf(format string, args ...any)
}

// Debug logs at debug level through Default, formatting like fmt.Print.
func Debug(args ...any) { Default.Debug(args...) }

// Debugf logs at debug level through Default, formatting like fmt.Printf.
func Debugf(format string, args ...any) { Default.Debugf(format, args...) }

// Info logs at info level through Default, formatting like fmt.Print.
func Info(args ...any) { Default.Info(args...) }

// Infof logs at info level through Default, formatting like fmt.Printf.
func Infof(format string, args ...any) { Default.Infof(format, args...) }

// Warn logs at warn level through Default, formatting like fmt.Print.
func Warn(args ...any) { Default.Warn(args...) }

// Warnf logs at warn level through Default, formatting like fmt.Printf.
func Warnf(format string, args ...any) { Default.Warnf(format, args...) }

// Error logs at error level through Default, formatting like fmt.Print.
func Error(args ...any) { Default.Error(args...) }

// Errorf logs at error level through Default, formatting like fmt.Printf.
func Errorf(format string, args ...any) { Default.Errorf(format, args...) }

// Fatal logs at fatal level through Default and exits, formatting like
// fmt.Print.
func Fatal(args ...any) { Default.Fatal(args...) }

// Fatalf logs at fatal level through Default and exits, formatting like
// fmt.Printf.
func Fatalf(format string, args ...any) { Default.Fatalf(format, args...) }
