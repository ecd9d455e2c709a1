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

package log

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestSetLevel(t *testing.T) {
	defer SetLevel(LevelInfo)

	cases := []struct {
		in       string
		expected zapcore.Level
	}{
		{LevelDebug, zapcore.DebugLevel},
		{LevelInfo, zapcore.InfoLevel},
		{LevelWarn, zapcore.WarnLevel},
		{LevelError, zapcore.ErrorLevel},
		{LevelFatal, zapcore.FatalLevel},
		{"WARN", zapcore.WarnLevel},
		{"verbose", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, c := range cases {
		SetLevel(c.in)
		if got := zapLevel.Level(); got != c.expected {
			t.Fatalf("SetLevel(%q) left level %v, want %v", c.in, got, c.expected)
		}
	}
}

// recordingLogger captures every call routed through the package helpers.
type recordingLogger struct {
	calls []string
}

func (r *recordingLogger) record(name string)    { r.calls = append(r.calls, name) }
func (r *recordingLogger) Debug(args ...any)     { r.record("Debug") }
func (r *recordingLogger) Debugf(string, ...any) { r.record("Debugf") }
func (r *recordingLogger) Info(args ...any)      { r.record("Info") }
func (r *recordingLogger) Infof(string, ...any)  { r.record("Infof") }
func (r *recordingLogger) Warn(args ...any)      { r.record("Warn") }
func (r *recordingLogger) Warnf(string, ...any)  { r.record("Warnf") }
func (r *recordingLogger) Error(args ...any)     { r.record("Error") }
func (r *recordingLogger) Errorf(string, ...any) { r.record("Errorf") }
func (r *recordingLogger) Fatal(args ...any)     { r.record("Fatal") }
func (r *recordingLogger) Fatalf(string, ...any) { r.record("Fatalf") }

func TestHelpersRouteToDefault(t *testing.T) {
	rec := &recordingLogger{}
	old := Default
	Default = rec
	defer func() { Default = old }()

	Debug("d")
	Debugf("d %s", "f")
	Info("i")
	Infof("i %s", "f")
	Warn("w")
	Warnf("w %s", "f")
	Error("e")
	Errorf("e %s", "f")
	Fatal("x")
	Fatalf("x %s", "f")

	want := []string{
		"Debug", "Debugf", "Info", "Infof", "Warn",
		"Warnf", "Error", "Errorf", "Fatal", "Fatalf",
	}
	if len(rec.calls) != len(want) {
		t.Fatalf("recorded %d calls, want %d", len(rec.calls), len(want))
	}
	for i, name := range want {
		if rec.calls[i] != name {
			t.Fatalf("call %d = %s, want %s", i, rec.calls[i], name)
		}
	}
}
