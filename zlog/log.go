// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package zlog is the leveled logger every other package diagnoses through;
// no library package prints diagnostics with fmt directly.
package zlog

import (
	"go.uber.org/zap"
)

// Logger is the leveled subset of *zap.SugaredLogger the engine needs.
// Warnf is the level -q silences; Errorf always fires.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type sugared struct {
	*zap.SugaredLogger
}

func (s sugared) Debugf(format string, args ...interface{}) { s.SugaredLogger.Debugf(format, args...) }
func (s sugared) Infof(format string, args ...interface{})  { s.SugaredLogger.Infof(format, args...) }
func (s sugared) Warnf(format string, args ...interface{})  { s.SugaredLogger.Warnf(format, args...) }
func (s sugared) Errorf(format string, args ...interface{}) { s.SugaredLogger.Errorf(format, args...) }

// New builds the default Logger from a production zap config. With quiet,
// the config's level is raised to Error, so zap's level check drops Warnf
// (and lower) calls before formatting them.
func New(quiet bool) (Logger, error) {
	cfg := zap.NewProductionConfig()
	if quiet {
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}
	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return sugared{l.Sugar()}, nil
}

// Discard is a Logger that drops everything, useful in tests.
var Discard Logger = discard{}

type discard struct{}

func (discard) Debugf(string, ...interface{}) {}
func (discard) Infof(string, ...interface{})  {}
func (discard) Warnf(string, ...interface{})  {}
func (discard) Errorf(string, ...interface{}) {}

// Warner adapts a Logger's Warnf into a wire.Warner-shaped func value.
func Warner(l Logger) func(format string, args ...interface{}) {
	return l.Warnf
}
