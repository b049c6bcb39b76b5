// Package rlog builds the structured logger used throughout the core: JSON
// in production, console output under --verbose, optionally rotated to a
// file via lumberjack. The CLI's single-line
// user-facing error message is independent of this stream.
package rlog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Options configures New.
type Options struct {
	Verbose bool   // console encoding and debug level instead of JSON/info
	LogFile string // if set, writes (also) go to this file via lumberjack
}

// New builds a *zap.Logger per Options. The returned logger must be Sync'd
// by the caller before process exit.
func New(opts Options) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	var encoder zapcore.Encoder
	if opts.Verbose {
		level = zapcore.DebugLevel
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	} else {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}

	var sinks []zapcore.WriteSyncer
	sinks = append(sinks, zapcore.AddSync(newStdoutSink()))
	if opts.LogFile != "" {
		sinks = append(sinks, zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.LogFile,
			MaxSize:    50, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		}))
	}

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(sinks...), level)
	return zap.New(core), nil
}

// Nop returns a logger that discards everything, for tests and library
// callers that have not configured logging.
func Nop() *zap.Logger { return zap.NewNop() }
