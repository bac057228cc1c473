package logger

import (
	"go.uber.org/zap"
)

var (
	base  *zap.Logger
	sugar *zap.SugaredLogger
	debug bool
)

func init() {
	base = zap.NewNop()
	sugar = base.Sugar()
}

// Init replaces the default no-op logger. Development environments get a
// human-readable console encoder and debug output.
func Init(environment string) error {
	var (
		l   *zap.Logger
		err error
	)
	if environment == "development" {
		l, err = zap.NewDevelopment(zap.AddCallerSkip(1))
		debug = true
	} else {
		l, err = zap.NewProduction(zap.AddCallerSkip(1))
		debug = false
	}
	if err != nil {
		return err
	}

	base = l
	sugar = l.Sugar()
	return nil
}

// Sync flushes buffered entries.
func Sync() {
	_ = base.Sync()
}

func Info(format string, v ...interface{}) {
	sugar.Infof(format, v...)
}

func Error(format string, v ...interface{}) {
	sugar.Errorf(format, v...)
}

func Debug(format string, v ...interface{}) {
	if debug {
		sugar.Debugf(format, v...)
	}
}

func Warn(format string, v ...interface{}) {
	sugar.Warnf(format, v...)
}

// With returns a structured logger carrying the given key/value pairs.
func With(keysAndValues ...interface{}) *zap.SugaredLogger {
	return sugar.With(keysAndValues...)
}

// LogMirrorDivergence records a dual write that left the item and user copies
// of a review out of step.
func LogMirrorDivergence(reviewID, action string, err error) {
	sugar.Warnw("review mirror diverged",
		"reviewId", reviewID,
		"action", action,
		"error", err,
	)
}
