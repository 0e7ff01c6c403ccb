// Package logger 提供进程级别的简单分级日志。
package logger

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync/atomic"
)

type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	level int32 = int32(LevelInfo)
	std         = log.New(os.Stderr, "", log.LstdFlags|log.LUTC)
)

// SetLevel 设置全局日志级别。
func SetLevel(l Level) { atomic.StoreInt32(&level, int32(l)) }

// SetLevelByName parses debug/info/warn/error; unknown keeps info.
func SetLevelByName(name string) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		SetLevel(LevelDebug)
	case "warn", "warning":
		SetLevel(LevelWarn)
	case "error":
		SetLevel(LevelError)
	default:
		SetLevel(LevelInfo)
	}
}

func enabled(l Level) bool { return int32(l) >= atomic.LoadInt32(&level) }

func output(tag, format string, args ...any) {
	std.Output(3, tag+" "+fmt.Sprintf(format, args...))
}

func Debugf(format string, args ...any) {
	if enabled(LevelDebug) {
		output("[DEBUG]", format, args...)
	}
}

func Infof(format string, args ...any) {
	if enabled(LevelInfo) {
		output("[INFO]", format, args...)
	}
}

func Warnf(format string, args ...any) {
	if enabled(LevelWarn) {
		output("[WARN]", format, args...)
	}
}

func Errorf(format string, args ...any) {
	if enabled(LevelError) {
		output("[ERROR]", format, args...)
	}
}
