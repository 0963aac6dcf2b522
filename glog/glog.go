// Package glog is the logging front-end of dhdemo. It forwards to
// github.com/golang/glog and exposes the few knobs the command line needs.
package glog

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/golang/glog"
)

// SetLogOutput writes log files into dir, or to stderr if dir is empty.
func SetLogOutput(dir string) {
	// glog complains about every line logged before flag.Parse
	if !flag.Parsed() {
		flag.CommandLine.Parse(nil)
	}
	if dir == "" {
		flag.Set("logtostderr", "true")
		return
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		fmt.Fprintln(os.Stderr, "logdir:", err)
		flag.Set("logtostderr", "true")
		return
	}
	flag.Set("logtostderr", "false")
	flag.Set("log_dir", dir)
}

func SetLogVerbose(level int) {
	if level < 0 {
		level = 0
	}
	flag.Set("v", strconv.Itoa(level))
}

func V(level int) bool {
	return bool(glog.V(glog.Level(level)))
}

func Infoln(args ...interface{}) {
	glog.InfoDepth(1, fmt.Sprintln(args...))
}

func Infof(format string, args ...interface{}) {
	glog.InfoDepth(1, fmt.Sprintf(format, args...))
}

func Warningln(args ...interface{}) {
	glog.WarningDepth(1, fmt.Sprintln(args...))
}

func Errorln(args ...interface{}) {
	glog.ErrorDepth(1, fmt.Sprintln(args...))
}

func Errorf(format string, args ...interface{}) {
	glog.ErrorDepth(1, fmt.Sprintf(format, args...))
}

// Exitln logs and flushes without terminating; callers still need to
// release their resources.
func Exitln(args ...interface{}) {
	glog.InfoDepth(1, fmt.Sprintln(args...))
	glog.Flush()
}

// DirectPrintln bypasses the log buffer, for stacks and dumps.
func DirectPrintln(args ...interface{}) {
	fmt.Fprintln(os.Stderr, args...)
}

func Flush() {
	glog.Flush()
}
