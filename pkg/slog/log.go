// Package slog is a simple leveled logger with colorized level tags, code
// locations on every line, and "check" shortcuts that print-and-report
// errors so call sites can fold error logging into the if statement.
package slog

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/gookit/color"
	"go.uber.org/atomic"
)

const (
	Off = iota
	Fatal
	Error
	Warn
	Info
	Debug
	Trace
)

func init() {
	if lvl := os.Getenv("FILAMENT_LOG"); lvl != "" {
		SetLogLevel(LevelFromName(lvl))
	}
}

// LevelFromName maps a level name to its constant; unrecognized names get
// Info.
func LevelFromName(name string) int32 {
	switch strings.ToUpper(name) {
	case "OFF", "FALSE", "0":
		return Off
	case "FATAL":
		return Fatal
	case "ERROR":
		return Error
	case "WARN":
		return Warn
	case "DEBUG", "TRUE", "1":
		return Debug
	case "TRACE":
		return Trace
	default:
		return Info
	}
}

type (
	// Ln prints lists of interfaces with spaces in between.
	Ln func(a ...interface{})
	// F prints like fmt.Printf surrounded by log details.
	F func(format string, a ...interface{})
	// S prints a spew.Sdump of the arguments.
	S func(a ...interface{})
	// Chk prints the error if it is not nil and returns whether it was.
	Chk func(e error) bool
	// Err constructs an error with fmt.Errorf, prints it, and returns it.
	Err func(format string, a ...interface{}) error

	LevelPrinter struct {
		Ln
		F
		S
		Chk
		Err
	}
	LevelSpec struct {
		ID        int32
		Name      string
		Colorizer func(a ...interface{}) string
	}
)

var (
	currentLevel = atomic.NewInt32(Info)

	LevelSpecs = []LevelSpec{
		{Off, "   ", color.Bit24(0, 0, 0, false).Sprint},
		{Fatal, "FTL", color.Bit24(128, 0, 0, false).Sprint},
		{Error, "ERR", color.Bit24(255, 0, 0, false).Sprint},
		{Warn, "WRN", color.Bit24(255, 128, 0, false).Sprint},
		{Info, "INF", color.Bit24(255, 255, 0, false).Sprint},
		{Debug, "DBG", color.Bit24(0, 128, 255, false).Sprint},
		{Trace, "TRC", color.Bit24(128, 0, 255, false).Sprint},
	}
)

func SetLogLevel(l int32) { currentLevel.Store(l) }
func GetLogLevel() int32  { return currentLevel.Load() }

// Log is a set of log printers for the various levels.
type Log struct {
	F, E, W, I, D, T LevelPrinter
}

// Check bundles the Chk functions of a Log for terse call sites.
type Check struct {
	F, E, W, I, D, T Chk
}

// New returns a log printer set and its check shortcut set writing to the
// given writer.
func New(writer io.Writer) (l *Log, c *Check) {
	l = &Log{
		F: getPrinter(Fatal, writer),
		E: getPrinter(Error, writer),
		W: getPrinter(Warn, writer),
		I: getPrinter(Info, writer),
		D: getPrinter(Debug, writer),
		T: getPrinter(Trace, writer),
	}
	c = &Check{
		F: l.F.Chk,
		E: l.E.Chk,
		W: l.W.Chk,
		I: l.I.Chk,
		D: l.D.Chk,
		T: l.T.Chk,
	}
	return
}

func joinStrings(a ...interface{}) (s string) {
	for i := range a {
		s += fmt.Sprint(a[i])
		if i < len(a)-1 {
			s += " "
		}
	}
	return
}

func tstamp() string { return time.Now().Format("15:04:05.000") }

func getLoc(skip int) (output string) {
	_, file, line, _ := runtime.Caller(skip)
	return color.Bit24(0, 128, 255, false).Sprint(file, ":", line)
}

func getPrinter(l int32, writer io.Writer) LevelPrinter {
	tag := LevelSpecs[l].Colorizer(LevelSpecs[l].Name)
	return LevelPrinter{
		Ln: func(a ...interface{}) {
			if currentLevel.Load() < l {
				return
			}
			fmt.Fprintf(writer, "%s %s %s %s\n", tstamp(), tag,
				joinStrings(a...), getLoc(2))
		},
		F: func(format string, a ...interface{}) {
			if currentLevel.Load() < l {
				return
			}
			fmt.Fprintf(writer, "%s %s %s %s\n", tstamp(), tag,
				fmt.Sprintf(format, a...), getLoc(2))
		},
		S: func(a ...interface{}) {
			if currentLevel.Load() < l {
				return
			}
			fmt.Fprintf(writer, "%s %s %s %s\n", tstamp(), tag,
				spew.Sdump(a...), getLoc(2))
		},
		Chk: func(e error) bool {
			if e == nil {
				return false
			}
			if currentLevel.Load() >= l {
				fmt.Fprintf(writer, "%s %s %s %s\n", tstamp(), tag,
					e.Error(), getLoc(2))
			}
			return true
		},
		Err: func(format string, a ...interface{}) error {
			if currentLevel.Load() >= l {
				fmt.Fprintf(writer, "%s %s %s %s\n", tstamp(), tag,
					fmt.Sprintf(format, a...), getLoc(2))
			}
			return fmt.Errorf(format, a...)
		},
	}
}
