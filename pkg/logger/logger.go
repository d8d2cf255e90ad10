package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
)

// Level orders log messages by severity.
type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	cDbg  = color.New(color.FgMagenta).SprintFunc()
	cInf  = color.New(color.FgCyan, color.Bold).SprintFunc()
	cWarn = color.New(color.FgYellow, color.Bold).SprintFunc()
	cErr  = color.New(color.FgRed, color.Bold).SprintFunc()
	cSucc = color.New(color.FgGreen, color.Bold).SprintFunc()
	cFatl = color.New(color.BgRed, color.FgWhite, color.Bold).SprintFunc()
	cTime = color.New(color.FgHiBlack).SprintFunc()
)

var (
	minLevel atomic.Int32

	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

func init() {
	log.SetFlags(0)
	minLevel.Store(int32(LevelInfo))
}

// ParseLevel maps "debug", "info", "warn"/"warning" and "error" to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// SetLevel drops messages below l.
func SetLevel(l Level) {
	minLevel.Store(int32(l))
}

// SetColor toggles ANSI colors for every writer in the process.
func SetColor(enabled bool) {
	color.NoColor = !enabled
}

// SetOutput redirects log output. A nil writer restores the process default.
func SetOutput(out, errOut io.Writer) {
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	stdout = out
	stderr = errOut
}

func enabled(l Level) bool {
	return int32(l) >= minLevel.Load()
}

func timeStamp() string {
	return cTime(time.Now().Format("2006-01-02 15:04"))
}

func LogDebug(format string, v ...interface{}) {
	if !enabled(LevelDebug) {
		return
	}
	msg := fmt.Sprintf(format, v...)
	fmt.Fprintf(stdout, "%s %s %s\n", timeStamp(), cDbg("[DEBUG]"), msg)
}

func LogInfo(format string, v ...interface{}) {
	if !enabled(LevelInfo) {
		return
	}
	msg := fmt.Sprintf(format, v...)
	fmt.Fprintf(stdout, "%s %s %s\n", timeStamp(), cInf("[INFO]"), msg)
}

func LogSuccess(format string, v ...interface{}) {
	if !enabled(LevelInfo) {
		return
	}
	msg := fmt.Sprintf(format, v...)
	fmt.Fprintf(stdout, "%s %s %s\n", timeStamp(), cSucc("[OK]"), msg)
}

func LogWarn(format string, v ...interface{}) {
	if !enabled(LevelWarn) {
		return
	}
	msg := fmt.Sprintf(format, v...)
	fmt.Fprintf(stdout, "%s %s %s\n", timeStamp(), cWarn("[WARN]"), msg)
}

func LogError(format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	fmt.Fprintf(stderr, "%s %s %s\n", timeStamp(), cErr("[ERR]"), msg)
}

// exit is swapped in tests.
var exit = os.Exit

// LogFatal logs at any level and exits with status 1.
func LogFatal(format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	fmt.Fprintf(stderr, "%s %s %s\n", timeStamp(), cFatl("[FATAL]"), msg)
	exit(1)
}

func LogServerStart(port int, baseURL string, patterns int) {
	fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "   %s  %s\n", cSucc("⚡ Decision API is Active"), cTime(fmt.Sprintf("%d remote patterns loaded", patterns)))
	fmt.Fprintf(stdout, "   %s  %s\n", cInf("➜ Local:"), fmt.Sprintf("http://localhost:%d", port))
	fmt.Fprintf(stdout, "   %s  %s\n", cInf("➜ Public:"), color.New(color.FgHiBlue, color.Underline).Sprint(baseURL))
	fmt.Fprintln(stdout)
}

// LogRequest prints a preformatted access log line at info level.
func LogRequest(line string) {
	if !enabled(LevelInfo) {
		return
	}
	fmt.Fprintln(stdout, line)
}
