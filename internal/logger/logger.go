// Package logger is a small colored console logger in the style the
// teacher project used for its own startup banner and level-tagged lines.
package logger

import (
	"fmt"
	"log"
	"os"
	"time"
)

// ANSI color codes
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorWhite  = "\033[37m"
	ColorCyan   = "\033[36m"
	ColorGray   = "\033[90m"
)

// Log levels
const (
	LevelDebug = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelSuccess
)

// Logger is a colored, leveled logger writing to the standard log output.
type Logger struct {
	level      int
	timeFormat string
	showTime   bool
}

var defaultLogger *Logger

func init() {
	defaultLogger = &Logger{
		level:      LevelInfo,
		timeFormat: "15:04:05",
		showTime:   true,
	}
}

// SetLevel sets the minimum log level.
func SetLevel(level int) {
	defaultLogger.level = level
}

// LevelFromString maps a config-file log level name to a Level constant.
// Unknown names fall back to LevelInfo.
func LevelFromString(s string) int {
	switch s {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// ShowTime enables or disables timestamp in logs.
func ShowTime(show bool) {
	defaultLogger.showTime = show
}

func (l *Logger) formatMessage(color, prefix, message string) string {
	timestamp := ""
	if l.showTime {
		timestamp = fmt.Sprintf("%s[%s]%s ", ColorGray, time.Now().Format(l.timeFormat), ColorReset)
	}
	return fmt.Sprintf("%s%s[%s]%s %s", timestamp, color, prefix, ColorReset, message)
}

// Debug logs a debug message (gray).
func Debug(format string, args ...interface{}) {
	if defaultLogger.level <= LevelDebug {
		log.Println(defaultLogger.formatMessage(ColorGray, "DEBUG", fmt.Sprintf(format, args...)))
	}
}

// Info logs an informational message (white).
func Info(format string, args ...interface{}) {
	if defaultLogger.level <= LevelInfo {
		log.Println(defaultLogger.formatMessage(ColorWhite, "INFO", fmt.Sprintf(format, args...)))
	}
}

// Warn logs a warning message (yellow).
func Warn(format string, args ...interface{}) {
	if defaultLogger.level <= LevelWarn {
		log.Println(defaultLogger.formatMessage(ColorYellow, "WARN", fmt.Sprintf(format, args...)))
	}
}

// Error logs an error message (red).
func Error(format string, args ...interface{}) {
	if defaultLogger.level <= LevelError {
		log.Println(defaultLogger.formatMessage(ColorRed, "ERROR", fmt.Sprintf(format, args...)))
	}
}

// Success logs a success message (green).
func Success(format string, args ...interface{}) {
	if defaultLogger.level <= LevelSuccess {
		log.Println(defaultLogger.formatMessage(ColorGreen, "SUCCESS", fmt.Sprintf(format, args...)))
	}
}

// Fatal logs a fatal error and exits.
func Fatal(format string, args ...interface{}) {
	log.Println(defaultLogger.formatMessage(ColorRed, "FATAL", fmt.Sprintf(format, args...)))
	os.Exit(1)
}

// Section prints a section header, used to separate startup phases.
func Section(title string) {
	border := "═══════════════════════════════════════════════════════════"
	fmt.Printf("\n%s╔%s╗%s\n", ColorCyan, border, ColorReset)
	fmt.Printf("%s║%s %-57s %s║%s\n", ColorCyan, ColorReset, title, ColorCyan, ColorReset)
	fmt.Printf("%s╚%s╝%s\n\n", ColorCyan, border, ColorReset)
}

// Banner prints the application startup banner.
func Banner(title, version string) {
	banner := `
╔═══════════════════════════════════════════════════════════╗
║                                                           ║
║   ██╗  ██╗ █████╗ ██╗██╗     ██╗     ███████╗██████╗ █████╗
║   ██║ ██╔╝██╔══██╗██║██║     ██║     ██╔════╝██╔══██╗██╔══██╗
║   █████╔╝ ███████║██║██║     ██║     █████╗  ██████╔╝███████║
║   ██╔═██╗ ██╔══██║██║██║     ██║     ██╔══╝  ██╔══██╗██╔══██║
║   ██║  ██╗██║  ██║██║███████╗███████╗███████╗██║  ██║██║  ██║
║   ╚═╝  ╚═╝╚═╝  ╚═╝╚═╝╚══════╝╚══════╝╚══════╝╚═╝  ╚═╝╚═╝  ╚═╝
║                                                           ║
║              %s%-37s%s║
║                    %sVersion %-7s%s                      ║
║                                                           ║
╚═══════════════════════════════════════════════════════════╝
`
	fmt.Printf(banner, ColorCyan, title, ColorReset, ColorGreen, version, ColorReset)
}
