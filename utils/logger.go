package utils

import (
	"fmt"
	"time"

	"github.com/fatih/color"
)

var (
	infoColor    = color.New(color.FgCyan)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	debugColor   = color.New(color.FgHiBlack)

	// DebugEnabled turns LogDebug on. Off by default.
	DebugEnabled = false
)

func stamp() string {
	return time.Now().Format("2006-01-02 15:04:05")
}

// LogInfo prints an informational message in cyan
func LogInfo(format string, v ...interface{}) {
	infoColor.Printf("[%s] [INFO] %s\n", stamp(), fmt.Sprintf(format, v...))
}

// LogSuccess prints a success message in green
func LogSuccess(format string, v ...interface{}) {
	successColor.Printf("[%s] [OK] %s\n", stamp(), fmt.Sprintf(format, v...))
}

// LogWarning prints a warning in yellow
func LogWarning(format string, v ...interface{}) {
	warnColor.Printf("[%s] [WARN] %s\n", stamp(), fmt.Sprintf(format, v...))
}

// LogError prints an error in red
func LogError(format string, v ...interface{}) {
	errorColor.Printf("[%s] [ERROR] %s\n", stamp(), fmt.Sprintf(format, v...))
}

// LogDebug prints a debug message when DebugEnabled is set
func LogDebug(format string, v ...interface{}) {
	if !DebugEnabled {
		return
	}
	debugColor.Printf("[%s] [DEBUG] %s\n", stamp(), fmt.Sprintf(format, v...))
}
