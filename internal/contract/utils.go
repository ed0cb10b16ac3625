package contract

import (
	"os"

	"github.com/fatih/color"
)

// Color variables for console output.
var (
	CriticalColor = color.New(color.FgRed, color.Bold) // critical and high severities
	HighColor     = color.New(color.FgRed)             // high severity
	MediumColor   = color.New(color.FgYellow)          // standard caution
	LowColor      = color.New(color.FgGreen)           // healthy / low-priority signal
	InfoColor     = color.New(color.FgCyan)            // informational
	HeaderColor   = color.New(color.FgHiMagenta, color.Bold)
	AccentColor   = color.New(color.FgCyan, color.Bold)
)

// SeverityColor returns the console color for an upstream severity tag.
// Unrecognized severities render uncolored.
func SeverityColor(severity string) *color.Color {
	switch severity {
	case "critical":
		return CriticalColor
	case "high":
		return HighColor
	case "medium":
		return MediumColor
	case "low":
		return LowColor
	case "info":
		return InfoColor
	default:
		return color.New(color.Reset)
	}
}

// ColorSeverity returns the severity tag colored for table output.
func ColorSeverity(severity string) string {
	return SeverityColor(severity).Sprint(severity)
}

// SelectOutputFile returns the appropriate file handle for output based on
// the provided path. An empty path falls back to os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// Truncate shortens a label to a maximum rune width with an ellipsis prefix.
func Truncate(label string, maxWidth int) string {
	runes := []rune(label)
	if maxWidth > 3 && len(runes) > maxWidth {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return label
}
