// Package logger provides logging functionality for the application.
package logger

// Level represents the logging level.
type Level string

const (
	// DebugLevel logs debug messages.
	DebugLevel Level = "debug"
	// InfoLevel logs info messages.
	InfoLevel Level = "info"
	// WarnLevel logs warning messages.
	WarnLevel Level = "warn"
	// ErrorLevel logs error messages.
	ErrorLevel Level = "error"
	// FatalLevel logs fatal messages and exits.
	FatalLevel Level = "fatal"
)

// Config represents the logger configuration.
type Config struct {
	// Level is the minimum logging level.
	Level Level `json:"level" mapstructure:"level" yaml:"level"`
	// Development enables development mode.
	Development bool `json:"development" mapstructure:"development" yaml:"development"`
	// Encoding sets the logger's encoding, console or json.
	Encoding string `json:"encoding" mapstructure:"encoding" yaml:"encoding"`
	// EnableColor enables colored output in development mode.
	EnableColor bool `json:"enableColor" mapstructure:"enable_color" yaml:"enableColor"`
}
