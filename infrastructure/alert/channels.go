package alert

import (
	"fmt"
	"log"
	"os"
)

// LogChannel writes alerts through the standard logger.
type LogChannel struct {
	logger *log.Logger
	name   string
}

// NewLogChannel creates a log channel. A nil output defaults to stdout.
func NewLogChannel(name string, output *os.File) *LogChannel {
	if output == nil {
		output = os.Stdout
	}
	return &LogChannel{
		logger: log.New(output, "[ALERT] ", log.LstdFlags),
		name:   name,
	}
}

// Send writes the alert as one log line.
func (c *LogChannel) Send(alert Alert) error {
	msg := fmt.Sprintf("[%s] %s", alert.Level, alert.Message)
	if len(alert.Fields) > 0 {
		msg += " |"
		for k, v := range alert.Fields {
			msg += fmt.Sprintf(" %s=%v", k, v)
		}
	}
	c.logger.Println(msg)
	return nil
}

// Name returns the channel name.
func (c *LogChannel) Name() string {
	return c.name
}

// DefaultChannel picks the channel matching the log output format: console
// format gets the colorized console channel, everything else the standard
// log channel.
func DefaultChannel(format string) Channel {
	if format == "console" {
		return NewConsoleChannel("console")
	}
	return NewLogChannel("log", nil)
}

// ConsoleChannel writes colorized alerts to stdout.
type ConsoleChannel struct {
	name string
}

// NewConsoleChannel creates a console channel.
func NewConsoleChannel(name string) *ConsoleChannel {
	return &ConsoleChannel{name: name}
}

// Send prints the alert with an ANSI color by level.
func (c *ConsoleChannel) Send(alert Alert) error {
	const reset = "\033[0m"
	color := reset
	switch alert.Level {
	case "INFO":
		color = "\033[32m"
	case "WARNING":
		color = "\033[33m"
	case "ERROR":
		color = "\033[31m"
	case "CRITICAL":
		color = "\033[35m"
	}
	fmt.Printf("%s[%s] %s%s\n", color, alert.Level, alert.Message, reset)
	return nil
}

// Name returns the channel name.
func (c *ConsoleChannel) Name() string {
	return c.name
}
