// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	eventIndent = 4  // spaces to indent event entries
	envWidth    = 15 // width for the environment name
	eventWidth  = 10 // width for the event kind
)

// 🎯 FileEvent represents a file event for logging
type FileEvent struct {
	Env   string // Environment name
	Event string // Event kind (created/modified)
	Path  string // Absolute file path
}

// ⚡ TriggerResult represents a trigger execution for logging
type TriggerResult struct {
	Env     string // Environment name
	Command string // The configured command template
	Batch   bool   // Whether this was a batch execution
	Files   int    // Number of input files
	Err     error  // nil when the trigger counted as successful
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
}

// 🏭 New creates a new logger that prints operator-facing lines to console
// and mirrors everything into zlog
func New(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// 📝 LogFileEvent logs a qualifying file event
func (l *Logger) LogFileEvent(ev FileEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()

	symbol := color.New(color.FgBlue).Sprint("⟳")
	if ev.Event == "created" {
		symbol = color.New(color.FgGreen).Sprint("+")
	}

	fmt.Fprintf(l.console, "%*s%s %-*s %-*s %s\n",
		eventIndent, "",
		symbol,
		envWidth, color.New(color.FgCyan).Sprint(ev.Env),
		eventWidth, ev.Event,
		ev.Path)

	l.zlog.Debug().
		Str("env", ev.Env).
		Str("event", ev.Event).
		Str("file", ev.Path).
		Msg("file event")
}

// 📝 LogTriggerResult logs the outcome of one trigger execution
func (l *Logger) LogTriggerResult(res TriggerResult) {
	l.mu.Lock()
	defer l.mu.Unlock()

	mode := "single"
	if res.Batch {
		mode = "batch"
	}

	if res.Err != nil {
		fmt.Fprintf(l.console, "%*s%s %-*s trigger failed (%s, %d files): %v\n",
			eventIndent, "",
			color.New(color.FgRed).Sprint("✗"),
			envWidth, color.New(color.FgCyan).Sprint(res.Env),
			mode, res.Files, res.Err)

		l.zlog.Error().
			Err(res.Err).
			Str("env", res.Env).
			Str("command", res.Command).
			Bool("batch", res.Batch).
			Int("files", res.Files).
			Msg("trigger failed")
		return
	}

	fmt.Fprintf(l.console, "%*s%s %-*s trigger executed (%s, %d files)\n",
		eventIndent, "",
		color.New(color.FgGreen).Sprint("✓"),
		envWidth, color.New(color.FgCyan).Sprint(res.Env),
		mode, res.Files)

	l.zlog.Info().
		Str("env", res.Env).
		Str("command", res.Command).
		Bool("batch", res.Batch).
		Int("files", res.Files).
		Msg("trigger executed")
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	hotifyText := color.New(color.Bold, color.FgCyan).Sprint("hotify")
	fmt.Fprintf(l.console, "\n%s %s\n\n", hotifyText, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Watching logs a newly registered watch
func (l *Logger) Watching(env, dir, pattern string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "%s %-*s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		envWidth, color.New(color.Bold).Sprint(env),
		dir,
		color.New(color.Faint).Sprint("("+pattern+")"))
	l.zlog.Info().Str("env", env).Str("dir", dir).Str("pattern", pattern).Msg("watch registered")
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}
