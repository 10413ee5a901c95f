package sinks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"

	"block-party/server/logging"
)

// ANSI severity tints for interactive terminals.
const (
	colorReset  = "\x1b[0m"
	colorDim    = "\x1b[2m"
	colorYellow = "\x1b[33m"
	colorRed    = "\x1b[31m"
)

// ConsoleSink renders the event feed as one line per event, tuned for
// watching a session's power-up activity scroll by.
type ConsoleSink struct {
	logger   *log.Logger
	useColor bool
}

func NewConsoleSink(w io.Writer, cfg logging.ConsoleConfig) *ConsoleSink {
	return &ConsoleSink{
		logger:   log.New(w, "", log.LstdFlags),
		useColor: cfg.UseColor,
	}
}

func (s *ConsoleSink) Write(event logging.Event) error {
	if s == nil || s.logger == nil {
		return nil
	}
	var line strings.Builder
	fmt.Fprintf(&line, "%-5s tick=%d %s", severityLabel(event.Severity), event.Tick, event.Type)
	if ref := entityLabel(event.Actor); ref != "" {
		fmt.Fprintf(&line, " actor=%s", ref)
	}
	if event.Payload != nil {
		if data, err := json.Marshal(event.Payload); err == nil {
			fmt.Fprintf(&line, " %s", data)
		} else {
			fmt.Fprintf(&line, " payload=%v", event.Payload)
		}
	}
	if session, ok := event.Extra["session"]; ok {
		fmt.Fprintf(&line, " session=%v", session)
	}
	if s.useColor {
		if tint := severityColor(event.Severity); tint != "" {
			s.logger.Print(tint + line.String() + colorReset)
			return nil
		}
	}
	s.logger.Print(line.String())
	return nil
}

func (s *ConsoleSink) Close(context.Context) error {
	return nil
}

func severityLabel(sev logging.Severity) string {
	switch sev {
	case logging.SeverityDebug:
		return "debug"
	case logging.SeverityInfo:
		return "info"
	case logging.SeverityWarn:
		return "warn"
	case logging.SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

func severityColor(sev logging.Severity) string {
	switch sev {
	case logging.SeverityDebug:
		return colorDim
	case logging.SeverityWarn:
		return colorYellow
	case logging.SeverityError:
		return colorRed
	default:
		return ""
	}
}

func entityLabel(ref logging.EntityRef) string {
	if ref.ID == "" {
		return string(ref.Kind)
	}
	if ref.Kind == "" {
		return ref.ID
	}
	return fmt.Sprintf("%s:%s", ref.Kind, ref.ID)
}
