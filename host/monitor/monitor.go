package monitor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"blinkled/host/serial"
)

// Line is one debug line received from the firmware
type Line struct {
	Tag   string // Text between the leading brackets, e.g. "BOOT"
	Text  string // Remainder of the line
	Event *Event // Set for event ring dump lines
}

// Event is a decoded event ring dump entry
type Event struct {
	Name   string
	Cycle  uint32
	Value1 uint32
	Value2 uint32
}

// Monitor reads firmware debug output from a serial device
type Monitor struct {
	port      serial.Port
	connected bool
}

// NewMonitor creates a new monitor (not yet connected)
func NewMonitor() *Monitor {
	return &Monitor{}
}

// ConnectWithConfig opens the serial device described by cfg
func (m *Monitor) ConnectWithConfig(cfg *serial.Config) error {
	port, err := serial.Open(cfg)
	if err != nil {
		return fmt.Errorf("failed to open serial port: %w", err)
	}
	m.Attach(port)
	return nil
}

// Attach uses an already open port
func (m *Monitor) Attach(port serial.Port) {
	m.port = port
	m.connected = true
}

// Close closes the connection
func (m *Monitor) Close() error {
	if !m.connected {
		return nil
	}
	m.connected = false
	return m.port.Close()
}

// Run delivers every received line to fn until ctx ends or the port fails.
// Read timeouts (io.EOF from the port) are not errors.
func (m *Monitor) Run(ctx context.Context, fn func(Line)) error {
	if !m.connected {
		return errors.New("monitor not connected")
	}
	if err := m.port.Flush(); err != nil {
		return fmt.Errorf("failed to flush port: %w", err)
	}

	r := bufio.NewReader(m.port)
	var partial strings.Builder
	for {
		if ctx.Err() != nil {
			return nil
		}
		chunk, err := r.ReadString('\n')
		partial.WriteString(chunk)
		if err == nil {
			fn(ParseLine(partial.String()))
			partial.Reset()
			continue
		}
		if errors.Is(err, io.EOF) {
			time.Sleep(10 * time.Millisecond)
			continue
		}
		return fmt.Errorf("serial read failed: %w", err)
	}
}

// ParseLine splits a debug line into its tag and text and decodes event
// ring dump entries
func ParseLine(raw string) Line {
	raw = strings.TrimRight(raw, "\r\n")
	line := Line{Text: raw}
	if strings.HasPrefix(raw, "[") {
		if end := strings.IndexByte(raw, ']'); end > 0 {
			line.Tag = raw[1:end]
			line.Text = strings.TrimSpace(raw[end+1:])
		}
	}
	if line.Tag == "EVENTS" {
		line.Event = parseEvent(line.Text)
	}
	return line
}

// parseEvent decodes "NAME cycle=N v1=N v2=0xHHHHHHHH"
func parseEvent(text string) *Event {
	fields := strings.Fields(text)
	if len(fields) != 4 {
		return nil
	}
	evt := &Event{Name: fields[0]}
	for _, f := range fields[1:] {
		key, value, ok := strings.Cut(f, "=")
		if !ok {
			return nil
		}
		n, err := strconv.ParseUint(value, 0, 32)
		if err != nil {
			return nil
		}
		switch key {
		case "cycle":
			evt.Cycle = uint32(n)
		case "v1":
			evt.Value1 = uint32(n)
		case "v2":
			evt.Value2 = uint32(n)
		default:
			return nil
		}
	}
	return evt
}
