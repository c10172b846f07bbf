package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// Event captures a boot or blink event for post-mortem analysis
type Event struct {
	Type   uint8  // Event type code
	Cycle  uint32 // Event clock at the time of the event
	Value1 uint32 // Context-dependent value
	Value2 uint32 // Context-dependent value
}

// Event type codes
const (
	EvtHSEReady     = 1 // HSERDY observed, Value2 = RCC_CR
	EvtPLLLocked    = 2 // PLLRDY observed, Value1 = multiplier, Value2 = RCC_CR
	EvtSysclkPLL    = 3 // SWS reads PLL, Value2 = RCC_CFGR
	EvtClockSkipped = 4 // NoClock backend selected
	EvtGPIOClock    = 5 // Port clock gate opened, Value2 = AHBENR bit
	EvtPinConfig    = 6 // Pin configured, Value1 = pin, Value2 = mode<<1|type
	EvtBootDone     = 7 // Init complete, Value1 = CPU frequency, Value2 = RCC_CFGR
	EvtPhase        = 8 // Blink phase entered, Value1 = phase, Value2 = pin
	EvtClockFailed  = 9 // Bounded wait gave up, Value1 = stage, Value2 = RCC_CR
)

const (
	EventRingSize = 32 // Keep last 32 events
)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether debug output is active
	debugEnabled bool = false

	// eventClock stamps events; the target has no timer so it defaults to zero
	eventClock = func() uint32 { return 0 }

	eventRing     [EventRingSize]Event
	eventRingHead uint8
	eventCount    uint32
)

// SetDebugWriter sets the platform-specific debug output function
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// SetEventClock sets the source of event timestamps.
// The simulator installs its cycle counter here.
func SetEventClock(clock func() uint32) {
	if clock == nil {
		clock = func() uint32 { return 0 }
	}
	eventClock = clock
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// RecordEvent captures an event in the ring buffer
func RecordEvent(eventType uint8, value1, value2 uint32) {
	idx := eventRingHead
	eventRing[idx] = Event{
		Type:   eventType,
		Cycle:  eventClock(),
		Value1: value1,
		Value2: value2,
	}
	eventRingHead = (idx + 1) % EventRingSize
	eventCount++
}

// Events returns the buffered events, oldest first
func Events() []Event {
	out := make([]Event, 0, EventRingSize)
	start := eventRingHead
	for i := uint8(0); i < EventRingSize; i++ {
		evt := eventRing[(start+i)%EventRingSize]
		if evt.Type == 0 {
			continue // Empty slot
		}
		out = append(out, evt)
	}
	return out
}

// EventName returns a short label for an event type
func EventName(eventType uint8) string {
	switch eventType {
	case EvtHSEReady:
		return "HSE_READY"
	case EvtPLLLocked:
		return "PLL_LOCKED"
	case EvtSysclkPLL:
		return "SYSCLK_PLL"
	case EvtClockSkipped:
		return "CLOCK_SKIPPED"
	case EvtGPIOClock:
		return "GPIO_CLOCK"
	case EvtPinConfig:
		return "PIN_CONFIG"
	case EvtBootDone:
		return "BOOT_DONE"
	case EvtPhase:
		return "PHASE"
	case EvtClockFailed:
		return "CLOCK_FAILED"
	default:
		return "UNKNOWN"
	}
}

// DumpEvents outputs the event ring (call after boot or on a hang)
func DumpEvents() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[EVENTS] === Event Ring Dump ===")
	debugPrintln("[EVENTS] Total events recorded: " + utoa(eventCount))
	for _, evt := range Events() {
		debugPrintln("[EVENTS] " + EventName(evt.Type) +
			" cycle=" + utoa(evt.Cycle) +
			" v1=" + utoa(evt.Value1) +
			" v2=" + hex32(evt.Value2))
	}
	debugPrintln("[EVENTS] === End Dump ===")
}

// ClearEvents clears the event buffer
func ClearEvents() {
	for i := range eventRing {
		eventRing[i] = Event{}
	}
	eventRingHead = 0
	eventCount = 0
}
