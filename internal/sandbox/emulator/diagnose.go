package emulator

import (
	"context"
	"fmt"
	"time"

	"github.com/GriffinCanCode/PostFrame/internal/sandbox/frame"
	"github.com/GriffinCanCode/PostFrame/internal/sandbox/message"
)

// DefaultSettle is the virtual time a probe runs after load; it covers every
// fallback schedule
const DefaultSettle = 1500 * time.Millisecond

// Probe describes one emulated mount
type Probe struct {
	Document      string
	ID            string
	Title         string
	Policy        frame.Policy
	ContentHeight int
	Settle        time.Duration
	Origin        string // When set, reports from other origins are ignored
}

// Report is one size report seen by the host
type Report struct {
	At     time.Duration `json:"at"`
	Height float64       `json:"height"`
	Frame  string        `json:"frame_height"`
}

// Diagnosis is the outcome of a probe
type Diagnosis struct {
	ID          string        `json:"id"`
	FinalHeight string        `json:"final_height"`
	Reports     []Report      `json:"reports"`
	Errors      []ScriptError `json:"errors"`
	External    []string      `json:"external"`
	Console     []LogEntry    `json:"console"`
}

// Diagnose mounts probe.Document on a fresh controller, runs it in rt and
// returns the heights the host would have applied
func Diagnose(ctx context.Context, rt *Runtime, probe Probe) (*Diagnosis, error) {
	if probe.Settle <= 0 {
		probe.Settle = DefaultSettle
	}

	channel := frame.NewChannel()
	var opts []frame.Option
	if probe.Origin != "" {
		opts = append(opts, frame.WithOrigin(probe.Origin))
	}
	controller := frame.NewController(channel, opts...)
	handle, err := controller.MountFrame(frame.New(probe.Document, probe.ID, probe.Title, probe.Policy))
	if err != nil {
		return nil, fmt.Errorf("failed to mount probe: %w", err)
	}
	defer controller.Unmount(handle)

	result := &Diagnosis{ID: probe.ID, Reports: []Report{}}
	unsubscribe := channel.Subscribe(func(env message.Envelope) {
		if probe.Origin != "" && env.Origin != probe.Origin {
			return
		}
		report, ok := message.FromData(env.Data)
		if !ok || !report.IsResizeFor(probe.ID) {
			return
		}
		result.Reports = append(result.Reports, Report{
			At:     rt.clock.now,
			Height: report.Height,
			Frame:  handle.Frame().Policy.Height(report.Height),
		})
	})
	defer unsubscribe()

	if err := rt.Load(ctx, probe.Document, channel); err != nil {
		return nil, err
	}
	rt.SetContentHeight(probe.ContentHeight)
	rt.FireLoad()
	rt.Advance(probe.Settle)

	result.FinalHeight = handle.Height()
	result.Errors = rt.Errors()
	result.External = rt.External()
	result.Console = rt.Console()
	return result, nil
}
