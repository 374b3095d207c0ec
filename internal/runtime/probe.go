package runtime

import "context"

// DefaultProbeArgs is the version query passed when no probe args are given.
var DefaultProbeArgs = []string{"--version"}

// Prober checks whether external programs are installed and runnable.
// Results are never cached; tooling can change between invocations.
type Prober struct {
	runner Runner
}

// NewProber returns a Prober that spawns probes through r.
func NewProber(r Runner) *Prober {
	return &Prober{runner: r}
}

// IsAvailable runs command with probeArgs (DefaultProbeArgs when empty) and
// reports whether it exited with status 0. Output is ignored; some tools
// print their version on stderr.
func (p *Prober) IsAvailable(ctx context.Context, command string, probeArgs ...string) bool {
	if len(probeArgs) == 0 {
		probeArgs = DefaultProbeArgs
	}
	out, err := p.runner.Run(ctx, command, probeArgs...)
	if err != nil {
		return false
	}
	return out.Success()
}
