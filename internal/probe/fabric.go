package probe

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"hivehyde/internal/types"
)

// AnomalyScanner is implemented by internal/anomaly.Scanner. Fabric
// depends on this interface rather than importing internal/anomaly
// directly, since the anomaly scanner itself depends on probe.Runtime
// for its navigator/chrome/Notification shim.
type AnomalyScanner interface {
	Scan(rt *Runtime) types.AnomalyResult
}

// Fabric dispatches a policy's collector list against a Runtime
// concurrently and waits for every one of them to finish before
// returning. Dispatch is by tagged variant (the probe name string)
// rather than a map of closures, so an unknown collector name is a
// compile-time-visible switch case instead of a silent no-op.
type Fabric struct {
	rt      *Runtime
	scanner AnomalyScanner
}

// NewFabric binds a Fabric to the runtime it will collect from and the
// anomaly scanner it delegates the "anomaly_scan" collector to.
func NewFabric(rt *Runtime, scanner AnomalyScanner) *Fabric {
	return &Fabric{rt: rt, scanner: scanner}
}

// Gather runs every named collector in names concurrently and returns
// a name->result map. ctx cancellation stops new dispatch but does not
// abort collectors already running — each collector is a pure,
// non-blocking computation over the host profile and finishes in
// microseconds.
func (f *Fabric) Gather(ctx context.Context, names []string) (map[string]types.ProbeResult, error) {
	results := make(map[string]types.ProbeResult, len(names))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range names {
		name := name
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r := f.dispatch(name)
			mu.Lock()
			results[name] = r
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func (f *Fabric) dispatch(name string) types.ProbeResult {
	switch name {
	case NameCanvas:
		return f.rt.Canvas()
	case NameWebGL:
		return f.rt.WebGL()
	case NameAudio:
		return f.rt.Audio()
	case NamePlatform:
		return f.rt.Platform()
	case NameScreen:
		return f.rt.Screen()
	case NameLanguage:
		return f.rt.Language()
	case NamePlugins:
		return f.rt.Plugins()
	case NamePerf:
		return f.rt.Performance()
	case NameTrajectory:
		return f.rt.Trajectory()
	case NameAnomaly:
		if f.scanner == nil {
			return types.ProbeResult{Err: "anomaly scanner not configured"}
		}
		return types.Ok(f.scanner.Scan(f.rt))
	default:
		return types.ProbeResult{Err: fmt.Sprintf("unknown collector %q", name)}
	}
}
