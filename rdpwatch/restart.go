package rdpwatch

import (
	"context"

	"git.unix.lgbt/diamondburned/rdpwatch/rdpwatch/service"
	"github.com/pkg/errors"
)

// ServiceController stops and starts services by name. It is implemented by
// *service.Controller.
type ServiceController interface {
	Stop(ctx context.Context, name string) error
	Start(ctx context.Context, name string) error
}

var _ ServiceController = (*service.Controller)(nil)

// PairRestarter restarts a dependent service pair through a
// ServiceController.
type PairRestarter struct {
	c ServiceController
	j Journaler
}

var _ ServiceRestarter = (*PairRestarter)(nil)

// NewPairRestarter creates a new PairRestarter.
func NewPairRestarter(c ServiceController, j Journaler) *PairRestarter {
	return &PairRestarter{c, j}
}

// RestartDependentPair stops the dependent service, then stops the base
// service, then starts the base service again. A failure to stop the dependent
// service is journaled but does not stop the sequence. The base service is
// only started if it was stopped successfully.
//
// The dependent service is not started again: it starts itself on demand, and
// starting it here would only delay the base service becoming available.
//
// Nothing is retried. A failed restart leaves the services in whatever state
// they ended up in.
func (r *PairRestarter) RestartDependentPair(ctx context.Context, pair ServicePair) (ok bool) {
	defer func() {
		r.j.Write(&EventRestartFinished{
			Dependent: pair.Dependent,
			Base:      pair.Base,
			OK:        ok,
		})
	}()

	if pair.Dependent != "" {
		r.stop(ctx, pair.Dependent)
	}

	if !r.stop(ctx, pair.Base) {
		return false
	}

	if err := r.c.Start(ctx, pair.Base); err != nil {
		if errors.Is(err, service.ErrAlreadyRunning) {
			// Something else brought it back up already.
			r.j.Write(&EventServiceStarted{Service: pair.Base})
			return true
		}

		r.fail(pair.Base, "start", err)
		return false
	}

	r.j.Write(&EventServiceStarted{Service: pair.Base})
	return true
}

func (r *PairRestarter) stop(ctx context.Context, name string) bool {
	if err := r.c.Stop(ctx, name); err != nil {
		r.fail(name, "stop", err)
		return false
	}

	r.j.Write(&EventServiceStopped{Service: name})
	return true
}

func (r *PairRestarter) fail(name, op string, err error) {
	r.j.Write(&EventServiceFailed{
		Service: name,
		Op:      op,
		Error:   err.Error(),
	})
}
