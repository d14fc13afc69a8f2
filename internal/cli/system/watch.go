package system

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/julianstephens/keepup/internal/cli"
	"github.com/julianstephens/keepup/internal/models"
	"github.com/julianstephens/keepup/internal/watch"
)

// WatchCmd keeps today resolved and expires overdue activities as their
// windows close, until interrupted.
type WatchCmd struct {
	Spec string `help:"Cron schedule for the expiry sweep. Defaults to the policy file's watch.spec."`
}

func (c *WatchCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}

	spec := c.Spec
	if spec == "" {
		spec = ctx.Policy().Watch.Spec
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := watch.New(svc, spec, svc.Now().Location(), watch.OnSweep(func(n int) {
		fmt.Printf("%s  expired %d activit%s\n", svc.Now().Format("15:04"), n, plural(n, "y", "ies"))
	}))

	updates := svc.Watch(runCtx, svc.Now)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for instances := range updates {
			fmt.Printf("%s  %s\n", svc.Now().Format("15:04"), summarize(instances))
		}
	}()

	fmt.Printf("Watching (%s). Press Ctrl+C to stop.\n", spec)
	err = w.Run(runCtx)
	stop()
	<-done
	return err
}

func summarize(instances []models.ActivityInstance) string {
	if len(instances) == 0 {
		return "nothing scheduled today"
	}
	counts := make(map[models.InstanceStatus]int)
	for _, inst := range instances {
		counts[inst.Status]++
	}
	return fmt.Sprintf("%d pending, %d completed, %d skipped, %d expired",
		counts[models.StatusPending], counts[models.StatusCompleted],
		counts[models.StatusSkipped], counts[models.StatusExpired])
}
