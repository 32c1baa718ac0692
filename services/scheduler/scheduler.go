package schedsvc

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"github.com/rawdahq/rawda/core"
	"github.com/rawdahq/rawda/core/billing"
)

const jobTimeout = 10 * time.Minute

// Scheduler drives the recurring billing cycle: monthly invoice generation for
// both populations and the daily overdue sweep.
type Scheduler struct {
	cron       *cron.Cron
	billingSvc *billing.Service
	logger     core.Logger
}

func NewScheduler(billingSvc *billing.Service, logger core.Logger, conf *core.Config) (*Scheduler, error) {
	sched := &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		billingSvc: billingSvc,
		logger:     logger,
	}
	if _, err := sched.cron.AddFunc(conf.Billing.GenerateCron, sched.runGeneration); err != nil {
		return nil, errors.Wrap(err, "registering invoice generation job")
	}
	if _, err := sched.cron.AddFunc(conf.Billing.SweepCron, sched.runSweep); err != nil {
		return nil, errors.Wrap(err, "registering overdue sweep job")
	}
	return sched, nil
}

func (sched *Scheduler) Start() {
	sched.cron.Start()
}

// Stop halts scheduling and waits for any running job to finish.
func (sched *Scheduler) Stop() {
	<-sched.cron.Stop().Done()
}

func (sched *Scheduler) runGeneration() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	now := time.Now().UTC()
	for _, pop := range billing.Populations {
		n, err := sched.billingSvc.GenerateForPeriod(ctx, pop, now.Year(), int(now.Month()))
		if err != nil {
			sched.logger.Error(fmt.Sprintf("generating %s invoices for %d-%02d: %v", pop, now.Year(), now.Month(), err), err)
			continue
		}
		sched.logger.Info(fmt.Sprintf("generated %d %s invoices for %d-%02d", n, pop, now.Year(), now.Month()))
	}
}

func (sched *Scheduler) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := sched.billingSvc.SweepOverdue(ctx, time.Now().UTC())
	if err != nil {
		sched.logger.Error(fmt.Sprintf("sweeping overdue invoices: %v", err), err)
		return
	}
	if n > 0 {
		sched.logger.Info(fmt.Sprintf("marked %d invoices overdue", n))
	}
}
