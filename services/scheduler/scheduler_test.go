package schedsvc

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rawdahq/rawda/core"
)

func TestNewScheduler(t *testing.T) {
	conf := &core.Config{}
	conf.Billing.GenerateCron = "0 6 1 * *"
	conf.Billing.SweepCron = "0 1 * * *"

	sched, err := NewScheduler(nil, nil, conf)
	assert.NoError(t, err)
	assert.NotNil(t, sched)

	conf.Billing.GenerateCron = "not a cron spec"
	_, err = NewScheduler(nil, nil, conf)
	assert.Error(t, err)

	conf.Billing.GenerateCron = "0 6 1 * *"
	conf.Billing.SweepCron = "61 * * * *"
	_, err = NewScheduler(nil, nil, conf)
	assert.Error(t, err)
}
