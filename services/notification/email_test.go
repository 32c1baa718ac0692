package notifsvc

import (
	"context"
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rawdahq/rawda/core"
	emailsvc "github.com/rawdahq/rawda/services/email"
)

func setup(owner string) core.NotificationService {
	emailsvc.SentMessages = emailsvc.SentMessages[:0]
	conf := &core.Config{AppName: "Rawda", OwnerEmail: mail.Address{Name: "Owner", Address: owner}}
	return NewEmailSink(emailsvc.NewConsoleServiceMock(conf), conf)
}

func TestNotifySendsToOwner(t *testing.T) {
	sink := setup("owner@school.test")

	err := sink.Notify(context.Background(), core.EventInvoiceCreated, map[string]interface{}{
		"invoice_id": "abc",
		"amount":     "300.00",
	})
	assert.NoError(t, err)

	if !assert.Len(t, emailsvc.SentMessages, 1) {
		return
	}
	msg := emailsvc.SentMessages[0]
	assert.Equal(t, "New invoice issued", msg.Subject)
	assert.Equal(t, "owner@school.test", msg.To[0].Address)
	assert.Equal(t, "Event: billing:invoice_created\namount: 300.00\ninvoice_id: abc\n", msg.TextContent)
}

func TestNotifyUnknownEventFallsBackToEventName(t *testing.T) {
	sink := setup("owner@school.test")

	err := sink.Notify(context.Background(), "billing:invoice_lost", "payload")
	assert.NoError(t, err)

	if assert.Len(t, emailsvc.SentMessages, 1) {
		assert.Equal(t, "billing:invoice_lost", emailsvc.SentMessages[0].Subject)
	}
}

func TestNotifyNoOwnerConfigured(t *testing.T) {
	sink := setup("")

	err := sink.Notify(context.Background(), core.EventInvoicePaid, nil)
	assert.NoError(t, err)
	assert.Empty(t, emailsvc.SentMessages)
}
