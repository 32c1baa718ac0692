package notifsvc

import (
	"context"
	"fmt"
	"net/mail"
	"sort"
	"strings"

	"github.com/rawdahq/rawda/core"
)

// emailSink forwards billing events to the school owner's mailbox. It rides on
// core.EmailService, which already sends asynchronously, so Notify returns as
// soon as the message is handed off.
type emailSink struct {
	mailSvc core.EmailService
	to      mail.Address
}

var _ core.NotificationService = (*emailSink)(nil)

func NewEmailSink(mailSvc core.EmailService, conf *core.Config) core.NotificationService {
	return &emailSink{
		mailSvc: mailSvc,
		to:      conf.OwnerEmail,
	}
}

var eventSubjects = map[string]string{
	core.EventInvoiceCreated: "New invoice issued",
	core.EventInvoicePaid:    "Invoice paid",
}

func (sink *emailSink) Notify(_ context.Context, event string, payload interface{}) error {
	if sink.to.Address == "" {
		return nil
	}

	subject, ok := eventSubjects[event]
	if !ok {
		subject = event
	}

	sink.mailSvc.SendMessages(&core.EmailMessage{
		To:          []mail.Address{sink.to},
		Subject:     subject,
		TextContent: formatPayload(event, payload),
	})
	return nil
}

func formatPayload(event string, payload interface{}) string {
	body := new(strings.Builder)
	_, _ = fmt.Fprintf(body, "Event: %s\n", event)

	fields, ok := payload.(map[string]interface{})
	if !ok {
		_, _ = fmt.Fprintf(body, "%v\n", payload)
		return body.String()
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		_, _ = fmt.Fprintf(body, "%s: %v\n", k, fields[k])
	}
	return body.String()
}
