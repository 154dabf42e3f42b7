package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/oksasatya/go-user-registration/pkg/helpers"
	"github.com/oksasatya/go-user-registration/pkg/mailer"
	mailtpl "github.com/oksasatya/go-user-registration/pkg/mailer/templates"
)

// errDrop marks a message that can never be delivered; it is not requeued.
var errDrop = errors.New("drop message")

// processJob decodes one queued job, renders it and sends it. Errors wrapping
// errDrop are permanent, anything else is worth a retry.
func processJob(ctx context.Context, sender mailer.Sender, body []byte) error {
	var job mailer.EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return fmt.Errorf("%w: bad message: %v", errDrop, err)
	}
	if err := job.Validate(); err != nil {
		return fmt.Errorf("%w: %v", errDrop, err)
	}

	helpers.EnsureRecipientAndEmail(&job)

	subject, text, html := job.Subject, job.Text, job.HTML
	tags := job.Tags
	if job.Template != "" {
		s, t, h, err := mailtpl.Render(job.Template, job.Data)
		if err != nil {
			return fmt.Errorf("%w: render %s: %v", errDrop, job.Template, err)
		}
		subject, text, html = s, t, h
		tags = append(tags, job.Template)
	}
	if err := sender.Send(ctx, job.To, subject, text, html, tags...); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	return nil
}
