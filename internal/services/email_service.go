package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	sesv2 "github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/shankarium/plm/internal/models"
)

// EmailSender is the SESv2 call used for handoff mail
type EmailSender interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService notifies the next stage's role when work is handed to it
type EmailService struct {
	client     EmailSender
	fromEmail  string
	recipients map[models.UserRole][]string
}

// NewEmailService creates an email sink. Roles without addresses are not mailed.
func NewEmailService(cfg aws.Config, fromEmail string, recipients map[models.UserRole][]string) *EmailService {
	return NewEmailServiceWithClient(sesv2.NewFromConfig(cfg), fromEmail, recipients)
}

// NewEmailServiceWithClient wires an existing SES client
func NewEmailServiceWithClient(client EmailSender, fromEmail string, recipients map[models.UserRole][]string) *EmailService {
	return &EmailService{client: client, fromEmail: fromEmail, recipients: recipients}
}

// nextRole maps a transition to the role that picks up the work
func nextRole(kind EventKind) (models.UserRole, bool) {
	switch kind {
	case EventBriefSubmitted:
		return models.RoleNPD, true
	case EventConceptCreated:
		return models.RolePMFinal, true
	case EventConceptFinalized:
		return models.RoleSales, true
	default:
		return "", false
	}
}

// Publish implements Publisher
func (e *EmailService) Publish(ctx context.Context, ev Event) error {
	role, ok := nextRole(ev.Kind)
	if !ok {
		return nil
	}
	to := e.recipients[role]
	if len(to) == 0 {
		return nil
	}
	subject, body := handoffMessage(ev)
	return e.sendEmail(ctx, to, subject, body)
}

func handoffMessage(ev Event) (string, string) {
	switch ev.Kind {
	case EventBriefSubmitted:
		return fmt.Sprintf("PLM: brief #%d submitted", ev.BriefID),
			fmt.Sprintf("Brief #%d was submitted by %s and is ready for concept development.\n\nOpen /brief/%d to review it.", ev.BriefID, ev.Actor, ev.BriefID)
	case EventConceptCreated:
		return fmt.Sprintf("PLM: concept #%d ready for PM", ev.ConceptID),
			fmt.Sprintf("Concept #%d for brief #%d was created by %s and is ready for finalization.\n\nOpen /concept/%d to review it.", ev.ConceptID, ev.BriefID, ev.Actor, ev.ConceptID)
	default:
		return fmt.Sprintf("PLM: concept #%d ready for sales", ev.ConceptID),
			fmt.Sprintf("Concept #%d was finalized by %s and is now in the sales catalog.\n\nOpen /sales/catalog to see it.", ev.ConceptID, ev.Actor)
	}
}

func (e *EmailService) sendEmail(ctx context.Context, to []string, subject, textBody string) error {
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(e.fromEmail),
		Destination:      &sestypes.Destination{ToAddresses: to},
		Content: &sestypes.EmailContent{
			Simple: &sestypes.Message{
				Subject: &sestypes.Content{Data: aws.String(subject)},
				Body:    &sestypes.Body{Text: &sestypes.Content{Data: aws.String(textBody)}},
			},
		},
	}
	if _, err := e.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", strings.Join(to, ","), err)
	}
	return nil
}
