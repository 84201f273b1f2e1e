package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"agentportal/pkg/email"
)

// SESService is the slice of the SES client the notifier uses. Tests swap in
// a fake.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type messageTemplate struct {
	subject string
	body    *template.Template
}

// SESNotifier delivers notifications through Amazon SES.
type SESNotifier struct {
	client    SESService
	sender    string
	replyTo   string
	logger    *slog.Logger
	templates map[Kind]messageTemplate
}

// NewSESNotifier loads the default AWS config for the region and constructs
// an SES-backed notifier.
func NewSESNotifier(ctx context.Context, region, sender, replyTo string, logger *slog.Logger) (*SESNotifier, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return newSESNotifier(ses.NewFromConfig(awsCfg), sender, replyTo, logger)
}

func newSESNotifier(client SESService, sender, replyTo string, logger *slog.Logger) (*SESNotifier, error) {
	templates := make(map[Kind]messageTemplate, len(bodyTemplates))
	for kind, src := range bodyTemplates {
		tpl, err := template.New(string(kind)).Parse(src)
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", kind, err)
		}
		templates[kind] = messageTemplate{subject: subjects[kind], body: tpl}
	}
	return &SESNotifier{
		client:    client,
		sender:    sender,
		replyTo:   replyTo,
		logger:    logger,
		templates: templates,
	}, nil
}

func (n *SESNotifier) Send(ctx context.Context, kind Kind, recipient string, data Data) error {
	tpl, ok := n.templates[kind]
	if !ok {
		return fmt.Errorf("unknown notification kind %q", kind)
	}

	if data.Name == "" {
		first, last := email.DeriveNameFromEmail(recipient)
		data.Name = first + " " + last
	}

	var body bytes.Buffer
	if err := tpl.body.Execute(&body, data); err != nil {
		return fmt.Errorf("render %s body: %w", kind, err)
	}

	input := &ses.SendEmailInput{
		Source: aws.String(n.sender),
		Destination: &types.Destination{
			ToAddresses: []string{recipient},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(tpl.subject)},
			Body: &types.Body{
				Html: &types.Content{Data: aws.String(body.String())},
			},
		},
	}
	if n.replyTo != "" {
		input.ReplyToAddresses = []string{n.replyTo}
	}

	if _, err := n.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("send %s email: %w", kind, err)
	}

	n.logger.Info("email sent", "kind", string(kind), "recipient", recipient)
	return nil
}
