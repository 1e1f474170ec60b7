package mail

import (
	"bytes"
	"fmt"
	"text/template"

	"crm-service/pkg/config"

	"gopkg.in/gomail.v2"
)

const leadCreatedBody = `A new lead, {{.LeadName}}, has been created in your organization.
Log in to review and assign it to an agent.
`

const agentInvitationBody = `Hi {{.FirstName}},

You were added as an agent on the CRM. A temporary password has been set on
your account; please log in and reset it before you start working.
`

const passwordResetBody = `A password reset was requested for your account.

Use this token to confirm the reset: {{.Token}}

If you did not request this, you can ignore this message.
`

var (
	leadCreatedTmpl     = template.Must(template.New("lead_created").Parse(leadCreatedBody))
	agentInvitationTmpl = template.Must(template.New("agent_invitation").Parse(agentInvitationBody))
	passwordResetTmpl   = template.Must(template.New("password_reset").Parse(passwordResetBody))
)

// Mailer sends the service's transactional email over SMTP.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewMailer builds a mailer from the SMTP configuration.
func NewMailer(cfg *config.SMTPConfig) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

// SendLeadCreated notifies the organizer that a lead was created.
func (m *Mailer) SendLeadCreated(to, leadName string) error {
	body, err := render(leadCreatedTmpl, map[string]string{"LeadName": leadName})
	if err != nil {
		return err
	}
	return m.send(to, "A lead has been created", body)
}

// SendAgentInvitation invites a newly provisioned agent to the CRM.
func (m *Mailer) SendAgentInvitation(to, firstName string) error {
	body, err := render(agentInvitationTmpl, map[string]string{"FirstName": firstName})
	if err != nil {
		return err
	}
	return m.send(to, "You are invited to be an agent", body)
}

// SendPasswordReset delivers a password reset token.
func (m *Mailer) SendPasswordReset(to, token string) error {
	body, err := render(passwordResetTmpl, map[string]string{"Token": token})
	if err != nil {
		return err
	}
	return m.send(to, "Password reset requested", body)
}

func (m *Mailer) send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}
	return nil
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering mail body: %w", err)
	}
	return buf.String(), nil
}
