package services

import (
	"fmt"
	"os"

	"equiptrack/internal/models"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type EmailService struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

func NewEmailService() *EmailService {
	apiKey := os.Getenv("SENDGRID_API_KEY")
	fromEmail := os.Getenv("SENDGRID_NOTIFICATIONS_FROM_EMAIL")
	fromName := os.Getenv("SENDGRID_FROM_NAME")

	client := sendgrid.NewSendClient(apiKey)

	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

// SendReminderEscalation mails the reminder's assignee when a reminder first
// escalates. One mail per arming; the email_sent flag on the reminder keeps
// this from repeating on later tiers.
func (s *EmailService) SendReminderEscalation(to models.Account, reminder models.Reminder, milestone Milestone, daysRemaining int) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(to.FullName, to.Email)

	subject := ""
	switch milestone {
	case MilestoneOverdue:
		subject = fmt.Sprintf("Overdue: %s", reminder.Title)
	case MilestoneH0:
		subject = fmt.Sprintf("Due today: %s", reminder.Title)
	default:
		subject = fmt.Sprintf("Upcoming: %s", reminder.Title)
	}

	plainContent := fmt.Sprintf("Hello %s, %s Due date: %s.",
		to.Username, reminder.Message, reminder.DueDate.Format(dueDateFormat))
	htmlContent := fmt.Sprintf("<p>Hello %s,</p><p>%s</p><p>Due date: <strong>%s</strong></p>",
		to.Username, reminder.Message, reminder.DueDate.Format(dueDateFormat))

	message := mail.NewSingleEmail(from, subject, recipient, plainContent, htmlContent)
	response, err := s.client.Send(message)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("failed to send email to %s: %d", to.Email, response.StatusCode)
	}

	return nil
}
