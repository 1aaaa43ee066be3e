package mail

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridMailer sends the order-confirmation mail after checkout completion.
type SendGridMailer struct {
	client *sendgrid.Client
	sender string
}

func NewSendGridMailer(apiKey, senderEmail string) *SendGridMailer {
	return &SendGridMailer{
		client: sendgrid.NewSendClient(strings.TrimSpace(apiKey)),
		sender: strings.TrimSpace(senderEmail),
	}
}

func (m *SendGridMailer) SendOrderConfirmation(ctx context.Context, toEmail string, quantities map[string]int) error {
	if m == nil || m.client == nil {
		return fmt.Errorf("sendgrid: mailer not configured")
	}

	ids := make([]string, 0, len(quantities))
	for id := range quantities {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var body strings.Builder
	body.WriteString("Votre commande a bien été validée.\n\n")
	for _, id := range ids {
		fmt.Fprintf(&body, "- produit %s x%d\n", id, quantities[id])
	}

	msg := sgmail.NewSingleEmail(
		sgmail.NewEmail("Boutique", m.sender),
		"Confirmation de commande",
		sgmail.NewEmail("", strings.TrimSpace(toEmail)),
		body.String(),
		"",
	)

	resp, err := m.client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("sendgrid: send: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: send failed status=%d", resp.StatusCode)
	}

	log.Printf("[mail] order confirmation sent status=%d", resp.StatusCode)
	return nil
}
