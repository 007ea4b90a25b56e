package mail

import (
	"fmt"
	"log"
	"net/smtp"

	"github.com/BrewBoxLabs/BrewBox/internal/pkg/env"
)

// SendMail sends a single HTML email via SMTP.
func SendMail(to string, subject string, body string) error {
	host := env.GetEnv("SMTP_HOST", "")
	port := env.GetEnv("SMTP_PORT", "")
	username := env.GetEnv("SMTP_USERNAME", "")
	password := env.GetEnv("SMTP_PASSWORD", "")
	sender := env.GetEnv("SMTP_SENDER", "")

	if sender == "" {
		sender = fmt.Sprintf("no-reply@%s", "localhost")
		log.Printf("SMTP_SENDER not set, using default sender: %s", sender)
	}

	var auth smtp.Auth
	if username != "" && password != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}

	addr := fmt.Sprintf("%s:%s", host, port)

	msg := []byte(
		fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n", sender, to, subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n\r\n" +
			body,
	)

	err := smtp.SendMail(addr, auth, sender, []string{to}, msg)
	if err != nil {
		log.Printf("SMTP send error: %v", err)
	} else {
		log.Printf("Email sent to %s via %s", to, addr)
	}
	return err
}

// OrderConfirmedBody renders the order-confirmation email.
func OrderConfirmedBody(name string, orderID uint, total float64) (string, string) {
	subject := fmt.Sprintf("Your BrewBox order #%d is confirmed", orderID)
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your subscription charge went through and order <strong>#%d</strong> (₹%.2f) is on its way to roasting.</p><p>— BrewBox</p>",
		name, orderID, total,
	)
	return subject, body
}

// PaymentFailedBody renders the payment-failure email.
func PaymentFailedBody(name string, subscriptionID uint) (string, string) {
	subject := "Payment failed for your BrewBox subscription"
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>The latest charge for subscription <strong>#%d</strong> failed. Please update your payment method to keep the beans coming.</p><p>— BrewBox</p>",
		name, subscriptionID,
	)
	return subject, body
}
