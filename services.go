package main

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
)

var smtpConfig = struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}{
	Host:     os.Getenv("ATM_SMTP_HOST"),
	Port:     os.Getenv("ATM_SMTP_PORT"),
	Username: os.Getenv("ATM_SMTP_USERNAME"),
	Password: os.Getenv("ATM_SMTP_PASSWORD"),
	From:     os.Getenv("ATM_SMTP_FROM"),
}

// SendEmailNotification delivers a plain-text email. With no SMTP host
// configured it logs and returns nil, so notification delivery never blocks
// a banking operation.
func SendEmailNotification(to, subject, body string) error {
	if smtpConfig.Host == "" {
		log.Printf("SMTP not configured. Skipping email to %s: Subject: %s", to, subject)
		return nil
	}

	auth := smtp.PlainAuth("", smtpConfig.Username, smtpConfig.Password, smtpConfig.Host)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		smtpConfig.From, to, subject, body)

	addr := fmt.Sprintf("%s:%s", smtpConfig.Host, smtpConfig.Port)

	if err := smtp.SendMail(addr, auth, smtpConfig.From, []string{to}, []byte(msg)); err != nil {
		log.Printf("Error sending email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Printf("Email sent successfully to %s", to)
	return nil
}
