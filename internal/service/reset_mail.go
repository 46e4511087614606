package service

import (
	"fmt"

	"github.com/spf13/viper"
	"gopkg.in/gomail.v2"
)

// SendResetMail delivers the password reset link. Callers run it after
// the relevant store commit and treat failures as fire-and-forget, so
// this never blocks a request.
func SendResetMail(token, sendTo, username string) error {
	from := viper.GetString("mail.sender")
	if from == "" || viper.GetString("mail.host") == "" {
		return fmt.Errorf("mail transport not configured")
	}

	scheme := "http"
	if viper.GetBool("host.ssl.enabled") {
		scheme = "https"
	}

	resetLink := fmt.Sprintf("%s://%s/reset_password/%s",
		scheme, viper.GetString("host.domain"), token)

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", sendTo)
	m.SetHeader("Subject", "Password reset")
	m.SetBody("text/plain", fmt.Sprintf(`Hi %s,

To reset your password visit the following link:
%s

The link expires in 30 minutes. If you did not request this please ignore this email.`, username, resetLink))

	d := gomail.NewDialer(
		viper.GetString("mail.host"),
		viper.GetInt("mail.port"),
		from,
		viper.GetString("mail.password"),
	)

	return d.DialAndSend(m)
}
