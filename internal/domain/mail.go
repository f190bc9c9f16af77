package domain

import "time"

const (
	MailTypeCreateUser    = "create_user"
	MailTypeResetPassword = "reset_password"
	MailTypeReminder      = "reminder"
)

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type CreateUserMailData struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type ResetPasswordMailData struct {
	FullName   string `json:"fullName"`
	OTP        string `json:"otp"`
	Expiration int    `json:"expiration"`
}

type ReminderMailData struct {
	FullName string    `json:"fullName"`
	Title    string    `json:"title"`
	RemindAt time.Time `json:"remindAt"`
}
