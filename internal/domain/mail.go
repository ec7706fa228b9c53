package domain

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

const (
	MailTypeCreateUser       = "create_user"
	MailTypeResetPassword    = "reset_password"
	MailTypeAccountActivated = "account_activated"
)

type CreateUserMailData struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ResetPasswordMailData struct {
	FullName   string `json:"fullName"`
	OTP        string `json:"otp"`
	Expiration int    `json:"expiration"`
}

type AccountActivatedMailData struct {
	FullName string `json:"fullName"`
	Role     string `json:"role"`
	Team     string `json:"team"`
}
