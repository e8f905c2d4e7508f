package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmpl "html/template"
	texttpl "text/template"
)

//go:embed *.tmpl
var FS embed.FS

// Template names understood by the email worker.
const (
	SignupOTP      = "signup_otp"
	LoginOTP       = "login_otp"
	ResetOTP       = "reset_password_otp"
	TeacherWelcome = "teacher_welcome"
)

type def struct {
	subject string
	text    string
	html    string // embedded .tmpl filename
}

var registry = map[string]def{
	SignupOTP: {
		subject: "Your QuizHub verification code",
		text:    "Welcome {{.Name}}! Your verification code is {{.Code}}. It is valid for {{.ExpiresIn}}.",
		html:    "otp_code.tmpl",
	},
	LoginOTP: {
		subject: "Your QuizHub login code",
		text:    "Hi {{.Name}}, your login code is {{.Code}}. It is valid for {{.ExpiresIn}}.",
		html:    "otp_code.tmpl",
	},
	ResetOTP: {
		subject: "Your QuizHub password reset code",
		text:    "Hi {{.Name}}, your password reset code is {{.Code}}. It is valid for {{.ExpiresIn}}.",
		html:    "otp_code.tmpl",
	},
	TeacherWelcome: {
		subject: "Your QuizHub teacher account",
		text:    "Hi {{.Name}}, your teacher account is ready. Please log in to start creating quizzes.",
		html:    "teacher_welcome.tmpl",
	},
}

// Render produces subject, plain-text and HTML bodies for a named template.
func Render(name string, data map[string]any) (subject, text, html string, err error) {
	d, ok := registry[name]
	if !ok {
		return "", "", "", fmt.Errorf("unknown email template %q", name)
	}

	tt, err := texttpl.New(name).Parse(d.text)
	if err != nil {
		return "", "", "", err
	}
	var tb bytes.Buffer
	if err := tt.Execute(&tb, data); err != nil {
		return "", "", "", err
	}

	ht, err := htmpl.ParseFS(FS, d.html)
	if err != nil {
		return "", "", "", err
	}
	var hb bytes.Buffer
	if err := ht.Execute(&hb, data); err != nil {
		return "", "", "", err
	}

	return d.subject, tb.String(), hb.String(), nil
}
