package templates

import (
	"bytes"
	"encoding/json"
	"fmt"
	htmpl "html/template"
	texttpl "text/template"
)

const Welcome = "welcome"

// EmailData defines standard fields for email templates.
type EmailData struct {
	Username       string `json:"Username"`
	Email          string `json:"Email"`
	RecipientEmail string `json:"RecipientEmail"`

	AppName     string `json:"AppName"`
	CompanyName string `json:"CompanyName"`
	SupportURL  string `json:"SupportURL"`

	// PasswordPending is set when the account was created without a password.
	PasswordPending bool `json:"PasswordPending"`
}

// ToMap converts EmailData to a map[string]any for EmailJob.Data
func ToMap(d EmailData) map[string]any {
	b, _ := json.Marshal(d)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m
}

type emailTemplate struct {
	subject string
	text    *texttpl.Template
	html    *htmpl.Template
}

var registry = map[string]emailTemplate{
	Welcome: {
		subject: "Welcome to {{.AppName}}",
		text: texttpl.Must(texttpl.New("welcome.txt").Parse(`Hi {{.Username}},

Your {{.AppName}} account for {{.Email}} is ready.
{{if .PasswordPending}}A password has been generated for your account. Use "forgot password" to choose your own.
{{end}}{{if .SupportURL}}
Need help? {{.SupportURL}}
{{end}}
{{.CompanyName}}
`)),
		html: htmpl.Must(htmpl.New("welcome.html").Parse(`<!doctype html>
<html><body>
<p>Hi {{.Username}},</p>
<p>Your {{.AppName}} account for <strong>{{.Email}}</strong> is ready.</p>
{{if .PasswordPending}}<p>A password has been generated for your account. Use "forgot password" to choose your own.</p>{{end}}
{{if .SupportURL}}<p>Need help? <a href="{{.SupportURL}}">Contact support</a></p>{{end}}
<p>{{.CompanyName}}</p>
</body></html>`)),
	},
}

// Render renders subject, text and html bodies for the named template.
func Render(name string, data map[string]any) (subject, text, html string, err error) {
	tpl, ok := registry[name]
	if !ok {
		return "", "", "", fmt.Errorf("unknown email template %q", name)
	}

	var d EmailData
	b, err := json.Marshal(data)
	if err != nil {
		return "", "", "", err
	}
	if err := json.Unmarshal(b, &d); err != nil {
		return "", "", "", err
	}

	subj, err := texttpl.New("subject").Parse(tpl.subject)
	if err != nil {
		return "", "", "", err
	}
	var sb, tb, hb bytes.Buffer
	if err := subj.Execute(&sb, d); err != nil {
		return "", "", "", err
	}
	if err := tpl.text.Execute(&tb, d); err != nil {
		return "", "", "", err
	}
	if err := tpl.html.Execute(&hb, d); err != nil {
		return "", "", "", err
	}
	return sb.String(), tb.String(), hb.String(), nil
}
