package templates

import "strings"

// Option pattern
type Option func(*EmailData)

func WithAppName(name string) Option     { return func(d *EmailData) { d.AppName = name } }
func WithCompanyName(name string) Option { return func(d *EmailData) { d.CompanyName = name } }
func WithSupportURL(url string) Option   { return func(d *EmailData) { d.SupportURL = url } }
func WithPasswordPending(pending bool) Option {
	return func(d *EmailData) { d.PasswordPending = pending }
}

// NewWelcomeData builds the data for a welcome email.
func NewWelcomeData(username, email string, opts ...Option) EmailData {
	d := EmailData{
		Username:       username,
		Email:          email,
		RecipientEmail: email,
	}
	for _, opt := range opts {
		opt(&d)
	}
	if strings.TrimSpace(d.CompanyName) == "" {
		d.CompanyName = d.AppName
	}
	return d
}
