package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

var welcomeTpl = template.Must(template.New("welcome").Parse(`
<html>
  <body style="font-family: Arial, sans-serif; color: #222;">
    <h2>Welcome, {{.FirstName}}!</h2>
    <p>Your account for <b>{{.AppName}}</b> has been created with the email
    address {{.Email}}.</p>
    <p>If this wasn't you, please contact support.</p>
  </body>
</html>
`))

// RenderWelcome renders the welcome email for a new account.
// Returns subject, plain-text fallback, and HTML body.
func RenderWelcome(data map[string]any) (string, string, string, error) {
	var buf bytes.Buffer
	if err := welcomeTpl.Execute(&buf, data); err != nil {
		return "", "", "", err
	}
	subject := "Welcome to " + fmt.Sprintf("%v", data["AppName"])
	text := fmt.Sprintf("Welcome, %v! Your account has been created.", data["FirstName"])
	return subject, text, buf.String(), nil
}
