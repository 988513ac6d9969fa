package service

import (
	"bytes"
	htmltemplate "html/template"
	texttemplate "text/template"
)

type emailTemplate struct {
	subject *texttemplate.Template
	text    *texttemplate.Template
	html    *htmltemplate.Template
}

func newEmailTemplate(name, subject, text, html string) emailTemplate {
	return emailTemplate{
		subject: texttemplate.Must(texttemplate.New(name + ".subject").Parse(subject)),
		text:    texttemplate.Must(texttemplate.New(name + ".text").Parse(text)),
		html:    htmltemplate.Must(htmltemplate.New(name + ".html").Parse(html)),
	}
}

func (t emailTemplate) render(data any) (subject, text, html string, err error) {
	var buf bytes.Buffer
	if err = t.subject.Execute(&buf, data); err != nil {
		return
	}
	subject = buf.String()

	buf.Reset()
	if err = t.text.Execute(&buf, data); err != nil {
		return
	}
	text = buf.String()

	buf.Reset()
	if err = t.html.Execute(&buf, data); err != nil {
		return
	}
	html = buf.String()
	return
}

var otpEmail = newEmailTemplate("otp",
	`Your OTP for Health System Login`,
	`Hello {{if .FullName}}{{.FullName}}{{else}}{{.Username}}{{end}},

Your one-time password is: {{.Code}}

It expires in {{.ExpireMinutes}} minutes. If you did not try to sign in, you can ignore this email.
`,
	`<p>Hello {{if .FullName}}{{.FullName}}{{else}}{{.Username}}{{end}},</p>
<p>Your one-time password is: <strong style="font-size:20px;letter-spacing:4px">{{.Code}}</strong></p>
<p>It expires in {{.ExpireMinutes}} minutes. If you did not try to sign in, you can ignore this email.</p>`,
)

var welcomeEmail = newEmailTemplate("welcome",
	`Welcome to the Health System`,
	`Dear {{.FullName}},

You have been registered with the Health System. Our staff will contact you about the programs available to you.
`,
	`<p>Dear {{.FullName}},</p>
<p>You have been registered with the Health System. Our staff will contact you about the programs available to you.</p>`,
)

var enrollmentEmail = newEmailTemplate("enrollment",
	`Enrollment Confirmation: {{.ProgramName}} Program`,
	`Dear {{.ClientName}},

You have been enrolled in the {{.ProgramName}} ({{.ProgramCode}}) program on {{.EnrollmentDate}}.
`,
	`<p>Dear {{.ClientName}},</p>
<p>You have been enrolled in the <strong>{{.ProgramName}}</strong> ({{.ProgramCode}}) program on {{.EnrollmentDate}}.</p>`,
)
