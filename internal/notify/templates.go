package notify

var subjects = map[Kind]string{
	KindApplicationReceived: "We received your agent application",
	KindApplicationApproved: "Your agent application has been approved",
	KindApplicationRejected: "An update on your agent application",
}

var bodyTemplates = map[Kind]string{
	KindApplicationReceived: `<html><body>
<p>Hi {{.Name}},</p>
<p>Thank you for applying. Your application <strong>{{.ApplicationID}}</strong>
has been received and is now under review. We will email you once a decision
has been made.</p>
<p>The Agent Portal Team</p>
</body></html>`,

	KindApplicationApproved: `<html><body>
<p>Hi {{.Name}},</p>
<p>Good news: your application <strong>{{.ApplicationID}}</strong> has been
approved. Our activation team will reach out with the next steps.</p>
<p>The Agent Portal Team</p>
</body></html>`,

	KindApplicationRejected: `<html><body>
<p>Hi {{.Name}},</p>
<p>After review, we are unable to approve your application
<strong>{{.ApplicationID}}</strong> at this time.</p>
{{if .Reason}}<p>Reviewer note: {{.Reason}}</p>{{end}}
<p>You are welcome to apply again once the noted items are addressed.</p>
<p>The Agent Portal Team</p>
</body></html>`,
}
