package service

import (
	"fmt"
	"strings"

	"github.com/templui/showcase/internal/model"
)

func quoteNotificationTemplate(quote *model.QuoteRequest, serviceTitle, dashboardURL, appName string) (string, string) {
	subject := fmt.Sprintf("New quote request from %s", quote.Name)

	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", quote.Name)
	fmt.Fprintf(&b, "Email: %s\n", quote.Email)
	if quote.Company != "" {
		fmt.Fprintf(&b, "Company: %s\n", quote.Company)
	}
	if quote.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", quote.Phone)
	}
	if serviceTitle != "" {
		fmt.Fprintf(&b, "Service: %s\n", serviceTitle)
	}

	body := fmt.Sprintf(`A visitor requested a quote on %s.

%s
Message:
%s

View it in the dashboard: %s`, appName, b.String(), quote.Message, dashboardURL)

	return subject, body
}

func quoteConfirmationTemplate(name, appURL, appName string) (string, string) {
	subject := fmt.Sprintf("We received your request - %s", appName)
	body := fmt.Sprintf(`Hi %s,

Thanks for reaching out. We received your quote request and will get back to you within two business days.

In the meantime, take a look at our recent projects: %s/projects

Best,
The %s Team`, name, appURL, appName)

	return subject, body
}
