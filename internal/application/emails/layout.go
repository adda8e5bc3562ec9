package emails

import (
	"fmt"
	"html"
	"time"
)

const (
	siteName     = "Home Links"
	supportEmail = "support@homelinks.in"

	themePrimary = "#0F766E"
	themeBgBody  = "#F3F4F6"
	themeMuted   = "#6B7280"
)

// Layout wraps content in the branded email shell.
func Layout(contentHTML string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>%[1]s</title>
  <style>
    body { margin: 0; padding: 0; background-color: %[2]s; font-family: -apple-system, 'Segoe UI', Roboto, Arial, sans-serif; }
    .content p { margin: 0 0 20px 0; font-size: 16px; line-height: 1.6; color: #374151; }
    .content h1 { color: #111827; font-size: 22px; margin: 0 0 18px 0; }
    .button { display: inline-block; background-color: %[3]s; color: #ffffff !important; padding: 12px 28px; border-radius: 6px; text-decoration: none; font-weight: 600; }
    .footer { color: %[4]s; font-size: 13px; }
  </style>
</head>
<body>
  <table role="presentation" width="100%%" cellspacing="0" cellpadding="0" style="background-color: %[2]s;">
    <tr><td align="center" style="padding: 40px 0;">
      <table role="presentation" width="600" cellspacing="0" cellpadding="0" style="background-color: #FFFFFF; border-radius: 8px;">
        <tr><td style="padding: 32px 48px 0 48px; font-size: 24px; font-weight: 700; color: %[3]s;">%[1]s</td></tr>
        <tr><td class="content" style="padding: 24px 48px;">%[5]s</td></tr>
        <tr><td class="footer" align="center" style="padding: 24px 48px 32px 48px;">
          Need help? <a href="mailto:%[6]s" style="color: %[3]s;">%[6]s</a><br>
          &copy; %[7]d %[1]s. All rights reserved.
        </td></tr>
      </table>
    </td></tr>
  </table>
</body>
</html>`, siteName, themeBgBody, themePrimary, themeMuted, contentHTML, supportEmail, time.Now().Year())
}

func greetingName(firstName string) string {
	if firstName == "" {
		return "there"
	}
	return html.EscapeString(firstName)
}

func welcomeContent(firstName, siteURL string) string {
	return fmt.Sprintf(`
    <h1>Welcome, %s!</h1>
    <p>Your %s account is ready. You can now list your property for sale or rent, and every listing is reviewed by our team before it goes live.</p>
    <p><a href="%s/submit-property" class="button">List a property</a></p>
    <p>If you did not create this account, please contact our support team.</p>
`, greetingName(firstName), siteName, html.EscapeString(siteURL))
}

func decisionContent(firstName, title string, approved bool, siteURL string) string {
	if approved {
		return fmt.Sprintf(`
    <h1>Your listing is live</h1>
    <p>Hi %s,</p>
    <p>Good news: <strong>%s</strong> has been approved and is now visible to buyers and tenants.</p>
    <p><a href="%s/profile" class="button">View my listings</a></p>
`, greetingName(firstName), html.EscapeString(title), html.EscapeString(siteURL))
	}
	return fmt.Sprintf(`
    <h1>Your listing was not approved</h1>
    <p>Hi %s,</p>
    <p>After review, <strong>%s</strong> was not approved for publication. Please check the details and photos and submit it again.</p>
    <p><a href="%s/submit-property" class="button">Submit again</a></p>
`, greetingName(firstName), html.EscapeString(title), html.EscapeString(siteURL))
}
