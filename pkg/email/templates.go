package email

import (
	"fmt"
)

// ReservationEmailData contains the data needed for reservation email templates.
type ReservationEmailData struct {
	Email        string
	FacilityName string
	ResourceName string
	Date         string
	StartTime    string
	EndTime      string
	TotalCharged string
	AppName      string
}

func (d ReservationEmailData) appName() string {
	if d.AppName == "" {
		return "PlayVenue"
	}
	return d.AppName
}

// BuildReservationConfirmedEmail creates the confirmation message after booking.
func BuildReservationConfirmedEmail(data ReservationEmailData) Message {
	appName := data.appName()
	subject := fmt.Sprintf("Your booking at %s is confirmed", data.FacilityName)

	textBody := fmt.Sprintf(`Hi,

Your booking is confirmed!

%s at %s
%s, %s to %s
Total: %s

See you on the court,
The %s Team`,
		data.ResourceName, data.FacilityName, data.Date, data.StartTime, data.EndTime,
		data.TotalCharged, appName)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #16a34a;">Booking confirmed</h2>
    <p><strong>%s</strong> at <strong>%s</strong></p>
    <p>%s, %s to %s</p>
    <p>Total: <strong>%s</strong></p>
    <p style="margin-top: 30px; color: #666; font-size: 14px;">The %s Team</p>
</body>
</html>`,
		data.ResourceName, data.FacilityName, data.Date, data.StartTime, data.EndTime,
		data.TotalCharged, appName)

	return Message{
		To:       []string{data.Email},
		Subject:  subject,
		TextBody: textBody,
		HTMLBody: htmlBody,
	}
}

// BuildReservationCancelledEmail creates the cancellation notice.
func BuildReservationCancelledEmail(data ReservationEmailData) Message {
	appName := data.appName()
	subject := fmt.Sprintf("Your booking at %s was cancelled", data.FacilityName)

	textBody := fmt.Sprintf(`Hi,

Your booking has been cancelled.

%s at %s
%s, %s to %s

If you paid online, the refund is on its way.

The %s Team`,
		data.ResourceName, data.FacilityName, data.Date, data.StartTime, data.EndTime, appName)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #dc2626;">Booking cancelled</h2>
    <p><strong>%s</strong> at <strong>%s</strong></p>
    <p>%s, %s to %s</p>
    <p>If you paid online, the refund is on its way.</p>
    <p style="margin-top: 30px; color: #666; font-size: 14px;">The %s Team</p>
</body>
</html>`,
		data.ResourceName, data.FacilityName, data.Date, data.StartTime, data.EndTime, appName)

	return Message{
		To:       []string{data.Email},
		Subject:  subject,
		TextBody: textBody,
		HTMLBody: htmlBody,
	}
}

// BuildWaitlistPromotedEmail tells a waiting player their slot opened up.
func BuildWaitlistPromotedEmail(data ReservationEmailData) Message {
	appName := data.appName()
	subject := fmt.Sprintf("A slot opened up at %s", data.FacilityName)

	textBody := fmt.Sprintf(`Hi,

Good news: the slot you were waiting for just opened up.

%s at %s
%s, %s to %s

Book it before someone else does!

The %s Team`,
		data.ResourceName, data.FacilityName, data.Date, data.StartTime, data.EndTime, appName)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #2563eb;">Your slot opened up</h2>
    <p><strong>%s</strong> at <strong>%s</strong></p>
    <p>%s, %s to %s</p>
    <p>Book it before someone else does!</p>
    <p style="margin-top: 30px; color: #666; font-size: 14px;">The %s Team</p>
</body>
</html>`,
		data.ResourceName, data.FacilityName, data.Date, data.StartTime, data.EndTime, appName)

	return Message{
		To:       []string{data.Email},
		Subject:  subject,
		TextBody: textBody,
		HTMLBody: htmlBody,
	}
}

// FormatMinutes renders minutes-since-midnight as HH:MM for templates.
func FormatMinutes(min int) string {
	return fmt.Sprintf("%02d:%02d", min/60, min%60)
}
