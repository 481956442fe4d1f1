package model

import "strings"

// qrEscaper backslash-escapes the characters that delimit fields in a WIFI:
// payload. Replacement is single-pass, so inserted backslashes are not escaped again.
var qrEscaper = strings.NewReplacer(
	`\`, `\\`,
	`;`, `\;`,
	`,`, `\,`,
	`:`, `\:`,
)

// EscapeQRField escapes a single SSID or password for a WIFI: payload.
func EscapeQRField(s string) string {
	return qrEscaper.Replace(s)
}

// WiFiQRPayload returns the text encoded in a WiFi sharing QR code, in the form
// WIFI:T:WPA;S:<ssid>;P:<password>;; with both fields escaped.
func WiFiQRPayload(ssid, password string) string {
	var b strings.Builder
	b.Grow(len("WIFI:T:WPA;S:;P:;;") + len(ssid) + len(password))
	b.WriteString("WIFI:T:WPA;S:")
	b.WriteString(EscapeQRField(ssid))
	b.WriteString(";P:")
	b.WriteString(EscapeQRField(password))
	b.WriteString(";;")
	return b.String()
}
