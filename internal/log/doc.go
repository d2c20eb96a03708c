// Package log builds the application logger on top of the standard
// slog package.
//
// Site configurations may carry authentication cookies and headers, and
// those values flow through request logging in verbose mode. The
// RedactHandler masks such attributes before they reach the underlying
// handler, so a shared debug log never leaks credentials.
package log
