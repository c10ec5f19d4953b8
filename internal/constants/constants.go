// Package constants holds build-level constants for the oaemapi service.
package constants

// Version is the service version reported by the index endpoint and the
// -version flag.
const Version = "2.1.0"
