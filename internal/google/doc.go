// Package google provides OAuth2 authentication and token management for the
// Google Calendar event source.
//
// Client credentials are read from the credentials.json file downloaded from
// the Google Cloud console. The one-time authorization (meetsync google-auth)
// exchanges a code for a token and stores it as JSON in the token file;
// later runs read it through a TokenProvider and refresh it as needed.
package google
