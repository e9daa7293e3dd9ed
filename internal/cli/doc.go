// Package cli holds the presentation helpers shared by the csmgmt commands.
//
// It classifies transport and OAuth failures into errors that tell the user
// what to run next, renders session status, app authorizations and API
// responses as tables, JSON or YAML, and wraps the progress spinner used
// while waiting on the network.
package cli
