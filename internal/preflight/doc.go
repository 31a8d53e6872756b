// Package preflight validates the environment before pipeline stages run:
// directory permissions for every command, service credentials for the ones
// that call out.
package preflight
