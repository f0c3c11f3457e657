// Package daemon provides the orchestration for entrystackd. It bridges the
// D-Bus interfaces to the presenter scheduler through a Dispatcher, tracks
// entry lifecycles, and hot-reloads the configuration.
package daemon
