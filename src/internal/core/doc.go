// Package core is the composition root of netpolicy. It builds the option
// store, the network policy registry and their supporting services from a
// loaded configuration and hands them to commands and the HTTP API.
package core
