// Package commands implements CLI command handlers for netpolicy.
//
// Each command implements the Runner interface:
//   - Init(): Parse arguments and load the configuration
//   - Run(): Execute the command
//   - Name(): Return command name for routing
//
// # Available Commands
//
//   - serve: Run the daemon (configuration watcher and local API)
//   - policy: Print the policy new sessions are created with
//   - user-agents: List the loaded user agents
//   - clear-cookies, clear-cache: Remove stored browsing data
//   - upgrade-profile: Run profile migrations
//
// Commands that modify the profile take the profile lock and refuse to run
// next to a serving daemon.
package commands
