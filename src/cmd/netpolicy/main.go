package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/maksimkurb/netpolicy/src/internal/api"
	"github.com/maksimkurb/netpolicy/src/internal/commands"
	"github.com/maksimkurb/netpolicy/src/internal/log"
)

var (
	version = "dev"
	commit  = "n/a"
	date    = "n/a"
)

func main() {
	ctx := &commands.AppContext{
		Version: api.VersionInfo{Version: version, Commit: commit, Date: date},
	}

	// Define flags
	flag.StringVar(&ctx.ConfigPath, "config", "/etc/netpolicy/netpolicy.toml", "Path to configuration file")
	flag.BoolVar(&ctx.Verbose, "verbose", false, "Enable debug logging")

	// Custom usage message
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Network Policy Registry\n")
		fmt.Fprintf(os.Stderr, "Version: %s (Commit: %s, Date: %s)\n\n", version, commit, date)
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <command>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  serve                   Run the daemon (config watcher and local API)\n")
		fmt.Fprintf(os.Stderr, "  policy                  Print the policy new sessions are created with\n")
		fmt.Fprintf(os.Stderr, "  user-agents             List the loaded user agents\n")
		fmt.Fprintf(os.Stderr, "  clear-cookies           Remove cookies (-period-hours N for recent ones only)\n")
		fmt.Fprintf(os.Stderr, "  clear-cache             Remove disk cache entries (-period-hours N for recent ones only)\n")
		fmt.Fprintf(os.Stderr, "  upgrade-profile         Migrate the configuration and profile from older versions\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if ctx.Verbose {
		log.SetVerbose(true)
	}

	cmds := []commands.Runner{
		commands.CreateServeCommand(),
		commands.CreatePolicyCommand(),
		commands.CreateUserAgentsCommand(),
		commands.CreateClearCookiesCommand(),
		commands.CreateClearCacheCommand(),
		commands.CreateUpgradeProfileCommand(),
	}

	args := flag.Args()

	if len(args) < 1 {
		flag.Usage()
		os.Exit(1)
	}

	subcommand := args[0]
	for _, cmd := range cmds {
		if cmd.Name() == subcommand {
			if subcommand != "serve" {
				log.SetForceStdErr(true)
			}

			if err := cmd.Init(args[1:], ctx); err != nil {
				log.Fatalf("Failed to initialize command: %v", err)
			}

			if err := cmd.Run(); err != nil {
				log.Fatalf("Failed to run command: %v", err)
			}

			os.Exit(0)
		}
	}

	log.Fatalf("Unknown subcommand: %s", subcommand)
}
