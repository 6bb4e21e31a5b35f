package commands

import (
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/maksimkurb/netpolicy/src/internal/config"
	"github.com/maksimkurb/netpolicy/src/internal/log"
	"github.com/maksimkurb/netpolicy/src/internal/useragents"
)

func CreateUserAgentsCommand() *UserAgentsCommand {
	uc := &UserAgentsCommand{
		fs:  flag.NewFlagSet("user-agents", flag.ExitOnError),
		out: os.Stdout,
	}

	uc.fs.BoolVar(&uc.Raw, "raw", false, "Print values without expanding placeholders")

	return uc
}

// UserAgentsCommand lists the loaded user agents.
type UserAgentsCommand struct {
	fs  *flag.FlagSet
	ctx *AppContext
	cfg *config.Config
	out io.Writer

	Raw bool
}

func (u *UserAgentsCommand) Name() string {
	return u.fs.Name()
}

func (u *UserAgentsCommand) Init(args []string, ctx *AppContext) error {
	u.ctx = ctx
	if err := u.fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadAndValidateConfigOrFail(ctx.ConfigPath)
	if err != nil {
		return err
	}
	u.cfg = cfg
	return nil
}

func (u *UserAgentsCommand) Run() error {
	table, skipped, err := useragents.Load(u.cfg.GetAbsUserAgentsPath())
	if err != nil {
		log.Warnf("Showing only the built-in user agent: %v", err)
	}
	for _, e := range skipped {
		log.Warnf("%v", e)
	}

	vars := useragents.DefaultVariables(u.ctx.Version.Version)
	current := u.cfg.Network.GetUserAgent()

	w := tabwriter.NewWriter(u.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\tIDENTIFIER\tTITLE\tVALUE")
	for _, info := range table.All() {
		if !u.Raw {
			info = info.Expanded(vars)
		}
		marker := ""
		if info.Identifier == current {
			marker = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", marker, info.Identifier, info.Title, info.Value)
	}
	return w.Flush()
}
