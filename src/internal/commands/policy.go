package commands

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/maksimkurb/netpolicy/src/internal/api"
	"github.com/maksimkurb/netpolicy/src/internal/config"
)

func CreatePolicyCommand() *PolicyCommand {
	pc := &PolicyCommand{
		fs:  flag.NewFlagSet("policy", flag.ExitOnError),
		out: os.Stdout,
	}

	pc.fs.BoolVar(&pc.JSON, "json", false, "Print the policy as JSON")

	return pc
}

// PolicyCommand prints the policy new sessions would be created with.
type PolicyCommand struct {
	fs  *flag.FlagSet
	ctx *AppContext
	cfg *config.Config
	out io.Writer

	JSON bool
}

func (p *PolicyCommand) Name() string {
	return p.fs.Name()
}

func (p *PolicyCommand) Init(args []string, ctx *AppContext) error {
	p.ctx = ctx
	if err := p.fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadAndValidateConfigOrFail(ctx.ConfigPath)
	if err != nil {
		return err
	}
	p.cfg = cfg
	return nil
}

func (p *PolicyCommand) Run() error {
	deps, err := newDependencies(p.ctx, p.cfg, true)
	if err != nil {
		return err
	}
	defer deps.Close()

	reg := deps.Registry()
	policy := reg.Policy()
	resp := api.PolicyResponse{
		State:          reg.State(),
		UserAgent:      policy.UserAgent,
		UserAgentValue: policy.UserAgentValue,
		Ciphers:        policy.CipherNames(),
	}

	if p.JSON {
		enc := json.NewEncoder(p.out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	w := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "User agent:\t%s (%s)\n", resp.UserAgent.Title, resp.UserAgent.Identifier)
	fmt.Fprintf(w, "User-Agent header:\t%s\n", resp.UserAgentValue)
	fmt.Fprintf(w, "Accept-Language:\t%s\n", orNone(resp.State.AcceptLanguage))
	fmt.Fprintf(w, "Do-Not-Track:\t%s\n", resp.State.DoNotTrack)
	fmt.Fprintf(w, "Send referrer:\t%t\n", resp.State.CanSendReferrer)
	fmt.Fprintf(w, "Working offline:\t%t\n", resp.State.WorkingOffline)
	fmt.Fprintf(w, "System proxy authentication:\t%t\n", resp.State.UsingSystemProxyAuth)
	fmt.Fprintf(w, "Disk cache limit:\t%d KiB\n", resp.State.DiskCacheLimitKB)
	fmt.Fprintf(w, "Cipher suites:\t%s\n", strings.Join(resp.Ciphers, ", "))
	return w.Flush()
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
