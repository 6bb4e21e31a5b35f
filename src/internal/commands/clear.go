package commands

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/maksimkurb/netpolicy/src/internal/config"
	"github.com/maksimkurb/netpolicy/src/internal/core"
	"github.com/maksimkurb/netpolicy/src/internal/utils"
)

type clearTarget int

const (
	clearCookies clearTarget = iota
	clearCache
)

func CreateClearCookiesCommand() *ClearCommand {
	return newClearCommand("clear-cookies", clearCookies)
}

func CreateClearCacheCommand() *ClearCommand {
	return newClearCommand("clear-cache", clearCache)
}

func newClearCommand(name string, target clearTarget) *ClearCommand {
	cc := &ClearCommand{
		fs:     flag.NewFlagSet(name, flag.ExitOnError),
		target: target,
		out:    os.Stdout,
	}

	cc.fs.IntVar(&cc.PeriodHours, "period-hours", 0, "Only remove data created within the last N hours (0 = everything)")

	return cc
}

// ClearCommand removes cookies or cache entries from the profile. It needs
// the profile lock, so it refuses to run next to a serving daemon; the API
// offers the same operations for that case.
type ClearCommand struct {
	fs     *flag.FlagSet
	ctx    *AppContext
	cfg    *config.Config
	target clearTarget
	out    io.Writer

	PeriodHours int
}

func (c *ClearCommand) Name() string {
	return c.fs.Name()
}

func (c *ClearCommand) Init(args []string, ctx *AppContext) error {
	c.ctx = ctx
	if err := c.fs.Parse(args); err != nil {
		return err
	}
	if c.PeriodHours < 0 {
		return fmt.Errorf("-period-hours must not be negative")
	}

	cfg, err := loadAndValidateConfigOrFail(ctx.ConfigPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	return nil
}

func (c *ClearCommand) Run() error {
	deps, err := newDependencies(c.ctx, c.cfg, false)
	if err != nil {
		if errors.Is(err, utils.ErrProfileLocked) {
			return fmt.Errorf("%w; use POST /api/v1/%s of the running daemon instead", err, c.apiPath())
		}
		return err
	}
	defer deps.Close()

	return c.clear(deps)
}

func (c *ClearCommand) clear(deps *core.AppDependencies) error {
	period := time.Duration(c.PeriodHours) * time.Hour
	reg := deps.Registry()

	switch c.target {
	case clearCookies:
		before := reg.CookieJar().Count()
		if err := reg.ClearCookies(period); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Removed %d cookie(s)\n", before-reg.CookieJar().Count())
	case clearCache:
		cache := reg.Cache()
		if cache == nil {
			fmt.Fprintln(c.out, "Disk cache is not available")
			return nil
		}
		before := cache.Stats().Entries
		if err := reg.ClearCache(period); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Removed %d cache entries\n", before-cache.Stats().Entries)
	}
	return nil
}

func (c *ClearCommand) apiPath() string {
	if c.target == clearCache {
		return "cache/clear"
	}
	return "cookies/clear"
}
