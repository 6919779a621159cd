package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/goliatone/go-dispenser/pkg/audit"
	"github.com/goliatone/go-dispenser/pkg/commands"
	"github.com/goliatone/go-dispenser/pkg/dispenser"
	"github.com/goliatone/go-dispenser/pkg/domain"
	"github.com/goliatone/go-dispenser/pkg/interfaces/store"
	"github.com/goliatone/go-dispenser/pkg/notices"
)

type cli struct {
	module *dispenser.Module
	opts   options
	stdin  io.Reader
	out    io.Writer
}

func (c *cli) dispatch(ctx context.Context, args []string) error {
	name, rest := args[0], args[1:]
	var err error
	switch name {
	case "issue":
		err = c.issue(ctx, rest)
	case "add":
		err = c.add(ctx, rest)
	case "stock":
		err = c.stock(ctx)
	case "set-cooldown":
		err = c.setCooldown(ctx, rest)
	case "set-channel":
		err = c.setChannel(ctx, rest)
	case "set-admin-role":
		err = c.setAdminRole(ctx, rest)
	case "log":
		return c.log(ctx)
	default:
		return fmt.Errorf("unknown command %q", name)
	}
	if err != nil {
		c.print(c.module.Notices().Failure(ctx, c.locale(), err))
		return reportedError{err: err}
	}
	return nil
}

// reportedError marks a failure already shown to the user as a notice.
type reportedError struct{ err error }

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

func (c *cli) locale() string { return c.opts.actor.Locale }

func (c *cli) print(n notices.Notice) {
	if n.Silent {
		return
	}
	fmt.Fprintln(c.out, n.String())
}

func (c *cli) render(n notices.Notice, err error) error {
	if err != nil {
		return err
	}
	c.print(n)
	return nil
}

func (c *cli) issue(ctx context.Context, args []string) error {
	category := ""
	if len(args) > 0 {
		category = args[0]
	}
	var out commands.Outcome
	if err := c.module.Commands().Issue.Execute(ctx, commands.Issue{Actor: c.opts.actor, Category: category, Result: &out}); err != nil {
		return err
	}
	return c.render(c.module.Notices().Issued(ctx, c.locale(), notices.IssuedView{
		Recipient:         c.opts.actor,
		Category:          out.Category,
		CategoryRemaining: out.CategoryRemaining,
		TotalRemaining:    out.TotalRemaining,
	}))
}

func (c *cli) add(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return domain.ErrCategoryRequired
	}
	text, err := c.readInput()
	if err != nil {
		return err
	}
	var res commands.AddResult
	if err := c.module.Commands().AddSecrets.Execute(ctx, commands.AddSecrets{
		Actor:    c.opts.actor,
		Category: args[0],
		Text:     text,
		Result:   &res,
	}); err != nil {
		return err
	}
	return c.render(c.module.Notices().Added(ctx, c.locale(), notices.AddedView{
		Category:      res.Category,
		Added:         res.Added,
		Skipped:       res.Skipped,
		CategoryTotal: res.CategoryTotal,
		Total:         res.Total,
	}))
}

func (c *cli) readInput() (string, error) {
	if c.opts.inputFile == "" || c.opts.inputFile == "-" {
		raw, err := io.ReadAll(c.stdin)
		return string(raw), err
	}
	raw, err := os.ReadFile(c.opts.inputFile)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", c.opts.inputFile, err)
	}
	return string(raw), nil
}

func (c *cli) stock(ctx context.Context) error {
	stock, err := c.module.Commands().ListInventory.Query(ctx, commands.ListInventory{Actor: c.opts.actor})
	if err != nil {
		return err
	}
	return c.render(c.module.Notices().Stock(ctx, c.locale(), stock.Categories, stock.Total))
}

func (c *cli) setCooldown(ctx context.Context, args []string) error {
	minutes, err := intArg(args)
	if err != nil {
		return err
	}
	var cfg domain.Settings
	if err := c.module.Commands().SetCooldown.Execute(ctx, commands.SetCooldown{Actor: c.opts.actor, Minutes: int(minutes), Result: &cfg}); err != nil {
		return err
	}
	return c.render(c.module.Notices().SettingChanged(ctx, c.locale(), notices.SettingCooldown, int64(cfg.CooldownMinutes)))
}

func (c *cli) setChannel(ctx context.Context, args []string) error {
	id, err := intArg(args)
	if err != nil {
		return err
	}
	var cfg domain.Settings
	if err := c.module.Commands().SetChannel.Execute(ctx, commands.SetChannel{Actor: c.opts.actor, ChannelID: id, Result: &cfg}); err != nil {
		return err
	}
	return c.render(c.module.Notices().SettingChanged(ctx, c.locale(), notices.SettingChannel, cfg.GenerationChannelID))
}

func (c *cli) setAdminRole(ctx context.Context, args []string) error {
	id, err := intArg(args)
	if err != nil {
		return err
	}
	var cfg domain.Settings
	if err := c.module.Commands().SetAdminRole.Execute(ctx, commands.SetAdminRole{Actor: c.opts.actor, RoleID: id, Result: &cfg}); err != nil {
		return err
	}
	return c.render(c.module.Notices().SettingChanged(ctx, c.locale(), notices.SettingAdminRole, cfg.AdminRoleID))
}

func (c *cli) log(ctx context.Context) error {
	res, err := c.module.AuditLog().List(ctx, store.ListOptions{})
	if err != nil {
		return err
	}
	items := res.Items
	if c.opts.limit > 0 && len(items) > c.opts.limit {
		items = items[len(items)-c.opts.limit:]
	}
	for _, entry := range items {
		fmt.Fprintln(c.out, audit.FormatLine(entry))
	}
	return nil
}

func intArg(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%w: a numeric value is required", domain.ErrInvalidArgument)
	}
	n, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", domain.ErrInvalidValue, args[0])
	}
	return n, nil
}
