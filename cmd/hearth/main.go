// hearth is the command-line front for a shared household: create or join a
// group, add chores and payments, settle shares and watch the live group
// state.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	"hearth/internal/backend"
	"hearth/internal/chores"
	"hearth/internal/config"
	"hearth/internal/core"
	applog "hearth/internal/log"
	"hearth/internal/services"
	"hearth/internal/store"
)

func main() {
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Component: applog.ComponentApp,
		Handler: tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelWarn,
			TimeFormat: time.Kitchen,
		}),
	})
	applog.SetDefault(logger)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fatal("invalid configuration: %v", err)
	}
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		fatal("invalid backend configuration: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	result, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		fatal("initialize backend: %v", err)
	}
	defer func() {
		if result.Cleanup != nil {
			_ = result.Cleanup()
		}
	}()

	a := &app{
		store: result.Store,
		groups: services.NewGroupService(result.Store, services.NewStoreNameLookup(result.Store), services.ResolverConfig{
			CacheSize:   cfg.NameCacheSize,
			CacheTTL:    cfg.NameCacheTTL,
			LookupLimit: cfg.NameResolverLimit,
		}),
		choreSvc:   services.NewChoreService(result.Store),
		paymentSvc: services.NewPaymentService(result.Store),
	}

	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		if core.IsValidation(err) {
			fatal("%v", err)
		}
		fatal("%s: %v", os.Args[1], err)
	}
}

type app struct {
	store      store.Store
	groups     *services.GroupService
	choreSvc   *services.ChoreService
	paymentSvc *services.PaymentService
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "create-group":
		return a.createGroup(ctx, args)
	case "join":
		return a.join(ctx, args)
	case "add-chore":
		return a.addChore(ctx, args)
	case "complete":
		return a.complete(ctx, args)
	case "add-payment":
		return a.addPayment(ctx, args)
	case "settle":
		return a.settle(ctx, args)
	case "watch":
		return a.watch(ctx, args)
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) createGroup(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create-group", flag.ExitOnError)
	user := fs.String("user", "", "your member ID")
	fs.Parse(args)

	group, err := a.groups.Create(ctx, *user)
	if err != nil {
		return err
	}
	fmt.Printf("created group %s\njoin code: %s\n", group.ID, group.Code)
	return nil
}

func (a *app) join(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("join", flag.ExitOnError)
	code := fs.String("code", "", "group join code")
	user := fs.String("user", "", "your member ID")
	fs.Parse(args)

	group, err := a.groups.Join(ctx, *code, *user)
	if err != nil {
		return err
	}
	fmt.Printf("joined group %s (%d members)\n", group.ID, len(group.Members))
	return nil
}

func (a *app) addChore(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add-chore", flag.ExitOnError)
	group := fs.String("group", "", "group ID")
	title := fs.String("title", "", "chore title")
	desc := fs.String("desc", "", "description")
	due := fs.String("due", "", "due date (2006-01-02), optional")
	repeat := fs.String("repeat", "never", "never|daily|weekly|monthly")
	assignee := fs.String("to", "", "assignee member ID")
	user := fs.String("user", "", "your member ID")
	fs.Parse(args)

	chore := core.Chore{
		Title:       *title,
		Description: *desc,
		Repeat:      core.RepeatPolicy(*repeat),
		AssignedTo:  *assignee,
		SetBy:       *user,
	}
	if *due != "" {
		dueDate, err := time.ParseInLocation("2006-01-02", *due, time.Local)
		if err != nil {
			return fmt.Errorf("parse due date: %w", err)
		}
		chore.DueDate = dueDate
	}

	created, err := a.choreSvc.Create(ctx, *group, chore)
	if err != nil {
		return err
	}
	fmt.Printf("added chore %s: %s\n", created.ID, created.Title)
	return nil
}

func (a *app) complete(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("complete", flag.ExitOnError)
	group := fs.String("group", "", "group ID")
	chore := fs.String("chore", "", "chore ID")
	fs.Parse(args)

	if err := a.choreSvc.MarkComplete(ctx, *group, *chore); err != nil {
		return err
	}
	fmt.Println("done")
	return nil
}

func (a *app) addPayment(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add-payment", flag.ExitOnError)
	group := fs.String("group", "", "group ID")
	item := fs.String("item", "", "what was paid for")
	desc := fs.String("desc", "", "description")
	amount := fs.String("amount", "", "total amount, e.g. 30 or 12,50")
	members := fs.String("split", "", "comma-separated member IDs for an equal split")
	user := fs.String("user", "", "your member ID")
	name := fs.String("name", "", "your display name")
	fs.Parse(args)

	payment, err := a.paymentSvc.Create(ctx, *group, services.PaymentInput{
		ItemName:    *item,
		Description: *desc,
		Amount:      *amount,
		SetByUID:    *user,
		SetByName:   *name,
		Members:     splitList(*members),
	})
	if err != nil {
		return err
	}
	fmt.Printf("added payment %s: %s %.2f across %d members\n",
		payment.ID, payment.ItemName, payment.Amount, len(payment.Shares))
	return nil
}

func (a *app) settle(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("settle", flag.ExitOnError)
	group := fs.String("group", "", "group ID")
	payment := fs.String("payment", "", "payment ID")
	member := fs.String("member", "", "member whose share to mark")
	paid := fs.Bool("paid", true, "mark paid (false to unmark)")
	fs.Parse(args)

	return a.paymentSvc.ToggleSharePaid(ctx, *group, *payment, *member, *paid)
}

// watch opens a live session and reprints the group summary whenever a
// snapshot arrives, until interrupted.
func (a *app) watch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	group := fs.String("group", "", "group ID")
	user := fs.String("user", "", "your member ID")
	filter := fs.String("chores", "all", "all|week|completed|pastDeadline")
	fs.Parse(args)

	view := chores.Filter(*filter)
	if !view.Valid() {
		return fmt.Errorf("unknown chore filter %q", *filter)
	}

	session, err := services.OpenGroupSession(ctx, a.store, *group, *user)
	if err != nil {
		return err
	}
	defer session.Close()

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		a.printSummary(ctx, session, *user, view)
		select {
		case <-ctx.Done():
			fmt.Println()
			return nil
		case <-ticker.C:
		}
	}
}

func (a *app) printSummary(ctx context.Context, session *services.GroupSession, userID string, view chores.Filter) {
	members := a.groups.ResolveMembers(ctx, memberIDs(session.Members()))

	fmt.Print("\033[H\033[2J") // clear screen between refreshes
	fmt.Printf("group %s — %d members\n\n", session.Group().Code, len(members))

	summary := session.Balances()
	for _, member := range members {
		if member.ID == userID {
			continue
		}
		net := summary.Net(member.ID)
		switch {
		case summary.IsSettled(member.ID):
			fmt.Printf("  %-20s settled\n", member.DisplayName())
		case net > 0:
			fmt.Printf("  %-20s owes you %.2f\n", member.DisplayName(), net)
		default:
			fmt.Printf("  %-20s you owe %.2f\n", member.DisplayName(), -net)
		}
	}

	list := session.Chores(view)
	fmt.Printf("\nchores (%s): %d\n", view, len(list))
	for _, chore := range list {
		status := " "
		if chore.Completed {
			status = "x"
		}
		due := ""
		if !chore.DueDate.IsZero() {
			due = " due " + chore.DueDate.Format("Mon 02 Jan")
		}
		fmt.Printf("  [%s] %s (%s)%s\n", status, chore.Title, chore.AssignedTo, due)
	}
}

func memberIDs(members []core.MemberRef) []string {
	ids := make([]string, len(members))
	for i, member := range members {
		ids[i] = member.ID
	}
	return ids
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: hearth <command> [flags]

commands:
  create-group  -user ID
  join          -code CODE -user ID
  add-chore     -group ID -title T -to MEMBER -user ID [-due 2006-01-02] [-repeat weekly]
  complete      -group ID -chore ID
  add-payment   -group ID -item NAME -amount N -split a,b,c -user ID [-name NAME]
  settle        -group ID -payment ID -member ID [-paid=false]
  watch         -group ID -user ID [-chores week]
`)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "hearth: "+format+"\n", args...)
	os.Exit(1)
}
