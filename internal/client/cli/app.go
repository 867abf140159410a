package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/pinboard/internal/client/apiclient"
	"github.com/dmitrijs2005/pinboard/internal/client/config"
)

var ErrUsage = errors.New("usage: pinctl [-a url] [-k token] [-t seconds] [-c file] list|show|add|visit|upload|stats ...")

type App struct {
	config *config.Config
	api    *apiclient.Client
	out    io.Writer
}

func NewApp(c *config.Config, out io.Writer) *App {
	return &App{
		config: c,
		api:    apiclient.New(c.ServerURL, c.Token, c.Timeout),
		out:    out,
	}
}

// Run executes the command held in the config's Args.
func (a *App) Run(ctx context.Context) error {
	args := a.config.Args
	if len(args) == 0 {
		return ErrUsage
	}

	switch args[0] {
	case "list":
		category := ""
		if len(args) > 1 {
			category = args[1]
		}
		return a.list(ctx, category)
	case "show":
		if len(args) != 2 {
			return ErrUsage
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		return a.show(ctx, id)
	case "add":
		return a.add(ctx, args[1:])
	case "visit":
		return a.visit(ctx, args[1:])
	case "upload":
		if len(args) != 2 {
			return ErrUsage
		}
		return a.upload(ctx, args[1])
	case "stats":
		return a.stats(ctx)
	}
	return fmt.Errorf("unknown command %q: %w", args[0], ErrUsage)
}

func (a *App) list(ctx context.Context, category string) error {
	pins, err := a.api.ListPins(ctx, category)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tVISITS\tUPDATED")
	for _, p := range pins {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", p.ID, p.Title, p.Category, p.VisitsCount, p.UpdatedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}

func (a *App) show(ctx context.Context, id int64) error {
	pv, err := a.api.GetPin(ctx, id)
	if err != nil {
		return err
	}

	p := pv.Pin
	fmt.Fprintf(a.out, "#%d %s [%s] (%.6f, %.6f) v%d, %d visits\n",
		p.ID, p.Title, p.Category, p.Lat, p.Lng, p.Version, p.VisitsCount)
	if p.Description != "" {
		fmt.Fprintln(a.out, p.Description)
	}
	for _, v := range pv.Visits {
		fmt.Fprintf(a.out, "  %s  %s", v.VisitedAt.Format(time.RFC3339), v.Name)
		if v.Note != "" {
			fmt.Fprintf(a.out, ": %s", v.Note)
		}
		fmt.Fprintln(a.out)
	}
	return nil
}

func (a *App) add(ctx context.Context, args []string) error {
	if len(args) < 3 || len(args) > 4 {
		return ErrUsage
	}
	lat, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid latitude %q", args[1])
	}
	lng, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("invalid longitude %q", args[2])
	}
	in := &apiclient.NewPin{Title: args[0], Lat: lat, Lng: lng}
	if len(args) == 4 {
		in.Category = args[3]
	}

	pin, err := a.api.CreatePin(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "created pin %d\n", pin.ID)
	return nil
}

func (a *App) visit(ctx context.Context, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return ErrUsage
	}
	pinID, err := parseID(args[0])
	if err != nil {
		return err
	}
	in := &apiclient.NewVisit{Name: args[1]}
	if len(args) == 3 {
		in.Note = args[2]
	}

	v, err := a.api.AddVisit(ctx, pinID, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "recorded visit %d on pin %d\n", v.ID, v.PinID)
	return nil
}

func (a *App) upload(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	u, err := a.api.UploadImage(ctx, data)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, u)
	return nil
}

func (a *App) stats(ctx context.Context) error {
	st, err := a.api.Stats(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "pins: %d, visits: %d\n", st.TotalPins, st.TotalVisits)
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tPINS\tVISITS")
	for _, c := range st.ByCategory {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", c.Category, c.Pins, c.Visits)
	}
	return tw.Flush()
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
