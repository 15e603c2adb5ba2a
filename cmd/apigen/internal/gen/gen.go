package gen

import (
	"context"
	"os"
	"os/signal"

	"github.com/broady/apigen"
	"github.com/broady/apigen/cmd/apigen/internal/run"
)

type Cmd struct {
	run.Flags `embed:""`

	Clean bool `help:"Remove existing files in each target directory first."`
}

func (c *Cmd) Run(g *run.Globals) error {
	if c.Clean {
		c.Set = append(c.Set, "clean_output=true")
	}
	s, err := c.Setup(g)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report, err := apigen.Generate(ctx, s.Config, s.Document, s.Options())
	if err != nil {
		return err
	}
	return s.Finish(report)
}
