package check

import (
	"context"

	"github.com/broady/apigen"
	"github.com/broady/apigen/cmd/apigen/internal/run"
)

type Cmd struct {
	run.Flags `embed:""`
}

func (c *Cmd) Run(g *run.Globals) error {
	s, err := c.Setup(g)
	if err != nil {
		return err
	}
	report, err := apigen.Check(context.Background(), s.Config, s.Document, s.Options())
	if err != nil {
		return err
	}
	return s.Finish(report)
}
