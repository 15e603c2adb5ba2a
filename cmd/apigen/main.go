package main

import (
	"fmt"

	"github.com/alecthomas/kong"

	"github.com/broady/apigen/cmd/apigen/internal/check"
	"github.com/broady/apigen/cmd/apigen/internal/gen"
	"github.com/broady/apigen/cmd/apigen/internal/run"
)

type CLI struct {
	Version VersionCmd `cmd:"" help:"Print version information."`
	Gen     gen.Cmd    `cmd:"" help:"Generate client libraries from an IR document."`
	Check   check.Cmd  `cmd:"" help:"Validate an IR document and synthesize every target without writing files."`
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(Version())
	return nil
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("apigen"),
		kong.Description("Generate API client libraries for several languages from one IR document."),
		kong.UsageOnError(),
	)
	err := ctx.Run(&run.Globals{Version: Version()})
	ctx.FatalIfErrorf(err)
}
