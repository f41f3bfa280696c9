package commands

import (
	"fmt"

	"git.home.luguber.info/inful/corpusgen/internal/version"
)

// VersionCmd implements the 'version' command.
type VersionCmd struct{}

func (c *VersionCmd) Run(_ *Global, _ *CLI) error {
	fmt.Println(version.String())
	return nil
}
