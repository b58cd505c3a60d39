package main

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/urfave/cli/v2"
	"github.com/woozymasta/squeeze"
)

func (e *env) info(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit("info: no sources given", 2)
	}

	var result *multierror.Error
	for _, path := range c.Args().Slice() {
		cfg, format, err := squeeze.ReadConfig(path)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}

		var size int64
		if st, err := os.Stat(path); err == nil {
			size = st.Size()
		}

		_, _ = fmt.Fprintf(c.App.Writer, "%s\t%s\t%dx%d\t%d bytes\n", path, format, cfg.Width, cfg.Height, size)
	}

	return result.ErrorOrNil()
}
