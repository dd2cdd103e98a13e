// Copyright 2022-2026 The Ledger Authors
// This file is part of the Ledger library.
//
// The Ledger library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The Ledger library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the Ledger library. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

const banner = `
 ██╗     ███████╗██████╗  ██████╗ ███████╗██████╗
 ██║     ██╔════╝██╔══██╗██╔════╝ ██╔════╝██╔══██╗
 ██║     █████╗  ██║  ██║██║  ███╗█████╗  ██████╔╝
 ██║     ██╔══╝  ██║  ██║██║   ██║██╔══╝  ██╔══██╗
 ███████╗███████╗██████╔╝╚██████╔╝███████╗██║  ██║
 ╚══════╝╚══════╝╚═════╝  ╚═════╝ ╚══════╝╚═╝  ╚═╝
`

const usageText = `ledgerd [global options] command [command options]

Quick start:
  ledgerd genesis --network acme --dbid main --fdb-storage-type memory
  ledgerd serve --network acme --dbid main --fdb-storage-type memory

Config file or environment:
  ledgerd serve --config /etc/ledgerd/node.conf
  FDB_MODE=ledger FDB_STORAGE_TYPE=file ledgerd serve --fdb-storage-file-directory /data/acme

See "ledgerd <command> --help" for a command's flags.`

func main() {
	fmt.Print(banner)

	app := &cli.App{
		Name:                   "ledgerd",
		Usage:                  "schema-bootstrapped ledger node",
		UsageText:              usageText,
		Commands:               rootCommands(),
		UseShortOptionHandling: true,
		Suggest:                true,
		EnableBashCompletion:   true,
		Copyright:              "Copyright 2022-2026 The Ledger Authors",
	}

	cli.AppHelpTemplate = `{{.Name}} - {{.Usage}}

{{.UsageText}}

Commands:{{range .VisibleCommands}}
  {{.Name}}{{"\t"}}{{.Usage}}{{end}}

{{.Copyright}}
`

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
