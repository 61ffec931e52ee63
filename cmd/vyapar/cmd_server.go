package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/vyapar/app/routes"
	"github.com/shashiranjanraj/vyapar/internal/server"
	"github.com/shashiranjanraj/vyapar/pkg/router"
)

// vyapar serve — start the HTTP server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Start()
	},
}

// vyapar route:list — print the routing table without starting anything.
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "Print the routing table",
	RunE: func(cmd *cobra.Command, args []string) error {
		r := router.New()
		routes.RegisterAPI(r, nil)

		infos := r.Routes()
		sort.Slice(infos, func(i, j int) bool {
			if infos[i].Path == infos[j].Path {
				return infos[i].Method < infos[j].Method
			}
			return infos[i].Path < infos[j].Path
		})

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(tw, "METHOD\tPATH\tNAME")
		for _, ri := range infos {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
		}
		return tw.Flush()
	},
}
