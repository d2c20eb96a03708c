package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/docscrape/internal/adapter"
)

// NewPlatformsCmd creates the platforms command.
func NewPlatformsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "platforms",
		Short: "List the known platform adapters",
		Long: `Platforms lists the built-in platform adapters and the hosts they
recognize. The scrape command picks an adapter automatically by
matching the URL host; use --platform to override the choice.`,
		Run: runPlatformsCmd,
	}
}

// runPlatformsCmd executes the platforms command.
func runPlatformsCmd(cmd *cobra.Command, _ []string) {
	out := cmd.OutOrStdout()

	for _, name := range adapter.Names() {
		ad, ok := adapter.ByName(name)
		if !ok {
			continue
		}

		hosts := "any host"
		if len(ad.HostPatterns) > 0 {
			hosts = strings.Join(ad.HostPatterns, ", ")
		}
		fmt.Fprintf(out, "%-12s %s\n", ad.Name, hosts)
		fmt.Fprintf(out, "%-12s discovery: %s\n", "", strings.Join(ad.DiscoveryPriority, " > "))
	}
}
