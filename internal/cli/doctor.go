package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/mixprof/mixprof/pkg/toolchain"
)

// doctorCommand creates the doctor command, which probes every external
// tool the pipeline can invoke and reports its status.
func (c *CLI) doctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check which external profiling tools are installed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDoctor(cmd.Context())
		},
	}
}

func (c *CLI) runDoctor(ctx context.Context) error {
	statuses := toolchain.ProbeAll(ctx)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("TOOL", "STATUS", "VERSION").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return StyleTitle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	missing := 0
	missingRequired := 0
	for _, st := range statuses {
		status := styleIconSuccess.Render(iconSuccess + " installed")
		version := st.Version
		if !st.Installed {
			missing++
			if st.Tool.Optional {
				status = StyleDim.Render(iconWarning + " missing (optional)")
			} else {
				missingRequired++
				status = styleIconError.Render(iconError + " missing")
			}
			version = StyleDim.Render(st.Tool.Install)
		}
		t.Row(st.Tool.Name, status, version)
	}

	fmt.Println(t.Render())

	if missingRequired > 0 {
		printError("%d required tool(s) missing", missingRequired)
	} else if missing > 0 {
		printWarning("%d optional tool(s) missing; some methods are unavailable", missing)
	} else {
		printSuccess("All tools installed")
	}
	return nil
}
