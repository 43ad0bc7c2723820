package cmd

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/bianoble/craftlaunch/internal/launch"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the launch command without starting the game",
	Long: `Resolves the instance and prints the full command line that 'craftlaunch launch'
would run, one argument per line.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, err := newEngine()
		if err != nil {
			return err
		}
		plan, _, err := eng.Resolve(cmd.Context())
		if err != nil {
			return err
		}
		session := eng.Invoker.Options.UUID
		if session == "" {
			session = uuid.NewString()
		}
		argv, err := eng.Invoker.Arguments(plan, session)
		if err != nil {
			return err
		}
		java := eng.Invoker.Options.Java
		if java == "" {
			java = launch.DefaultJava
		}
		fmt.Println(formatCommand(java, argv))
		return nil
	},
}

// formatCommand renders argv one argument per line with shell continuations.
func formatCommand(java string, argv []string) string {
	lines := make([]string, 0, len(argv)+1)
	lines = append(lines, java)
	for _, a := range argv {
		lines = append(lines, "  "+quoteArg(a))
	}
	return strings.Join(lines, " \\\n")
}

func quoteArg(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\n'\"\\$`") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func init() {
	rootCmd.AddCommand(planCmd)
}
