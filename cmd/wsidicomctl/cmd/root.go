package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/jpfielding/wsidicom/pkg/logging"
	"github.com/spf13/cobra"
)

// NewRoot builds the wsidicomctl command tree: index resolves a DICOMDIR,
// inspect prints a WSI instance's root attributes and tile geometry, and
// extract-frame pulls one encapsulated pixel-data fragment to disk.
func NewRoot(ctx context.Context, gitsha string) *cobra.Command {
	root := &cobra.Command{
		Use:   "wsidicomctl",
		Short: "inspect whole-slide DICOM instances and directory indexes",
		Long:  "wsidicomctl parses DICOM Part-10 files without a dictionary, selecting only the tag paths each subcommand cares about.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logLevel, _ := cmd.Flags().GetString("log-level")
			var level slog.Level
			if err := level.UnmarshalText([]byte(strings.ToUpper(logLevel))); err != nil {
				level = slog.LevelInfo
			}
			var w = os.Stdout
			if logFile, _ := cmd.Flags().GetString("log-file"); logFile != "" {
				slog.SetDefault(slog.New(slog.NewJSONHandler(logging.RotatingWriter(logFile, 10, 3), &slog.HandlerOptions{Level: level})))
				return
			}
			slog.SetDefault(logging.Logger(w, false, level))
		},
		Run: func(cmd *cobra.Command, args []string) {
			printCommandTree(cmd, 0)
		},
	}
	root.AddCommand(
		NewVersionCmd(gitsha),
		NewIndexCmd(ctx),
		NewInspectCmd(ctx),
		NewExtractFrameCmd(ctx),
	)
	pf := root.PersistentFlags()
	pf.String("log-level", "INFO", "Log level (DEBUG, INFO, WARN, ERROR)")
	pf.String("log-file", "", "rotate logs to this path instead of stdout")
	return root
}

func printCommandTree(cmd *cobra.Command, indent int) {
	fmt.Println(strings.Repeat("\t", indent), cmd.Use+":", cmd.Short)
	for _, subCmd := range cmd.Commands() {
		printCommandTree(subCmd, indent+1)
	}
}

func NewVersionCmd(gitsha string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "git sha for this build",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(gitsha)
		},
	}
}
