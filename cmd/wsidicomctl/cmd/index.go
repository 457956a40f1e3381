package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpfielding/wsidicom/pkg/wsidicom"
)

// NewIndexCmd creates the index cobra command: resolve a DICOMDIR into the
// instance files it references.
func NewIndexCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "resolve a DICOMDIR into its referenced instance file paths",
		Long:  "Parses <dir>/DICOMDIR and prints the path of every file it references, joined onto <dir>, one per line.",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			if dir == "" && len(args) > 0 {
				dir = args[0]
			}
			if dir == "" {
				return fmt.Errorf("directory is required; use --dir or pass it as an argument")
			}
			idx, err := wsidicom.ResolveDirectory(dir)
			if err != nil {
				return fmt.Errorf("resolving %s: %w", dir, err)
			}
			for _, f := range idx.Files {
				fmt.Println(f)
			}
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				fmt.Printf("cache-tag: %s\n", idx.CacheTag())
			}
			return nil
		},
	}
	pf := cmd.PersistentFlags()
	pf.String("dir", "", "directory containing DICOMDIR")
	pf.BoolP("verbose", "v", false, "also print the resolution's cache tag")
	return cmd
}
