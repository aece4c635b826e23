package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/territory/internal/outline"
)

var outlineDefsFlag bool

// outlineCmd represents the outline command
var outlineCmd = &cobra.Command{
	Use:   "outline [path]",
	Short: "Print the collapsed document of an indexed file",
	Long: `Outline prints a file as recorded in the node stream: full top-level
code with nested definition bodies elided into one-line stubs. Without a
path it lists every indexed file.

Examples:
  territory outline src/app.py
  territory outline src/app.py --defs
  territory outline
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runOutline,
}

func init() {
	rootCmd.AddCommand(outlineCmd)
	outlineCmd.Flags().BoolVar(&outlineDefsFlag, "defs", false, "List definitions with locations instead of the document text")
}

func runOutline(cmd *cobra.Command, args []string) error {
	rootDir, err := projectRoot()
	if err != nil {
		return err
	}
	cfg, err := loadConfig(rootDir)
	if err != nil {
		return err
	}

	outliner, err := outline.Load(artifactPath(rootDir, cfg, cfg.Output.NodesFile))
	if err != nil {
		return fmt.Errorf("failed to load node stream (run 'territory scan' first): %w", err)
	}

	if len(args) == 0 {
		for _, p := range outliner.Paths() {
			fmt.Println(p)
		}
		return nil
	}

	path := args[0]
	if outlineDefsFlag {
		for _, d := range outliner.Definitions(path) {
			fmt.Printf("%d:%d d%d %s\n", d.Line, d.Column, d.NestLevel, d.Header)
		}
		return nil
	}

	text, err := outliner.File(path)
	if err != nil {
		return err
	}
	fmt.Print(text)
	return nil
}
