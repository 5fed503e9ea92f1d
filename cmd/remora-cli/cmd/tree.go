package cmd

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/nfrund/remora/internal/manifest"
)

var manifestPath string

// treeCmd prints the module tree as declared in the manifest. It reads the
// manifest the same way the server does, so what it shows is what boot will
// load.
var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the module tree declared in the manifest",
	RunE: func(cmd *cobra.Command, args []string) error {
		man, err := manifest.Load(afero.NewOsFs(), manifestPath)
		if err != nil {
			return err
		}

		fmt.Println("app")
		for i, entry := range man.Modules {
			connector := "├──"
			if i == len(man.Modules)-1 {
				connector = "└──"
			}

			line := fmt.Sprintf("%s %s", connector, entry.Name)
			if entry.Prefix != "" {
				line += "  " + entry.Prefix
			}
			if !entry.AutoStart() {
				line += "  (manual start)"
			}
			if entry.Hook != "" {
				line += fmt.Sprintf("  [hook: %s]", entry.Hook)
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(treeCmd)
	treeCmd.Flags().StringVarP(&manifestPath, "manifest", "m", "remora.yaml", "path to the module manifest")
}
