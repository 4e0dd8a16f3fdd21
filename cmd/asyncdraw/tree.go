package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/gogpu/asyncdraw"
	"github.com/gogpu/asyncdraw/scenefile"
	"github.com/spf13/cobra"
)

func newTreeCmd(*app) *cobra.Command {
	return &cobra.Command{
		Use:   "tree <scene>",
		Short: "Print a scene's node tree with resolved frames",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := scenefile.Load(args[0])
			if err != nil {
				return err
			}
			tree := asyncdraw.NewTree()
			root := tree.NewRoot(s.Root, s.Bounds())
			if err := tree.CompleteLayout(root); err != nil {
				return err
			}
			printTree(cmd.OutOrStdout(), tree, root)
			return nil
		},
	}
}

// printTree writes one line per node, indented by depth.
func printTree(w io.Writer, tree *asyncdraw.Tree, root asyncdraw.NodeID) {
	tree.Walk(root, func(id asyncdraw.NodeID, depth int) bool {
		elem, _ := tree.Element(id)
		frame, _ := tree.Frame(id)
		fmt.Fprintf(w, "%s%s %v\n", strings.Repeat("  ", depth), elem.Name, frame)
		return true
	})
}
