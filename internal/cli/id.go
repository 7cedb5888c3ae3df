package cli

import (
	"encoding/json"

	"github.com/guiyumin/mfetch/internal/core/extractor"
	"github.com/spf13/cobra"
)

type idResult struct {
	ID      string `json:"id"`
	Backend string `json:"backend"`
}

func newIDCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "id <url>",
		Short: "Print the resource identifier and backend for a URL without fetching",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := extractor.Normalize(args[0])
			if err != nil {
				return err
			}
			return json.NewEncoder(a.stdout).Encode(idResult{ID: id, Backend: extractor.Match(args[0])})
		},
	}
}
