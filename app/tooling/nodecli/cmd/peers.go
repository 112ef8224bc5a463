package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var peersCmd = &cobra.Command{
	Use:   "peers",
	Short: "Print the node's live peers.",
	Run:   peersRun,
}

func init() {
	rootCmd.AddCommand(peersCmd)
}

func peersRun(cmd *cobra.Command, args []string) {
	var st nodeStatus
	resp, err := client().R().SetResult(&st).Get("/v1/node/status")
	if err != nil {
		log.Fatal(err)
	}
	if resp.IsError() {
		log.Fatalf("node returned %s: %s", resp.Status(), resp.String())
	}

	if len(st.KnownPeers) == 0 {
		fmt.Println("no live peers")
		return
	}

	for _, host := range st.KnownPeers {
		fmt.Println(host)
	}
}
