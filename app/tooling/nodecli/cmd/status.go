package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

type nodeStatus struct {
	Host       string   `json:"host"`
	Height     int      `json:"height"`
	LatestHash string   `json:"latest_hash"`
	Difficulty uint32   `json:"difficulty"`
	KnownPeers []string `json:"known_peers"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the node status.",
	Run:   statusRun,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func statusRun(cmd *cobra.Command, args []string) {
	var st nodeStatus
	resp, err := client().R().SetResult(&st).Get("/v1/node/status")
	if err != nil {
		log.Fatal(err)
	}
	if resp.IsError() {
		log.Fatalf("node returned %s: %s", resp.Status(), resp.String())
	}

	fmt.Println("Host:      ", st.Host)
	fmt.Println("Height:    ", st.Height)
	fmt.Println("LatestHash:", st.LatestHash)
	fmt.Println("Difficulty:", st.Difficulty)
	fmt.Println("KnownPeers:", st.KnownPeers)
}
