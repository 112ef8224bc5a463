package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var (
	from string
	to   string
)

type apiTx struct {
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
	Amount   uint64 `json:"amount"`
}

type apiBlock struct {
	Index     uint32  `json:"index"`
	TimeStamp uint64  `json:"timestamp"`
	Nonce     uint64  `json:"nonce"`
	Data      string  `json:"data"`
	PrevHash  string  `json:"prev_hash"`
	Hash      string  `json:"hash"`
	Trans     []apiTx `json:"transactions"`
}

var blocksCmd = &cobra.Command{
	Use:   "blocks",
	Short: "Print blocks from the chain.",
	Run:   blocksRun,
}

func init() {
	rootCmd.AddCommand(blocksCmd)
	blocksCmd.Flags().StringVarP(&from, "from", "f", "0", "First block number to list.")
	blocksCmd.Flags().StringVarP(&to, "to", "t", "latest", "Last block number to list.")
}

func blocksRun(cmd *cobra.Command, args []string) {
	var blocks []apiBlock
	resp, err := client().R().SetResult(&blocks).Get(fmt.Sprintf("/v1/blocks/list/%s/%s", from, to))
	if err != nil {
		log.Fatal(err)
	}
	if resp.IsError() {
		log.Fatalf("node returned %s: %s", resp.Status(), resp.String())
	}

	for _, b := range blocks {
		fmt.Printf("Block:    %d\n", b.Index)
		fmt.Printf("Time:     %d\n", b.TimeStamp)
		fmt.Printf("Nonce:    %d\n", b.Nonce)
		fmt.Printf("Data:     %s\n", b.Data)
		fmt.Printf("PrevHash: %s\n", b.PrevHash)
		fmt.Printf("Hash:     %s\n", b.Hash)
		for _, t := range b.Trans {
			fmt.Printf("  Tx: %s -> %s  Amount: %d\n", t.Sender, t.Receiver, t.Amount)
		}
		fmt.Println()
	}
}
