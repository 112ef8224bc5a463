package cmd

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var (
	data  string
	trans []string
)

type submitRequest struct {
	Data  string  `json:"data"`
	Trans []apiTx `json:"transactions"`
}

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a payload to be mined.",
	Run:   submitRun,
}

func init() {
	rootCmd.AddCommand(submitCmd)
	submitCmd.Flags().StringVarP(&data, "data", "d", "", "Data to mine into the next block.")
	submitCmd.Flags().StringArrayVarP(&trans, "tx", "x", nil, "Transaction as sender:receiver:amount. Repeatable.")
}

func submitRun(cmd *cobra.Command, args []string) {
	req := submitRequest{
		Data:  data,
		Trans: []apiTx{},
	}

	for _, t := range trans {
		tx, err := parseTx(t)
		if err != nil {
			log.Fatal(err)
		}
		req.Trans = append(req.Trans, tx)
	}

	resp, err := client().R().SetBody(req).Post("/v1/payload/submit")
	if err != nil {
		log.Fatal(err)
	}
	if resp.IsError() {
		log.Fatalf("node returned %s: %s", resp.Status(), resp.String())
	}

	fmt.Println(resp.String())
}

// parseTx converts a sender:receiver:amount string to a transaction.
func parseTx(s string) (apiTx, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return apiTx{}, fmt.Errorf("invalid transaction %q, want sender:receiver:amount", s)
	}

	amount, err := strconv.ParseUint(parts[2], 10, 64)
	if err != nil {
		return apiTx{}, fmt.Errorf("invalid amount in %q: %w", s, err)
	}

	return apiTx{
		Sender:   parts[0],
		Receiver: parts[1],
		Amount:   amount,
	}, nil
}
