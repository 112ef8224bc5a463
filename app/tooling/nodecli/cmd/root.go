// Package cmd contains the node cli commands.
package cmd

import (
	"os"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
)

var url string

func init() {
	rootCmd.PersistentFlags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the node.")
}

var rootCmd = &cobra.Command{
	Use:   "nodecli",
	Short: "Talk to a running node.",
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// client constructs the http client used by all the commands.
func client() *resty.Client {
	return resty.New().SetBaseURL(url)
}
