package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ProductDesk/internal/catalog"
	"ProductDesk/internal/config"
	"ProductDesk/internal/product"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the remote product table",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	client, err := catalog.NewClient(cfg.API.BaseURL, cfg.API.Timeout)
	if err != nil {
		return err
	}

	products, err := client.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}
	return writeTable(cmd.OutOrStdout(), products)
}

func writeTable(w io.Writer, products []product.Product) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tDESCRIPTION")
	for _, p := range products {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", p.ID, p.Name, p.Price, p.Description)
	}
	return tw.Flush()
}
