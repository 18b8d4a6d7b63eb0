package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vietddude/artbid/internal/core/units"
)

var bidCmd = &cobra.Command{
	Use:   "bid [auction_id] [amount]",
	Short: "Place a bid on an auction; without an amount the current minimum bid is used",
	Args:  cobra.RangeArgs(1, 2),
	Run:   runBid,
}

func init() {
	rootCmd.AddCommand(bidCmd)
}

func runBid(cmd *cobra.Command, args []string) {
	auctionID := args[0]
	amount := ""
	if len(args) == 2 {
		amount = args[1]
	}

	cfg := loadConfig()
	app := newApp(cfg, 0, false)

	ctx, cancel := signalContext()
	defer cancel()

	if err := app.Connect(ctx); err != nil {
		os.Exit(1)
	}

	receipt, err := app.PlaceBid(ctx, auctionID, amount)
	if err != nil {
		os.Exit(1)
	}

	fmt.Printf("Bid submitted\n  auction: %s\n  amount:  %s ETH\n  from:    %s\n  tx:      %s\n",
		receipt.AuctionID,
		units.FormatDisplay(receipt.Value),
		receipt.From,
		receipt.TxHash.Hex(),
	)
}
