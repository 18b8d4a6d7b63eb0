package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/vietddude/artbid/internal/core/domain"
	"github.com/vietddude/artbid/internal/core/units"
	"github.com/vietddude/artbid/internal/session"
)

var auctionsCmd = &cobra.Command{
	Use:   "auctions",
	Short: "Connect the wallet and list active auctions",
	Run:   runAuctions,
}

func init() {
	rootCmd.AddCommand(auctionsCmd)
}

func runAuctions(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	app := newApp(cfg, 0, false)

	ctx, cancel := signalContext()
	defer cancel()

	if err := app.Connect(ctx); err != nil {
		os.Exit(1)
	}

	snap := app.State()
	if snap.Auctions.Status != domain.ListReady {
		slog.Error("Auction list unavailable", "status", snap.Auctions.Status, "error", snap.Error)
		os.Exit(1)
	}

	fmt.Printf("Account: %s\nNetwork: %s\nState:   %s\n\n",
		snap.Session.AccountAddress,
		snap.Session.NetworkID,
		session.StateDescription(snap.Session.Status),
	)
	printAuctions(os.Stdout, snap.Auctions)
}

func printAuctions(out io.Writer, st domain.AuctionListState) {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "ID\tART\tMIN BID (ETH)")

	for _, a := range st.Items {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", a.ID, a.ArtName, units.FormatDisplay(a.MinBid))
	}
	_ = w.Flush()

	if !st.LastSyncedAt.IsZero() {
		_, _ = fmt.Fprintf(out, "\n%d active auction(s), synced %s\n", len(st.Items), st.LastSyncedAt.Format(time.RFC3339))
	}
}
