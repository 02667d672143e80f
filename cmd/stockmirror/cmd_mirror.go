package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/stockmirror/app/services"
	"github.com/shashiranjanraj/stockmirror/config"
	"github.com/shashiranjanraj/stockmirror/internal/kernel"
	"github.com/shashiranjanraj/stockmirror/pkg/export"
	"github.com/shashiranjanraj/stockmirror/pkg/storage"
)

var (
	daysFlag int
	topFlag  int
	listFlag bool
)

// withMirror boots the kernel without jobs or HTTP and runs fn against it.
func withMirror(cmd *cobra.Command, fn func(m *services.Mirror, k *kernel.Kernel) error) error {
	k, err := kernel.Boot(cmd.Context())
	if err != nil {
		return err
	}
	defer k.Shutdown()
	return fn(k.Mirror, k)
}

// stockmirror dashboard
var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Print the dashboard counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMirror(cmd, func(m *services.Mirror, _ *kernel.Kernel) error {
			d := m.Dashboard()
			source := "local"
			if m.IsRemote() {
				source = "remote"
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintf(w, "Source\t%s\n", source)
			fmt.Fprintf(w, "Products\t%d\n", d.Products)
			fmt.Fprintf(w, "Clients\t%d (%d active)\n", d.Clients, d.ActiveClients)
			fmt.Fprintf(w, "Categories\t%d\n", d.Categories)
			fmt.Fprintf(w, "Sales\t%d\n", d.Sales)
			fmt.Fprintf(w, "Revenue\t%.2f\n", d.Revenue)
			fmt.Fprintf(w, "Stock units\t%d\n", d.StockUnits)
			fmt.Fprintf(w, "Low stock\t%d\n", d.LowStock)
			fmt.Fprintf(w, "Out of stock\t%d\n", d.OutOfStock)
			return w.Flush()
		})
	},
}

// stockmirror report <revenue|top|performance|stock>
var reportCmd = &cobra.Command{
	Use:       "report <revenue|top|performance|stock>",
	Short:     "Print a report as CSV",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"revenue", "top", "performance", "stock"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMirror(cmd, func(m *services.Mirror, _ *kernel.Kernel) error {
			switch args[0] {
			case "revenue":
				days := daysFlag
				if days <= 0 {
					days = config.ReportWindowDays()
				}
				return export.CSV(os.Stdout, m.RevenueByDay(days))
			case "top":
				n := topFlag
				if n <= 0 {
					n = config.ReportTopN()
				}
				return export.CSV(os.Stdout, m.TopProducts(n))
			case "stock":
				return export.CSV(os.Stdout, m.StockReport())
			default:
				p := m.Performance()
				w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
				fmt.Fprintf(w, "Conversion rate\t%.2f%%\t%d of %d clients bought\n", p.ConversionRate*100, p.BuyingClients, p.TotalClients)
				fmt.Fprintf(w, "Average ticket\t%.2f\t\n", p.AverageTicket)
				fmt.Fprintf(w, "Productivity\t%.2f\tsales per business day (%d days)\n", p.Productivity, p.BusinessDays)
				return w.Flush()
			}
		})
	},
}

// stockmirror export <file.csv|file.xlsx>
var exportCmd = &cobra.Command{
	Use:   "export <file.csv|file.xlsx>",
	Short: "Export sales to CSV, or sales, stock and revenue to XLSX",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".csv" && ext != ".xlsx" {
			return fmt.Errorf("export: unsupported file type %q (use .csv or .xlsx)", ext)
		}

		return withMirror(cmd, func(m *services.Mirror, _ *kernel.Kernel) error {
			f, err := os.Create(name)
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			defer f.Close()

			if ext == ".csv" {
				err = export.CSV(f, m.Sales())
			} else {
				err = export.XLSX(f,
					export.Sheet{Name: "Sales", Rows: m.Sales()},
					export.Sheet{Name: "Stock", Rows: m.StockReport()},
					export.Sheet{Name: "Revenue", Rows: m.RevenueByDay(config.ReportWindowDays())},
				)
			}
			if err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", name)
			return nil
		})
	},
}

// stockmirror backup [--list]
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Write a snapshot of the mirror to BACKUP_DISK",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMirror(cmd, func(m *services.Mirror, k *kernel.Kernel) error {
			disk, err := k.Disks.Disk(config.BackupDisk())
			if err != nil {
				return err
			}
			if listFlag {
				return listBackups(cmd, disk)
			}
			path, err := m.Backup(cmd.Context(), disk)
			if err != nil {
				return err
			}
			fmt.Printf("Snapshot written to %s\n", path)
			return nil
		})
	},
}

func listBackups(cmd *cobra.Command, disk storage.Disk) error {
	names, err := services.Backups(cmd.Context(), disk)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("No snapshots found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "PATH\tTAKEN AT\tSOURCE\tPRODUCTS\tSALES")
	for _, name := range names {
		b, err := services.ReadBackup(cmd.Context(), disk, name)
		if err != nil {
			fmt.Fprintf(w, "%s\t(unreadable)\t\t\t\n", name)
			continue
		}
		source := "local"
		if b.Remote {
			source = "remote"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n", name, b.TakenAt, source, len(b.Data.Products), len(b.Data.Sales))
	}
	return w.Flush()
}

func init() {
	reportCmd.Flags().IntVar(&daysFlag, "days", 0, "Revenue window in days (default REPORT_WINDOW_DAYS)")
	reportCmd.Flags().IntVarP(&topFlag, "top", "n", 0, "Number of top products (default REPORT_TOP_N)")
	backupCmd.Flags().BoolVar(&listFlag, "list", false, "List the snapshots on BACKUP_DISK instead of writing one")
}
