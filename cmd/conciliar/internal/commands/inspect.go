package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/conciliar/internal/importer"
	"github.com/MrJamesThe3rd/conciliar/internal/statement"
)

func newInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Parse a statement file and print its movements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := readStatement(args[0])
			if err != nil {
				return err
			}

			printStatement(cmd.OutOrStdout(), st)

			return nil
		},
	}
}

func readStatement(path string) (*statement.Statement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading statement: %w", err)
	}

	st, err := importer.NewService().Import(filepath.Base(path), data)
	if err != nil {
		return nil, fmt.Errorf("importing %s: %w", path, err)
	}

	return st, nil
}

func printStatement(w io.Writer, st *statement.Statement) {
	fmt.Fprintf(w, "Format:   %s\n", st.Format)
	fmt.Fprintf(w, "Bank:     %s\n", st.BankName)
	fmt.Fprintf(w, "Account:  %s\n", st.AccountNumber)
	fmt.Fprintf(w, "Currency: %s\n", st.Currency)

	balance := st.ClosingBalance.StringFixed(2)
	if st.BalanceDate != nil {
		balance += " on " + st.BalanceDate.Format(dateLayout)
	}

	fmt.Fprintf(w, "Balance:  %s\n", balance)

	if from, to, ok := st.DateRange(); ok {
		fmt.Fprintf(w, "Period:   %s to %s\n", from.Format(dateLayout), to.Format(dateLayout))
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("DATE", "DESCRIPTION", "AMOUNT", "DIRECTION", "REFERENCE")

	for _, m := range st.Movements {
		t.Row(m.Date.Format(dateLayout), m.Description, m.Amount.StringFixed(2), string(m.Direction), m.Reference)
	}

	fmt.Fprintln(w, t.Render())
	fmt.Fprintf(w, "%d movements\n", len(st.Movements))
}
