package render

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
)

// RenderDAOList renders the configured DAOs
func RenderDAOList(out io.Writer, daos []*models.DAO) error {
	if len(daos) == 0 {
		fmt.Fprintln(out, "No DAOs configured in treb-gov.toml [daos]")
		return nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateColumns = false
	t.AppendHeader(table.Row{"Name", "Network", "Safe", "Modules"})
	for _, dao := range daos {
		var modules []string
		if dao.HasFreezeGuard() {
			modules = append(modules, "freeze guard")
		}
		if dao.HasAzorius() {
			modules = append(modules, "azorius")
		}
		t.AppendRow(table.Row{
			headerStyle.Sprint(dao.Name),
			fmt.Sprintf("%s (%d)", dao.Network, dao.ChainID),
			addressStyle.Sprint(dao.Safe),
			faintStyle.Sprint(joinOr(modules, "-")),
		})
	}
	fmt.Fprintln(out, t.Render())
	return nil
}

func joinOr(items []string, empty string) string {
	if len(items) == 0 {
		return empty
	}
	s := items[0]
	for _, item := range items[1:] {
		s += ", " + item
	}
	return s
}
