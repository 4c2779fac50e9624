package render

import (
	"fmt"
	"io"

	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

// RenderActionResult renders the outcome of an action attempt
func RenderActionResult(out io.Writer, result *usecase.ActionResult) error {
	label := Title(string(result.Action))
	if result.Skipped {
		fmt.Fprintln(out, FormatWarning(fmt.Sprintf("%s skipped: %s", label, result.Reason)))
		return nil
	}

	target := result.ProposalID
	if target == "" {
		target = string(result.DAO)
	}
	fmt.Fprintln(out, FormatSuccess(fmt.Sprintf("%s submitted for %s", label, target)))
	fmt.Fprintf(out, "   Transaction: %s\n", result.TxHash)
	return nil
}
