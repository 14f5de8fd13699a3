package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/hay-kot/shop/pkg/randid"
)

const (
	// StatusAdded indicates the item was added to the cart.
	StatusAdded = "added"
	// StatusFailed indicates the backend rejected the item.
	StatusFailed = "failed"
	// StatusSkipped indicates the item was not attempted due to failure threshold.
	StatusSkipped = "skipped"

	// maxFailures is the number of failures before stopping import processing.
	maxFailures = 3
)

// ImportInput is the JSON input schema for cart import.
type ImportInput struct {
	Items []ImportItem `json:"items"`
}

// ImportItem is a single product to add.
type ImportItem struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

// Validate checks the import input for errors using criterio.
func (in ImportInput) Validate() error {
	if len(in.Items) == 0 {
		return criterio.NewFieldErrors("items", fmt.Errorf("array is empty"))
	}

	var errs criterio.FieldErrorsBuilder
	seen := make(map[int]bool)

	for i, it := range in.Items {
		field := fmt.Sprintf("items[%d]", i)

		if it.ProductID <= 0 {
			errs = errs.Append(field+".product_id", fmt.Errorf("must be a positive id"))
			continue
		}
		if seen[it.ProductID] {
			errs = errs.Append(field+".product_id", fmt.Errorf("duplicate product %d", it.ProductID))
			continue
		}
		seen[it.ProductID] = true

		if it.Quantity < 0 {
			errs = errs.Append(field+".quantity", fmt.Errorf("must be at least 1"))
		}
	}

	return errs.ToError()
}

// ImportResult is the output for a single item.
type ImportResult struct {
	ProductID int    `json:"product_id"`
	ItemID    int    `json:"item_id,omitempty"`
	Quantity  int    `json:"quantity,omitempty"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

// ImportOutput is the JSON output schema.
type ImportOutput struct {
	ImportID string         `json:"import_id"`
	Results  []ImportResult `json:"results"`
}

// ImportErrorOutput is the JSON output for fatal errors.
type ImportErrorOutput struct {
	Error string `json:"error"`
}

func (cmd *CartCmd) runImport(ctx context.Context, c *cli.Command) error {
	importID := randid.Generate(6)
	logger := log.With().Str("import_id", importID).Logger()
	out := c.Root().Writer

	input, err := cmd.readInput(c.Root().Reader)
	if err != nil {
		logger.Error().Err(err).Msg("failed to read input")
		return writeImportError(out, fmt.Errorf("read input: %w", err))
	}

	if err := input.Validate(); err != nil {
		logger.Error().Err(err).Msg("input validation failed")
		return writeImportError(out, fmt.Errorf("invalid input: %w", err))
	}

	output := ImportOutput{
		ImportID: importID,
		Results:  make([]ImportResult, 0, len(input.Items)),
	}

	failures := 0
	for i, it := range input.Items {
		if failures >= maxFailures {
			logger.Warn().Int("product_id", it.ProductID).Msg("skipping item due to failure threshold")
			for _, rest := range input.Items[i:] {
				output.Results = append(output.Results, ImportResult{ProductID: rest.ProductID, Status: StatusSkipped})
			}
			break
		}

		qty := it.Quantity
		if qty == 0 {
			qty = 1
		}

		result := ImportResult{ProductID: it.ProductID}
		item, err := cmd.flags.Service.AddToCart(ctx, it.ProductID, qty)
		if err != nil {
			failures++
			result.Status = StatusFailed
			result.Error = err.Error()
			logger.Error().Err(err).Int("product_id", it.ProductID).Msg("add to cart failed")
		} else {
			result.Status = StatusAdded
			result.ItemID = item.ID
			result.Quantity = item.Quantity
		}
		output.Results = append(output.Results, result)
	}

	logger.Info().
		Int("total", len(input.Items)).
		Int("added", countByStatus(output.Results, StatusAdded)).
		Int("failed", countByStatus(output.Results, StatusFailed)).
		Int("skipped", countByStatus(output.Results, StatusSkipped)).
		Msg("cart import complete")

	return writeJSON(out, output)
}

func (cmd *CartCmd) readInput(stdin io.Reader) (ImportInput, error) {
	var reader io.Reader

	if cmd.file != "" {
		f, err := os.Open(cmd.file)
		if err != nil {
			return ImportInput{}, fmt.Errorf("open file: %w", err)
		}
		defer func() { _ = f.Close() }()
		reader = f
	} else {
		if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return ImportInput{}, fmt.Errorf("no input provided (stdin is a terminal); use -f flag or pipe JSON input")
		}
		reader = stdin
	}

	var input ImportInput
	if err := json.NewDecoder(reader).Decode(&input); err != nil {
		return ImportInput{}, fmt.Errorf("decode JSON: %w", err)
	}

	return input, nil
}

func writeImportError(w io.Writer, err error) error {
	if encErr := writeJSON(w, ImportErrorOutput{Error: err.Error()}); encErr != nil {
		fmt.Fprintf(os.Stderr, "error: %s (failed to write JSON: %v)\n", err, encErr)
	}
	return err
}

func countByStatus(results []ImportResult, status string) int {
	count := 0
	for _, r := range results {
		if r.Status == status {
			count++
		}
	}
	return count
}
