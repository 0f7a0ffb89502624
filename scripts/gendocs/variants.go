package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/leapstack-labs/symtree/pkg/variant"
)

// generateVariantDocs writes the node variant reference from the registry.
func generateVariantDocs(outDir string) error {
	log.Printf("Generating variant docs to %s", outDir)
	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	w := NewMarkdownWriter()
	w.Frontmatter("Node Variants", "Operators and leaves expressions are built from")
	w.GeneratedMarker()

	w.Header(1, "Node Variants")
	w.Paragraph("Every node of an expression tree is one of these variants. Non-arithmetic variants count toward complexity, the deepest chain of them on any root-to-leaf path.")

	var rows [][]string
	for _, v := range variant.All() {
		nonArith := "no"
		if v.NonArithmetic {
			nonArith = "yes"
		}
		rows = append(rows, []string{InlineCode(v.Name), InlineCode(v.Symbol), strconv.Itoa(v.Arity), nonArith})
	}
	w.Table([]string{"Variant", "Symbol", "Arity", "Non-arithmetic"}, rows)

	w.Header(2, "Protected Operators")
	w.Paragraph(fmt.Sprintf("Division is protected: a / b evaluates sign(b) * a / (%g + |b|). Logarithm evaluates log(%g + |a|).",
		variant.DivEpsilon, variant.LogEpsilon))

	if err := os.WriteFile(filepath.Join(outDir, "variants.md"), w.Bytes(), 0o600); err != nil {
		return err
	}
	log.Printf("  Generated variants.md")
	return nil
}
