package cli

import (
	"fmt"
	"io"
	"sort"

	"photopost/internal/caption"
)

// printVariables writes the caption variable registry grouped by category.
// Used by --list-vars, which must touch neither credentials nor the network.
func printVariables(w io.Writer) {
	registry := caption.Registry()

	byCategory := make(map[string][]caption.Variable)
	for _, v := range registry {
		byCategory[v.Category] = append(byCategory[v.Category], v)
	}
	categories := make([]string, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	divider := "======================================================================"
	fmt.Fprintln(w)
	fmt.Fprintln(w, divider)
	fmt.Fprintln(w, "AVAILABLE CAPTION VARIABLES")
	fmt.Fprintln(w, divider)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: {VARIABLE_NAME} in your caption files")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Example caption file:")
	fmt.Fprintln(w, "  {FILE_NAME}.")
	fmt.Fprintln(w, "  {IMAGE_MAKE} {IMAGE_MODEL} | {IMAGE_F_NUMBER} | {IMAGE_EXPOSURE_TIME} | {IMAGE_FOCAL_LENGTH} | ISO {IMAGE_PHOTOGRAPHIC_SENSITIVITY}")
	fmt.Fprintln(w, "  #landscape #nature")

	for _, category := range categories {
		fmt.Fprintf(w, "\n%s\n", category)
		for range category {
			fmt.Fprint(w, "-")
		}
		fmt.Fprintln(w)
		for _, v := range byCategory[category] {
			fmt.Fprintf(w, "  {%-40s} - %s\n", v.Name, v.Description)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, divider)
	fmt.Fprintf(w, "Total: %d variables available\n", len(registry))
	fmt.Fprintln(w, divider)
}
