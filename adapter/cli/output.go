package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// PrintJSON writes v as indented JSON.
func PrintJSON(w io.Writer, v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(output))
	return err
}

// Heading writes a title underlined to width.
func Heading(w io.Writer, title string, width int) {
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("=", width))
}
