package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/tidwall/pretty"

	"github.com/kbukum/aemkit/errors"
)

type printer struct {
	format string
	out    io.Writer
}

func (p printer) isJSON() bool { return p.format == outputJSON }

// json writes v as indented JSON.
func (p printer) json(v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = p.out.Write(pretty.Pretty(raw))
	return err
}

// table writes rows under header as aligned columns.
func (p printer) table(header []string, rows [][]string) error {
	tw := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
	writeRow(tw, header)
	for _, r := range rows {
		writeRow(tw, r)
	}
	return tw.Flush()
}

func writeRow(w io.Writer, cols []string) {
	for i, c := range cols {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, c)
	}
	fmt.Fprintln(w)
}

// result prints v as JSON, or text as a line.
func (p printer) result(v any, text string) error {
	if p.isJSON() {
		return p.json(v)
	}
	_, err := fmt.Fprintln(p.out, text)
	return err
}

// printError writes err to w in the selected format.
func printError(w io.Writer, format string, err error) {
	if format == outputJSON {
		appErr, ok := errors.AsAppError(err)
		if !ok {
			// flag, argument and config errors
			appErr = errors.New(errors.ErrCodeInvalidInput, err.Error())
		}
		raw, _ := json.Marshal(appErr.ToResponse())
		_, _ = w.Write(pretty.Pretty(raw))
		return
	}
	fmt.Fprintln(w, "Error:", err)
}
