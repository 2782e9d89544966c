package cmd

import (
	"fmt"
	"io"
	"strconv"
	"text/template"

	"github.com/oneconcern/pkgreg/pkg/format"
	"github.com/oneconcern/pkgreg/pkg/model"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

// packageCmd represents the package related commands
var packageCmd = &cobra.Command{
	Use:   "package",
	Short: "Commands to manage packages",
	Long: `Commands to manage packages.

A package is a named, ordered sequence of immutable versions. Each version is
described by a manifest, listing the files of the package with their size and hash.`,
}

func init() {
	rootCmd.AddCommand(packageCmd)
}

// parseVersion parses a version argument. The "latest" version is resolved later on.
func parseVersion(arg string) (uint, error) {
	if arg == "latest" {
		return 0, nil
	}
	v, err := strconv.ParseUint(arg, 10, 0)
	if err != nil || v == 0 {
		return 0, fmt.Errorf("invalid version %q: expect a positive integer or latest", arg)
	}
	return uint(v), nil
}

var templateFuncs = template.FuncMap{
	"size":      format.Size,
	"timestamp": format.Timestamp,
}

// lineTemplate parses the template passed as flag, or the default one
func lineTemplate(defaultTemplate string) (*template.Template, error) {
	if pkgregFlags.core.Template != "" {
		return template.New("list line").Funcs(templateFuncs).Parse(pkgregFlags.core.Template)
	}
	return template.Must(template.New("list line").Funcs(templateFuncs).Parse(defaultTemplate)), nil
}

func renderLines(w io.Writer, t *template.Template, items ...interface{}) error {
	for _, item := range items {
		if err := t.Execute(w, item); err != nil {
			return fmt.Errorf("executing template: %w", err)
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}

// renderDocument writes a value as JSON or YAML
func renderDocument(w io.Writer, format string, value interface{}) error {
	var (
		buf []byte
		err error
	)
	switch format {
	case formatJSON:
		buf, err = model.JSON.MarshalIndent(value, "", "  ")
		buf = append(buf, '\n')
	case formatYAML:
		buf, err = yaml.Marshal(value)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}
