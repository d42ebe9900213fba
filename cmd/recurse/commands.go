package main

import (
	"fmt"
	"io"
	"io/ioutil"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/run-ci/recurse/org"
	"github.com/run-ci/recurse/power"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var level string

	root := &cobra.Command{
		Use:          "recurse",
		Short:        "Raise numbers to powers and add up salaries, recursively",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := logrus.ParseLevel(level)
			if err != nil {
				return err
			}

			logrus.SetLevel(lvl)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&level, "log-level", "info", "logrus level")

	root.AddCommand(
		newPowCmd(),
		newPowerCmd(),
		newSumCmd(),
		newExampleCmd(),
	)

	return root
}

func parseArgs(args []string) (float64, int, error) {
	x, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("x must be a number: %w", err)
	}

	n, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, 0, fmt.Errorf("n must be an integer: %w", err)
	}

	return x, n, nil
}

func newPowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pow X N",
		Short: "Multiply x into a running product n times",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, n, err := parseArgs(args)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), power.Iterative(x, n))
			return nil
		},
	}
}

func newPowerCmd() *cobra.Command {
	var trace bool

	cmd := &cobra.Command{
		Use:   "power X N",
		Short: "Raise x to n as x * power(x, n-1)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, n, err := parseArgs(args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if !trace {
				v, err := power.Recursive(x, n)
				if err != nil {
					return err
				}

				fmt.Fprintln(out, v)
				return nil
			}

			res, err := power.Trace(x, n)
			if err != nil {
				return err
			}

			for i, step := range res.Steps() {
				fmt.Fprintf(out, "%v. %v\n", i+1, step)
			}
			fmt.Fprintf(out, "result: %v (depth %v)\n", res.Value, res.Depth)

			return nil
		},
	}

	cmd.Flags().BoolVar(&trace, "trace", false, "print every execution context")

	return cmd
}

func newSumCmd() *cobra.Command {
	var path, format string

	cmd := &cobra.Command{
		Use:   "sum [FILE]",
		Short: "Add up every salary in an org structure",
		Long: "Reads an org structure as JSON or YAML from FILE, or from stdin when FILE\n" +
			"is absent or \"-\", and prints the total salary under --path.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := "-"
			if len(args) == 1 {
				src = args[0]
			}

			root, err := readTree(cmd.InOrStdin(), src, format)
			if err != nil {
				return err
			}

			n, err := org.Lookup(root, org.SplitPath(path)...)
			if err != nil {
				return err
			}

			logger.WithFields(logrus.Fields{
				"source":    src,
				"path":      path,
				"headcount": org.Headcount(n),
				"depth":     org.Depth(n),
			}).Debug("summing salaries")

			fmt.Fprintln(cmd.OutOrStdout(), org.SumSalaries(n))
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "department to sum, e.g. development/sites")
	cmd.Flags().StringVar(&format, "format", "", "json or yaml; guessed from the file extension when empty")

	return cmd
}

func newExampleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "example",
		Short: "Show the worked example company and its total",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			company := org.Example()

			for _, d := range company.(org.Departments) {
				fmt.Fprintf(out, "%v: %v\n", d.Name, org.SumSalaries(d.Node))
			}
			fmt.Fprintf(out, "total: %v\n", org.SumSalaries(company))

			return nil
		},
	}
}

func readTree(stdin io.Reader, src, format string) (org.Node, error) {
	var buf []byte
	var err error

	if src == "-" {
		buf, err = ioutil.ReadAll(stdin)
	} else {
		buf, err = ioutil.ReadFile(src)
	}
	if err != nil {
		return nil, err
	}

	if format == "" {
		switch strings.ToLower(filepath.Ext(src)) {
		case ".yaml", ".yml":
			format = "yaml"
		default:
			format = "json"
		}
	}

	switch format {
	case "json":
		return org.DecodeJSON(buf)
	case "yaml":
		return org.DecodeYAML(buf)
	}

	return nil, fmt.Errorf("unknown format %q", format)
}
