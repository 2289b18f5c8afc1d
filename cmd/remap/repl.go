package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/relaypipe/remap/internal/compile"
	"github.com/relaypipe/remap/internal/host"
	"github.com/relaypipe/remap/internal/value"
	"github.com/relaypipe/remap/internal/vm"
)

var replEventPath string

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Evaluate program lines one at a time against a persistent event",
	RunE: func(cmd *cobra.Command, args []string) error {
		event := value.Object{}
		if replEventPath != "" {
			eventData, err := os.ReadFile(replEventPath)
			if err != nil {
				return fmt.Errorf("reading event file: %w", err)
			}
			event, err = decodeEvent(eventData)
			if err != nil {
				return err
			}
		}

		functions, closeFuncs, err := buildFunctions(cfg)
		if err != nil {
			return err
		}
		defer closeFuncs()

		target := host.NewMapTarget(event)
		ctx := host.NewContext(target, host.NewMapVariableStore())

		interactive := isatty.IsTerminal(os.Stdin.Fd())
		out := cmd.OutOrStdout()
		in := bufio.NewScanner(os.Stdin)

		if interactive {
			fmt.Fprintln(out, "remap repl — one expression per line, Ctrl-D to exit")
		}

		for {
			if interactive {
				fmt.Fprint(out, "> ")
			}
			if !in.Scan() {
				break
			}
			line := strings.TrimSpace(in.Text())
			if line == "" {
				continue
			}

			container, err := compile.Compile(line, functions)
			if err != nil {
				fmt.Fprintf(out, "compile error: %v\n", err)
				continue
			}
			result, runErr := vm.Run(container, ctx)
			if runErr != nil {
				fmt.Fprintf(out, "runtime error: %v\n", runErr)
				continue
			}
			printResult(out, result)
		}
		return in.Err()
	},
}

func printResult(out io.Writer, v value.Value) {
	if v == nil {
		fmt.Fprintln(out, "null")
		return
	}
	fmt.Fprintf(out, "%v\n", toJSON(v))
}

func init() {
	replCmd.Flags().StringVar(&replEventPath, "event", "", "path to a JSON event file (default: empty event)")
	rootCmd.AddCommand(replCmd)
}
