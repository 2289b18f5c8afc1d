package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/relaypipe/remap/internal/batch"
	"github.com/relaypipe/remap/internal/bytecode"
	"github.com/relaypipe/remap/internal/compile"
	"github.com/relaypipe/remap/internal/host"
	"github.com/relaypipe/remap/internal/value"
	"github.com/relaypipe/remap/internal/vm"
)

var (
	evalEventPath string
	evalBatch     bool
	evalBatchConc int
)

var evalCmd = &cobra.Command{
	Use:   "eval <program.remap>",
	Short: "Compile a program and run it once against an event, or many in --batch mode",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading program: %w", err)
		}

		eventData, err := readEventInput(cmd, evalEventPath)
		if err != nil {
			return err
		}

		functions, closeFuncs, err := buildFunctions(cfg)
		if err != nil {
			return err
		}
		defer closeFuncs()

		container, err := compile.Compile(string(src), functions)
		if err != nil {
			return fmt.Errorf("compiling program: %w", err)
		}
		printVerbose("compiled %d instruction slots\n", container.Len())

		if evalBatch {
			return runBatch(cmd, container, eventData)
		}

		event, err := decodeEvent(eventData)
		if err != nil {
			return err
		}

		target := host.NewMapTarget(event)
		ctx := host.NewContext(target, host.NewMapVariableStore())

		result, runErr := vm.Run(container, ctx)
		out, encErr := encodeEvent(target.Root)
		if encErr != nil {
			return encErr
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))

		if result != nil {
			printVerbose("result: %v\n", toJSON(result))
		}
		if runErr != nil {
			return fmt.Errorf("running program: %w", runErr)
		}
		return nil
	},
}

func init() {
	evalCmd.Flags().StringVar(&evalEventPath, "event", "-", "path to a JSON event file, or - for stdin")
	evalCmd.Flags().BoolVar(&evalBatch, "batch", false, "treat --event as a JSON array of events and run them concurrently over one compiled program")
	evalCmd.Flags().IntVar(&evalBatchConc, "concurrency", 4, "number of events to run concurrently in --batch mode")
	rootCmd.AddCommand(evalCmd)
}

func readEventInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("reading event from stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading event file: %w", err)
	}
	return data, nil
}

// runBatch decodes data as a JSON array of events and runs container
// once per event, fanned out across batch.Run's bounded concurrency.
// Every event gets its own host.Context and VM State over the same
// read-only Container (spec.md §5's shared-container concurrency).
func runBatch(cmd *cobra.Command, container *bytecode.Container, data []byte) error {
	events, err := decodeEvents(data)
	if err != nil {
		return err
	}

	results := batch.Run(context.Background(), container, events, evalBatchConc, func(e value.Object) host.Target {
		return host.NewMapTarget(e)
	})

	outs := make([]interface{}, len(results))
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			outs[r.Index] = map[string]interface{}{"error": r.Err.Error(), "event": toJSON(events[r.Index])}
			continue
		}
		outs[r.Index] = toJSON(r.Event)
	}

	encoded, err := json.MarshalIndent(outs, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
	printVerbose("batch: %d events, %d failed\n", len(results), failed)

	if failed == len(results) && len(results) > 0 {
		return fmt.Errorf("all %d events failed", failed)
	}
	return nil
}
