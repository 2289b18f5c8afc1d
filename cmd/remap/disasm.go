package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/relaypipe/remap/internal/compile"
)

var disasmCmd = &cobra.Command{
	Use:   "disasm <program.remap>",
	Short: "Compile a program and print its instruction stream",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading program: %w", err)
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

		for _, line := range container.Disassemble() {
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(disasmCmd)
}
