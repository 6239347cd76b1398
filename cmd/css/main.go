// Package main はCSS圧縮コマンドの実装です
package main

import (
	"fmt"
	"io"
	"os"

	"webopt/internal/cssmin"

	"github.com/spf13/cobra"
)

// 入出力のパスは固定
const (
	inputFilePath  = "./public/css/main.css"
	outputFilePath = "./public/css/main.min.css"
)

func main() {
	if err := newRootCmd(inputFilePath, outputFilePath).Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd はルートコマンドを作成する
func newRootCmd(in, out string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "css",
		Short:         "Compress main.css file",
		Version:       "0.0.0",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newCompressCmd(in, out))
	return cmd
}

// newCompressCmd は compress サブコマンドを作成する
func newCompressCmd(in, out string) *cobra.Command {
	return &cobra.Command{
		Use:   "compress",
		Short: "Compress CSS file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := compress(in, out, cmd.OutOrStdout()); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "Error during CSS minification:", err)
				return err
			}
			return nil
		},
	}
}

// compress は in を圧縮して out に保存する
func compress(in, out string, stdout io.Writer) error {
	if err := cssmin.CompressFile(in, out, cssmin.DefaultOptions()); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "CSS minified and saved to %s\n", out)
	return nil
}
