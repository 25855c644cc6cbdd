// Package cmd 提供 dpaction 命令行工具的所有子命令实现。
// 本文件实现 validate 命令，用于在本地校验一个事件信封：
// 走一遍提取与装配流水线，打印将要发出的方面批次，但不提交任何数据。
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/brock-acryl/datahub-action-create-dataproduct/internal/dataproduct"
	"github.com/brock-acryl/datahub-action-create-dataproduct/internal/envelope"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// validateCmd 对信封文件执行 dry-run。
var validateCmd = &cobra.Command{
	Use:   "validate <envelope.json>",
	Short: "Dry-run an event envelope and print the aspect batch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		logger := logrus.New()
		logger.SetLevel(logrus.DebugLevel)
		logger.SetOutput(os.Stderr)

		bundle, err := envelope.NewExtractor(logger).Extract(raw)
		if err != nil {
			return fmt.Errorf("envelope is malformed: %w", err)
		}
		if bundle == nil {
			fmt.Println("envelope does not qualify: no aspects would be emitted")
			return nil
		}

		records := dataproduct.Assemble(bundle, viper.GetString("id_prefix"))
		out, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		fmt.Fprintf(os.Stderr, "%d aspect records for %s\n", len(records), records[0].EntityURN)
		return nil
	},
}

// init 注册 validate 命令到根命令。
func init() {
	rootCmd.AddCommand(validateCmd)
}
