// Package cmd 提供 dpaction 命令行工具的所有子命令实现。
// 本文件实现 emit 命令，用于把信封装配出的方面批次
// 按固定顺序逐条提交给元数据服务。
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/brock-acryl/datahub-action-create-dataproduct/internal/dataproduct"
	"github.com/brock-acryl/datahub-action-create-dataproduct/internal/emitter"
	"github.com/brock-acryl/datahub-action-create-dataproduct/internal/envelope"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// emit 命令的局部标志
var emitToken string

// emitCmd 把一个信封的方面批次提交给元数据服务。
var emitCmd = &cobra.Command{
	Use:   "emit <envelope.json>",
	Short: "Assemble an event envelope and submit the aspect batch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		logger := logrus.New()
		logger.SetOutput(os.Stderr)

		bundle, err := envelope.NewExtractor(logger).Extract(raw)
		if err != nil {
			return fmt.Errorf("envelope is malformed: %w", err)
		}
		if bundle == nil {
			fmt.Println("envelope does not qualify: nothing to emit")
			return nil
		}

		token := emitToken
		if token == "" {
			token = os.Getenv("DATAHUB_ACTION_TOKEN")
		}
		client := emitter.New(emitter.Config{
			GMSURL:  viper.GetString("gms_url"),
			Token:   token,
			Timeout: 30 * time.Second,
		})

		records := dataproduct.Assemble(bundle, viper.GetString("id_prefix"))
		ctx := context.Background()
		for i := range records {
			if err := client.Emit(ctx, &records[i]); err != nil {
				return fmt.Errorf("emit %s: %w", records[i].AspectName, err)
			}
			fmt.Printf("emitted %s\n", records[i].AspectName)
		}
		fmt.Printf("created %s (%d aspects)\n", records[0].EntityURN, len(records))
		return nil
	},
}

// init 注册 emit 命令到根命令并声明局部标志。
func init() {
	emitCmd.Flags().StringVar(&emitToken, "token", "", "访问令牌（默认读取 DATAHUB_ACTION_TOKEN 环境变量）")
	rootCmd.AddCommand(emitCmd)
}
