// Package cmd 包含 dpaction CLI 工具的所有命令实现
// 使用 cobra 框架构建命令行接口
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// 全局命令行标志变量
var (
	cfgFile  string // 配置文件路径
	gmsURL   string // 元数据服务地址
	idPrefix string // 实体标识符前缀
)

// rootCmd 是 CLI 的根命令
// 所有子命令都挂载在这个根命令下
var rootCmd = &cobra.Command{
	Use:   "dpaction",
	Short: "Data Product Action - workflow form to data product tooling",
	Long: `dpaction 是 Data Product Action 插件的配套命令行工具。

使用示例:
  # 校验一个事件信封并打印将要发出的方面批次（dry-run）
  dpaction validate envelope.json --id-prefix dp-

  # 把信封装配出的方面批次直接提交给元数据服务
  dpaction emit envelope.json --gms-url http://localhost:8080`,
}

// Execute 执行根命令
// 这是 CLI 的入口函数，由 main 包调用
func Execute() error {
	return rootCmd.Execute()
}

// init 注册全局标志和配置初始化函数
func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "配置文件路径（默认为 $HOME/.dpaction.yaml）")
	rootCmd.PersistentFlags().StringVarP(&gmsURL, "gms-url", "u", "http://localhost:8080", "元数据服务地址")
	rootCmd.PersistentFlags().StringVar(&idPrefix, "id-prefix", "", "实体标识符前缀")

	// 将标志绑定到 viper 配置
	viper.BindPFlag("gms_url", rootCmd.PersistentFlags().Lookup("gms-url"))
	viper.BindPFlag("id_prefix", rootCmd.PersistentFlags().Lookup("id-prefix"))
}

// initConfig 初始化配置
// 按优先级加载配置：命令行标志 > 环境变量 > 配置文件
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".dpaction")
	}

	// 环境变量格式：DPACTION_<KEY>，如 DPACTION_GMS_URL
	viper.SetEnvPrefix("DPACTION")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// 配置文件不存在不算错误，CLI 可以仅靠标志运行
	viper.ReadInConfig()
}
