// Package main 是 dpaction 命令行工具的入口点
// dpaction 是 Data Product Action 插件的配套 CLI 工具，
// 用于在本地校验事件信封并以 dry-run 或实发方式检查装配结果
package main

import (
	"os"

	"github.com/brock-acryl/datahub-action-create-dataproduct/cmd/dpaction/cmd"
)

// main 调用 cmd 包的 Execute 函数来解析和执行用户命令
func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
