// Package cmd 命令行子命令
package cmd

import (
	"os"

	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/bootstrap"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/config"

	"github.com/spf13/cobra"
)

// Env 对应 --env 参数，例如 --env=testing 加载 .env.testing 文件
var Env string

// RegisterGlobalFlags 注册全局参数
func RegisterGlobalFlags(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().StringVarP(&Env, "env", "e", "", "加载 .env 文件，例如 --env=testing 将加载 .env.testing 文件")
}

// RegisterDefaultCmd 未指定子命令时执行 subCmd
func RegisterDefaultCmd(rootCmd *cobra.Command, subCmd *cobra.Command) {
	args := os.Args[1:]
	cmd, _, err := rootCmd.Find(args)
	if err != nil || cmd.Use != rootCmd.Use {
		return
	}
	if len(args) > 0 && (args[0] == "-h" || args[0] == "--help") {
		return
	}
	rootCmd.SetArgs(append([]string{subCmd.Use}, args...))
}

// Boot 初始化配置与日志，所有子命令共用
func Boot() {
	config.InitConfig(Env)
	bootstrap.SetupLogger()
}
