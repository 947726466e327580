package main

import (
	"fmt"
	"os"

	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/app/cmd"
	btsConfig "github.com/SistemaDeReservasTurnos/reservas-pagos-service/config"

	"github.com/spf13/cobra"
)

// 加载 config 目录下的配置信息
func init() {
	btsConfig.Initialize()
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "reservas-pagos-service",
		Short: "Payment lifecycle service for reservations",

		// 所有子命令执行前先加载配置和日志
		PersistentPreRun: func(command *cobra.Command, args []string) {
			cmd.Boot()
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		cmd.CmdServe,
		cmd.CmdMigrate,
	)

	// 默认运行 Web 服务
	cmd.RegisterDefaultCmd(rootCmd, cmd.CmdServe)
	cmd.RegisterGlobalFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to run app with %v: %s\n", os.Args, err.Error())
		os.Exit(1)
	}
}
