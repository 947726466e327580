package cmd

import (
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/bootstrap"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/database"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/logger"

	"github.com/spf13/cobra"
)

// CmdMigrate 同步数据表结构后退出
var CmdMigrate = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	if err := bootstrap.SetupDB(true); err != nil {
		return err
	}
	defer func() { logger.LogIf(database.Close()) }()

	logger.InfoString("Migrate", "Done", "数据表结构已同步")
	return nil
}
