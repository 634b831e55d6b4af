// api/db/db.go
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/chittoorhealth/api/config"
	logger "github.com/chittoorhealth/api/logging"
)

var SQL *sql.DB

func InitMySQL() error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true",
		config.GetString("mysql.user"),
		config.GetString("mysql.password"),
		config.GetString("mysql.addr"),
		config.GetString("mysql.database"),
	)
	logger.Info("Connecting to MySQL", zap.String("addr", config.GetString("mysql.addr")))

	var err error
	SQL, err = sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("failed to open MySQL connection: %w", err)
	}

	SQL.SetMaxOpenConns(config.GetInt("mysql.maxOpenConns"))
	SQL.SetMaxIdleConns(config.GetInt("mysql.maxIdleConns"))
	SQL.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := SQL.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to connect to MySQL: %w", err)
	}

	logger.Info("Successfully connected to MySQL")
	return nil
}

func CloseMySQL() {
	if SQL != nil {
		if err := SQL.Close(); err != nil {
			logger.Error("Error closing MySQL connection", zap.Error(err))
		} else {
			logger.Info("MySQL connection closed successfully")
		}
	}
}
